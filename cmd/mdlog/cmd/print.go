package cmd

import (
	"fmt"
	"io"

	"mdlog/internal/scan"
	"mdlog/internal/schema"
)

func printHit(w io.Writer, h scan.Hit) {
	r := h.Record
	fmt.Fprintf(w, "#%d %s %d %s ch=%d", h.Index, r.Security(), r.Date(), schema.FormatClock(r.Time()), r.Channel())
	if s, ok := r.(schema.Sequenced); ok {
		fmt.Fprintf(w, " seq=%d", s.Seq())
	}

	switch v := r.(type) {
	case schema.Order:
		fmt.Fprintf(w, " order idx=%d no=%d type=%d bs=%d px=%s qty=%d status=%q",
			v.OrderIndex, v.OrderNo, v.OrderType, v.OrderBSFlag, v.OrderPrice, v.OrderQty, v.SecurityStatus)
	case schema.Transaction:
		fmt.Fprintf(w, " trade idx=%d buy=%d sell=%d type=%d bs=%d px=%s qty=%d money=%s",
			v.TradeIndex, v.TradeBuyNo, v.TradeSellNo, v.TradeType, v.TradeBSFlag,
			v.TradePrice, v.TradeQty, schema.FormatPrice(int64(v.TradeMoney)))
	case schema.Tick:
		fmt.Fprintf(w, " tick phase=%q last=%s open=%s high=%s low=%s trades=%d vol=%d bid=%s/%d ask=%s/%d",
			phase(v.TradingPhaseCode), v.LastPx, v.OpenPx, v.HighPx, v.LowPx, v.NumTrades, v.TotalVolumeTrade,
			v.BuyPriceQueue[0], v.BuyOrderQtyQueue[0], v.SellPriceQueue[0], v.SellOrderQtyQueue[0])
		printLatency(w, v.LocalRecvTimestamp, v.DataTimestamp)
	case schema.Snapshot:
		fmt.Fprintf(w, " book phase=%q last=%s levels=%d/%d bid=%s/%d ask=%s/%d",
			phase(v.TradingPhaseCode), v.LastPx, v.BuyEntriesCount, v.SellEntriesCount,
			v.BuyEntries[0].Price, v.BuyEntries[0].TotalQty, v.SellEntries[0].Price, v.SellEntries[0].TotalQty)
		printLatency(w, v.LocalRecvTimestamp, v.DataTimestamp)
	}
	fmt.Fprintln(w)
}

func printLatency(w io.Writer, recv, exchangeMs int64) {
	fmt.Fprintf(w, " recv=%s", schema.FormatRecvTime(recv))
	if ms, ok := schema.LatencyMillis(recv, exchangeMs); ok {
		fmt.Fprintf(w, " latency=%dms", ms)
	}
}

func phase(c byte) string {
	if c == 0 {
		return ""
	}
	return string(rune(c))
}
