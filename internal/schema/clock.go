package schema

import (
	"fmt"
	"strconv"
	"time"
)

// Clock splits a packed HHMMSSmmm MDTime.
func Clock(mdtime int32) (hour, minute, second, milli int) {
	v := int(mdtime)
	return v / 10000000, (v / 100000) % 100, (v / 1000) % 100, v % 1000
}

// FormatClock renders a packed MDTime as HH:MM:SS.mmm.
func FormatClock(mdtime int32) string {
	h, m, s, ms := Clock(mdtime)
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}

// ParseClock turns an "HHMMSS" cut-off such as "094500" into the packed
// MDTime 94500000.
func ParseClock(hhmmss string) (int32, error) {
	if len(hhmmss) != 6 {
		return 0, fmt.Errorf("invalid clock %q, want HHMMSS", hhmmss)
	}
	v, err := strconv.Atoi(hhmmss)
	if err != nil {
		return 0, fmt.Errorf("invalid clock %q: %w", hhmmss, err)
	}
	if v/10000 > 23 || (v/100)%100 > 59 || v%100 > 59 {
		return 0, fmt.Errorf("invalid clock %q, out of range", hhmmss)
	}
	return int32(v * 1000), nil
}

// FormatRecvTime renders a nanosecond receive timestamp as local HH:MM:SS.mmm,
// or "N/A" when absent.
func FormatRecvTime(ns int64) string {
	if ns == 0 {
		return "N/A"
	}
	return time.Unix(0, ns).Format("15:04:05.000")
}

// LatencyMillis is the gap between local receipt (ns) and the exchange
// timestamp (ms). ok is false when either side is missing.
func LatencyMillis(recvNs, exchangeMs int64) (ms int64, ok bool) {
	if recvNs == 0 || exchangeMs == 0 {
		return 0, false
	}
	return recvNs/int64(time.Millisecond) - exchangeMs, true
}
