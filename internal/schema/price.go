package schema

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// DefaultPowerOf10 is the price scale every producer of these files uses.
// Records carry their own DataMultiplePowerOf10 but nothing honors other
// values yet.
const DefaultPowerOf10 = 4

// Price is a fixed-point integer scaled by 10^DataMultiplePowerOf10.
type Price int64

// AppendString appends the price with all scale digits kept.
func (p Price) AppendString(priceScale int, buf []byte) []byte {
	return appendScaledInt(buf, int64(p), priceScale)
}

// String formats the price in currency units with two decimals.
func (p Price) String() string {
	return FormatPrice(int64(p))
}

// Quantity is a share count. It is not scaled.
type Quantity int64

// Notional is a traded amount in the same scale as Price.
type Notional int64

func (n Notional) AppendString(notionalScale int, buf []byte) []byte {
	return appendScaledInt(buf, int64(n), notionalScale)
}

// FormatPrice renders a raw price scaled by 10^4 as currency units rounded to
// two decimals, e.g. 125000 -> "12.50".
func FormatPrice(raw int64) string {
	return decimal.New(raw, -DefaultPowerOf10).StringFixed(2)
}

// PriceValue converts a raw price into a decimal in currency units.
func PriceValue(raw int64) decimal.Decimal {
	return decimal.New(raw, -DefaultPowerOf10)
}

func appendScaledInt(buf []byte, value int64, scale int) []byte {
	if scale <= 0 {
		return strconv.AppendInt(buf, value, 10)
	}

	neg := value < 0
	u := uint64(value)
	if neg {
		u = uint64(^value) + 1
	}

	var tmp [32]byte
	digits := strconv.AppendUint(tmp[:0], u, 10)

	if neg {
		buf = append(buf, '-')
	}

	if len(digits) <= scale {
		buf = append(buf, '0', '.')
		for i := 0; i < scale-len(digits); i++ {
			buf = append(buf, '0')
		}
		buf = append(buf, digits...)
		return buf
	}

	idx := len(digits) - scale
	buf = append(buf, digits[:idx]...)
	buf = append(buf, '.')
	buf = append(buf, digits[idx:]...)
	return buf
}
