package schema

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

// Exchange is the listing venue derived from a bare security code.
type Exchange uint8

const (
	ExchangeShenzhen Exchange = iota
	ExchangeShanghai
)

// ExchangeOf maps a bare code to its venue: a leading '6' is Shanghai,
// anything else Shenzhen.
func ExchangeOf(code string) Exchange {
	if strings.HasPrefix(code, "6") {
		return ExchangeShanghai
	}
	return ExchangeShenzhen
}

// Suffix is the ".SH"/".SZ" symbol suffix.
func (e Exchange) Suffix() string {
	if e == ExchangeShanghai {
		return ".SH"
	}
	return ".SZ"
}

// MIC is the ISO market identifier used by the export text format.
func (e Exchange) MIC() string {
	if e == ExchangeShanghai {
		return "XSHG"
	}
	return "XSHE"
}

// BareCode strips any exchange suffix: "600000.SH" -> "600000".
func BareCode(symbol string) string {
	if i := strings.IndexByte(symbol, '.'); i >= 0 {
		return symbol[:i]
	}
	return symbol
}

// FullSymbol appends the exchange suffix to a bare code. A symbol that
// already carries a suffix is returned unchanged.
func FullSymbol(symbol string) string {
	if strings.IndexByte(symbol, '.') >= 0 {
		return symbol
	}
	return symbol + ExchangeOf(symbol).Suffix()
}

// CString decodes a NUL terminated fixed-width field. Invalid UTF-8 is
// replaced, never rejected.
func CString(field []byte) string {
	if i := bytes.IndexByte(field, 0); i >= 0 {
		field = field[:i]
	}
	if utf8.Valid(field) {
		return string(field)
	}
	return strings.ToValidUTF8(string(field), string(utf8.RuneError))
}

// CStringBytes returns the field up to the first NUL without copying.
func CStringBytes(field []byte) []byte {
	if i := bytes.IndexByte(field, 0); i >= 0 {
		return field[:i]
	}
	return field
}
