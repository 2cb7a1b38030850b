package fixedpoint

import (
	"errors"
	"math/big"
	"strings"
)

// ErrInvalidNumber is returned when a user-supplied decimal string cannot
// be parsed as an unsigned decimal number.
var ErrInvalidNumber = errors.New("invalid decimal number")

// FormatTruncated converts a scaled integer into a decimal string with at
// most maxDP fractional digits. Extra digits are truncated, never rounded,
// and trailing zeros are stripped. Pure string/integer manipulation: the
// value never passes through a float.
func FormatTruncated(value *big.Int, decimals, maxDP int) string {
	whole, frac := splitScaled(value, decimals)
	if maxDP < len(frac) {
		frac = frac[:maxDP]
	}
	frac = strings.TrimRight(frac, "0")
	if frac == "" {
		return whole
	}
	return whole + "." + frac
}

// FixedDecimals is like FormatTruncated but pads the fractional part with
// zeros to exactly dp digits (e.g. share rate shown as "1.000").
func FixedDecimals(value *big.Int, decimals, dp int) string {
	whole, frac := splitScaled(value, decimals)
	if dp == 0 {
		return whole
	}
	if len(frac) < dp {
		frac += strings.Repeat("0", dp-len(frac))
	}
	return whole + "." + frac[:dp]
}

// splitScaled divides value by 10^decimals and returns the whole part and
// the fractional digits zero-padded to exactly decimals characters.
func splitScaled(value *big.Int, decimals int) (string, string) {
	if value == nil {
		return "0", ""
	}
	sign := ""
	abs := new(big.Int).Abs(value)
	if value.Sign() < 0 {
		sign = "-"
	}
	if decimals <= 0 {
		return sign + abs.String(), ""
	}
	quo, rem := new(big.Int).QuoRem(abs, Pow10(decimals), new(big.Int))
	frac := rem.String()
	if len(frac) < decimals {
		frac = strings.Repeat("0", decimals-len(frac)) + frac
	}
	return sign + quo.String(), frac
}

// WithCommas inserts thousands separators into the integer part of a plain
// decimal string ("1234567.5" -> "1,234,567.5").
func WithCommas(s string) string {
	whole, frac, hasFrac := strings.Cut(s, ".")
	neg := strings.HasPrefix(whole, "-")
	if neg {
		whole = whole[1:]
	}

	var b strings.Builder
	lead := len(whole) % 3
	if lead > 0 {
		b.WriteString(whole[:lead])
	}
	for i := lead; i < len(whole); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(whole[i : i+3])
	}

	out := b.String()
	if out == "" {
		out = "0"
	}
	if neg {
		out = "-" + out
	}
	if hasFrac {
		out += "." + frac
	}
	return out
}

// ParseDecimal converts an unsigned decimal string ("1234.5") into an
// integer scaled by 10^decimals, truncating fractional digits beyond the
// scale. Malformed input returns ErrInvalidNumber; it is never coerced
// into zero.
func ParseDecimal(s string, decimals int) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "." {
		return nil, ErrInvalidNumber
	}

	whole, frac, _ := strings.Cut(s, ".")
	if strings.Contains(frac, ".") {
		return nil, ErrInvalidNumber
	}
	if whole == "" {
		whole = "0"
	}
	if !isDigits(whole) || (frac != "" && !isDigits(frac)) {
		return nil, ErrInvalidNumber
	}

	if len(frac) > decimals {
		frac = frac[:decimals]
	}
	digits := whole + frac
	scale := decimals - len(frac)

	value, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, ErrInvalidNumber
	}
	if scale > 0 {
		value.Mul(value, Pow10(scale))
	}
	return value, nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}
