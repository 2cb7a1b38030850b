package staking

import (
	"math/big"

	"github.com/masterclassed3-maker/bnotemonad-site/internal/fixedpoint"
)

// Display conventions: 2dp for percentages and multipliers, 4dp for token
// amounts. Prices use 6dp (see poolprice).
const (
	percentDP = 2
	amountDP  = 4
)

// BpsToPercent renders basis points as a percentage with two fixed decimal
// places: 2000 -> "20.00%".
func BpsToPercent(bps *big.Int) string {
	v := nz(bps)
	whole, frac := new(big.Int).QuoRem(v, big.NewInt(100), new(big.Int))
	return whole.String() + "." + padTwo(frac) + "%"
}

// FormatMultiplier renders (num / basis) as a two-decimal multiplier
// string: basis 10000 and num 12500 -> "1.25x". A zero basis has no
// meaningful multiplier and renders as a placeholder.
func FormatMultiplier(num, basis *big.Int) string {
	b := nz(basis)
	if b.Sign() == 0 {
		return "—"
	}
	scaled := fixedpoint.MulDiv(nz(num), big.NewInt(100), b)
	whole, frac := new(big.Int).QuoRem(scaled, big.NewInt(100), new(big.Int))
	return whole.String() + "." + padTwo(frac) + "x"
}

// FormatToken renders a 1e18-scaled token amount for display, truncated to
// four decimal places with thousands separators.
func FormatToken(raw *big.Int) string {
	return fixedpoint.WithCommas(fixedpoint.FormatTruncated(nz(raw), 18, amountDP))
}

// padTwo renders a remainder in [0, 100) as exactly two digits.
func padTwo(v *big.Int) string {
	s := v.String()
	if len(s) < 2 {
		s = "0" + s
	}
	return s
}
