// Package fixedpoint provides exact integer arithmetic over large unsigned
// values scaled by a fixed power of ten (canonically 1e18). Everything here
// works on math/big integers; no operation goes through floating point, so
// results match what the contract computes bit for bit.
package fixedpoint

import "math/big"

// oneX18 is the canonical 1e18 scale. Never mutated; callers get copies.
var oneX18 = big.NewInt(1_000_000_000_000_000_000)

// X18 returns the 1e18 scale as a fresh big integer.
func X18() *big.Int {
	return new(big.Int).Set(oneX18)
}

// Pow10 returns 10^n as an exact integer.
// Negative exponents are a caller error (that is a division, not a scale).
func Pow10(n int) *big.Int {
	if n < 0 {
		panic("fixedpoint: negative power of ten")
	}
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

// MulDiv returns floor((a * b) / denom). The intermediate product is
// arbitrary width, so two 256-bit inputs cannot silently truncate.
// A zero denominator is a programming error and panics (fail fast).
func MulDiv(a, b, denom *big.Int) *big.Int {
	if denom.Sign() == 0 {
		panic("fixedpoint: division by zero denominator")
	}
	prod := new(big.Int).Mul(a, b)
	return prod.Quo(prod, denom)
}

// MulX18 multiplies two 1e18-scaled values, truncating toward zero.
// The result carries the same scale.
func MulX18(a, b *big.Int) *big.Int {
	return MulDiv(a, b, oneX18)
}

// InvX18 returns (1e18 * 1e18) / a for a 1e18-scaled value.
// Inverting zero yields exact zero rather than an error; call sites that
// need a valid rate must guard before inverting.
func InvX18(a *big.Int) *big.Int {
	if a.Sign() == 0 {
		return new(big.Int)
	}
	num := new(big.Int).Mul(oneX18, oneX18)
	return num.Quo(num, a)
}
