package torus

import (
	"math/big"
	"math/bits"
)

// Uint128 is an unsigned 128-bit integer. Squared distances and sums of
// 64-bit coordinates do not fit in a uint64, so every widened computation in
// this module goes through it.
type Uint128 struct {
	Hi uint64
	Lo uint64
}

// From64 widens v.
func From64(v uint64) Uint128 { return Uint128{Lo: v} }

// Mul64 returns the full 128-bit product a*b.
func Mul64(a, b uint64) Uint128 {
	hi, lo := bits.Mul64(a, b)
	return Uint128{Hi: hi, Lo: lo}
}

// Add returns u+v. Overflow past 128 bits wraps.
func (u Uint128) Add(v Uint128) Uint128 {
	lo, carry := bits.Add64(u.Lo, v.Lo, 0)
	hi, _ := bits.Add64(u.Hi, v.Hi, carry)
	return Uint128{Hi: hi, Lo: lo}
}

// Add64 returns u+v.
func (u Uint128) Add64(v uint64) Uint128 {
	return u.Add(Uint128{Lo: v})
}

// Sub64 returns u-v and reports whether the subtraction borrowed past zero.
func (u Uint128) Sub64(v uint64) (Uint128, bool) {
	lo, borrow := bits.Sub64(u.Lo, v, 0)
	hi, borrow := bits.Sub64(u.Hi, 0, borrow)
	return Uint128{Hi: hi, Lo: lo}, borrow != 0
}

// DivMod64 divides u by d and returns quotient and remainder. d must be non-zero.
func (u Uint128) DivMod64(d uint64) (Uint128, uint64) {
	qHi := u.Hi / d
	qLo, rem := bits.Div64(u.Hi%d, u.Lo, d)
	return Uint128{Hi: qHi, Lo: qLo}, rem
}

// Cmp returns -1, 0 or +1 depending on whether u is less than, equal to or
// greater than v.
func (u Uint128) Cmp(v Uint128) int {
	switch {
	case u.Hi < v.Hi:
		return -1
	case u.Hi > v.Hi:
		return 1
	case u.Lo < v.Lo:
		return -1
	case u.Lo > v.Lo:
		return 1
	default:
		return 0
	}
}

// IsZero reports whether u == 0.
func (u Uint128) IsZero() bool { return u.Hi == 0 && u.Lo == 0 }

// Big converts u to a math/big integer.
func (u Uint128) Big() *big.Int {
	b := new(big.Int).SetUint64(u.Hi)
	b.Lsh(b, 64)
	return b.Or(b, new(big.Int).SetUint64(u.Lo))
}

func (u Uint128) String() string {
	if u.Hi == 0 {
		return new(big.Int).SetUint64(u.Lo).String()
	}
	return u.Big().String()
}
