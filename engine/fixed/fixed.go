// Package fixed implements deterministic Q32.32 fixed-point arithmetic.
//
// Every result depends only on the bit patterns of its inputs: no
// platform-dependent rounding, no float intermediates. This is what lets
// the tick engine reproduce identical results across runs and platforms.
package fixed

import (
	"fmt"
	"math/bits"
)

// F is a signed Q32.32 fixed-point scalar: 32 integer bits, 32 fractional
// bits, stored as the raw bit pattern in an int64.
type F int64

const (
	fracBits = 32
	one      = F(1) << fracBits

	// maxIntBits is the largest number of integer bits an operand or result
	// may require. The engine rejects anything needing more than this,
	// leaving one bit of headroom below the signed 32-bit integer part.
	maxIntBits = 31
)

// OverflowError is returned when an arithmetic result would require more
// than maxIntBits integer bits to represent.
type OverflowError struct {
	Op   string
	A, B F
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("fixed: %s overflow: a=%d b=%d", e.Op, e.A, e.B)
}

// Zero is the additive identity.
const Zero F = 0

// One is the fixed-point representation of 1.
const One F = one

// FromInt constructs an F from an integer.
func FromInt(n int64) F { return F(n) << fracBits }

// FromRat constructs an F from the rational num/den, rounding toward zero.
// The bit pattern produced is exact and deterministic for a given
// (num, den) pair, which is what lets TickDelta be "fixed at build time".
func FromRat(num, den int64) F {
	if den == 0 {
		panic("fixed: FromRat: division by zero")
	}
	neg := (num < 0) != (den < 0)
	n, d := abs64(num), abs64(den)
	hi, lo := bits.Mul64(n, uint64(one))
	q, _ := bits.Div64(hi, lo, d)
	v := F(q)
	if neg {
		v = -v
	}
	return v
}

func abs64(v int64) uint64 {
	if v < 0 {
		return uint64(-v)
	}
	return uint64(v)
}

// Int returns the integer part rounded toward negative infinity (floor), so
// FromRat(-1, 2).Int() is -1.
func (a F) Int() int64 { return int64(a) >> fracBits }

// Add returns a+b. Wraps on int64 overflow like any other signed add; the
// engine's grid bounds (±16384) keep gameplay values far from that edge.
func (a F) Add(b F) F { return a + b }

// Sub returns a-b.
func (a F) Sub(b F) F { return a - b }

// Neg returns -a.
func (a F) Neg() F { return -a }

// Abs returns |a|.
func (a F) Abs() F {
	if a < 0 {
		return -a
	}
	return a
}

// overflowThreshold is the smallest magnitude that needs more than
// maxIntBits integer bits: 2^(maxIntBits+fracBits).
const overflowThreshold = uint64(1) << (maxIntBits + fracBits)

// Mul returns a*b computed as (a*b) >> 32 with a 128-bit intermediate, so
// no precision is lost before the final shift. Panics with *OverflowError
// if the mathematical result needs more than maxIntBits integer bits.
func (a F) Mul(b F) F {
	neg := (a < 0) != (b < 0)
	ua, ub := abs64(int64(a)), abs64(int64(b))
	hi, lo := bits.Mul64(ua, ub)
	if hi >= uint64(1)<<(fracBits-1) {
		// hi<<fracBits alone would already reach or exceed the threshold.
		panic(&OverflowError{Op: "mul", A: a, B: b})
	}
	res := (hi << fracBits) | (lo >> fracBits)
	if res >= overflowThreshold {
		panic(&OverflowError{Op: "mul", A: a, B: b})
	}
	v := F(res)
	if neg {
		v = -v
	}
	return v
}

// Div returns a/b computed as (a<<32)/b with a 128-bit dividend, so the
// full fractional precision survives the shift before dividing. Panics
// with *OverflowError if b is zero or the result overflows maxIntBits.
func (a F) Div(b F) F {
	if b == 0 {
		panic(&OverflowError{Op: "div", A: a, B: b})
	}
	neg := (a < 0) != (b < 0)
	ua, ub := abs64(int64(a)), abs64(int64(b))
	hi := ua >> (64 - fracBits)
	lo := ua << fracBits
	if hi >= ub {
		panic(&OverflowError{Op: "div", A: a, B: b})
	}
	q, _ := bits.Div64(hi, lo, ub)
	if q >= overflowThreshold {
		panic(&OverflowError{Op: "div", A: a, B: b})
	}
	v := F(q)
	if neg {
		v = -v
	}
	return v
}

// Clamp restricts a to [lo, hi].
func (a F) Clamp(lo, hi F) F {
	if a < lo {
		return lo
	}
	if a > hi {
		return hi
	}
	return a
}

// Min returns the smaller of a and b.
func Min(a, b F) F {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of a and b.
func Max(a, b F) F {
	if a > b {
		return a
	}
	return b
}

// String renders the value as a decimal approximation, for logs and test
// failure messages only — never used in gameplay-observable paths.
func (a F) String() string {
	sign := ""
	if a < 0 {
		sign = "-"
		a = -a
	}
	whole := a.Int()
	frac := a - FromInt(whole)
	// frac/one scaled to 6 decimal digits.
	scaled := (uint64(frac) * 1_000_000) >> fracBits
	return fmt.Sprintf("%s%d.%06d", sign, whole, scaled)
}

// TickDelta is the exact Q32.32 bit pattern of 1/120 s, the engine's fixed
// tick duration. Computed once here so every engine instance, on every
// platform, shares the identical bit pattern.
var TickDelta = FromRat(1, 120)
