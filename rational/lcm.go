package rational

import (
	"math"
	"math/bits"
)

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 {
		return 1
	}
	return a
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

// LCM returns the least common multiple of two denominators, or 0 if either
// is 0. It panics with ErrOverflow when the result does not fit in int64.
func LCM(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	a, b = absChecked(a), absChecked(b)
	return mul(a/gcd(a, b), b)
}

func absChecked(n int64) int64 {
	if n == math.MinInt64 {
		overflow("abs", n, 0)
	}
	return abs(n)
}

// CommonDenominator returns the smallest denominator every value can be
// rewritten over. It is 1 for no values.
func CommonDenominator(values ...Rational) int64 {
	l := int64(1)
	for _, v := range values {
		l = LCM(l, v.Den())
	}
	return l
}

// Scaled returns the numerator of r rewritten over den. ok is false when den
// is not a multiple of r's denominator or the numerator would overflow.
func (r Rational) Scaled(den int64) (num int64, ok bool) {
	if den <= 0 || den%r.Den() != 0 {
		return 0, false
	}
	k := den / r.Den()
	hi, lo := bits.Mul64(uabs(r.num), uint64(k))
	if hi != 0 || lo > math.MaxInt64 {
		return 0, false
	}
	return int64(sign(r.num)) * int64(lo), true
}
