package rational

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
)

// ErrOverflow means an exact result does not fit in int64. Arithmetic
// methods panic with an error wrapping it rather than return a wrong value.
var ErrOverflow = errors.New("rational overflow")

func overflow(op string, a, b int64) {
	panic(fmt.Errorf("%w: %d %s %d", ErrOverflow, a, op, b))
}

// uabs is |n| as uint64; exact for math.MinInt64 too.
func uabs(n int64) uint64 {
	if n < 0 {
		return uint64(-(n + 1)) + 1
	}
	return uint64(n)
}

// mul returns a*b, panicking with ErrOverflow when it leaves (MinInt64, MaxInt64].
func mul(a, b int64) int64 {
	hi, lo := bits.Mul64(uabs(a), uabs(b))
	if hi != 0 || lo > math.MaxInt64 {
		overflow("*", a, b)
	}
	if (a < 0) != (b < 0) {
		return -int64(lo)
	}
	return int64(lo)
}

// add returns a+b with the same range check as mul.
func add(a, b int64) int64 {
	c := a + b
	if (a > 0 && b > 0 && c < 0) || (a < 0 && b < 0 && c >= 0) || c == math.MinInt64 {
		overflow("+", a, b)
	}
	return c
}

// cmpProducts compares a*b with c*d for b, d > 0 without overflowing.
func cmpProducts(a, b, c, d int64) int {
	sa, sc := sign(a), sign(c)
	if sa != sc {
		if sa < sc {
			return -1
		}
		return 1
	}
	if sa == 0 {
		return 0
	}
	hi1, lo1 := bits.Mul64(uabs(a), uint64(b))
	hi2, lo2 := bits.Mul64(uabs(c), uint64(d))
	m := 0
	switch {
	case hi1 < hi2 || (hi1 == hi2 && lo1 < lo2):
		m = -1
	case hi1 > hi2 || lo1 > lo2:
		m = 1
	}
	return sa * m
}

func sign(n int64) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}
