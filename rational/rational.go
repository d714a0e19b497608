package rational

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrDivisionByZero is returned when a Rational would get a zero denominator.
var ErrDivisionByZero = errors.New("division by zero")

// Rational is an exact fraction kept in lowest terms with a positive denominator.
// The zero value is 0/1.
type Rational struct {
	num int64
	den int64 // 0 only for the zero value; read through d()
}

// Zero is 0/1.
var Zero = Rational{num: 0, den: 1}

// New returns num/den reduced to lowest terms with the sign on the numerator.
// math.MinInt64 is rejected in either position since its negation does not fit.
func New(num, den int64) (Rational, error) {
	if den == 0 {
		return Rational{}, ErrDivisionByZero
	}
	if num == math.MinInt64 || den == math.MinInt64 {
		return Rational{}, fmt.Errorf("%w: %d/%d", ErrOverflow, num, den)
	}
	return reduce(num, den), nil
}

// MustNew is New for constant tables and tests. It panics on a zero denominator.
func MustNew(num, den int64) Rational {
	r, err := New(num, den)
	if err != nil {
		panic(fmt.Sprintf("rational: %d/%d: %v", num, den, err))
	}
	return r
}

// FromInt returns n/1. It panics with ErrOverflow for math.MinInt64.
func FromInt(n int64) Rational {
	if n == math.MinInt64 {
		overflow("from", n, 1)
	}
	return Rational{num: n, den: 1}
}

func reduce(num, den int64) Rational {
	if den < 0 {
		num, den = -num, -den
	}
	if num == 0 {
		return Rational{num: 0, den: 1}
	}
	g := gcd(abs(num), den)
	return Rational{num: num / g, den: den / g}
}

func (r Rational) d() int64 {
	if r.den == 0 {
		return 1
	}
	return r.den
}

// Num returns the reduced numerator.
func (r Rational) Num() int64 { return r.num }

// Den returns the reduced, always positive denominator.
func (r Rational) Den() int64 { return r.d() }

// Add returns r + o. It panics with ErrOverflow when the exact sum does not fit in int64.
func (r Rational) Add(o Rational) Rational {
	rd, od := r.d(), o.d()
	// Cross-reduce through the gcd of the denominators to keep intermediates small.
	g := gcd(rd, od)
	return reduce(add(mul(r.num, od/g), mul(o.num, rd/g)), mul(rd/g, od))
}

// Sub returns r - o.
func (r Rational) Sub(o Rational) Rational {
	return r.Add(o.Neg())
}

// Mul returns r * o. It panics with ErrOverflow like Add.
func (r Rational) Mul(o Rational) Rational {
	if r.num == 0 || o.num == 0 {
		return Zero
	}
	g1 := gcd(abs(r.num), o.d())
	g2 := gcd(abs(o.num), r.d())
	return reduce(mul(r.num/g1, o.num/g2), mul(r.d()/g2, o.d()/g1))
}

// Div returns r / o, or ErrDivisionByZero when o is zero.
func (r Rational) Div(o Rational) (Rational, error) {
	if o.num == 0 {
		return Rational{}, ErrDivisionByZero
	}
	return r.Mul(Rational{num: o.d(), den: o.num}.normalized()), nil
}

func (r Rational) normalized() Rational {
	return reduce(r.num, r.den)
}

// Neg returns -r.
func (r Rational) Neg() Rational {
	return Rational{num: -r.num, den: r.d()}
}

// Abs returns |r|.
func (r Rational) Abs() Rational {
	if r.num < 0 {
		return r.Neg()
	}
	return Rational{num: r.num, den: r.d()}
}

// Sign returns -1, 0 or +1.
func (r Rational) Sign() int {
	switch {
	case r.num < 0:
		return -1
	case r.num > 0:
		return 1
	}
	return 0
}

// IsZero reports whether r == 0.
func (r Rational) IsZero() bool { return r.num == 0 }

// IsInt reports whether r has denominator 1.
func (r Rational) IsInt() bool { return r.d() == 1 }

// Cmp returns -1, 0 or +1 as r is less than, equal to or greater than o.
// It cross-multiplies in 128 bits and never overflows.
func (r Rational) Cmp(o Rational) int {
	return cmpProducts(r.num, o.d(), o.num, r.d())
}

// Less reports whether r < o.
func (r Rational) Less(o Rational) bool { return r.Cmp(o) < 0 }

// Equal reports structural equality; both sides are always reduced.
func (r Rational) Equal(o Rational) bool {
	return r.num == o.num && r.d() == o.d()
}

// String renders "num/den" with the sign on the numerator, e.g. "-3/4" or "2/1".
func (r Rational) String() string {
	return strconv.FormatInt(r.num, 10) + "/" + strconv.FormatInt(r.d(), 10)
}

// Signed renders the card label used on the board: "+1/2", "-1/3", "0/1".
func (r Rational) Signed() string {
	if r.num > 0 {
		return "+" + r.String()
	}
	return r.String()
}

// Parse accepts "n/d", "-n/d" or a bare integer "n".
func Parse(s string) (Rational, error) {
	s = strings.TrimSpace(s)
	numStr, denStr, hasDen := strings.Cut(s, "/")
	num, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(numStr), "+"), 10, 64)
	if err != nil {
		return Rational{}, fmt.Errorf("parse rational %q: %w", s, err)
	}
	if !hasDen {
		denStr = "1"
	}
	den, err := strconv.ParseInt(strings.TrimSpace(denStr), 10, 64)
	if err != nil {
		return Rational{}, fmt.Errorf("parse rational %q: %w", s, err)
	}
	r, err := New(num, den)
	if err != nil {
		return Rational{}, fmt.Errorf("parse rational %q: %w", s, err)
	}
	return r, nil
}

// Sum adds values left to right; the empty sum is zero.
func Sum(values ...Rational) Rational {
	total := Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

type wire struct {
	Num int64 `json:"num"`
	Den int64 `json:"den"`
}

// MarshalJSON encodes r as {"num": n, "den": d}.
func (r Rational) MarshalJSON() ([]byte, error) {
	return json.Marshal(wire{Num: r.num, Den: r.d()})
}

// UnmarshalJSON accepts {"num": n, "den": d} or a "n/d" string. A missing den means 1.
func (r *Rational) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v, err := Parse(s)
		if err != nil {
			return err
		}
		*r = v
		return nil
	}
	w := wire{Den: 1}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	v, err := New(w.Num, w.Den)
	if err != nil {
		return err
	}
	*r = v
	return nil
}
