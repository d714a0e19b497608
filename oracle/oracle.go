// Package oracle decides whether the cards left in a hand can still close the
// distance to the target.
//
// Hands are capped at difficulty.MaxHandSize cards, so Solve enumerates every
// subset (at most 256) and compares exact sums. It does not scale past that
// and is not meant to.
package oracle

import (
	"errors"
	"fmt"

	"github.com/Ashenafi-pixel/deepdive-fractions/card"
	"github.com/Ashenafi-pixel/deepdive-fractions/difficulty"
	"github.com/Ashenafi-pixel/deepdive-fractions/rational"
)

var ErrHandTooLarge = errors.New("hand too large for subset search")

// Result reports solvability and, when solvable, one witness subset as
// ascending indexes into the searched values.
type Result struct {
	Solvable bool  `json:"solvable"`
	Subset   []int `json:"subset,omitempty"`
}

// Solve looks for a subset of values summing exactly to distance. Subsets are
// tried in mask order and the first match wins. A zero distance is met by the
// empty subset.
func Solve(values []rational.Rational, distance rational.Rational) (Result, error) {
	n := len(values)
	if n > difficulty.MaxHandSize {
		return Result{}, fmt.Errorf("%w: %d cards, limit %d", ErrHandTooLarge, n, difficulty.MaxHandSize)
	}
	if distance.IsZero() {
		return Result{Solvable: true}, nil
	}
	for mask := 1; mask < 1<<n; mask++ {
		sum := rational.Zero
		for i := 0; i < n; i++ {
			if mask&(1<<i) != 0 {
				sum = sum.Add(values[i])
			}
		}
		if sum.Equal(distance) {
			return Result{Solvable: true, Subset: members(mask, n)}, nil
		}
	}
	return Result{}, nil
}

func members(mask, n int) []int {
	var out []int
	for i := 0; i < n; i++ {
		if mask&(1<<i) != 0 {
			out = append(out, i)
		}
	}
	return out
}

// SolveHand runs Solve over the card values of hand.
func SolveHand(hand card.Hand, distance rational.Rational) (Result, error) {
	return Solve(hand.Values(), distance)
}

// Hint returns the first card of a witness subset. ok is false when the hand
// cannot close the distance or nothing is left to play.
func Hint(hand card.Hand, distance rational.Rational) (card.Card, bool, error) {
	res, err := SolveHand(hand, distance)
	if err != nil {
		return card.Card{}, false, err
	}
	if !res.Solvable || len(res.Subset) == 0 {
		return card.Card{}, false, nil
	}
	return hand[res.Subset[0]], true, nil
}
