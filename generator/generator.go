// Package generator builds levels backwards from a chosen target so that a
// subset of the dealt cards always reaches it exactly.
package generator

import (
	"errors"
	"fmt"

	"github.com/Ashenafi-pixel/deepdive-fractions/card"
	"github.com/Ashenafi-pixel/deepdive-fractions/difficulty"
	"github.com/Ashenafi-pixel/deepdive-fractions/rational"
)

// DefaultMaxAttempts is the retry budget used when callers pass a non-positive one.
const DefaultMaxAttempts = 200

// ErrGenerationExhausted means every attempt was rejected; the tier is unreachable as configured.
var ErrGenerationExhausted = errors.New("level generation exhausted")

// Level is a freshly dealt puzzle.
type Level struct {
	Level  int
	Target rational.Rational
	Start  rational.Rational
	Hand   card.Hand
	// Solution is the subset of Hand the target was built from.
	Solution card.Hand
}

// Distance is target - start, the amount the solution sums to.
func (l Level) Distance() rational.Rational {
	return l.Target.Sub(l.Start)
}

// Generate deals a level for tier. newID may be nil, in which case card.NewID is used.
// It gives up with ErrGenerationExhausted after maxAttempts rejected draws.
func Generate(tier difficulty.Tier, rng RNG, newID func() string, maxAttempts int) (Level, error) {
	if err := tier.Validate(); err != nil {
		return Level{}, err
	}
	if newID == nil {
		newID = card.NewID
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	for attempt := 0; attempt < maxAttempts; attempt++ {
		target, solution, ok := drawSolution(tier, rng)
		if !ok {
			continue
		}
		distractors := drawDistractors(tier, rng)
		return deal(tier, target, solution, distractors, rng, newID), nil
	}
	return Level{}, fmt.Errorf("%w: level %d after %d attempts", ErrGenerationExhausted, tier.Level, maxAttempts)
}

// drawSolution performs one attempt. ok is false when the attempt must be rejected.
func drawSolution(tier difficulty.Tier, rng RNG) (rational.Rational, []rational.Rational, bool) {
	k := between(rng, tier.MinCards, tier.MaxCards)
	var (
		target   rational.Rational
		solution []rational.Rational
	)
	switch tier.Strategy {
	case difficulty.StrategyAccumulate:
		solution = drawValues(tier, rng, k)
		target = tier.Start.Add(rational.Sum(solution...))
	case difficulty.StrategyClosing:
		gap := rational.FromInt(int64(between(rng, int(tier.TargetMin), int(tier.TargetMax))))
		target = tier.Start.Add(gap)
		solution = drawValues(tier, rng, k-1)
		closing := gap.Sub(rational.Sum(solution...))
		if !acceptableClosing(tier, closing) {
			return rational.Rational{}, nil, false
		}
		solution = append(solution, closing)
	}
	// Targets sit above the start on a positive progress gauge.
	if target.Sign() <= 0 || target.Cmp(tier.Start) <= 0 {
		return rational.Rational{}, nil, false
	}
	return target, solution, true
}

func acceptableClosing(tier difficulty.Tier, v rational.Rational) bool {
	if v.IsZero() {
		return false
	}
	if v.Sign() < 0 && !tier.AllowNegative {
		return false
	}
	if v.Den() > tier.MaxClosingDen {
		return false
	}
	return v.Abs().Cmp(rational.FromInt(tier.MaxClosingMagnitude)) <= 0
}

func drawDistractors(tier difficulty.Tier, rng RNG) []rational.Rational {
	return drawValues(tier, rng, between(rng, tier.MinDistractors, tier.MaxDistractors))
}

func drawValues(tier difficulty.Tier, rng RNG, n int) []rational.Rational {
	out := make([]rational.Rational, n)
	for i := range out {
		out[i] = drawValue(tier, rng)
	}
	return out
}

// drawValue picks a pool denominator and a numerator in [1, MaxNumerator],
// negated half the time when the tier allows anchors.
func drawValue(tier difficulty.Tier, rng RNG) rational.Rational {
	den := tier.Denominators[rng.Intn(len(tier.Denominators))]
	num := int64(rng.Intn(int(tier.MaxNumerator))) + 1
	if tier.AllowNegative && rng.Intn(2) == 1 {
		num = -num
	}
	return rational.MustNew(num, den)
}

func deal(tier difficulty.Tier, target rational.Rational, solution, distractors []rational.Rational, rng RNG, newID func() string) Level {
	hand := make(card.Hand, 0, len(solution)+len(distractors))
	sol := make(card.Hand, 0, len(solution))
	for _, v := range solution {
		c := card.Card{ID: newID(), Value: v}
		sol = append(sol, c)
		hand = append(hand, c)
	}
	for _, v := range distractors {
		hand = append(hand, card.Card{ID: newID(), Value: v})
	}
	shuffle(hand, rng)
	return Level{
		Level:    tier.Level,
		Target:   target,
		Start:    tier.Start,
		Hand:     hand,
		Solution: sol,
	}
}

// shuffle is an in-place Fisher-Yates shuffle.
func shuffle(h card.Hand, rng RNG) {
	for i := len(h) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		h[i], h[j] = h[j], h[i]
	}
}

func between(rng RNG, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.Intn(hi-lo+1)
}
