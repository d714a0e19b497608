package difficulty

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/Ashenafi-pixel/deepdive-fractions/rational"
)

// MaxHandSize bounds solution cards plus distractors so the oracle's subset
// enumeration stays at 2^8 sums.
const MaxHandSize = 8

// Value bounds. Every denominator in play divides lcm(1..MaxDenominator),
// about 5.4e9, so sums of a full hand stay far inside int64.
const (
	MaxDenominator    = 24
	MaxMagnitude      = 100  // max_numerator, target_max, max_closing_magnitude
	MaxStartMagnitude = 1000 // |start|
)

// Target strategies.
const (
	StrategyClosing    = "closing"    // fixed integer target, last solution card closes the gap
	StrategyAccumulate = "accumulate" // target is the sum of the drawn solution cards
)

var (
	ErrInvalidTier  = errors.New("invalid difficulty tier")
	ErrUnknownLevel = errors.New("no difficulty tier for level")
)

// Tier is one row of the difficulty curve (schema_version 1).
type Tier struct {
	Level          int     `json:"level"`
	Denominators   []int64 `json:"denominators"`
	MinCards       int     `json:"min_cards"`
	MaxCards       int     `json:"max_cards"`
	MaxNumerator   int64   `json:"max_numerator"`
	AllowNegative  bool    `json:"allow_negative"`
	MinDistractors int     `json:"min_distractors"`
	MaxDistractors int     `json:"max_distractors"`
	Strategy       string  `json:"strategy"`
	// Closing strategy only: integer target range above the start value.
	TargetMin int64 `json:"target_min,omitempty"`
	TargetMax int64 `json:"target_max,omitempty"`
	// Ugliness bounds for the closing card.
	MaxClosingDen       int64             `json:"max_closing_den,omitempty"`
	MaxClosingMagnitude int64             `json:"max_closing_magnitude,omitempty"`
	Start               rational.Rational `json:"start"`
	FailOnDeadEnd       bool              `json:"fail_on_dead_end,omitempty"`
}

// Validate checks the tier can be generated and keeps hands within MaxHandSize.
func (t Tier) Validate() error {
	bad := func(format string, args ...any) error {
		return fmt.Errorf("%w: level %d: %s", ErrInvalidTier, t.Level, fmt.Sprintf(format, args...))
	}
	if t.Level < 1 {
		return bad("level must be >= 1")
	}
	if len(t.Denominators) == 0 {
		return bad("empty denominator pool")
	}
	for _, d := range t.Denominators {
		if d <= 0 || d > MaxDenominator {
			return bad("denominator %d must be in [1, %d]", d, MaxDenominator)
		}
	}
	if t.MinCards < 1 || t.MaxCards < t.MinCards {
		return bad("card range [%d, %d]", t.MinCards, t.MaxCards)
	}
	if t.MaxNumerator < 1 || t.MaxNumerator > MaxMagnitude {
		return bad("max_numerator %d must be in [1, %d]", t.MaxNumerator, MaxMagnitude)
	}
	if t.Start.Den() > MaxDenominator || t.Start.Abs().Cmp(rational.FromInt(MaxStartMagnitude)) > 0 {
		return bad("start %s out of bounds", t.Start)
	}
	if t.MinDistractors < 1 || t.MaxDistractors > 3 || t.MaxDistractors < t.MinDistractors {
		return bad("distractor range [%d, %d] must sit within [1, 3]", t.MinDistractors, t.MaxDistractors)
	}
	if t.MaxCards+t.MaxDistractors > MaxHandSize {
		return bad("hand of %d cards exceeds %d", t.MaxCards+t.MaxDistractors, MaxHandSize)
	}
	switch t.Strategy {
	case StrategyAccumulate:
	case StrategyClosing:
		if t.TargetMin < 1 || t.TargetMax < t.TargetMin || t.TargetMax > MaxMagnitude {
			return bad("target range [%d, %d]", t.TargetMin, t.TargetMax)
		}
		if t.MaxClosingDen < 1 || t.MaxClosingMagnitude < 1 {
			return bad("closing bounds must be positive")
		}
		if t.MaxClosingDen > MaxDenominator || t.MaxClosingMagnitude > MaxMagnitude {
			return bad("closing bounds (%d, %d) exceed (%d, %d)", t.MaxClosingDen, t.MaxClosingMagnitude, MaxDenominator, MaxMagnitude)
		}
	default:
		return bad("unknown strategy %q", t.Strategy)
	}
	return nil
}

// Table is the difficulty curve ordered by level.
type Table struct {
	Tiers []Tier `json:"tiers"`
}

// NewTable validates and sorts tiers. Levels must be unique and the first tier must be level 1.
func NewTable(tiers []Tier) (*Table, error) {
	if len(tiers) == 0 {
		return nil, fmt.Errorf("%w: empty table", ErrInvalidTier)
	}
	sorted := slices.Clone(tiers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Level < sorted[j].Level })
	for i, t := range sorted {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if i > 0 && sorted[i-1].Level == t.Level {
			return nil, fmt.Errorf("%w: duplicate level %d", ErrInvalidTier, t.Level)
		}
	}
	if sorted[0].Level != 1 {
		return nil, fmt.Errorf("%w: first tier is level %d, want 1", ErrInvalidTier, sorted[0].Level)
	}
	return &Table{Tiers: sorted}, nil
}

// Lookup returns the tier governing level: the highest tier whose Level <= level.
// The returned tier carries the requested level.
func (tb *Table) Lookup(level int) (Tier, error) {
	if tb == nil || level < 1 {
		return Tier{}, fmt.Errorf("%w: %d", ErrUnknownLevel, level)
	}
	idx := sort.Search(len(tb.Tiers), func(i int) bool { return tb.Tiers[i].Level > level }) - 1
	if idx < 0 {
		return Tier{}, fmt.Errorf("%w: %d", ErrUnknownLevel, level)
	}
	t := tb.Tiers[idx]
	t.Denominators = slices.Clone(t.Denominators)
	t.Level = level
	return t, nil
}

// DefaultTable widens the denominator pool and card count with level and
// introduces anchors (negative cards) from level 4.
func DefaultTable() *Table {
	tb, err := NewTable([]Tier{
		{
			Level: 1, Denominators: []int64{2, 4}, MinCards: 2, MaxCards: 2, MaxNumerator: 1,
			MinDistractors: 1, MaxDistractors: 1, Strategy: StrategyAccumulate,
		},
		{
			Level: 2, Denominators: []int64{2, 3, 4}, MinCards: 2, MaxCards: 3, MaxNumerator: 2,
			MinDistractors: 1, MaxDistractors: 2, Strategy: StrategyAccumulate,
		},
		{
			Level: 3, Denominators: []int64{2, 3, 4, 6}, MinCards: 3, MaxCards: 3, MaxNumerator: 3,
			MinDistractors: 1, MaxDistractors: 2, Strategy: StrategyClosing,
			TargetMin: 1, TargetMax: 2, MaxClosingDen: 12, MaxClosingMagnitude: 2,
		},
		{
			Level: 4, Denominators: []int64{2, 3, 4, 6, 8}, MinCards: 3, MaxCards: 4, MaxNumerator: 3,
			AllowNegative: true, MinDistractors: 1, MaxDistractors: 3, Strategy: StrategyClosing,
			TargetMin: 1, TargetMax: 2, MaxClosingDen: 12, MaxClosingMagnitude: 2,
		},
		{
			Level: 6, Denominators: []int64{2, 3, 4, 6, 8, 12}, MinCards: 4, MaxCards: 5, MaxNumerator: 5,
			AllowNegative: true, MinDistractors: 2, MaxDistractors: 3, Strategy: StrategyClosing,
			TargetMin: 1, TargetMax: 3, MaxClosingDen: 24, MaxClosingMagnitude: 3,
		},
	})
	if err != nil {
		panic(err)
	}
	return tb
}
