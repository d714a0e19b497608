// Package game runs a fraction puzzle level: dealing, playing cards,
// taking plays back and deciding wins and losses.
//
// Sessions are values. Play, Undo and Reset are pure functions; the Engine
// only adds what needs configuration (the difficulty table, the random
// source and the retry budget) to deal new levels.
package game

import (
	"fmt"

	"github.com/Ashenafi-pixel/deepdive-fractions/card"
	"github.com/Ashenafi-pixel/deepdive-fractions/difficulty"
	"github.com/Ashenafi-pixel/deepdive-fractions/generator"
	"github.com/Ashenafi-pixel/deepdive-fractions/oracle"
)

// TierSource resolves the difficulty tier for a level. *difficulty.Table and *difficulty.Store satisfy it.
type TierSource interface {
	Lookup(level int) (difficulty.Tier, error)
}

// Engine deals levels. It is safe for concurrent use when its RNG is.
type Engine struct {
	tiers       TierSource
	rng         generator.RNG
	newID       func() string
	maxAttempts int
	// failOnDeadEnd forces the auto-fail policy on every tier.
	failOnDeadEnd bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithIDs sets the identity source for cards and sessions.
func WithIDs(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

// WithMaxAttempts sets the generator retry budget.
func WithMaxAttempts(n int) Option {
	return func(e *Engine) { e.maxAttempts = n }
}

// WithFailOnDeadEnd makes every level end as lost as soon as no subset of the hand can reach the target.
func WithFailOnDeadEnd(on bool) Option {
	return func(e *Engine) { e.failOnDeadEnd = on }
}

func NewEngine(tiers TierSource, rng generator.RNG, opts ...Option) *Engine {
	e := &Engine{
		tiers:       tiers,
		rng:         rng,
		newID:       card.NewID,
		maxAttempts: generator.DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// StartLevel deals a new session for level.
func (e *Engine) StartLevel(level int) (Session, error) {
	tier, err := e.tiers.Lookup(level)
	if err != nil {
		return Session{}, fmt.Errorf("lookup tier: %w", err)
	}
	if e.failOnDeadEnd {
		tier.FailOnDeadEnd = true
	}
	lvl, err := generator.Generate(tier, e.rng, e.newID, e.maxAttempts)
	if err != nil {
		return Session{}, fmt.Errorf("generate level: %w", err)
	}
	s := Session{
		ID:       e.newID(),
		Level:    lvl.Level,
		Tier:     tier,
		Target:   lvl.Target,
		Start:    lvl.Start,
		Current:  lvl.Start,
		Hand:     lvl.Hand,
		History:  []Move{},
		Solution: lvl.Solution,
		Status:   StatusPlaying,
	}
	s.Feedback = Feedback{Kind: FeedbackStart, Remaining: s.Remaining()}
	return s, nil
}

// Retry discards s and deals a fresh hand for the same level. The session ID is kept.
func (e *Engine) Retry(s Session) (Session, error) {
	return e.redeal(s, s.Level)
}

// NextLevel discards s and deals level+1. The session ID is kept.
func (e *Engine) NextLevel(s Session) (Session, error) {
	return e.redeal(s, s.Level+1)
}

func (e *Engine) redeal(s Session, level int) (Session, error) {
	if level < 1 {
		level = 1
	}
	next, err := e.StartLevel(level)
	if err != nil {
		return Session{}, err
	}
	if s.ID != "" {
		next.ID = s.ID
	}
	return next, nil
}

// IsSolvable reports whether the hand can still close the remaining distance,
// with one witness subset as indexes into s.Hand.
func (e *Engine) IsSolvable(s Session) (oracle.Result, error) {
	return IsSolvable(s)
}

// IsSolvable is the engine-free form of Engine.IsSolvable.
func IsSolvable(s Session) (oracle.Result, error) {
	return oracle.SolveHand(s.Hand, s.Remaining())
}

// Hint reveals one card from a subset that reaches the target. ok is false
// when the level is over or no such subset remains.
func Hint(s Session) (card.Card, bool, error) {
	if s.Over() {
		return card.Card{}, false, nil
	}
	return oracle.Hint(s.Hand, s.Remaining())
}
