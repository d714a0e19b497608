package game

import (
	"log"
	"slices"

	"github.com/Ashenafi-pixel/deepdive-fractions/card"
	"github.com/Ashenafi-pixel/deepdive-fractions/difficulty"
	"github.com/Ashenafi-pixel/deepdive-fractions/oracle"
	"github.com/Ashenafi-pixel/deepdive-fractions/rational"
)

// Status is the lifecycle state of a level.
type Status string

const (
	StatusPlaying Status = "playing"
	StatusWon     Status = "won"
	StatusLost    Status = "lost"
)

// FeedbackKind names what the last operation did.
type FeedbackKind string

const (
	FeedbackStart     FeedbackKind = "start"
	FeedbackProgress  FeedbackKind = "progress"
	FeedbackOvershoot FeedbackKind = "overshoot" // above target, an anchor is still in hand
	FeedbackWon       FeedbackKind = "won"
	FeedbackLost      FeedbackKind = "lost"
	FeedbackUndo      FeedbackKind = "undo"
	FeedbackDetach    FeedbackKind = "detach" // an earlier card was cut loose
	FeedbackReset     FeedbackKind = "reset"
)

// Drift is the direction a card moved the running total.
type Drift string

const (
	DriftNone Drift = ""
	DriftRise Drift = "rise"
	DriftSink Drift = "sink"
)

// Feedback describes the outcome of the most recent operation for the presentation layer.
type Feedback struct {
	Kind      FeedbackKind      `json:"kind"`
	Remaining rational.Rational `json:"remaining"`
	// DeadEnd is set when no subset of the hand can close Remaining.
	DeadEnd bool       `json:"dead_end"`
	Card    *card.Card `json:"card,omitempty"`
	Drift   Drift      `json:"drift,omitempty"`
}

// Move is a played card and the hand position it was taken from.
type Move struct {
	Card  card.Card `json:"card"`
	Index int       `json:"index"`
}

// Session is the whole state of one level. Operations never mutate a
// Session; they return a new one that shares no slices with the input.
//
// Current always equals Start plus the values of History.
type Session struct {
	ID       string            `json:"id"`
	Level    int               `json:"level"`
	Tier     difficulty.Tier   `json:"tier"`
	Target   rational.Rational `json:"target"`
	Start    rational.Rational `json:"start"`
	Current  rational.Rational `json:"current"`
	Hand     card.Hand         `json:"hand"`
	History  []Move            `json:"history"`
	Solution card.Hand         `json:"solution"`
	Status   Status            `json:"status"`
	Feedback Feedback          `json:"feedback"`
}

// Remaining is target - current.
func (s Session) Remaining() rational.Rational {
	return s.Target.Sub(s.Current)
}

// Over reports whether the level has ended.
func (s Session) Over() bool {
	return s.Status != StatusPlaying
}

func (s Session) clone() Session {
	out := s
	out.Hand = slices.Clone(s.Hand)
	out.History = slices.Clone(s.History)
	out.Solution = slices.Clone(s.Solution)
	out.Tier.Denominators = slices.Clone(s.Tier.Denominators)
	if s.Feedback.Card != nil {
		c := *s.Feedback.Card
		out.Feedback.Card = &c
	}
	return out
}

// Play moves the card at index from the hand onto the running total and
// evaluates the level. Out-of-range indexes and plays on a finished level
// return s unchanged.
func Play(s Session, index int) Session {
	if s.Status != StatusPlaying {
		return s
	}
	hand, c, ok := s.Hand.Remove(index)
	if !ok {
		return s
	}
	next := s.clone()
	next.Hand = hand
	next.Current = s.Current.Add(c.Value)
	next.History = append(next.History, Move{Card: c, Index: index})
	next.Status, next.Feedback = evaluate(next)
	next.Feedback.Card = &c
	next.Feedback.Drift = driftOf(c, false)
	return next
}

// evaluate decides status and feedback after a play.
func evaluate(s Session) (Status, Feedback) {
	remaining := s.Remaining()
	fb := Feedback{Remaining: remaining}
	cmp := s.Current.Cmp(s.Target)
	switch {
	case cmp == 0:
		fb.Kind = FeedbackWon
		return StatusWon, fb
	case cmp > 0 && !s.Hand.HasAnchor():
		fb.Kind = FeedbackLost
		return StatusLost, fb
	case len(s.Hand) == 0:
		fb.Kind = FeedbackLost
		return StatusLost, fb
	case cmp > 0:
		fb.Kind = FeedbackOvershoot
	default:
		fb.Kind = FeedbackProgress
	}
	fb.DeadEnd = deadEnd(s.Hand, remaining)
	if fb.DeadEnd && s.Tier.FailOnDeadEnd {
		fb.Kind = FeedbackLost
		return StatusLost, fb
	}
	return StatusPlaying, fb
}

func deadEnd(hand card.Hand, remaining rational.Rational) bool {
	res, err := oracle.SolveHand(hand, remaining)
	if err != nil {
		// Hands past difficulty.MaxHandSize are never dealt; the advisory is skipped for them.
		log.Printf("game: dead-end check skipped: %v", err)
		return false
	}
	return !res.Solvable
}

func driftOf(c card.Card, undone bool) Drift {
	rise := c.Balloon()
	if undone {
		// Cutting a balloon sinks; cutting an anchor rises.
		rise = c.Anchor()
	}
	switch {
	case c.Value.IsZero():
		return DriftNone
	case rise:
		return DriftRise
	default:
		return DriftSink
	}
}

// Undo takes back the last play: the card returns to its original hand
// position and the level is playing again, whatever its status was.
// With no history it returns s unchanged.
func Undo(s Session) Session {
	if len(s.History) == 0 {
		return s
	}
	next := s.clone()
	last := next.History[len(next.History)-1]
	next.History = next.History[:len(next.History)-1]
	next.Hand = next.Hand.Insert(last.Index, last.Card)
	next.Current = s.Current.Sub(last.Card.Value)
	next.Status = StatusPlaying
	remaining := next.Remaining()
	c := last.Card
	next.Feedback = Feedback{
		Kind:      FeedbackUndo,
		Remaining: remaining,
		DeadEnd:   deadEnd(next.Hand, remaining),
		Card:      &c,
		Drift:     driftOf(c, true),
	}
	return next
}

// Detach cuts the card of History[i] loose, whichever play it was. Its value
// leaves the total, so cutting an anchor raises the depth, and the card goes
// back to the hand. Later plays keep their order with indexes recomputed, so
// Undo and Reset still rewind to the dealt hand. The level is then judged
// again as after a play. Invalid indexes return s unchanged.
func Detach(s Session, i int) Session {
	if i < 0 || i >= len(s.History) {
		return s
	}
	next := s.clone()
	later := slices.Clone(next.History[i+1:])
	for j := len(next.History) - 1; j >= i; j-- {
		m := next.History[j]
		next.Hand = next.Hand.Insert(m.Index, m.Card)
	}
	cut := next.History[i].Card
	next.History = next.History[:i]
	for _, m := range later {
		k := next.Hand.IndexOf(m.Card.ID)
		next.Hand, _, _ = next.Hand.Remove(k)
		next.History = append(next.History, Move{Card: m.Card, Index: k})
	}
	next.Current = s.Current.Sub(cut.Value)
	next.Status, next.Feedback = evaluate(next)
	if next.Status == StatusPlaying {
		next.Feedback.Kind = FeedbackDetach
	}
	next.Feedback.Card = &cut
	next.Feedback.Drift = driftOf(cut, true)
	return next
}

// Reset undoes every play, returning to the dealt hand.
func Reset(s Session) Session {
	if len(s.History) == 0 && s.Status == StatusPlaying {
		return s
	}
	next := s
	for len(next.History) > 0 {
		next = Undo(next)
	}
	next = next.clone()
	next.Status = StatusPlaying
	next.Feedback = Feedback{Kind: FeedbackReset, Remaining: next.Remaining()}
	return next
}
