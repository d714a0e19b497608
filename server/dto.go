package server

import (
	"github.com/Ashenafi-pixel/deepdive-fractions/card"
	"github.com/Ashenafi-pixel/deepdive-fractions/game"
	"github.com/Ashenafi-pixel/deepdive-fractions/rational"
)

type cardView struct {
	Index   int               `json:"index"`
	ID      string            `json:"id"`
	Value   rational.Rational `json:"value"`
	Display string            `json:"display"`
	Label   string            `json:"label"`
	Kind    string            `json:"kind"` // "balloon" or "anchor"
}

type moveView struct {
	Card  cardView `json:"card"`
	Index int      `json:"index"`
}

type feedbackView struct {
	Kind      game.FeedbackKind `json:"kind"`
	Remaining rational.Rational `json:"remaining"`
	DeadEnd   bool              `json:"deadEnd"`
	Card      *cardView         `json:"card,omitempty"`
	Drift     game.Drift        `json:"drift,omitempty"`
}

// sessionView is what clients see; the solution stays server side.
type sessionView struct {
	ID        string            `json:"id"`
	Level     int               `json:"level"`
	Target    rational.Rational `json:"target"`
	Start     rational.Rational `json:"start"`
	Current   rational.Rational `json:"current"`
	Remaining rational.Rational `json:"remaining"`
	Display   string            `json:"display"` // "current / target"
	// CommonDenominator lets a client rewrite the board over one denominator.
	CommonDenominator int64        `json:"commonDenominator"`
	Hand              []cardView   `json:"hand"`
	History           []moveView   `json:"history"`
	Status            game.Status  `json:"status"`
	Feedback          feedbackView `json:"feedback"`
}

func toCardView(i int, c card.Card) cardView {
	kind := "balloon"
	if c.Anchor() {
		kind = "anchor"
	}
	return cardView{
		Index:   i,
		ID:      c.ID,
		Value:   c.Value,
		Display: c.Value.String(),
		Label:   c.Label(),
		Kind:    kind,
	}
}

func toSessionView(s game.Session) sessionView {
	hand := make([]cardView, len(s.Hand))
	board := []rational.Rational{s.Target, s.Current}
	for i, c := range s.Hand {
		hand[i] = toCardView(i, c)
		board = append(board, c.Value)
	}
	history := make([]moveView, len(s.History))
	for i, m := range s.History {
		history[i] = moveView{Card: toCardView(m.Index, m.Card), Index: m.Index}
	}
	fb := feedbackView{
		Kind:      s.Feedback.Kind,
		Remaining: s.Feedback.Remaining,
		DeadEnd:   s.Feedback.DeadEnd,
		Drift:     s.Feedback.Drift,
	}
	if s.Feedback.Card != nil {
		cv := toCardView(-1, *s.Feedback.Card)
		fb.Card = &cv
	}
	return sessionView{
		ID:                s.ID,
		Level:             s.Level,
		Target:            s.Target,
		Start:             s.Start,
		Current:           s.Current,
		Remaining:         s.Remaining(),
		Display:           s.Current.String() + " / " + s.Target.String(),
		CommonDenominator: rational.CommonDenominator(board...),
		Hand:              hand,
		History:           history,
		Status:            s.Status,
		Feedback:          fb,
	}
}
