// Package card holds the playable fraction tokens and hand helpers.
package card

import (
	"slices"

	"github.com/google/uuid"

	"github.com/Ashenafi-pixel/deepdive-fractions/rational"
)

// Card is a fraction token. ID addresses the card in a hand; it plays no part in value equality.
type Card struct {
	ID    string            `json:"id"`
	Value rational.Rational `json:"value"`
}

// NewID returns a fresh card identity.
func NewID() string {
	return uuid.NewString()
}

// New creates a card with a fresh identity.
func New(v rational.Rational) Card {
	return Card{ID: NewID(), Value: v}
}

// Balloon reports whether the card raises the running total (positive value).
func (c Card) Balloon() bool { return c.Value.Sign() > 0 }

// Anchor reports whether the card lowers the running total (negative value).
func (c Card) Anchor() bool { return c.Value.Sign() < 0 }

// Label is the board label, e.g. "+1/2" or "-1/3".
func (c Card) Label() string { return c.Value.Signed() }

// Hand is the ordered sequence of unplayed cards.
type Hand []Card

// Remove returns a copy of h without the card at i, and that card.
// ok is false when i is out of range; h is never modified.
func (h Hand) Remove(i int) (Hand, Card, bool) {
	if i < 0 || i >= len(h) {
		return h, Card{}, false
	}
	c := h[i]
	out := slices.Clone(h)
	out = slices.Delete(out, i, i+1)
	return out, c, true
}

// Insert returns a copy of h with c placed at i. Indexes past the end append.
func (h Hand) Insert(i int, c Card) Hand {
	if i < 0 {
		i = 0
	}
	if i > len(h) {
		i = len(h)
	}
	out := make(Hand, 0, len(h)+1)
	out = append(out, h[:i]...)
	out = append(out, c)
	return append(out, h[i:]...)
}

// Values returns the card values in hand order.
func (h Hand) Values() []rational.Rational {
	out := make([]rational.Rational, len(h))
	for i, c := range h {
		out[i] = c.Value
	}
	return out
}

// Sum is the total value of the hand.
func (h Hand) Sum() rational.Rational {
	return rational.Sum(h.Values()...)
}

// HasAnchor reports whether any card in the hand is negative.
func (h Hand) HasAnchor() bool {
	return slices.ContainsFunc(h, Card.Anchor)
}

// IndexOf returns the position of the card with the given ID, or -1.
func (h Hand) IndexOf(id string) int {
	return slices.IndexFunc(h, func(c Card) bool { return c.ID == id })
}
