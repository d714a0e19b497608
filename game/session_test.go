package game

import (
	"bytes"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/Ashenafi-pixel/deepdive-fractions/card"
	"github.com/Ashenafi-pixel/deepdive-fractions/difficulty"
	"github.com/Ashenafi-pixel/deepdive-fractions/rational"
)

func r(num, den int64) rational.Rational { return rational.MustNew(num, den) }

func newSession(target rational.Rational, tier difficulty.Tier, values ...rational.Rational) Session {
	hand := make(card.Hand, len(values))
	for i, v := range values {
		hand[i] = card.Card{ID: string(rune('a' + i)), Value: v}
	}
	s := Session{
		ID:      "s1",
		Level:   1,
		Tier:    tier,
		Target:  target,
		Start:   tier.Start,
		Current: tier.Start,
		Hand:    hand,
		History: []Move{},
		Status:  StatusPlaying,
	}
	s.Feedback = Feedback{Kind: FeedbackStart, Remaining: s.Remaining()}
	return s
}

func TestPlay_ReachTargetWins(t *testing.T) {
	s := newSession(r(3, 4), difficulty.Tier{}, r(1, 2), r(1, 4), r(1, 3))

	s = Play(s, 0)
	if s.Status != StatusPlaying || !s.Current.Equal(r(1, 2)) {
		t.Fatalf("after 1/2: status %s current %s", s.Status, s.Current)
	}
	if s.Feedback.Kind != FeedbackProgress || !s.Feedback.Remaining.Equal(r(1, 4)) || s.Feedback.DeadEnd {
		t.Fatalf("after 1/2: feedback %+v", s.Feedback)
	}
	if s.Feedback.Drift != DriftRise {
		t.Errorf("balloon drift = %q", s.Feedback.Drift)
	}

	s = Play(s, 0)
	if s.Status != StatusWon || !s.Current.Equal(r(3, 4)) {
		t.Fatalf("after 1/4: status %s current %s", s.Status, s.Current)
	}
	if s.Feedback.Kind != FeedbackWon {
		t.Errorf("feedback kind = %s", s.Feedback.Kind)
	}
	if len(s.Hand) != 1 || !s.Hand[0].Value.Equal(r(1, 3)) {
		t.Errorf("distractor should remain in hand: %+v", s.Hand)
	}
}

func TestPlay_OvershootWithoutAnchorLoses(t *testing.T) {
	s := newSession(r(3, 4), difficulty.Tier{}, r(1, 2), r(1, 4), r(1, 3))
	s = Play(s, 0) // 1/2
	s = Play(s, 1) // 1/3 -> 5/6
	if s.Status != StatusLost {
		t.Fatalf("status = %s, want lost", s.Status)
	}
	if !s.Current.Equal(r(5, 6)) || !s.Feedback.Remaining.Equal(r(-1, 12)) {
		t.Fatalf("current %s remaining %s", s.Current, s.Feedback.Remaining)
	}
}

func TestPlay_DistractorLeadsToLoss(t *testing.T) {
	s := newSession(r(3, 4), difficulty.Tier{}, r(1, 2), r(1, 4), r(1, 3))

	s = Play(s, 2) // distractor 1/3
	if s.Status != StatusPlaying || !s.Current.Equal(r(1, 3)) || !s.Feedback.DeadEnd {
		t.Fatalf("after 1/3: status %s current %s dead end %v", s.Status, s.Current, s.Feedback.DeadEnd)
	}

	s = Play(s, 0) // 1/2 -> 5/6, past 3/4 with no anchor left
	if s.Status != StatusLost || s.Feedback.Kind != FeedbackLost {
		t.Fatalf("after 1/2: status %s feedback %s", s.Status, s.Feedback.Kind)
	}
	if !s.Current.Equal(r(5, 6)) || len(s.Hand) != 1 || !s.Hand[0].Value.Equal(r(1, 4)) {
		t.Fatalf("current %s hand %+v", s.Current, s.Hand)
	}
}

func TestPlay_CorrigibleOvershoot(t *testing.T) {
	s := newSession(rational.Zero, difficulty.Tier{AllowNegative: true}, r(1, 2), r(-1, 2))
	s = Play(s, 0)
	if s.Status != StatusPlaying || s.Feedback.Kind != FeedbackOvershoot {
		t.Fatalf("after 1/2: status %s feedback %s", s.Status, s.Feedback.Kind)
	}
	s = Play(s, 0)
	if s.Status != StatusWon || !s.Current.IsZero() {
		t.Fatalf("after -1/2: status %s current %s", s.Status, s.Current)
	}
	if s.Feedback.Drift != DriftSink {
		t.Errorf("anchor drift = %q", s.Feedback.Drift)
	}
}

func TestPlay_DrainingHandLoses(t *testing.T) {
	s := newSession(r(1, 2), difficulty.Tier{}, r(1, 4))
	s = Play(s, 0)
	if s.Status != StatusLost || len(s.Hand) != 0 {
		t.Fatalf("status %s hand %d", s.Status, len(s.Hand))
	}
}

func TestPlay_InvalidIndexIsNoop(t *testing.T) {
	s := newSession(r(3, 4), difficulty.Tier{}, r(1, 2), r(1, 4))
	for _, i := range []int{-1, 2, 99} {
		got := Play(s, i)
		if !sameSession(got, s) {
			t.Errorf("Play(%d) changed the session", i)
		}
	}
}

func TestPlay_TerminalStateIgnoresInput(t *testing.T) {
	s := newSession(r(1, 2), difficulty.Tier{}, r(1, 2), r(1, 4))
	won := Play(s, 0)
	if won.Status != StatusWon {
		t.Fatalf("status = %s", won.Status)
	}
	for _, i := range []int{-1, 0, 5} {
		if got := Play(won, i); !sameSession(got, won) {
			t.Errorf("Play(%d) on a won level changed it", i)
		}
	}
}

func TestPlay_DoesNotMutateInput(t *testing.T) {
	s := newSession(r(3, 4), difficulty.Tier{}, r(1, 2), r(1, 4), r(1, 3))
	before := s.clone()
	_ = Play(s, 1)
	if !sameSession(s, before) {
		t.Fatal("Play mutated its input session")
	}
}

func TestPlay_DeadEndAdvisory(t *testing.T) {
	s := newSession(r(3, 4), difficulty.Tier{}, r(1, 3), r(1, 2), r(1, 4))
	s = Play(s, 0) // 1/3 leaves 5/12, unreachable with 1/2 and 1/4
	if s.Status != StatusPlaying || !s.Feedback.DeadEnd {
		t.Fatalf("status %s dead end %v", s.Status, s.Feedback.DeadEnd)
	}
}

func TestPlay_DeadEndAutoFail(t *testing.T) {
	s := newSession(r(3, 4), difficulty.Tier{FailOnDeadEnd: true}, r(1, 3), r(1, 2), r(1, 4))
	s = Play(s, 0)
	if s.Status != StatusLost || !s.Feedback.DeadEnd || s.Feedback.Kind != FeedbackLost {
		t.Fatalf("status %s feedback %+v", s.Status, s.Feedback)
	}
	s = Undo(s)
	if s.Status != StatusPlaying || len(s.Hand) != 3 {
		t.Fatalf("undo after auto-fail: status %s hand %d", s.Status, len(s.Hand))
	}
}

func TestUndo_InverseOfPlay(t *testing.T) {
	s := newSession(r(3, 4), difficulty.Tier{}, r(1, 2), r(1, 4), r(1, 3))
	s = Play(s, 2)
	for i := range s.Hand {
		back := Undo(Play(s, i))
		if !back.Current.Equal(s.Current) || back.Status != StatusPlaying {
			t.Fatalf("index %d: current %s status %s", i, back.Current, back.Status)
		}
		if !sameHand(back.Hand, s.Hand) || !sameHistory(back.History, s.History) {
			t.Fatalf("index %d: hand/history not restored", i)
		}
	}
}

func TestUndo_FromWonAndLost(t *testing.T) {
	s := newSession(r(3, 4), difficulty.Tier{}, r(1, 2), r(1, 4), r(1, 3))
	won := Play(Play(s, 0), 0)
	back := Undo(won)
	if back.Status != StatusPlaying || !back.Current.Equal(r(1, 2)) {
		t.Fatalf("undo from won: %s %s", back.Status, back.Current)
	}
	if back.Feedback.Kind != FeedbackUndo || back.Feedback.Drift != DriftSink {
		t.Errorf("undo feedback = %+v", back.Feedback)
	}

	lost := Play(Play(s, 0), 1)
	if lost.Status != StatusLost {
		t.Fatalf("setup: status %s", lost.Status)
	}
	if back := Undo(lost); back.Status != StatusPlaying {
		t.Fatalf("undo from lost: %s", back.Status)
	}
}

func TestUndo_EmptyHistoryIsNoop(t *testing.T) {
	s := newSession(r(3, 4), difficulty.Tier{}, r(1, 2))
	if got := Undo(s); !sameSession(got, s) {
		t.Fatal("Undo with empty history changed the session")
	}
}

func TestReset(t *testing.T) {
	s := newSession(r(3, 4), difficulty.Tier{}, r(1, 2), r(1, 4), r(1, 3))
	played := Play(Play(s, 2), 0)
	back := Reset(played)
	if !sameHand(back.Hand, s.Hand) || len(back.History) != 0 || !back.Current.Equal(s.Start) {
		t.Fatalf("reset did not restore the deal: %+v", back)
	}
	if back.Status != StatusPlaying || back.Feedback.Kind != FeedbackReset {
		t.Fatalf("reset status %s feedback %s", back.Status, back.Feedback.Kind)
	}
	if got := Reset(s); !sameSession(got, s) {
		t.Error("Reset on a fresh deal should be a no-op")
	}
}

func TestCurrentMatchesHistoryInvariant(t *testing.T) {
	s := newSession(r(1, 1), difficulty.Tier{AllowNegative: true, Start: r(1, 4)},
		r(1, 2), r(-1, 4), r(1, 3), r(1, 6), r(-1, 2))
	s.Target = r(5, 4)
	s.Feedback.Remaining = s.Remaining()
	for _, idx := range []int{0, 2, 0, 1} {
		s = Play(s, idx)
		sum := s.Start
		for _, m := range s.History {
			sum = sum.Add(m.Card.Value)
		}
		if !sum.Equal(s.Current) {
			t.Fatalf("current %s != start + history %s", s.Current, sum)
		}
	}
}

// detachFixture plays 1/2, -1/4 and 1/3 from [1/2, -1/4, 1/3, 1/4] towards 1.
func detachFixture(t *testing.T) (dealt, played Session) {
	t.Helper()
	dealt = newSession(r(1, 1), difficulty.Tier{AllowNegative: true}, r(1, 2), r(-1, 4), r(1, 3), r(1, 4))
	played = Play(Play(Play(dealt, 0), 0), 0)
	if played.Status != StatusPlaying || !played.Current.Equal(r(7, 12)) {
		t.Fatalf("setup: status %s current %s", played.Status, played.Current)
	}
	return dealt, played
}

func checkHistorySum(t *testing.T, s Session) {
	t.Helper()
	sum := s.Start
	for _, m := range s.History {
		sum = sum.Add(m.Card.Value)
	}
	if !sum.Equal(s.Current) {
		t.Fatalf("current %s != start + history %s", s.Current, sum)
	}
}

func TestDetach_AnchorRises(t *testing.T) {
	dealt, played := detachFixture(t)
	s := Detach(played, 1)
	if !s.Current.Equal(r(5, 6)) || s.Status != StatusPlaying {
		t.Fatalf("current %s status %s", s.Current, s.Status)
	}
	if s.Feedback.Kind != FeedbackDetach || s.Feedback.Drift != DriftRise {
		t.Fatalf("feedback %+v", s.Feedback)
	}
	if s.Feedback.Card == nil || s.Feedback.Card.ID != "b" {
		t.Fatalf("feedback card %+v", s.Feedback.Card)
	}
	if len(s.History) != 2 || s.History[0].Card.ID != "a" || s.History[1].Card.ID != "c" {
		t.Fatalf("history %+v", s.History)
	}
	if len(s.Hand) != 2 || s.Hand[0].ID != "b" || s.Hand[1].ID != "d" {
		t.Fatalf("hand %+v", s.Hand)
	}
	checkHistorySum(t, s)

	if back := Reset(s); !sameHand(back.Hand, dealt.Hand) || !back.Current.Equal(dealt.Start) {
		t.Fatalf("reset after detach: hand %+v current %s", back.Hand, back.Current)
	}
	for i := range s.Hand {
		if back := Undo(Play(s, i)); !sameHand(back.Hand, s.Hand) || !sameHistory(back.History, s.History) {
			t.Fatalf("index %d: undo after detach did not restore", i)
		}
	}
}

func TestDetach_BalloonSinks(t *testing.T) {
	_, played := detachFixture(t)
	s := Detach(played, 0)
	if !s.Current.Equal(r(1, 12)) || s.Status != StatusPlaying {
		t.Fatalf("current %s status %s", s.Current, s.Status)
	}
	if s.Feedback.Kind != FeedbackDetach || s.Feedback.Drift != DriftSink {
		t.Fatalf("feedback %+v", s.Feedback)
	}
	if s.Hand.IndexOf("a") < 0 || len(s.History) != 2 {
		t.Fatalf("hand %+v history %+v", s.Hand, s.History)
	}
	checkHistorySum(t, s)
}

func TestDetach_ReopensAndJudgesAgain(t *testing.T) {
	s := newSession(r(1, 2), difficulty.Tier{}, r(1, 4), r(1, 2), r(1, 3))
	lost := Play(Play(s, 0), 0) // 1/4 + 1/2 = 3/4
	if lost.Status != StatusLost {
		t.Fatalf("setup: status %s", lost.Status)
	}
	won := Detach(lost, 0) // cut the 1/4
	if won.Status != StatusWon || won.Feedback.Kind != FeedbackWon || !won.Current.Equal(r(1, 2)) {
		t.Fatalf("status %s feedback %s current %s", won.Status, won.Feedback.Kind, won.Current)
	}
	if won.Feedback.Drift != DriftSink {
		t.Errorf("drift %q", won.Feedback.Drift)
	}
}

func TestDetach_InvalidIndexIsNoop(t *testing.T) {
	_, played := detachFixture(t)
	for _, i := range []int{-1, 3, 10} {
		if got := Detach(played, i); !sameSession(got, played) {
			t.Errorf("Detach(%d) changed the session", i)
		}
	}
	before := played.clone()
	_ = Detach(played, 0)
	if !sameSession(played, before) {
		t.Fatal("Detach mutated its input session")
	}
}

func TestDeadEnd_OversizedHandIsLogged(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	values := make([]rational.Rational, difficulty.MaxHandSize+2)
	for i := range values {
		values[i] = r(1, 8)
	}
	s := Play(newSession(r(5, 1), difficulty.Tier{}, values...), 0)
	if s.Status != StatusPlaying || s.Feedback.DeadEnd {
		t.Fatalf("status %s dead end %v", s.Status, s.Feedback.DeadEnd)
	}
	if !strings.Contains(buf.String(), "dead-end check skipped") {
		t.Fatalf("log = %q", buf.String())
	}
}

func sameHand(a, b card.Hand) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sameHistory(a, b []Move) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sameSession(a, b Session) bool {
	return a.ID == b.ID && a.Level == b.Level && a.Status == b.Status &&
		a.Target.Equal(b.Target) && a.Current.Equal(b.Current) &&
		sameHand(a.Hand, b.Hand) && sameHistory(a.History, b.History) &&
		a.Feedback.Kind == b.Feedback.Kind
}
