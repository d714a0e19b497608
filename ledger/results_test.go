package ledger

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Ashenafi-pixel/deepdive-fractions/card"
	"github.com/Ashenafi-pixel/deepdive-fractions/game"
	"github.com/Ashenafi-pixel/deepdive-fractions/rational"
)

func TestFromSession(t *testing.T) {
	s := game.Session{
		ID:      "s1",
		Level:   2,
		Target:  rational.MustNew(3, 4),
		Current: rational.MustNew(3, 4),
		Status:  game.StatusWon,
		History: []game.Move{
			{Card: card.Card{ID: "a", Value: rational.MustNew(1, 2)}, Index: 0},
			{Card: card.Card{ID: "b", Value: rational.MustNew(1, 4)}, Index: 1},
		},
	}
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	r := FromSession(s, at)
	if r.SessionID != "s1" || r.Level != 2 || r.Status != game.StatusWon || !r.SettledAt.Equal(at) {
		t.Fatalf("result = %+v", r)
	}
	if len(r.Moves) != 2 || r.Moves[0] != "+1/2" || r.Moves[1] != "+1/4" {
		t.Fatalf("moves = %v", r.Moves)
	}
}

func TestFileStore_AppendBySession(t *testing.T) {
	ctx := context.Background()
	fs := NewFileStore(t.TempDir())

	if got, err := fs.BySession(ctx, "s1"); err != nil || len(got) != 0 {
		t.Fatalf("empty store: %v, %v", got, err)
	}
	for i, id := range []string{"s1", "s2", "s1"} {
		r := &Result{SessionID: id, Level: i + 1, Status: game.StatusLost, Target: rational.FromInt(1), Final: rational.MustNew(5, 4)}
		if err := fs.Append(ctx, r); err != nil {
			t.Fatal(err)
		}
	}
	got, err := fs.BySession(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Level != 1 || got[1].Level != 3 {
		t.Fatalf("BySession(s1) = %+v", got)
	}
	if !got[0].Final.Equal(rational.MustNew(5, 4)) {
		t.Errorf("final = %s", got[0].Final)
	}
}

func TestFileStore_Persistence(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	if err := NewFileStore(dir).Append(ctx, &Result{SessionID: "keep", Level: 4, Status: game.StatusWon}); err != nil {
		t.Fatal(err)
	}
	got, err := NewFileStore(dir).BySession(ctx, "keep")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Level != 4 {
		t.Fatalf("reloaded = %+v", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "level_results.json")); err != nil {
		t.Fatal(err)
	}
}

func TestFileStore_CorruptFileStartsOver(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "level_results.json"), []byte("[oops"), 0644); err != nil {
		t.Fatal(err)
	}
	fs := NewFileStore(dir)
	if _, err := fs.BySession(ctx, "x"); err == nil {
		t.Fatal("expected error reading a corrupt ledger")
	}
	if err := fs.Append(ctx, &Result{SessionID: "x"}); err != nil {
		t.Fatal(err)
	}
	got, err := fs.BySession(ctx, "x")
	if err != nil || len(got) != 1 {
		t.Fatalf("after append: %v, %v", got, err)
	}
}
