package difficulty

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStore_DefaultsWithoutFile(t *testing.T) {
	s := NewStore(t.TempDir())
	if got, want := len(s.Table().Tiers), len(DefaultTable().Tiers); got != want {
		t.Fatalf("got %d tiers, want %d", got, want)
	}
	if _, err := s.Lookup(1); err != nil {
		t.Fatal(err)
	}
}

func TestStore_ReplacePersistence(t *testing.T) {
	dir := t.TempDir()
	s1 := NewStore(dir)
	tier := validTier(1)
	tier.MaxNumerator = 7
	if err := s1.Replace([]Tier{tier}); err != nil {
		t.Fatal(err)
	}

	s2 := NewStore(dir)
	got, err := s2.Lookup(3)
	if err != nil {
		t.Fatal(err)
	}
	if got.MaxNumerator != 7 || len(s2.Table().Tiers) != 1 {
		t.Errorf("reloaded table: %+v", s2.Table())
	}
}

func TestStore_ReplaceInvalidKeepsTable(t *testing.T) {
	s := NewStore(t.TempDir())
	before := s.Table()
	bad := validTier(1)
	bad.Denominators = nil
	if err := s.Replace([]Tier{bad}); err == nil {
		t.Fatal("expected error for invalid tier")
	}
	if s.Table() != before {
		t.Error("invalid replace swapped the table")
	}
}

func TestStore_IgnoresCorruptFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "tiers.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	s := NewStore(dir)
	if len(s.Table().Tiers) != len(DefaultTable().Tiers) {
		t.Error("corrupt file should fall back to defaults")
	}
}

func TestStore_LoadFromFile(t *testing.T) {
	dir := t.TempDir()
	data := `{"schema_version":1,"tiers":[{"level":1,"denominators":[3],"min_cards":1,"max_cards":1,
		"max_numerator":1,"min_distractors":1,"max_distractors":1,"strategy":"accumulate","start":"1/2"}]}`
	if err := os.WriteFile(filepath.Join(dir, "tiers.json"), []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	s := NewStore(dir)
	tier, err := s.Lookup(1)
	if err != nil {
		t.Fatal(err)
	}
	if tier.Denominators[0] != 3 || tier.Start.String() != "1/2" {
		t.Errorf("loaded tier: %+v", tier)
	}
}
