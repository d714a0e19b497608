package difficulty

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// Store persists the difficulty table as tiers.json under dataDir and serves lookups.
// It falls back to DefaultTable when no valid file exists.
type Store struct {
	mu      sync.RWMutex
	table   *Table
	dataDir string
}

func NewStore(dataDir string) *Store {
	if dataDir == "" {
		dataDir = "data"
	}
	s := &Store{
		table:   DefaultTable(),
		dataDir: dataDir,
	}
	s.load()
	return s
}

func (s *Store) path() string {
	return filepath.Join(s.dataDir, "tiers.json")
}

type storedTable struct {
	SchemaVersion int    `json:"schema_version"`
	Tiers         []Tier `json:"tiers"`
}

func (s *Store) load() {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path())
	if err != nil {
		return
	}
	var st storedTable
	if err := json.Unmarshal(data, &st); err != nil {
		return
	}
	tb, err := NewTable(st.Tiers)
	if err != nil {
		return
	}
	s.table = tb
}

// saveLocked writes the table to disk. Caller must hold s.mu.
func (s *Store) saveLocked() error {
	data, err := json.MarshalIndent(storedTable{SchemaVersion: 1, Tiers: s.table.Tiers}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		return err
	}
	return os.WriteFile(s.path(), data, 0644)
}

// Replace validates tiers, swaps them in and persists the table. The old table is kept on error.
func (s *Store) Replace(tiers []Tier) error {
	tb, err := NewTable(tiers)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table = tb
	return s.saveLocked()
}

// Table returns the current table.
func (s *Store) Table() *Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table
}

// Lookup returns the tier for level from the current table.
func (s *Store) Lookup(level int) (Tier, error) {
	return s.Table().Lookup(level)
}
