package ledger

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Ashenafi-pixel/deepdive-fractions/game"
	"github.com/Ashenafi-pixel/deepdive-fractions/rational"
)

// Result records a finished level for audit.
type Result struct {
	SessionID string            `json:"sessionId"`
	Level     int               `json:"level"`
	Status    game.Status       `json:"status"` // "won" or "lost"
	Target    rational.Rational `json:"target"`
	Final     rational.Rational `json:"final"`
	Moves     []string          `json:"moves"` // signed labels in play order
	SettledAt time.Time         `json:"settledAt"`
}

// FromSession builds the ledger entry for a finished session.
func FromSession(s game.Session, at time.Time) *Result {
	moves := make([]string, len(s.History))
	for i, m := range s.History {
		moves[i] = m.Card.Label()
	}
	return &Result{
		SessionID: s.ID,
		Level:     s.Level,
		Status:    s.Status,
		Target:    s.Target,
		Final:     s.Current,
		Moves:     moves,
		SettledAt: at,
	}
}

// Store appends and reads back finished levels.
type Store interface {
	Append(ctx context.Context, r *Result) error
	BySession(ctx context.Context, sessionID string) ([]*Result, error)
}

// FileStore appends results to data/level_results.json.
type FileStore struct {
	mu      sync.Mutex
	dataDir string
}

func NewFileStore(dataDir string) *FileStore {
	if dataDir == "" {
		dataDir = "data"
	}
	return &FileStore{dataDir: dataDir}
}

func (fs *FileStore) path() string {
	return filepath.Join(fs.dataDir, "level_results.json")
}

func (fs *FileStore) readLocked() ([]*Result, error) {
	data, err := os.ReadFile(fs.path())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var list []*Result
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Append adds a result to the JSON array on disk. An unreadable file is started over.
func (fs *FileStore) Append(_ context.Context, r *Result) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err := os.MkdirAll(fs.dataDir, 0755); err != nil {
		return err
	}
	list, _ := fs.readLocked()
	if list == nil {
		list = []*Result{}
	}
	list = append(list, r)
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(fs.path(), data, 0644)
}

// BySession returns a session's results in settlement order.
func (fs *FileStore) BySession(_ context.Context, sessionID string) ([]*Result, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	list, err := fs.readLocked()
	if err != nil {
		return nil, err
	}
	var out []*Result
	for _, r := range list {
		if r.SessionID == sessionID {
			out = append(out, r)
		}
	}
	return out, nil
}
