package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/Ashenafi-pixel/deepdive-fractions/game"
	"github.com/Ashenafi-pixel/deepdive-fractions/rational"
)

// SQLStore keeps results in the level_results table (Postgres via pgx stdlib).
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Migrate creates the level_results table if it is missing.
func (s *SQLStore) Migrate(ctx context.Context) error {
	if s.db == nil {
		return errors.New("no db")
	}
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS level_results (
		id          bigserial PRIMARY KEY,
		session_id  text NOT NULL,
		level       integer NOT NULL,
		status      text NOT NULL,
		target      text NOT NULL,
		final       text NOT NULL,
		moves       jsonb NOT NULL,
		settled_at  timestamptz NOT NULL
	)`)
	return err
}

func (s *SQLStore) Append(ctx context.Context, r *Result) error {
	moves, err := json.Marshal(r.Moves)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO level_results (session_id, level, status, target, final, moves, settled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, r.SessionID, r.Level, string(r.Status), r.Target.String(), r.Final.String(), moves, r.SettledAt)
	return err
}

func (s *SQLStore) BySession(ctx context.Context, sessionID string) ([]*Result, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, level, status, target, final, moves, settled_at
		FROM level_results WHERE session_id = $1 ORDER BY id
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Result
	for rows.Next() {
		var (
			r             Result
			status        string
			target, final string
			moves         []byte
		)
		if err := rows.Scan(&r.SessionID, &r.Level, &status, &target, &final, &moves, &r.SettledAt); err != nil {
			return nil, err
		}
		r.Status = game.Status(status)
		if r.Target, err = rational.Parse(target); err != nil {
			return nil, err
		}
		if r.Final, err = rational.Parse(final); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(moves, &r.Moves); err != nil {
			return nil, err
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}
