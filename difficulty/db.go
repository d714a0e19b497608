package difficulty

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

var errNoDB = errors.New("no db")

// LoadFromDB reads the difficulty curve from the difficulty_tiers table.
// Each row holds a level and its tier as JSON; the row's level wins over the JSON one.
func LoadFromDB(ctx context.Context, db *sql.DB) ([]Tier, error) {
	if db == nil {
		return nil, errNoDB
	}
	rows, err := db.QueryContext(ctx, `SELECT level, tier FROM difficulty_tiers WHERE enabled = true ORDER BY level`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tiers []Tier
	for rows.Next() {
		var level int
		var raw []byte
		if err := rows.Scan(&level, &raw); err != nil {
			return nil, err
		}
		var t Tier
		if err := json.Unmarshal(raw, &t); err != nil {
			return nil, fmt.Errorf("tier for level %d: %w", level, err)
		}
		t.Level = level
		tiers = append(tiers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tiers, nil
}

// SaveToDB upserts every tier of the table into difficulty_tiers in one transaction.
func SaveToDB(ctx context.Context, db *sql.DB, tb *Table) error {
	if db == nil {
		return errNoDB
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS difficulty_tiers (
		level   integer PRIMARY KEY,
		tier    jsonb NOT NULL,
		enabled boolean NOT NULL DEFAULT true
	)`); err != nil {
		return err
	}
	for _, t := range tb.Tiers {
		raw, err := json.Marshal(t)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO difficulty_tiers (level, tier, enabled) VALUES ($1, $2, true)
			ON CONFLICT (level) DO UPDATE SET tier = EXCLUDED.tier, enabled = true
		`, t.Level, raw); err != nil {
			return fmt.Errorf("upsert level %d: %w", t.Level, err)
		}
	}
	return tx.Commit()
}

// SyncFromDB replaces the store's table with the one held in Postgres.
// It returns the number of tiers loaded.
func (s *Store) SyncFromDB(ctx context.Context, db *sql.DB) (int, error) {
	tiers, err := LoadFromDB(ctx, db)
	if err != nil {
		return 0, err
	}
	if len(tiers) == 0 {
		return 0, nil
	}
	if err := s.Replace(tiers); err != nil {
		return 0, err
	}
	return len(tiers), nil
}
