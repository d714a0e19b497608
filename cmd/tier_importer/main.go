package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	deepdive "github.com/Ashenafi-pixel/deepdive-fractions"
	"github.com/Ashenafi-pixel/deepdive-fractions/difficulty"

	"github.com/joho/godotenv"
)

// tierFile is the import format. Either the object form
//
//	{"tiers": [{"level": 1, "denominators": [2, 4], ...}]}
//
// or a bare array of tiers is accepted.
type tierFile struct {
	Tiers []difficulty.Tier `json:"tiers"`
}

func main() {
	_ = godotenv.Load(".env")
	file := flag.String("file", "", "Path to a tier table JSON file")
	defaults := flag.Bool("defaults", false, "Import the built-in difficulty curve instead of -file")
	dsn := flag.String("dsn", os.Getenv("DATABASE_URL"), "Postgres DSN; empty skips the database")
	dataDir := flag.String("data-dir", "", "Also write <data-dir>/tiers.json")
	flag.Parse()

	if *file == "" && !*defaults {
		fmt.Fprintln(os.Stderr, "missing required -file argument (or pass -defaults)")
		os.Exit(1)
	}
	if *dsn == "" && *dataDir == "" {
		fmt.Fprintln(os.Stderr, "nothing to import into: set -dsn (or DATABASE_URL) and/or -data-dir")
		os.Exit(1)
	}

	if err := run(*file, *defaults, *dsn, *dataDir); err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
}

func run(file string, defaults bool, dsn, dataDir string) error {
	tb := difficulty.DefaultTable()
	if !defaults {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read %s: %w", file, err)
		}
		if tb, err = parseTable(data); err != nil {
			return err
		}
	}

	if dsn != "" {
		db, err := deepdive.GetDB(dsn)
		if err != nil {
			return fmt.Errorf("connect db: %w", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := difficulty.SaveToDB(ctx, db, tb); err != nil {
			return fmt.Errorf("save tiers: %w", err)
		}
		fmt.Printf("Imported %d tiers into difficulty_tiers\n", len(tb.Tiers))
	}

	if dataDir != "" {
		if err := difficulty.NewStore(dataDir).Replace(tb.Tiers); err != nil {
			return fmt.Errorf("write tiers.json: %w", err)
		}
		fmt.Printf("Wrote %d tiers to %s/tiers.json\n", len(tb.Tiers), dataDir)
	}
	return nil
}

// parseTable decodes either import format and validates the result as a table.
func parseTable(data []byte) (*difficulty.Table, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("empty tier file")
	}
	var tiers []difficulty.Tier
	if data[0] == '[' {
		if err := json.Unmarshal(data, &tiers); err != nil {
			return nil, fmt.Errorf("parse tiers: %w", err)
		}
	} else {
		var f tierFile
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse tiers: %w", err)
		}
		tiers = f.Tiers
	}
	tb, err := difficulty.NewTable(tiers)
	if err != nil {
		return nil, fmt.Errorf("invalid tier table: %w", err)
	}
	return tb, nil
}
