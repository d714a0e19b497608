package deepdive

import (
	"database/sql"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
)

var (
	dbOnce sync.Once
	dbConn *sql.DB
	dbErr  error
)

// GetDB opens the shared Postgres pool for dsn on first use. An empty dsn
// means no database: it returns nil, nil and callers fall back to the JSON
// files under the data dir. Later calls return the first result whatever dsn they pass.
func GetDB(dsn string) (*sql.DB, error) {
	dbOnce.Do(func() {
		if dsn == "" {
			return
		}
		dbConn, dbErr = OpenDB(dsn)
	})
	if dbErr != nil {
		return nil, dbErr
	}
	return dbConn, nil
}

// OpenDB opens and pings a new pool for dsn.
func OpenDB(dsn string) (*sql.DB, error) {
	config, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	// Avoid "prepared statement already exists" behind PgBouncer: use the simple protocol.
	config.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	db := stdlib.OpenDB(*config)
	db.SetConnMaxIdleTime(4 * time.Minute)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
