// Package sqlite implements the persistence contracts on SQLite for
// standalone single-box deployments. The schema is created on open, so a
// fresh database file works without a migration step.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/nextlevelbuilder/concierge/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id             TEXT PRIMARY KEY,
	tenant_id      TEXT NOT NULL,
	display_name   TEXT NOT NULL,
	email          TEXT NOT NULL DEFAULT '',
	phone          TEXT NOT NULL UNIQUE,
	enabled        INTEGER NOT NULL DEFAULT 1,
	credential_ref TEXT NOT NULL DEFAULT '',
	created_at     TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS leads (
	id         TEXT PRIMARY KEY,
	tenant_id  TEXT NOT NULL,
	subject    TEXT NOT NULL,
	content    TEXT NOT NULL,
	priority   TEXT NOT NULL,
	owner      TEXT NOT NULL,
	actions    TEXT NOT NULL DEFAULT '[]',
	fields     TEXT NOT NULL DEFAULT '{}',
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS oauth_tokens (
	ref        TEXT PRIMARY KEY,
	token      TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
`

// OpenDB opens the SQLite database at path and ensures the schema exists.
func OpenDB(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// modernc sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY under concurrent handlers.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return db, nil
}

// NewStores creates all stores backed by SQLite.
func NewStores(cfg store.Config) (*store.Stores, error) {
	db, err := OpenDB(cfg.SQLitePath)
	if err != nil {
		return nil, err
	}
	return &store.Stores{
		Users:  NewUserStore(db),
		Leads:  NewLeadStore(db),
		Tokens: NewTokenStore(db),
	}, nil
}
