// Package pg implements the persistence contracts on Postgres, used in
// managed multi-tenant deployments.
package pg

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/nextlevelbuilder/concierge/internal/store"
)

// OpenDB opens and pings a Postgres connection pool.
func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// NewStores creates all stores backed by Postgres.
func NewStores(cfg store.Config) (*store.Stores, error) {
	db, err := OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	return &store.Stores{
		Users:  NewUserStore(db),
		Leads:  NewLeadStore(db),
		Tokens: NewTokenStore(db),
	}, nil
}
