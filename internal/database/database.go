package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Postgres only holds the run log and admin tables, so the pool stays small.
const (
	maxOpenConns    = 10
	maxIdleConns    = 2
	connMaxLifetime = 30 * time.Minute
)

// Connect opens PostgreSQL and verifies it answers within timeout.
func Connect(databaseURL string, timeout time.Duration) (*sqlx.DB, error) {
	if databaseURL == "" {
		return nil, errors.New("database URL is empty")
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	db, err := sqlx.ConnectContext(ctx, "postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)
	return db, nil
}

// Status reports "up", "down" or "disabled" for the health endpoint.
func Status(ctx context.Context, db *sqlx.DB) string {
	if db == nil {
		return "disabled"
	}
	if err := db.PingContext(ctx); err != nil {
		return "down"
	}
	return "up"
}
