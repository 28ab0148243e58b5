package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

const schema = `
CREATE TABLE IF NOT EXISTS fact_price (
	symbol VARCHAR(32) NOT NULL,
	date   DATE        NOT NULL,
	close  DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (symbol, date)
);

CREATE TABLE IF NOT EXISTS fact_price_range (
	symbol      VARCHAR(32) PRIMARY KEY,
	start_date  DATE        NOT NULL,
	end_date    DATE        NOT NULL,
	next_update TIMESTAMPTZ NOT NULL
);
`

// DB wraps the connection pool
type DB struct {
	Pool *pgxpool.Pool
}

// New connects to Postgres and makes sure the price tables exist
func New(ctx context.Context, pgURL string) (*DB, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, pgURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	log.Info("connected to database")
	return &DB{Pool: pool}, nil
}

// Close releases the pool
func (db *DB) Close() {
	db.Pool.Close()
}
