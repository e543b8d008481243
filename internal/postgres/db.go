package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/go-khana-orders/internal/apperr"
)

func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	cfg.MaxConns = 8
	cfg.MinConns = 1
	cfg.HealthCheckPeriod = 30 * time.Second
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS carts (
	user_id      TEXT PRIMARY KEY,
	items        JSONB NOT NULL DEFAULT '[]',
	subtotal     BIGINT NOT NULL DEFAULT 0,
	version      BIGINT NOT NULL DEFAULT 0,
	last_updated TIMESTAMPTZ NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS orders (
	id          TEXT PRIMARY KEY,
	external_id TEXT UNIQUE,
	user_id     TEXT NOT NULL,
	doc         JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS orders_user_created_idx ON orders (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS recipes (
	id                  TEXT PRIMARY KEY,
	name                TEXT NOT NULL,
	ingredients         TEXT NOT NULL,
	total_time_in_mins  INT NOT NULL DEFAULT 0,
	cuisine             TEXT NOT NULL,
	instructions        TEXT NOT NULL,
	url                 TEXT NOT NULL DEFAULT '',
	cleaned_ingredients TEXT NOT NULL DEFAULT '',
	image_url           TEXT NOT NULL DEFAULT '',
	ingredient_count    INT NOT NULL DEFAULT 0,
	created_at          TIMESTAMPTZ NOT NULL
);`

// EnsureSchema creates the tables if they are missing. It is safe to run on
// every start.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	_, err := db.Exec(ctx, schema)
	return err
}

const uniqueViolation = "23505"

// classify maps driver errors onto apperr kinds; anything else is returned as is.
func classify(op, notFoundMsg string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(op, notFoundMsg)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return apperr.Conflict(op)
	}
	return err
}
