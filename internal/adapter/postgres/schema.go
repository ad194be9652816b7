package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS items (
	id         BIGSERIAL PRIMARY KEY,
	dataset    TEXT NOT NULL,
	path       TEXT NOT NULL,
	title      TEXT NOT NULL DEFAULT '',
	artist     TEXT NOT NULL DEFAULT '',
	style      TEXT NOT NULL DEFAULT '',
	rating     INTEGER NOT NULL DEFAULT 0,
	summary    TEXT NOT NULL DEFAULT '',
	features   JSONB NOT NULL DEFAULT '{}'::jsonb,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (dataset, path)
);
CREATE INDEX IF NOT EXISTS items_features_idx ON items USING GIN (features);

CREATE TABLE IF NOT EXISTS subset_exports (
	id          BIGSERIAL PRIMARY KEY,
	dataset     TEXT NOT NULL,
	subset_path TEXT NOT NULL,
	lora_name   TEXT NOT NULL,
	image_count INTEGER NOT NULL,
	filtered    INTEGER NOT NULL,
	low_rating  INTEGER NOT NULL,
	options     JSONB NOT NULL,
	exported_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS subset_exports_lora_idx ON subset_exports (lora_name, exported_at DESC);
`

// Connect opens a pool and makes sure the catalog tables exist.
func Connect(ctx context.Context, connStr string) (*pgxpool.Pool, error) {
	db, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate creates the catalog tables when missing.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate catalog schema: %w", err)
	}
	return nil
}
