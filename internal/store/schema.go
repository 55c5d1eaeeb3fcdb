package store

import (
	"context"
	"fmt"
)

// Timestamps are kept as the text handed over by the catalog and order
// stores so malformed values reach the engine unchanged.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL DEFAULT '',
		sku         TEXT NOT NULL DEFAULT '',
		price       DOUBLE PRECISION,
		stock       INTEGER,
		images      JSONB NOT NULL DEFAULT '[]'::jsonb,
		status      TEXT NOT NULL DEFAULT 'Draft',
		created_at  TEXT NOT NULL DEFAULT '',
		views       BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id                 TEXT PRIMARY KEY,
		items              JSONB NOT NULL DEFAULT '[]'::jsonb,
		total              DOUBLE PRECISION NOT NULL DEFAULT 0,
		status             TEXT NOT NULL DEFAULT 'Pending',
		created_at         TEXT NOT NULL DEFAULT '',
		fulfillment_hours  DOUBLE PRECISION
	)`,
	`CREATE INDEX IF NOT EXISTS orders_created_at_idx ON orders (created_at)`,
}

// EnsureSchema creates the catalog and order tables when missing.
func EnsureSchema(ctx context.Context, db dbtx) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("store: ensure schema: %w", err)
		}
	}
	return nil
}
