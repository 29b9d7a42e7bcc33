// Package migrations applies the database schema at startup. Statements are
// idempotent so Apply can run on every boot.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

var statements = []string{
	`CREATE TABLE IF NOT EXISTS offer_claims (
		id         TEXT PRIMARY KEY,
		offer_slug TEXT NOT NULL,
		recipient  TEXT NOT NULL,
		status     TEXT NOT NULL,
		tx_hash    TEXT NOT NULL DEFAULT '',
		error      TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS offer_claims_offer_recipient
		ON offer_claims (offer_slug, recipient)`,
	`CREATE INDEX IF NOT EXISTS offer_claims_recipient
		ON offer_claims (recipient)`,
	`CREATE INDEX IF NOT EXISTS offer_claims_status
		ON offer_claims (status)`,
}

// Apply executes all schema statements in order.
func Apply(ctx context.Context, db *sql.DB) error {
	for i, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}
