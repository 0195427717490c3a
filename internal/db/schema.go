package db

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5"
)

//go:embed schema.sql
var schemaSQL string

// EnsureSchema applies the embedded schema in a single transaction. All
// statements are idempotent (CREATE TABLE IF NOT EXISTS), so this is safe
// to run on every startup.
func (db *PostgresDB) EnsureSchema(ctx context.Context) error {
	err := db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		_, execErr := tx.Exec(ctx, schemaSQL)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
