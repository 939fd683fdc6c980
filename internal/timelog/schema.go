package timelog

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is stored in SQLite's user_version header field. Bump it
// whenever schema.sql changes incompatibly.
const schemaVersion = 1

// ErrSchemaMismatch reports a database created by an incompatible build.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// migrate brings the database up to schemaVersion. A fresh database file
// reports user_version 0, so initialization and the version check collapse
// into a single read.
func migrate(ctx context.Context, db *sql.DB) error {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	switch version {
	case schemaVersion:
		return nil
	case 0:
		return applySchema(ctx, db)
	default:
		return fmt.Errorf("%w: database reports version %d, this build expects %d (delete the database to recreate it)",
			ErrSchemaMismatch, version, schemaVersion)
	}
}

func applySchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	// PRAGMA takes no bind parameters. The write is transactional, so a
	// failed init leaves the file at version 0 and a retry starts clean.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}
