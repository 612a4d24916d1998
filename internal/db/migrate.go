package db

import (
	"context"
	"database/sql"

	_ "embed"

	"github.com/rotisserie/eris"
)

//go:embed schema.sql
var schemaSQL string

// Migrate applies the database schema to the given database.  The statements
// in schema.sql are idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return eris.Wrap(err, "apply schema")
	}
	return nil
}
