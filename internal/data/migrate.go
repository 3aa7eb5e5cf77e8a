package data

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	"github.com/google/uuid"
)

//go:embed schema.sql
var schema string

// Migrate creates the catalog tables and indexes if they do not exist yet.
// Every statement is idempotent so it is safe to run on each start.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// validID reports whether id is a well-formed UUID. Malformed ids can never
// match a row, so callers treat them as not found.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// validIDs reports whether every id is a well-formed UUID.
func validIDs(ids []string) bool {
	for _, id := range ids {
		if !validID(id) {
			return false
		}
	}
	return true
}

// newID returns a fresh random identifier.
func newID() string {
	return uuid.NewString()
}
