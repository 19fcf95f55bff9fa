package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
)

//go:embed schema.sql
var schemaSQL string

// Statements splits the embedded schema into individual statements.
func Statements() []string {
	var out []string
	for _, s := range strings.Split(schemaSQL, ";") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// EnsureSchema creates missing tables.  Every statement is CREATE TABLE IF
// NOT EXISTS, so running it against an existing database is harmless.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for i, stmt := range Statements() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
