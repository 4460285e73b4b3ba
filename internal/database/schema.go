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

// Statements splits the embedded schema into individual DDL statements.
// The driver runs without multiStatements, so each one is sent alone.
func Statements() []string {
	var out []string
	for _, s := range strings.Split(schemaSQL, ";") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Migrate applies the schema.  Every statement is CREATE ... IF NOT EXISTS,
// so running it against an initialised database is a no-op.
func Migrate(ctx context.Context, db *sql.DB) error {
	return WithConn(ctx, db, func(conn *sql.Conn) error {
		for i, stmt := range Statements() {
			if _, err := conn.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("schema statement %d: %w", i+1, err)
			}
		}
		return nil
	})
}
