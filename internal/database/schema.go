package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaStatements run in order; each is idempotent.
var schemaStatements = []struct {
	name  string
	query string
}{
	{"users table", `
	CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		email VARCHAR(255) NOT NULL,
		hashed_password VARCHAR(255) NOT NULL,
		token VARCHAR(64) UNIQUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`},
	{"users email index", `CREATE UNIQUE INDEX IF NOT EXISTS users_email_lower_idx ON users(lower(email))`},
	// owner_id is a plain reference: deleting a user leaves its products alone.
	{"products table", `
	CREATE TABLE IF NOT EXISTS products (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL CHECK (title <> ''),
		text TEXT NOT NULL CHECK (text <> ''),
		owner_id BIGINT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`},
	{"products owner index", `CREATE INDEX IF NOT EXISTS products_owner_idx ON products(owner_id)`},
}

// CreateTables creates all required tables and indexes.
func CreateTables(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt.query); err != nil {
			return fmt.Errorf("create %s: %w", stmt.name, err)
		}
	}
	return nil
}
