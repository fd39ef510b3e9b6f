package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
//
// inventory_history.product_id intentionally carries no enforced foreign key:
// history is a permanent audit record and must survive deletion of the
// product it refers to.
const schema = `
CREATE TABLE IF NOT EXISTS products (
    id         INTEGER PRIMARY KEY,
    name       TEXT NOT NULL UNIQUE,
    unit       TEXT,
    category   TEXT,
    brand      TEXT,
    stock      INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
    image      TEXT,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS inventory_history (
    id           INTEGER PRIMARY KEY,
    product_id   INTEGER NOT NULL,
    old_quantity INTEGER NOT NULL,
    new_quantity INTEGER NOT NULL,
    action_type  TEXT NOT NULL CHECK (action_type IN ('CREATE', 'UPDATE')),
    change_date  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    user_info    TEXT
);

CREATE INDEX IF NOT EXISTS idx_history_product
    ON inventory_history(product_id, change_date);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
