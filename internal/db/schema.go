package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema. Each item row is read and written as a
// whole document; the membership columns hold JSON arrays of caller ids.
const schema = `
CREATE TABLE IF NOT EXISTS items (
    id           TEXT PRIMARY KEY,
    owner_id     TEXT NOT NULL,
    name         TEXT NOT NULL,
    manufacturer TEXT NOT NULL,
    description  TEXT NOT NULL,
    category     TEXT NOT NULL,
    intensity    INTEGER NOT NULL CHECK (intensity BETWEEN 1 AND 10),
    image_path   TEXT NOT NULL,
    image_hash   TEXT NOT NULL DEFAULT '',
    likes        INTEGER NOT NULL DEFAULT 0 CHECK (likes >= 0),
    dislikes     INTEGER NOT NULL DEFAULT 0 CHECK (dislikes >= 0),
    liked_by     TEXT NOT NULL DEFAULT '[]',
    disliked_by  TEXT NOT NULL DEFAULT '[]',
    created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_items_owner ON items(owner_id);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
