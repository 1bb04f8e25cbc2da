// Package store provides SQLite-backed durable storage for recipes.
//
// Reads always return fully materialized aggregates: the ingredients,
// instructions, and tags collections are loaded with the recipe row, never
// lazily afterwards.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS recipes (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	name              TEXT NOT NULL,
	cuisine           TEXT NOT NULL DEFAULT '',
	cook_time_minutes INTEGER,
	image_url         TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS recipe_ingredients (
	recipe_id  INTEGER NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
	ingredient TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS recipe_instructions (
	recipe_id   INTEGER NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
	step_order  INTEGER NOT NULL,
	instruction TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS recipe_tags (
	recipe_id INTEGER NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
	tag       TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_ingredients_recipe ON recipe_ingredients(recipe_id);
CREATE INDEX IF NOT EXISTS idx_instructions_recipe ON recipe_instructions(recipe_id);
CREATE INDEX IF NOT EXISTS idx_tags_recipe ON recipe_tags(recipe_id);
`

// DB wraps a sql.DB with recipe storage operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
