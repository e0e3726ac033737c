package database

import (
	"database/sql"

	_ "modernc.org/sqlite" // SQLite driver
)

// New creates a new database connection pool.
func New(dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dataSourceName+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate runs the SQL statements to set up the database schema.
func Migrate(db *sql.DB) error {
	const sqlStmt = `
	CREATE TABLE IF NOT EXISTS media_items (
		owner_id TEXT NOT NULL,
		id INTEGER NOT NULL,
		title TEXT NOT NULL,
		poster TEXT,
		release_date TEXT,
		category TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (owner_id, id)
	);

	CREATE TABLE IF NOT EXISTS media_genres (
		owner_id TEXT NOT NULL,
		media_id INTEGER NOT NULL,
		genre TEXT NOT NULL,
		PRIMARY KEY (owner_id, media_id, genre)
	);

	CREATE TABLE IF NOT EXISTS ratings (
		owner_id TEXT NOT NULL,
		media_id INTEGER NOT NULL,
		value INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (owner_id, media_id)
	);

	CREATE INDEX IF NOT EXISTS idx_media_items_category
		ON media_items (owner_id, category);
	`
	_, err := db.Exec(sqlStmt)
	return err
}
