// Package cache is the SQLite store behind every pipeline stage: fetched
// comments, their labels, and the rows of each dataset build.
package cache

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database.
type DB struct {
	db *sql.DB
}

// Open creates or opens the SQLite database and runs migrations.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(10000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func migrate(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS stories (
			id TEXT PRIMARY KEY,
			title TEXT,
			url TEXT,
			by_user TEXT,
			time_unix INTEGER,
			comment_count INTEGER DEFAULT 0,
			topic TEXT,
			fetched_at INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS comments (
			id TEXT PRIMARY KEY,
			story_id TEXT,
			parent_id TEXT,
			body TEXT,
			url TEXT,
			permalink TEXT,
			meta TEXT NOT NULL DEFAULT '{}',
			fetched_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_comments_story ON comments(story_id)`,

		`CREATE TABLE IF NOT EXISTS labels (
			comment_id TEXT PRIMARY KEY,
			label TEXT NOT NULL,
			model TEXT,
			labeled_at INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			source TEXT,
			records INTEGER DEFAULT 0,
			skipped INTEGER DEFAULT 0,
			roots INTEGER DEFAULT 0,
			pruned INTEGER DEFAULT 0,
			row_count INTEGER DEFAULT 0,
			created_at INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS dataset_rows (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			id TEXT NOT NULL,
			link_id TEXT NOT NULL,
			parent_id TEXT,
			depth INTEGER NOT NULL,
			text TEXT,
			label TEXT,
			context TEXT NOT NULL DEFAULT '[]',
			images TEXT NOT NULL DEFAULT '[]',
			PRIMARY KEY (run_id, seq)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rows_link ON dataset_rows(run_id, link_id)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("executing migration: %w\nSQL: %s", err, m)
		}
	}
	return nil
}
