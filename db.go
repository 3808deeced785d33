// db.go
//
// SQLite bootstrap for the relational side of the service: accounts,
// match history, and daily results. Game documents live in the games
// table managed by internal/store. Schema is created idempotently at
// startup; no external migration tool.

package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// openDB opens (and creates if needed) the SQLite file at path with
// pragmas suited to a small concurrent web service.
func openDB(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	// SQLite handles one writer at a time; keep the pool honest.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// migrate applies the schema. Statements are idempotent so restarts
// are safe.
func migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id             TEXT PRIMARY KEY,
			username       TEXT NOT NULL UNIQUE COLLATE NOCASE,
			password_hash  TEXT NOT NULL,
			created_at     TEXT NOT NULL,
			matches_played INTEGER NOT NULL DEFAULT 0,
			wins           INTEGER NOT NULL DEFAULT 0,
			streak         INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS match_history (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id       TEXT NOT NULL REFERENCES users(id),
			game_id       TEXT NOT NULL,
			category      TEXT NOT NULL,
			status        TEXT NOT NULL,
			wrong_guesses INTEGER NOT NULL,
			finished_at   TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_history_user ON match_history(user_id, finished_at)`,
		`CREATE TABLE IF NOT EXISTS daily_results (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id       TEXT NOT NULL,
			date          TEXT NOT NULL,
			category      TEXT NOT NULL,
			won           INTEGER NOT NULL,
			wrong_guesses INTEGER NOT NULL,
			elapsed_ms    INTEGER NOT NULL,
			created_at    TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
			UNIQUE(user_id, date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_daily_date ON daily_results(date, won)`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
