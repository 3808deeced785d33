package store

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// A single connection keeps the in-memory database alive and shared.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	st, err := NewSQLite(context.Background(), db)
	require.NoError(t, err)
	return st
}

func TestSQLiteStore(t *testing.T) {
	runStoreSuite(t, newTestSQLite(t))
}
