// internal/store/sqlite.go
//
// SQLite implementation of the Store interface. Game documents are kept
// as JSON in a single table, with the status column denormalized for
// filtered queries and the conditional transition. Mutations go through
// read-modify-write transactions and broadcast to live subscriptions.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/forcaduo/server/internal/match"
)

// SQLite is a documents-as-JSON Store backed by database/sql.
type SQLite struct {
	db  *sql.DB
	hub *watchHub
}

// NewSQLite prepares the games table and returns a ready Store.
func NewSQLite(ctx context.Context, db *sql.DB) (*SQLite, error) {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS games (
			id         TEXT PRIMARY KEY,
			status     TEXT NOT NULL,
			created_at TEXT NOT NULL,
			data       TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_games_status ON games(status);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return nil, err
		}
	}

	s := &SQLite{db: db}
	s.hub = newWatchHub(func(status match.Status, limit int) ([]match.Game, error) {
		return s.QueryByStatus(context.Background(), status, limit)
	})
	return s, nil
}

// Create assigns an id and creation timestamp, then inserts the document.
func (s *SQLite) Create(ctx context.Context, g match.Game) (string, error) {
	g.ID = uuid.NewString()
	g.CreatedAt = time.Now().UTC()
	if g.GuessedLetters == nil {
		g.GuessedLetters = []string{}
	}

	data, err := json.Marshal(g)
	if err != nil {
		return "", err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO games (id, status, created_at, data) VALUES (?,?,?,?)`,
		g.ID, string(g.Status), g.CreatedAt.Format(time.RFC3339Nano), string(data),
	)
	if err != nil {
		return "", err
	}

	s.hub.broadcast()
	return g.ID, nil
}

// Get loads and unmarshals a single document.
func (s *SQLite) Get(ctx context.Context, id string) (match.Game, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM games WHERE id=?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return match.Game{}, ErrNotFound
	}
	if err != nil {
		return match.Game{}, err
	}
	var g match.Game
	if err := json.Unmarshal([]byte(data), &g); err != nil {
		return match.Game{}, err
	}
	return g, nil
}

// Update merges patch fields via a read-modify-write transaction.
func (s *SQLite) Update(ctx context.Context, id string, p Patch) error {
	err := s.modify(ctx, id, func(g *match.Game) error {
		applyPatch(g, p)
		return nil
	})
	if err != nil {
		return err
	}
	s.hub.broadcast()
	return nil
}

// TransitionStatus performs the compare-and-swap on the status field.
func (s *SQLite) TransitionStatus(ctx context.Context, id string, from, to match.Status) error {
	err := s.modify(ctx, id, func(g *match.Game) error {
		if g.Status != from {
			return ErrConflict
		}
		g.Status = to
		return nil
	})
	if err != nil {
		return err
	}
	s.hub.broadcast()
	return nil
}

// Delete removes a document.
func (s *SQLite) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM games WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	s.hub.broadcast()
	return nil
}

// QueryByStatus filters by the denormalized status column. The query
// carries no ORDER BY on purpose: callers sort client-side, as with the
// remote store this models.
func (s *SQLite) QueryByStatus(ctx context.Context, status match.Status, limit int) ([]match.Game, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM games WHERE status=? LIMIT ?`, string(status), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]match.Game, 0, limit)
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var g match.Game
		if err := json.Unmarshal([]byte(data), &g); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// Subscribe registers a live query; see Store.Subscribe.
func (s *SQLite) Subscribe(status match.Status, limit int, onSnapshot func([]match.Game), onError func(error)) func() {
	return s.hub.subscribe(status, limit, onSnapshot, onError)
}

// modify loads a document, applies fn, and saves it in a transaction.
func (s *SQLite) modify(ctx context.Context, id string, fn func(*match.Game) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var data string
	err = tx.QueryRowContext(ctx, `SELECT data FROM games WHERE id=?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	var g match.Game
	if err := json.Unmarshal([]byte(data), &g); err != nil {
		return err
	}
	if err := fn(&g); err != nil {
		return err
	}

	next, err := json.Marshal(g)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE games SET status=?, data=? WHERE id=?`,
		string(g.Status), string(next), id,
	); err != nil {
		return err
	}
	return tx.Commit()
}

var _ Store = (*SQLite)(nil)
