// internal/store/memory.go
//
// In-memory implementation of the Store interface.
// This is a lightweight persistence layer used for ephemeral game
// sessions, primarily in development/testing, or when durability is not
// required.
//
// Characteristics:
//   - Stores game documents keyed by id in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.
//   - Mutations broadcast to live subscriptions.

package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/forcaduo/server/internal/match"
)

// Memory is a map-based Store implementation.
type Memory struct {
	mu    sync.RWMutex
	games map[string]match.Game
	hub   *watchHub
}

// NewMemory constructs an in-memory Store.
func NewMemory() *Memory {
	m := &Memory{games: make(map[string]match.Game)}
	m.hub = newWatchHub(func(status match.Status, limit int) ([]match.Game, error) {
		return m.QueryByStatus(context.Background(), status, limit)
	})
	return m
}

// Create assigns an id and creation timestamp, then stores the document.
func (m *Memory) Create(ctx context.Context, g match.Game) (string, error) {
	g.ID = uuid.NewString()
	g.CreatedAt = time.Now().UTC()
	if g.GuessedLetters == nil {
		g.GuessedLetters = []string{}
	}

	m.mu.Lock()
	m.games[g.ID] = g.Clone()
	m.mu.Unlock()

	m.hub.broadcast()
	return g.ID, nil
}

// Get returns a copy of the stored document.
func (m *Memory) Get(ctx context.Context, id string) (match.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if g, ok := m.games[id]; ok {
		return g.Clone(), nil
	}
	return match.Game{}, ErrNotFound
}

// Update merges non-nil patch fields into an existing document.
func (m *Memory) Update(ctx context.Context, id string, p Patch) error {
	m.mu.Lock()
	g, ok := m.games[id]
	if !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	applyPatch(&g, p)
	m.games[id] = g
	m.mu.Unlock()

	m.hub.broadcast()
	return nil
}

// TransitionStatus performs the compare-and-swap on the status field.
func (m *Memory) TransitionStatus(ctx context.Context, id string, from, to match.Status) error {
	m.mu.Lock()
	g, ok := m.games[id]
	if !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	if g.Status != from {
		m.mu.Unlock()
		return ErrConflict
	}
	g.Status = to
	m.games[id] = g
	m.mu.Unlock()

	m.hub.broadcast()
	return nil
}

// Delete removes a document.
func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	if _, ok := m.games[id]; !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	delete(m.games, id)
	m.mu.Unlock()

	m.hub.broadcast()
	return nil
}

// QueryByStatus filters by status up to limit. Map iteration order makes
// the result deliberately unordered, like the remote query it models.
func (m *Memory) QueryByStatus(ctx context.Context, status match.Status, limit int) ([]match.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]match.Game, 0, limit)
	for _, g := range m.games {
		if g.Status != status {
			continue
		}
		out = append(out, g.Clone())
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

// Subscribe registers a live query; see Store.Subscribe.
func (m *Memory) Subscribe(status match.Status, limit int, onSnapshot func([]match.Game), onError func(error)) func() {
	return m.hub.subscribe(status, limit, onSnapshot, onError)
}

// applyPatch merges non-nil patch fields into g.
func applyPatch(g *match.Game, p Patch) {
	if p.GuessedLetters != nil {
		g.GuessedLetters = append([]string(nil), p.GuessedLetters...)
	}
	if p.WrongGuesses != nil {
		g.WrongGuesses = *p.WrongGuesses
	}
	if p.SecretWord != nil {
		g.SecretWord = *p.SecretWord
	}
	if p.Status != nil {
		g.Status = *p.Status
	}
}

var _ Store = (*Memory)(nil)
