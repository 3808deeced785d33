// internal/store/store.go
//
// Contract for the game record store: a document store keyed by game id
// with point reads, partial-field merges, a conditional status
// transition, and live subscriptions over a status filter. Semantics
// follow the remote store the original client consumed: last-write-wins
// per field, no schema enforcement beyond application checks, full
// result-set snapshots on subscription pushes (not diffs).

package store

import (
	"context"
	"errors"

	"github.com/forcaduo/server/internal/match"
)

var (
	// ErrNotFound is returned for point operations on a missing document.
	ErrNotFound = errors.New("game not found")
	// ErrConflict is returned when a conditional status transition finds
	// the document in a different state than expected.
	ErrConflict = errors.New("status precondition failed")
	// ErrUnavailable marks transient store failures; callers may retry.
	ErrUnavailable = errors.New("store unavailable")
	// ErrPermissionDenied marks store-side authorization failures.
	ErrPermissionDenied = errors.New("permission denied")
)

// Patch is a partial field merge. Nil fields are left untouched;
// non-nil fields replace the stored value. Only the mutable fields of a
// game document can be patched — id, category and createdAt are fixed at
// creation.
type Patch struct {
	GuessedLetters []string      // replaces the guessed set when non-nil
	WrongGuesses   *int          // replaces the wrong-guess counter
	SecretWord     *string       // word regeneration before first guess
	Status         *match.Status // lifecycle transition
}

// Store is the game record store consumed by the session layer.
// Implementations may be backed by memory (tests, ephemeral play) or
// SQLite (durable).
type Store interface {
	// Create persists a new game document, assigns its id and creation
	// timestamp, and returns the id.
	Create(ctx context.Context, g match.Game) (string, error)

	// Get retrieves a game by id. Returns ErrNotFound if missing.
	Get(ctx context.Context, id string) (match.Game, error)

	// Update merges the given fields into an existing document.
	// Returns ErrNotFound if the document does not exist.
	Update(ctx context.Context, id string, p Patch) error

	// TransitionStatus atomically moves a document from one status to
	// another. Returns ErrConflict when the document is not in the
	// expected status, ErrNotFound when missing. This is the
	// compare-and-swap that keeps two joiners from racing into the same
	// game.
	TransitionStatus(ctx context.Context, id string, from, to match.Status) error

	// Delete removes a document. Returns ErrNotFound if missing.
	Delete(ctx context.Context, id string) error

	// QueryByStatus returns up to limit documents with the given status.
	// No ordering is guaranteed; callers sort client-side.
	QueryByStatus(ctx context.Context, status match.Status, limit int) ([]match.Game, error)

	// Subscribe registers a live query over a status filter. onSnapshot
	// receives the full (unordered) result set after every store
	// mutation; onError receives query failures. The returned cancel
	// releases the subscription — after it returns no further callbacks
	// are delivered.
	Subscribe(status match.Status, limit int, onSnapshot func([]match.Game), onError func(error)) (cancel func())
}
