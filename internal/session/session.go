// internal/session/session.go
//
// Session controller for one device. Sequences local-state mutation
// with remote persistence: applies optimistic updates, persists them,
// and reconciles remote snapshots into the local view.
//
// State model is two-phase: a pending snapshot (optimistic, applied
// before the remote write) and a confirmed snapshot (last state the
// store acknowledged). On reconciliation the confirmed state always
// wins. If a remote write fails the pending snapshot is kept until the
// next Refresh — a documented gap, not rolled back.
//
// A single-flight lock guards SubmitGuess: the guess flow is a local
// update followed by a remote write, and overlapping submissions could
// corrupt the monotonic counters. Concurrent callers get ErrBusy.

package session

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/forcaduo/server/internal/match"
	"github.com/forcaduo/server/internal/sound"
	"github.com/forcaduo/server/internal/store"
	"github.com/forcaduo/server/internal/words"
)

// OpenGamesPageSize caps the browse list of joinable games.
const OpenGamesPageSize = 10

// deleteTimeout bounds the fire-and-forget cleanup of finished matches.
const deleteTimeout = 5 * time.Second

// Controller mediates between the match engine and the game record
// store for a single device.
type Controller struct {
	store  store.Store
	sounds sound.Player
	log    zerolog.Logger

	guessMu sync.Mutex // single-flight guard for SubmitGuess

	mu               sync.Mutex
	pending          *match.Game // optimistic, not yet acknowledged
	confirmed        *match.Game // last store-acknowledged snapshot
	createdGameID    string      // game this session created (word regeneration)
	lastPlayedGameID string      // reconnection hint, survives Leave
	cancelOpenGames  func()
}

// New constructs a Controller over the given store.
func New(st store.Store, sounds sound.Player, log zerolog.Logger) *Controller {
	return &Controller{store: st, sounds: sounds, log: log}
}

// CreateGame validates the secret word, persists a new waiting game,
// and returns its id to be shared with the second player.
func (c *Controller) CreateGame(ctx context.Context, category, word string) (string, error) {
	if !words.IsCategory(category) {
		return "", ErrInvalidCategory
	}
	w, err := match.NormalizeWord(word)
	if err != nil {
		return "", err
	}

	g := match.Game{
		Category:       category,
		SecretWord:     w,
		Status:         match.StatusWaiting,
		GuessedLetters: []string{},
	}
	id, err := c.store.Create(ctx, g)
	if err != nil {
		return "", err
	}
	g.ID = id

	c.mu.Lock()
	c.createdGameID = id
	snap := g.Clone()
	c.confirmed = &snap
	c.pending = nil
	c.mu.Unlock()

	c.log.Info().Str("gameId", id).Str("category", category).Msg("game created")
	return id, nil
}

// StartSolo creates and immediately claims a match for this session
// alone. Used for the daily word: the document is born playing, so it
// never shows up in the joinable browse list.
func (c *Controller) StartSolo(ctx context.Context, category, word string) (match.Game, error) {
	if !words.IsCategory(category) {
		return match.Game{}, ErrInvalidCategory
	}
	w, err := match.NormalizeWord(word)
	if err != nil {
		return match.Game{}, err
	}

	g := match.Game{
		Category:       category,
		SecretWord:     w,
		Status:         match.StatusPlaying,
		GuessedLetters: []string{},
	}
	id, err := c.store.Create(ctx, g)
	if err != nil {
		return match.Game{}, err
	}
	g.ID = id

	c.mu.Lock()
	c.lastPlayedGameID = id
	snap := g.Clone()
	c.confirmed = &snap
	c.pending = nil
	c.mu.Unlock()

	c.log.Info().Str("gameId", id).Str("category", category).Msg("solo game started")
	return g, nil
}

// RegenerateWord swaps the secret word of the game this session created.
// Only permitted while nobody has guessed yet.
func (c *Controller) RegenerateWord(ctx context.Context, word string) error {
	c.mu.Lock()
	id := c.createdGameID
	c.mu.Unlock()
	if id == "" {
		return ErrNoCreatedGame
	}

	w, err := match.NormalizeWord(word)
	if err != nil {
		return err
	}

	g, err := c.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if g.Status != match.StatusWaiting || len(g.GuessedLetters) > 0 {
		return ErrWordLocked
	}

	if err := c.store.Update(ctx, id, store.Patch{SecretWord: &w}); err != nil {
		return err
	}
	g.SecretWord = w

	c.mu.Lock()
	snap := g.Clone()
	c.confirmed = &snap
	c.pending = nil
	c.mu.Unlock()
	return nil
}

// JoinGame claims a waiting game for this session via the store's
// conditional transition, so two joiners can never both win. A session
// that previously joined the same id may rejoin mid-match
// (resume-after-disconnect); anyone else gets ErrGameUnavailable.
func (c *Controller) JoinGame(ctx context.Context, id string) (match.Game, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return match.Game{}, ErrInvalidGameID
	}

	err := c.store.TransitionStatus(ctx, id, match.StatusWaiting, match.StatusPlaying)
	switch {
	case err == nil:
		// claimed
	case err == store.ErrConflict:
		c.mu.Lock()
		rejoining := c.lastPlayedGameID == id
		c.mu.Unlock()
		if !rejoining {
			return match.Game{}, ErrGameUnavailable
		}
	default:
		return match.Game{}, err
	}

	g, err := c.store.Get(ctx, id)
	if err != nil {
		return match.Game{}, err
	}

	c.mu.Lock()
	c.lastPlayedGameID = id
	snap := g.Clone()
	c.confirmed = &snap
	c.pending = nil
	c.mu.Unlock()

	c.log.Info().Str("gameId", id).Msg("joined game")
	return g, nil
}

// SubmitGuess applies one letter to the active match. The local view
// advances before the remote write (optimistic update); the partial
// update persists only the mutable fields. On a terminal outcome the
// document is deleted fire-and-forget and the outcome is returned
// regardless of the deletion result.
func (c *Controller) SubmitGuess(ctx context.Context, letter string) (match.Outcome, match.Game, error) {
	if !c.guessMu.TryLock() {
		return "", match.Game{}, ErrBusy
	}
	defer c.guessMu.Unlock()

	c.mu.Lock()
	cur := c.currentLocked()
	c.mu.Unlock()
	if cur == nil {
		return "", match.Game{}, ErrNoActiveGame
	}

	next, outcome, err := match.ValidateGuess(*cur, letter)
	if err != nil {
		// Validation failures never reach the store.
		return "", match.Game{}, err
	}

	if next.WrongGuesses > cur.WrongGuesses {
		c.sounds.Play(sound.CueWrong)
	} else {
		c.sounds.Play(sound.CueCorrect)
	}

	// Optimistic: local view advances before the remote write.
	c.mu.Lock()
	snap := next.Clone()
	c.pending = &snap
	c.mu.Unlock()

	wrong := next.WrongGuesses
	err = c.store.Update(ctx, next.ID, store.Patch{
		GuessedLetters: next.GuessedLetters,
		WrongGuesses:   &wrong,
	})
	if err != nil {
		// The optimistic state is retained; it diverges from the store
		// until the next Refresh re-reads the document.
		c.log.Warn().Err(err).Str("gameId", next.ID).Msg("guess write failed, local state ahead of store")
		return "", match.Game{}, err
	}

	c.mu.Lock()
	conf := next.Clone()
	c.confirmed = &conf
	c.pending = nil
	c.mu.Unlock()

	switch outcome {
	case match.OutcomeWon:
		c.sounds.Play(sound.CueWon)
		c.finishGame(next.ID)
	case match.OutcomeLost:
		c.sounds.Play(sound.CueLost)
		c.finishGame(next.ID)
	}
	return outcome, next, nil
}

// finishGame cleans up a terminal match. Deletion failure must not
// block outcome reporting, so it runs detached on its own context.
func (c *Controller) finishGame(id string) {
	c.mu.Lock()
	if c.lastPlayedGameID == id {
		c.lastPlayedGameID = ""
	}
	if c.createdGameID == id {
		c.createdGameID = ""
	}
	c.mu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), deleteTimeout)
		defer cancel()
		if err := c.store.Delete(ctx, id); err != nil && err != store.ErrNotFound {
			c.log.Warn().Err(err).Str("gameId", id).Msg("cleanup of finished game failed")
		}
	}()
}

// Refresh re-reads the active game and reconciles: the confirmed remote
// state replaces whatever was pending locally.
func (c *Controller) Refresh(ctx context.Context) (match.Game, error) {
	c.mu.Lock()
	cur := c.currentLocked()
	c.mu.Unlock()
	if cur == nil {
		return match.Game{}, ErrNoActiveGame
	}

	g, err := c.store.Get(ctx, cur.ID)
	if err != nil {
		return match.Game{}, err
	}

	c.mu.Lock()
	snap := g.Clone()
	c.confirmed = &snap
	c.pending = nil
	c.mu.Unlock()
	return g, nil
}

// Current returns the local view (pending over confirmed), or false
// when no match is active.
func (c *Controller) Current() (match.Game, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if g := c.currentLocked(); g != nil {
		return g.Clone(), true
	}
	return match.Game{}, false
}

func (c *Controller) currentLocked() *match.Game {
	if c.pending != nil {
		return c.pending
	}
	return c.confirmed
}

// OpenGames subscribes to the waiting-games browse list. Each push is a
// full snapshot, sorted here by creation time descending because the
// store-side query guarantees no order. The caller owns the returned
// cancel and must release it when leaving the browse view; Leave also
// cancels it.
func (c *Controller) OpenGames(onSnapshot func([]match.Game)) func() {
	cancel := c.store.Subscribe(match.StatusWaiting, OpenGamesPageSize,
		func(snap []match.Game) {
			sort.Slice(snap, func(i, j int) bool {
				return snap[i].CreatedAt.After(snap[j].CreatedAt)
			})
			onSnapshot(snap)
		},
		func(err error) {
			c.log.Warn().Err(err).Msg("open-games subscription error")
		},
	)

	c.mu.Lock()
	if c.cancelOpenGames != nil {
		c.cancelOpenGames()
	}
	c.cancelOpenGames = cancel
	c.mu.Unlock()
	return cancel
}

// Leave discards the local view state and releases any live
// subscription, as happens when the player returns to the menu. The
// lastPlayedGameID reconnection hint is kept.
func (c *Controller) Leave() {
	c.mu.Lock()
	cancel := c.cancelOpenGames
	c.cancelOpenGames = nil
	c.pending = nil
	c.confirmed = nil
	c.createdGameID = ""
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}
