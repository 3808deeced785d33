package session

import "errors"

var (
	// ErrBusy signals that another guess is still in flight. Concurrent
	// callers are dropped, not queued.
	ErrBusy = errors.New("guess already in progress")
	// ErrGameUnavailable: the join target exists but is not joinable
	// (already playing and this session never joined it).
	ErrGameUnavailable = errors.New("game no longer available")
	// ErrNoActiveGame: a guess or refresh with no joined match.
	ErrNoActiveGame = errors.New("no active game")
	// ErrNoCreatedGame: word regeneration without a created game.
	ErrNoCreatedGame = errors.New("no created game")
	// ErrWordLocked: word regeneration after the first guess.
	ErrWordLocked = errors.New("word locked once guessing has started")
	// ErrInvalidGameID: blank or malformed join code.
	ErrInvalidGameID = errors.New("invalid game code")
	// ErrInvalidCategory: category outside the fixed enumerated set.
	ErrInvalidCategory = errors.New("unknown category")
)
