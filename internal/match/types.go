// internal/match/types.go
//
// Core type definitions for the hangman match engine.
// Defines:
//   - Status: lifecycle of a game document (waiting/playing).
//   - Outcome: result classification of a single guess.
//   - Game: the mutable document shared between both players.

package match

import "time"

// Status is the lifecycle phase of a game document. The transition
// waiting → playing happens exactly once, when a second player joins,
// and never reverts.
type Status string

const (
	StatusWaiting Status = "waiting"
	StatusPlaying Status = "playing"
)

// Outcome classifies the state of a match after a guess is applied.
type Outcome string

const (
	OutcomeContinue Outcome = "continue"
	OutcomeWon      Outcome = "won"
	OutcomeLost     Outcome = "lost"
)

// MaxWrongGuesses is the fixed number of wrong guesses that loses a
// match (the six body parts of the hangman drawing).
const MaxWrongGuesses = 6

// MaxWordLength bounds the secret word, matching the input limit of the
// create-game form.
const MaxWordLength = 20

// Game holds one match, mirroring the remote document schema field for
// field. JSON names are the wire/storage names.
type Game struct {
	ID             string    `json:"id"`
	Category       string    `json:"category"`
	SecretWord     string    `json:"secretWord"`
	Status         Status    `json:"status"`
	GuessedLetters []string  `json:"guessedLetters"`
	WrongGuesses   int       `json:"wrongGuesses"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Clone returns a deep copy; GuessedLetters is the only reference field.
func (g Game) Clone() Game {
	out := g
	out.GuessedLetters = append([]string(nil), g.GuessedLetters...)
	return out
}

// HasGuessed reports whether letter was already guessed in this match.
func (g Game) HasGuessed(letter string) bool {
	for _, l := range g.GuessedLetters {
		if l == letter {
			return true
		}
	}
	return false
}

// Won reports whether every distinct letter of the secret word has been
// guessed. Non-letter characters (spaces, punctuation) never need to be
// guessed.
func (g Game) Won() bool {
	sawLetter := false
	for _, r := range g.SecretWord {
		if r < 'A' || r > 'Z' {
			continue
		}
		sawLetter = true
		if !g.HasGuessed(string(r)) {
			return false
		}
	}
	return sawLetter
}

// Lost reports whether the wrong-guess budget is exhausted.
func (g Game) Lost() bool { return g.WrongGuesses >= MaxWrongGuesses }

// Finished reports whether the match reached a terminal state.
func (g Game) Finished() bool { return g.Won() || g.Lost() }
