// internal/match/engine.go
//
// Pure rules of a single hangman match.
// Responsibilities:
//   - Validate and apply letter guesses (ValidateGuess).
//   - Derive the masked display form of the secret word (MaskedView).
//   - Normalize and validate secret words on creation (NormalizeWord).
//   - Draw a random word from a category catalog (SelectRandomWord).
//
// Nothing in this package performs I/O or touches shared state; the
// outcome of a guess is a function of (secretWord, guessedLetters,
// wrongGuesses, letter) and nothing else. The session layer owns
// persistence and reconciliation.
package match

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
)

var (
	// ErrInvalidLetter rejects guesses that are not exactly one
	// alphabetic character.
	ErrInvalidLetter = errors.New("guess must be a single letter")
	// ErrDuplicateGuess rejects a letter that was already guessed. The
	// UI disables guessed letters, but the engine defends regardless.
	ErrDuplicateGuess = errors.New("letter already guessed")
	// ErrGameOver rejects guesses against a won or lost match.
	ErrGameOver = errors.New("game already finished")
	// ErrInvalidWord rejects malformed secret words on creation.
	ErrInvalidWord = errors.New("invalid secret word")
	// ErrUnknownCategory is the catalog-miss error: the category is
	// absent from the catalog or has no words. A configuration problem,
	// never silently defaulted.
	ErrUnknownCategory = errors.New("category not in catalog")
)

// ValidateGuess applies one letter guess to a game snapshot and returns
// the next snapshot plus an outcome classification. The input snapshot
// is never mutated.
//
// Rules:
//   - letter must normalize to exactly one A–Z character.
//   - guesses against finished matches fail with ErrGameOver.
//   - repeated letters fail with ErrDuplicateGuess and change nothing.
//   - a letter not in the secret word increments WrongGuesses.
func ValidateGuess(g Game, letter string) (Game, Outcome, error) {
	l := strings.ToUpper(strings.TrimSpace(letter))
	if len(l) != 1 || l[0] < 'A' || l[0] > 'Z' {
		return g, "", ErrInvalidLetter
	}
	if g.Finished() {
		return g, "", ErrGameOver
	}
	if g.HasGuessed(l) {
		return g, "", ErrDuplicateGuess
	}

	next := g.Clone()
	next.GuessedLetters = append(next.GuessedLetters, l)
	if !strings.Contains(next.SecretWord, l) {
		next.WrongGuesses++
	}

	switch {
	case next.Won():
		return next, OutcomeWon, nil
	case next.Lost():
		return next, OutcomeLost, nil
	default:
		return next, OutcomeContinue, nil
	}
}

// MaskedView is the display form of the secret word: letters are hidden
// behind '_' until guessed, everything else (spaces, punctuation) passes
// through. Output length equals the secret word length. Pure projection,
// recomputed on every render, never stored.
func MaskedView(g Game) string {
	var b strings.Builder
	b.Grow(len(g.SecretWord))
	for _, r := range g.SecretWord {
		if r >= 'A' && r <= 'Z' && !g.HasGuessed(string(r)) {
			b.WriteByte('_')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// NormalizeWord trims and uppercases a candidate secret word and
// validates it: 1–20 characters, uppercase ASCII letters plus spaces
// and basic punctuation, and at least one letter.
func NormalizeWord(raw string) (string, error) {
	w := strings.ToUpper(strings.TrimSpace(raw))
	if w == "" || len(w) > MaxWordLength {
		return "", ErrInvalidWord
	}
	hasLetter := false
	for _, r := range w {
		switch {
		case r >= 'A' && r <= 'Z':
			hasLetter = true
		case r == ' ' || r == '-' || r == '\'' || r == '.' || r == '&':
			// allowed non-letter characters
		default:
			return "", ErrInvalidWord
		}
	}
	if !hasLetter {
		return "", ErrInvalidWord
	}
	return w, nil
}

// SelectRandomWord draws one word uniformly at random from the
// category's list. The catalog maps category key → candidate words for
// the active language; a missing category or empty list fails with
// ErrUnknownCategory.
func SelectRandomWord(category string, catalog map[string][]string, rng *rand.Rand) (string, error) {
	list, ok := catalog[category]
	if !ok || len(list) == 0 {
		return "", fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}
	return list[rng.Intn(len(list))], nil
}
