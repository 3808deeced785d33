package match

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGame(word string) Game {
	return Game{
		ID:             "g1",
		Category:       "ANIMALS",
		SecretWord:     word,
		Status:         StatusPlaying,
		GuessedLetters: []string{},
	}
}

func TestGuessToWin(t *testing.T) {
	g := newGame("CAT")

	g2, out, err := ValidateGuess(g, "C")
	require.NoError(t, err)
	assert.Equal(t, OutcomeContinue, out)
	assert.Equal(t, []string{"C"}, g2.GuessedLetters)
	assert.Equal(t, 0, g2.WrongGuesses)
	assert.Equal(t, "C__", MaskedView(g2))

	g3, out, err := ValidateGuess(g2, "A")
	require.NoError(t, err)
	assert.Equal(t, OutcomeContinue, out)
	assert.Equal(t, "CA_", MaskedView(g3))

	g4, out, err := ValidateGuess(g3, "T")
	require.NoError(t, err)
	assert.Equal(t, OutcomeWon, out)
	assert.True(t, g4.Won())
	assert.Equal(t, "CAT", MaskedView(g4))
}

func TestWrongGuessesToLoss(t *testing.T) {
	g := newGame("DOG")
	wrong := []string{"A", "B", "C", "E", "F", "H"}

	var out Outcome
	var err error
	for i, l := range wrong {
		g, out, err = ValidateGuess(g, l)
		require.NoError(t, err)
		assert.Equal(t, i+1, g.WrongGuesses, "wrong counter is monotonic")
		if i < len(wrong)-1 {
			assert.Equal(t, OutcomeContinue, out)
		}
	}
	assert.Equal(t, OutcomeLost, out)
	assert.True(t, g.Lost())
	assert.Equal(t, MaxWrongGuesses, g.WrongGuesses)
	// Wrong letters are still recorded as guessed.
	assert.Len(t, g.GuessedLetters, 6)
}

func TestDuplicateGuessRejected(t *testing.T) {
	g := newGame("CAT")
	g, _, err := ValidateGuess(g, "C")
	require.NoError(t, err)

	_, _, err = ValidateGuess(g, "C")
	assert.ErrorIs(t, err, ErrDuplicateGuess)
	// Lowercase duplicate of an uppercase guess is still a duplicate.
	_, _, err = ValidateGuess(g, "c")
	assert.ErrorIs(t, err, ErrDuplicateGuess)
}

func TestInvalidLetters(t *testing.T) {
	g := newGame("CAT")
	for _, bad := range []string{"", " ", "1", "ab", "-", "ç"} {
		_, _, err := ValidateGuess(g, bad)
		assert.ErrorIs(t, err, ErrInvalidLetter, "input %q", bad)
	}
}

func TestLowercaseNormalized(t *testing.T) {
	g := newGame("CAT")
	g2, _, err := ValidateGuess(g, " c ")
	require.NoError(t, err)
	assert.Equal(t, []string{"C"}, g2.GuessedLetters)
}

func TestGuessAfterFinishedRejected(t *testing.T) {
	g := newGame("A")
	g, out, err := ValidateGuess(g, "A")
	require.NoError(t, err)
	require.Equal(t, OutcomeWon, out)

	_, _, err = ValidateGuess(g, "B")
	assert.ErrorIs(t, err, ErrGameOver)

	lost := newGame("CAT")
	lost.WrongGuesses = MaxWrongGuesses
	_, _, err = ValidateGuess(lost, "C")
	assert.ErrorIs(t, err, ErrGameOver)
}

func TestValidateGuessIsPure(t *testing.T) {
	g := newGame("CAT")
	g2, _, err := ValidateGuess(g, "C")
	require.NoError(t, err)

	// The input snapshot must be untouched.
	assert.Empty(t, g.GuessedLetters)
	assert.Equal(t, []string{"C"}, g2.GuessedLetters)
	g2.GuessedLetters[0] = "X"
	assert.Empty(t, g.GuessedLetters)
}

func TestMaskedViewMultiWord(t *testing.T) {
	g := newGame("NEW YORK")
	g.GuessedLetters = []string{"N", "O"}
	assert.Equal(t, "N__ _O__", MaskedView(g))
	assert.Len(t, MaskedView(g), len(g.SecretWord))
}

func TestWonNeedsEveryDistinctLetter(t *testing.T) {
	g := newGame("NEW YORK")
	g.GuessedLetters = []string{"N", "E", "W", "Y", "O", "R"}
	assert.False(t, g.Won())
	g.GuessedLetters = append(g.GuessedLetters, "K")
	assert.True(t, g.Won())
}

func TestNormalizeWord(t *testing.T) {
	w, err := NormalizeWord("  cat ")
	require.NoError(t, err)
	assert.Equal(t, "CAT", w)

	w, err = NormalizeWord("d'artagnan")
	require.NoError(t, err)
	assert.Equal(t, "D'ARTAGNAN", w)

	for _, bad := range []string{"", "   ", "123", "---", "ção", "ABCDEFGHIJKLMNOPQRSTU"} {
		_, err := NormalizeWord(bad)
		assert.ErrorIs(t, err, ErrInvalidWord, "input %q", bad)
	}
}

func TestSelectRandomWord(t *testing.T) {
	catalog := map[string][]string{
		"ANIMALS": {"CAT", "DOG", "FOX"},
	}
	rng := rand.New(rand.NewSource(1))

	w, err := SelectRandomWord("ANIMALS", catalog, rng)
	require.NoError(t, err)
	assert.Contains(t, catalog["ANIMALS"], w)

	_, err = SelectRandomWord("PLANETS", catalog, rng)
	assert.ErrorIs(t, err, ErrUnknownCategory)

	_, err = SelectRandomWord("ANIMALS", map[string][]string{"ANIMALS": {}}, rng)
	assert.ErrorIs(t, err, ErrUnknownCategory)
}
