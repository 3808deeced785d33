package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forcaduo/server/internal/match"
)

func newWaitingGame(word string) match.Game {
	return match.Game{
		Category:       "ANIMALS",
		SecretWord:     word,
		Status:         match.StatusWaiting,
		GuessedLetters: []string{},
	}
}

// runStoreSuite exercises the Store contract against any implementation.
func runStoreSuite(t *testing.T, st Store) {
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		id, err := st.Create(ctx, newWaitingGame("CAT"))
		require.NoError(t, err)
		require.NotEmpty(t, id)

		g, err := st.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, g.ID)
		assert.Equal(t, "CAT", g.SecretWord)
		assert.Equal(t, match.StatusWaiting, g.Status)
		assert.NotNil(t, g.GuessedLetters)
		assert.False(t, g.CreatedAt.IsZero())
	})

	t.Run("get missing", func(t *testing.T) {
		_, err := st.Get(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("partial update", func(t *testing.T) {
		id, err := st.Create(ctx, newWaitingGame("DOG"))
		require.NoError(t, err)

		wrong := 2
		err = st.Update(ctx, id, Patch{
			GuessedLetters: []string{"A", "B", "D"},
			WrongGuesses:   &wrong,
		})
		require.NoError(t, err)

		g, err := st.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B", "D"}, g.GuessedLetters)
		assert.Equal(t, 2, g.WrongGuesses)
		// Untouched fields survive a partial update.
		assert.Equal(t, "DOG", g.SecretWord)
		assert.Equal(t, match.StatusWaiting, g.Status)

		assert.ErrorIs(t, st.Update(ctx, "nope", Patch{WrongGuesses: &wrong}), ErrNotFound)
	})

	t.Run("status transition is conditional", func(t *testing.T) {
		id, err := st.Create(ctx, newWaitingGame("FOX"))
		require.NoError(t, err)

		require.NoError(t, st.TransitionStatus(ctx, id, match.StatusWaiting, match.StatusPlaying))
		// Second claim loses.
		assert.ErrorIs(t, st.TransitionStatus(ctx, id, match.StatusWaiting, match.StatusPlaying), ErrConflict)

		g, err := st.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, match.StatusPlaying, g.Status)

		assert.ErrorIs(t, st.TransitionStatus(ctx, "nope", match.StatusWaiting, match.StatusPlaying), ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		id, err := st.Create(ctx, newWaitingGame("OWL"))
		require.NoError(t, err)

		require.NoError(t, st.Delete(ctx, id))
		_, err = st.Get(ctx, id)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, st.Delete(ctx, id), ErrNotFound)
	})

	t.Run("query by status honors limit", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			_, err := st.Create(ctx, newWaitingGame("CAT"))
			require.NoError(t, err)
		}
		games, err := st.QueryByStatus(ctx, match.StatusWaiting, 3)
		require.NoError(t, err)
		assert.Len(t, games, 3)
		for _, g := range games {
			assert.Equal(t, match.StatusWaiting, g.Status)
		}
	})

	t.Run("subscribe pushes snapshots", func(t *testing.T) {
		snaps := make(chan []match.Game, 16)
		cancel := st.Subscribe(match.StatusPlaying, 10,
			func(s []match.Game) { snaps <- s },
			func(err error) { t.Errorf("unexpected feed error: %v", err) },
		)
		defer cancel()

		// Initial snapshot arrives without any mutation.
		waitSnapshot(t, snaps)

		g := newWaitingGame("CAT")
		g.Status = match.StatusPlaying
		id, err := st.Create(ctx, g)
		require.NoError(t, err)

		assert.Eventually(t, func() bool {
			for {
				select {
				case s := <-snaps:
					for _, sg := range s {
						if sg.ID == id {
							return true
						}
					}
				default:
					return false
				}
			}
		}, 2*time.Second, 10*time.Millisecond, "created game should appear in a snapshot")
	})

	t.Run("no delivery after cancel", func(t *testing.T) {
		var delivered int
		done := make(chan struct{}, 1)
		cancel := st.Subscribe(match.StatusWaiting, 10,
			func([]match.Game) {
				delivered++
				select {
				case done <- struct{}{}:
				default:
				}
			},
			func(error) {},
		)
		<-done // initial snapshot
		cancel()
		before := delivered

		_, err := st.Create(ctx, newWaitingGame("CAT"))
		require.NoError(t, err)
		time.Sleep(100 * time.Millisecond)
		assert.Equal(t, before, delivered, "no snapshot may arrive after cancel returns")

		cancel() // idempotent
	})
}

func waitSnapshot(t *testing.T, ch <-chan []match.Game) []match.Game {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func TestMemoryStore(t *testing.T) {
	runStoreSuite(t, NewMemory())
}
