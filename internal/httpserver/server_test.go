package httpserver

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forcaduo/server/internal/store"
	"github.com/forcaduo/server/internal/words"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	require.NoError(t, words.Init())

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	for _, stmt := range []string{
		`CREATE TABLE users (
			id TEXT PRIMARY KEY, username TEXT NOT NULL UNIQUE COLLATE NOCASE,
			password_hash TEXT NOT NULL, created_at TEXT NOT NULL,
			matches_played INTEGER NOT NULL DEFAULT 0,
			wins INTEGER NOT NULL DEFAULT 0, streak INTEGER NOT NULL DEFAULT 0)`,
		`CREATE TABLE match_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT, user_id TEXT NOT NULL,
			game_id TEXT NOT NULL, category TEXT NOT NULL, status TEXT NOT NULL,
			wrong_guesses INTEGER NOT NULL, finished_at TEXT NOT NULL)`,
		`CREATE TABLE daily_results (
			id INTEGER PRIMARY KEY AUTOINCREMENT, user_id TEXT NOT NULL,
			date TEXT NOT NULL, category TEXT NOT NULL, won INTEGER NOT NULL,
			wrong_guesses INTEGER NOT NULL, elapsed_ms INTEGER NOT NULL,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
			UNIQUE(user_id, date))`,
	} {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}

	srv := New(store.NewMemory(), db)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

// newClient returns an http.Client with its own cookie jar, i.e. its
// own device identity.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func postJSON(t *testing.T, c *http.Client, url string, body any) (*http.Response, map[string]json.RawMessage) {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := c.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	defer resp.Body.Close()
	out := map[string]json.RawMessage{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func getJSON(t *testing.T, c *http.Client, url string) (*http.Response, map[string]json.RawMessage) {
	t.Helper()
	resp, err := c.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	out := map[string]json.RawMessage{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func rawString(t *testing.T, raw json.RawMessage) string {
	t.Helper()
	var s string
	require.NoError(t, json.Unmarshal(raw, &s))
	return s
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestFullMatchOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	creator := newClient(t)
	joiner := newClient(t)

	// Creator opens a match with an explicit word.
	resp, body := postJSON(t, creator, ts.URL+"/games", map[string]string{
		"category": "ANIMALS", "word": "cat",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	gameID := rawString(t, body["gameId"])
	require.NotEmpty(t, gameID)

	// The match shows up in the joiner's browse list, word masked.
	resp, body = getJSON(t, joiner, ts.URL+"/games/open")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var open []struct {
		ID         string `json:"id"`
		Category   string `json:"category"`
		WordLength int    `json:"wordLength"`
	}
	require.NoError(t, json.Unmarshal(body["games"], &open))
	require.Len(t, open, 1)
	assert.Equal(t, gameID, open[0].ID)
	assert.Equal(t, 3, open[0].WordLength)

	// Joiner claims it.
	resp, _ = postJSON(t, joiner, ts.URL+"/games/"+gameID+"/join", map[string]string{})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// A third device cannot.
	resp, _ = postJSON(t, newClient(t), ts.URL+"/games/"+gameID+"/join", map[string]string{})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Guess C, A, T to win.
	type guessResp struct {
		Outcome string `json:"outcome"`
		Game    struct {
			Masked       string `json:"masked"`
			Word         string `json:"word"`
			WrongGuesses int    `json:"wrongGuesses"`
		} `json:"game"`
	}
	var gr guessResp
	for _, l := range []string{"C", "A", "T"} {
		resp, err := joiner.Post(ts.URL+"/games/"+gameID+"/guess", "application/json",
			bytes.NewReader([]byte(fmt.Sprintf(`{"letter":%q}`, l))))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&gr))
		resp.Body.Close()
	}
	assert.Equal(t, "won", gr.Outcome)
	assert.Equal(t, "CAT", gr.Game.Masked)
	assert.Equal(t, "CAT", gr.Game.Word, "word revealed on a terminal outcome")
	assert.Equal(t, 0, gr.Game.WrongGuesses)
}

func TestGuessErrorTaxonomy(t *testing.T) {
	ts := newTestServer(t)
	creator := newClient(t)
	joiner := newClient(t)

	_, body := postJSON(t, creator, ts.URL+"/games", map[string]string{
		"category": "ANIMALS", "word": "CAT",
	})
	gameID := rawString(t, body["gameId"])
	resp, _ := postJSON(t, joiner, ts.URL+"/games/"+gameID+"/join", map[string]string{})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Invalid letter.
	resp, body = postJSON(t, joiner, ts.URL+"/games/"+gameID+"/guess", map[string]string{"letter": "1"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_input", rawString(t, body["error"]))

	// Duplicate letter.
	resp, _ = postJSON(t, joiner, ts.URL+"/games/"+gameID+"/guess", map[string]string{"letter": "C"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, body = postJSON(t, joiner, ts.URL+"/games/"+gameID+"/guess", map[string]string{"letter": "c"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "duplicate_guess", rawString(t, body["error"]))

	// Guessing without an active match.
	resp, body = postJSON(t, newClient(t), ts.URL+"/games/"+gameID+"/guess", map[string]string{"letter": "A"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "no_active_game", rawString(t, body["error"]))

	// Unknown game id on join.
	resp, body = postJSON(t, joiner, ts.URL+"/games/zzz/join", map[string]string{})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", rawString(t, body["error"]))
}

func TestCreateGameDrawsWordFromCatalog(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t)

	resp, body := postJSON(t, c, ts.URL+"/games", map[string]string{
		"category": "FRUITS", "language": "en",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotEmpty(t, rawString(t, body["gameId"]))

	resp, body = postJSON(t, c, ts.URL+"/games", map[string]string{"category": "PLANETS"})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "catalog_miss", rawString(t, body["error"]))
}

func TestRegenerateWordEndpoint(t *testing.T) {
	ts := newTestServer(t)
	creator := newClient(t)

	_, body := postJSON(t, creator, ts.URL+"/games", map[string]string{
		"category": "ANIMALS", "word": "CAT",
	})
	gameID := rawString(t, body["gameId"])

	resp, _ := postJSON(t, creator, ts.URL+"/games/"+gameID+"/word", map[string]string{"word": "DOG"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Another device has no created game to regenerate.
	resp, body = postJSON(t, newClient(t), ts.URL+"/games/"+gameID+"/word", map[string]string{"word": "FOX"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "no_active_game", rawString(t, body["error"]))
}

func TestAuthFlow(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t)

	// Gated route without a token.
	resp, err := c.Get(ts.URL + "/auth/me")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Signup sets the auth cookie.
	resp, body := postJSON(t, c, ts.URL+"/auth/signup", map[string]string{
		"Username": "player_one", "Password": "correcthorse",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "player_one", rawString(t, body["username"]))

	resp, body = getJSON(t, c, ts.URL+"/auth/me")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "player_one", rawString(t, body["username"]))

	// Fresh stats.
	resp, body = getJSON(t, c, ts.URL+"/stats/me")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var wins int
	require.NoError(t, json.Unmarshal(body["wins"], &wins))
	assert.Equal(t, 0, wins)

	// Duplicate username rejected.
	resp, _ = postJSON(t, newClient(t), ts.URL+"/auth/signup", map[string]string{
		"Username": "PLAYER_ONE", "Password": "correcthorse",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Logout clears the session.
	resp, _ = postJSON(t, c, ts.URL+"/auth/logout", map[string]string{})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, err = c.Get(ts.URL + "/auth/me")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestDailyFlow(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t)

	resp, body := postJSON(t, c, ts.URL+"/daily/new", map[string]string{})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var played bool
	require.NoError(t, json.Unmarshal(body["played"], &played))
	assert.False(t, played)

	var game struct {
		ID     string `json:"id"`
		Masked string `json:"masked"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(body["game"], &game))
	assert.Equal(t, "playing", game.Status)
	assert.NotContains(t, game.Masked, "A", "masked view starts with no letters revealed")

	// Guessing through the daily endpoint works.
	resp, body = postJSON(t, c, ts.URL+"/daily/"+game.ID+"/guess", map[string]string{"letter": "A"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "outcome")

	// Leaderboard responds even when empty.
	resp, body = getJSON(t, c, ts.URL+"/daily/leaderboard")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "rows")
}
