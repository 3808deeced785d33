// internal/httpserver/routes_games.go
//
// Two-player match endpoints. Every handler resolves the caller's
// device cookie to its session controller, so the REST surface is a
// thin shell over the session/match/store layers.

package httpserver

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	"github.com/forcaduo/server/internal/match"
	"github.com/forcaduo/server/internal/session"
	"github.com/forcaduo/server/internal/words"
)

// gameView is the wire shape of a match as seen by the guessing player.
// The secret word is masked while play continues and revealed only on a
// terminal outcome.
type gameView struct {
	ID               string    `json:"id"`
	Category         string    `json:"category"`
	Status           string    `json:"status"`
	Masked           string    `json:"masked"`
	GuessedLetters   []string  `json:"guessedLetters"`
	WrongGuesses     int       `json:"wrongGuesses"`
	RemainingGuesses int       `json:"remainingGuesses"`
	Word             string    `json:"word,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

func toView(g match.Game) gameView {
	v := gameView{
		ID:               g.ID,
		Category:         g.Category,
		Status:           string(g.Status),
		Masked:           match.MaskedView(g),
		GuessedLetters:   g.GuessedLetters,
		WrongGuesses:     g.WrongGuesses,
		RemainingGuesses: match.MaxWrongGuesses - g.WrongGuesses,
		CreatedAt:        g.CreatedAt,
	}
	if v.GuessedLetters == nil {
		v.GuessedLetters = []string{}
	}
	if g.Finished() {
		v.Word = g.SecretWord
	}
	return v
}

// openGameView is the browse-list shape. Word length leaks through the
// mask anyway, so it is published; the word itself never is.
type openGameView struct {
	ID         string    `json:"id"`
	Category   string    `json:"category"`
	WordLength int       `json:"wordLength"`
	CreatedAt  time.Time `json:"createdAt"`
}

// mountGameRoutes registers the match endpoints on the given router.
func (s *Server) mountGameRoutes(r chi.Router) {
	r.Get("/categories", s.handleCategories)
	r.Post("/games", s.handleCreateGame)
	r.Get("/games/open", s.handleOpenGames)
	r.Get("/games/open/watch", s.handleOpenGamesWatch)
	r.Post("/games/{id}/join", s.handleJoinGame)
	r.Post("/games/{id}/guess", s.handleGuess)
	r.Post("/games/{id}/word", s.handleRegenerateWord)
	r.Get("/games/{id}", s.handleGetGame)
	r.Post("/session/leave", s.handleLeave)
}

// handleCategories lists the fixed category set and supported languages.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	_ = json.NewEncoder(w).Encode(map[string]any{
		"categories": words.Categories(),
		"languages":  words.Languages,
	})
}

// handleCreateGame opens a new waiting match. The word is optional:
// when omitted it is drawn from the category's catalog for the
// requested language (default Portuguese).
func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Category string `json:"category"`
		Word     string `json:"word"`
		Language string `json:"language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"error":"invalid_json"}`, http.StatusBadRequest)
		return
	}

	word := body.Word
	if word == "" {
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		var err error
		word, err = match.SelectRandomWord(body.Category, words.Catalog(body.Language), rng)
		if err != nil {
			writeGameErr(w, err)
			return
		}
	}

	ctrl := s.sessionFor(s.ensureDeviceID(w, r))
	id, err := ctrl.CreateGame(r.Context(), body.Category, word)
	if err != nil {
		writeGameErr(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]string{"gameId": id})
}

// handleOpenGames is the one-shot browse list: waiting matches, newest
// first, one page.
func (s *Server) handleOpenGames(w http.ResponseWriter, r *http.Request) {
	s.ensureDeviceID(w, r)
	games, err := s.store.QueryByStatus(r.Context(), match.StatusWaiting, session.OpenGamesPageSize)
	if err != nil {
		writeGameErr(w, err)
		return
	}
	// Query order is unspecified; the list is presented newest first.
	sort.Slice(games, func(i, j int) bool {
		return games[i].CreatedAt.After(games[j].CreatedAt)
	})
	out := make([]openGameView, 0, len(games))
	for _, g := range games {
		out = append(out, openGameView{
			ID:         g.ID,
			Category:   g.Category,
			WordLength: len(g.SecretWord),
			CreatedAt:  g.CreatedAt,
		})
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"games": out})
}

// handleJoinGame claims a waiting match for this device.
func (s *Server) handleJoinGame(w http.ResponseWriter, r *http.Request) {
	ctrl := s.sessionFor(s.ensureDeviceID(w, r))
	g, err := ctrl.JoinGame(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeGameErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(toView(g))
}

// handleGuess submits one letter. Throttled per device; a terminal
// outcome also lands in match history and stats for signed-in players.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	deviceID := s.ensureDeviceID(w, r)
	if !s.limiterFor(deviceID).Allow() {
		http.Error(w, `{"error":"rate_limited"}`, http.StatusTooManyRequests)
		return
	}

	var body struct {
		Letter string `json:"letter"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"error":"invalid_json"}`, http.StatusBadRequest)
		return
	}

	ctrl := s.sessionFor(deviceID)
	id := chi.URLParam(r, "id")
	if cur, ok := ctrl.Current(); !ok || cur.ID != id {
		writeGameErr(w, session.ErrNoActiveGame)
		return
	}

	outcome, g, err := ctrl.SubmitGuess(r.Context(), body.Letter)
	if err != nil {
		writeGameErr(w, err)
		return
	}

	if outcome == match.OutcomeWon || outcome == match.OutcomeLost {
		s.recordMatch(r, g, outcome == match.OutcomeWon)
	}

	resp := struct {
		Outcome string   `json:"outcome"`
		Game    gameView `json:"game"`
	}{Outcome: string(outcome), Game: toView(g)}
	_ = json.NewEncoder(w).Encode(resp)
}

// recordMatch persists history and bumps stats for a signed-in player.
// Best-effort: failures are logged and never affect the guess response.
func (s *Server) recordMatch(r *http.Request, g match.Game, won bool) {
	me, _ := r.Context().Value(ctxUserKey{}).(*authUser)
	if me == nil {
		return
	}
	status := "lost"
	if won {
		status = "won"
	}
	tx, err := s.db.Begin()
	if err != nil {
		logErr(err, "match history tx")
		return
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.Exec(`INSERT INTO match_history (user_id, game_id, category, status, wrong_guesses, finished_at)
	                      VALUES (?,?,?,?,?,?)`,
		me.ID, g.ID, g.Category, status, g.WrongGuesses, time.Now().UTC().Format(time.RFC3339)); err != nil {
		logErr(err, "match history insert")
		return
	}
	if err := s.bumpStats(tx, me.ID, won); err != nil {
		logErr(err, "stats update")
		return
	}
	if err := tx.Commit(); err != nil {
		logErr(err, "match history commit")
	}
}

// handleRegenerateWord swaps the secret of the caller's created game
// before anyone has guessed. Omitting the word redraws from the catalog.
func (s *Server) handleRegenerateWord(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Word     string `json:"word"`
		Language string `json:"language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"error":"invalid_json"}`, http.StatusBadRequest)
		return
	}

	ctrl := s.sessionFor(s.ensureDeviceID(w, r))
	id := chi.URLParam(r, "id")
	cur, ok := ctrl.Current()
	if !ok || cur.ID != id {
		writeGameErr(w, session.ErrNoCreatedGame)
		return
	}

	word := body.Word
	if word == "" {
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		var err error
		word, err = match.SelectRandomWord(cur.Category, words.Catalog(body.Language), rng)
		if err != nil {
			writeGameErr(w, err)
			return
		}
	}

	if err := ctrl.RegenerateWord(r.Context(), word); err != nil {
		writeGameErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// handleGetGame re-reads the caller's active match from the store,
// reconciling any optimistic local state.
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	ctrl := s.sessionFor(s.ensureDeviceID(w, r))
	id := chi.URLParam(r, "id")
	if cur, ok := ctrl.Current(); !ok || cur.ID != id {
		writeGameErr(w, session.ErrNoActiveGame)
		return
	}
	g, err := ctrl.Refresh(r.Context())
	if err != nil {
		writeGameErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(toView(g))
}

// handleLeave drops the caller's local session state (menu navigation).
func (s *Server) handleLeave(w http.ResponseWriter, r *http.Request) {
	ctrl := s.sessionFor(s.ensureDeviceID(w, r))
	ctrl.Leave()
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// limiterFor returns the per-device guess throttle: a small burst, then
// roughly three guesses per second.
func (s *Server) limiterFor(deviceID string) *rate.Limiter {
	s.limMu.Lock()
	defer s.limMu.Unlock()
	if l, ok := s.limiters[deviceID]; ok {
		return l
	}
	l := rate.NewLimiter(rate.Every(300*time.Millisecond), 5)
	s.limiters[deviceID] = l
	return l
}
