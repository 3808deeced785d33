// internal/httpserver/routes_daily.go
//
// Daily word: every player gets the same deterministic category/word
// per UTC day. The match runs solo through the regular session
// machinery; results land in daily_results and feed a per-day
// leaderboard. One attempt per player per day.

package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/forcaduo/server/internal/daily"
	"github.com/forcaduo/server/internal/match"
	"github.com/forcaduo/server/internal/session"
	"github.com/forcaduo/server/internal/words"
)

// dailySession tracks one in-flight daily attempt (for elapsed time and
// finish dedup). Keyed by player|date.
type dailySession struct {
	GameID   string
	Category string
	Start    time.Time
	Finished bool
}

var (
	dailyMu       sync.Mutex
	dailySessions = map[string]*dailySession{}
)

// mountDaily registers the daily word endpoints.
func (s *Server) mountDaily(r chi.Router) {
	r.Post("/daily/new", s.handleDailyNew)
	r.Post("/daily/{id}/guess", s.handleDailyGuess)
	r.Get("/daily/leaderboard", s.handleDailyLeaderboard)
}

// dailyPlayerID prefers the signed-in user id so results follow the
// account; guests fall back to the device id.
func (s *Server) dailyPlayerID(w http.ResponseWriter, r *http.Request) string {
	if me, _ := r.Context().Value(ctxUserKey{}).(*authUser); me != nil {
		return me.ID
	}
	return s.ensureDeviceID(w, r)
}

// handleDailyNew starts (or rejects) today's attempt.
func (s *Server) handleDailyNew(w http.ResponseWriter, r *http.Request) {
	uid := s.dailyPlayerID(w, r)
	date := daily.DateKey(time.Now())

	played, err := daily.NewStore(s.db).AlreadyPlayed(r.Context(), uid, date)
	if err != nil {
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	if played {
		_ = json.NewEncoder(w).Encode(map[string]any{"played": true, "date": date})
		return
	}

	var body struct {
		Language string `json:"language"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body) // body optional

	salt := getEnv("DAILY_SALT", "forca-daily-v1")
	category, word := daily.Pick(time.Now(), salt, words.Categories(), words.Catalog(body.Language))
	if word == "" {
		http.Error(w, `{"error":"catalog_miss"}`, http.StatusInternalServerError)
		return
	}

	ctrl := s.sessionFor(s.ensureDeviceID(w, r))
	g, err := ctrl.StartSolo(r.Context(), category, word)
	if err != nil {
		writeGameErr(w, err)
		return
	}

	dailyMu.Lock()
	dailySessions[uid+"|"+date] = &dailySession{
		GameID:   g.ID,
		Category: category,
		Start:    time.Now(),
	}
	dailyMu.Unlock()

	_ = json.NewEncoder(w).Encode(map[string]any{
		"played": false,
		"date":   date,
		"game":   toView(g),
	})
}

// handleDailyGuess routes a letter through the session controller and,
// on a terminal outcome, records the daily result exactly once.
func (s *Server) handleDailyGuess(w http.ResponseWriter, r *http.Request) {
	uid := s.dailyPlayerID(w, r)
	date := daily.DateKey(time.Now())

	dailyMu.Lock()
	sess := dailySessions[uid+"|"+date]
	dailyMu.Unlock()
	id := chi.URLParam(r, "id")
	if sess == nil || sess.GameID != id || sess.Finished {
		writeGameErr(w, session.ErrNoActiveGame)
		return
	}

	var body struct {
		Letter string `json:"letter"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"error":"invalid_json"}`, http.StatusBadRequest)
		return
	}

	ctrl := s.sessionFor(s.ensureDeviceID(w, r))
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
		dailyMu.Lock()
		sess.Finished = true
		elapsed := int(time.Since(sess.Start) / time.Millisecond)
		dailyMu.Unlock()

		err := daily.NewStore(s.db).InsertResult(r.Context(), daily.Result{
			UserID:       uid,
			Date:         date,
			Category:     sess.Category,
			Won:          outcome == match.OutcomeWon,
			WrongGuesses: g.WrongGuesses,
			ElapsedMs:    elapsed,
		})
		if err != nil {
			log.Warn().Err(err).Str("user", uid).Msg("daily result insert failed")
		}
	}

	_ = json.NewEncoder(w).Encode(struct {
		Outcome string   `json:"outcome"`
		Game    gameView `json:"game"`
	}{Outcome: string(outcome), Game: toView(g)})
}

// handleDailyLeaderboard returns the day's winners, fewest wrong
// guesses first, ties broken by speed. ?date=YYYY-MM-DD targets past
// days; default today.
func (s *Server) handleDailyLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(time.Now())
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	rows, err := daily.NewStore(s.db).Leaderboard(r.Context(), date, limit)
	if err != nil {
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []daily.LBRow{}
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"date": date, "rows": rows})
}
