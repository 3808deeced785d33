// internal/httpserver/ws.go
//
// Live browse list over WebSocket. Each connected client gets a full
// snapshot of the joinable matches on every change, piggybacking on the
// store's subscription feed.

package httpserver

import (
	"net/http"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/forcaduo/server/internal/match"
	"github.com/forcaduo/server/internal/session"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 30 * time.Second
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		allowed := os.Getenv("CLIENT_ORIGIN")
		if allowed == "" {
			allowed = "http://localhost:5173"
		}
		return origin == "" || origin == allowed
	},
}

type openGamesMsg struct {
	Games []openGameView `json:"games"`
}

// handleOpenGamesWatch upgrades to WebSocket and pushes the waiting
// list, newest first, whenever it changes. The subscription is released
// when the socket closes, so no message is ever delivered to a gone
// client.
func (s *Server) handleOpenGamesWatch(w http.ResponseWriter, r *http.Request) {
	s.ensureDeviceID(w, r)
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	var writeMu sync.Mutex
	send := func(snap []match.Game) error {
		sort.Slice(snap, func(i, j int) bool {
			return snap[i].CreatedAt.After(snap[j].CreatedAt)
		})
		msg := openGamesMsg{Games: make([]openGameView, 0, len(snap))}
		for _, g := range snap {
			msg.Games = append(msg.Games, openGameView{
				ID:         g.ID,
				Category:   g.Category,
				WordLength: len(g.SecretWord),
				CreatedAt:  g.CreatedAt,
			})
		}
		writeMu.Lock()
		defer writeMu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		return conn.WriteJSON(msg)
	}

	done := make(chan struct{})
	var closeOnce sync.Once
	closeDone := func() { closeOnce.Do(func() { close(done) }) }

	cancel := s.store.Subscribe(match.StatusWaiting, session.OpenGamesPageSize,
		func(snap []match.Game) {
			if err := send(snap); err != nil {
				closeDone()
			}
		},
		func(err error) {
			log.Warn().Err(err).Msg("open-games feed error")
		},
	)
	defer cancel()

	// Reader goroutine: consume control frames, detect close.
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	go func() {
		defer closeDone()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			writeMu.Lock()
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			err := conn.WriteMessage(websocket.PingMessage, nil)
			writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
