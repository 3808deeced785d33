// main.go
//
// forca-duo: a two-player hangman service. One device creates a match
// with a secret word, another joins and guesses letter by letter.
//
// Startup order:
//  1. Load .env (optional) and configure logging.
//  2. Load the word catalogs (embedded, overridable via env).
//  3. Open SQLite and apply the schema.
//  4. Pick the game record store backend (sqlite or memory).
//  5. Serve HTTP until SIGINT/SIGTERM, then drain.
//
// Useful env vars:
//   PORT          listen port (default 8080)
//   DB_PATH       SQLite file (default data/forca.db)
//   GAMES_STORE   "sqlite" (default) or "memory"
//   LOG_LEVEL     zerolog level (default info)
//   CLIENT_ORIGIN CORS origin for the web client
//   JWT_SECRET    token signing secret (set this in production)
//   DAILY_SALT    seed for the shared daily word

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/forcaduo/server/internal/httpserver"
	"github.com/forcaduo/server/internal/store"
	"github.com/forcaduo/server/internal/words"
)

func main() {
	_ = godotenv.Load() // absent .env is fine

	level, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.With().Timestamp().Str("svc", "forca-duo").Logger()

	if err := words.Init(); err != nil {
		log.Fatal().Err(err).Msg("word catalog load failed")
	}
	langs, total := words.Stats()
	log.Info().Int("languages", langs).Int("words", total).Msg("word catalogs loaded")

	db, err := openDB(getEnv("DB_PATH", "data/forca.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("open database failed")
	}
	defer db.Close()
	if err := migrate(db); err != nil {
		log.Fatal().Err(err).Msg("schema migration failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var st store.Store
	switch getEnv("GAMES_STORE", "sqlite") {
	case "memory":
		st = store.NewMemory()
		log.Info().Msg("game records: in-memory store")
	default:
		st, err = store.NewSQLite(ctx, db)
		if err != nil {
			log.Fatal().Err(err).Msg("game record store init failed")
		}
		log.Info().Msg("game records: sqlite store")
	}

	srv := httpserver.New(st, db)
	addr := ":" + getEnv("PORT", "8080")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", addr).Msg("listening")
		return srv.Start(addr)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info().Msg("shutting down")
		return srv.Shutdown(shutCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server exited with error")
	}
	log.Info().Msg("bye")
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
