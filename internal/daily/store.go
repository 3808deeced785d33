package daily

import (
	"context"
	"database/sql"
)

// Result is one player's finished daily match.
type Result struct {
	UserID       string `json:"userId"`
	Date         string `json:"date"`
	Category     string `json:"category"`
	Won          bool   `json:"won"`
	WrongGuesses int    `json:"wrongGuesses"`
	ElapsedMs    int    `json:"elapsedMs"`
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// AlreadyPlayed reports whether the user has a recorded result for the
// date; one daily match per user per day.
func (s *Store) AlreadyPlayed(ctx context.Context, userID, date string) (bool, error) {
	var cnt int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM daily_results WHERE user_id=? AND date=?",
		userID, date,
	).Scan(&cnt)
	return cnt > 0, err
}

// InsertResult records a finished daily match. Replays are ignored via
// the UNIQUE(user_id, date) constraint.
func (s *Store) InsertResult(ctx context.Context, r Result) error {
	won := 0
	if r.Won {
		won = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO daily_results(user_id, date, category, won, wrong_guesses, elapsed_ms)
		 VALUES(?,?,?,?,?,?)`, r.UserID, r.Date, r.Category, won, r.WrongGuesses, r.ElapsedMs,
	)
	return err
}

// LBRow is one leaderboard entry: winners ranked by fewest wrong
// guesses, then fastest.
type LBRow struct {
	UserID       string `json:"userId"`
	WrongGuesses int    `json:"wrongGuesses"`
	ElapsedMs    int    `json:"elapsedMs"`
}

func (s *Store) Leaderboard(ctx context.Context, date string, limit int) ([]LBRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, wrong_guesses, elapsed_ms
		 FROM daily_results
		 WHERE date=? AND won=1
		 ORDER BY wrong_guesses ASC, elapsed_ms ASC, created_at ASC
		 LIMIT ?`, date, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []LBRow
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.UserID, &r.WrongGuesses, &r.ElapsedMs); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
