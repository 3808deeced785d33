// internal/sound/sound.go
//
// Audio cue interface. The guess flow emits a cue per outcome; playback
// is fire-and-forget and failures are never allowed to block or fail a
// guess. This is the one place where swallowing an error (with a log)
// is acceptable.

package sound

import "github.com/rs/zerolog"

// Cue names the short sound to play for a guess outcome.
type Cue string

const (
	CueCorrect Cue = "correct"
	CueWrong   Cue = "wrong"
	CueWon     Cue = "won"
	CueLost    Cue = "lost"
)

// Player plays a cue. Implementations must return quickly and must not
// propagate playback failures.
type Player interface {
	Play(c Cue)
}

type nop struct{}

func (nop) Play(Cue) {}

// Nop returns a Player that does nothing.
func Nop() Player { return nop{} }

type logPlayer struct {
	log zerolog.Logger
}

// NewLogPlayer returns a Player that records cues to the log, standing
// in for a real audio backend on headless deployments.
func NewLogPlayer(log zerolog.Logger) Player {
	return &logPlayer{log: log}
}

func (p *logPlayer) Play(c Cue) {
	p.log.Debug().Str("cue", string(c)).Msg("sound cue")
}
