// Package player wraps the embeddable playback backend behind a reduced
// state machine and owns the per-tab player session.
package player

import "errors"

// ErrNoPlayer is returned by every command that needs the underlying embed
// before it was initialized. It is a recoverable no-op signal, not a fault.
var ErrNoPlayer = errors.New("player: no player instance")

// Status is the reduced player state machine.
type Status string

const (
	StatusUnstarted Status = "unstarted"
	StatusEnded     Status = "ended"
	StatusPlaying   Status = "playing"
	StatusPaused    Status = "paused"
	StatusBuffering Status = "buffering"
	StatusCued      Status = "cued"
)

// StatusFromCode maps the provider-specific numeric state codes to the
// reduced state machine. Unknown codes report ok=false and must be ignored.
func StatusFromCode(code int) (Status, bool) {
	switch code {
	case -1:
		return StatusUnstarted, true
	case 0:
		return StatusEnded, true
	case 1:
		return StatusPlaying, true
	case 2:
		return StatusPaused, true
	case 3:
		return StatusBuffering, true
	case 5:
		return StatusCued, true
	default:
		return "", false
	}
}

// Embed is the embeddable player driven by an opaque song id. It emits
// state-change codes through the callback passed to the factory.
type Embed interface {
	LoadByID(id string) error
	Play() error
	Pause() error
	Stop() error
	SeekTo(seconds float64, allowSeekAhead bool) error
	SetVolume(volume int) error
	SetLoop(loop bool) error
	CurrentTime() (float64, error)
	Duration() (float64, error)
}

// EmbedFactory builds the embed on first use. The session passes its state
// change handler so provider codes flow back into the state machine.
type EmbedFactory func(onStateChange func(code int)) (Embed, error)
