// Package room implements collaborative listening rooms: the persisted room
// row, the command API that mutates it, the host-only event broadcaster and
// the member-side sync that replays events into a local player session.
package room

import (
	"errors"
	"time"

	"github.com/swayam25/Aero/internal/song"
)

// Member is the cached profile snapshot stored alongside a user id in the
// room row. Membership is keyed by ID; re-joining overwrites the snapshot
// (last-write-wins).
type Member struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
}

// Room is the persisted room row. The queue and now-playing snapshot mirror
// the host's local player state; they are rewritten on every host mutation
// and are the ground truth members reconcile against.
type Room struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	PasswordHash string              `json:"-"` // empty means passwordless
	HostUserID   string              `json:"hostUserId"`
	Host         Member              `json:"host"`
	Members      []Member            `json:"members"`
	Queue        []song.EnhancedSong `json:"queue"`
	NowPlaying   *song.EnhancedSong  `json:"nowPlaying,omitempty"`
	IsPublic     bool                `json:"isPublic"`
	CreatedAt    time.Time           `json:"createdAt"`
}

// HasPassword reports whether joining requires a password.
func (r *Room) HasPassword() bool { return r.PasswordHash != "" }

// IsMember reports whether the user id is in the member set. The host is
// never a member.
func (r *Room) IsMember(userID string) bool {
	for _, m := range r.Members {
		if m.ID == userID {
			return true
		}
	}
	return false
}

// IsHost resolves write authority for a user against a room. A nil room
// (no room context at all) defaults to true: solo playback reuses the host
// command paths and must not be gated.
func IsHost(r *Room, userID string) bool {
	if r == nil {
		return true
	}
	return r.HostUserID == userID
}

// ErrNotFound marks absent rooms. Distinct from authorization failures so
// probing room existence never leaks whether a password would have matched.
var ErrNotFound = errors.New("room: not found")
