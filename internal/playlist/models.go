// Package playlist implements user playlists: named, optionally public song
// lists that can be loaded into the player wholesale.
package playlist

import (
	"time"

	"github.com/swayam25/Aero/internal/song"
)

// Playlist is a persisted song list. Songs are stored denormalized as the
// same enhanced records the queue uses, so loading a playlist into the
// player needs no extra provider lookups.
type Playlist struct {
	ID        string              `json:"id"`
	OwnerID   string              `json:"ownerId"`
	Name      string              `json:"name"`
	Cover     string              `json:"cover,omitempty"`
	Songs     []song.EnhancedSong `json:"songs"`
	IsPublic  bool                `json:"isPublic"`
	CreatedAt time.Time           `json:"createdAt"`
}
