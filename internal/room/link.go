package room

import (
	"context"

	"github.com/swayam25/Aero/internal/song"
)

// Link bridges a player session to one room: persisted writes go through the
// store, events through the publisher. It satisfies the session's room
// dependency for the host; members attach no link and receive state through
// the syncer instead.
type Link struct {
	store  *Store
	pub    *Publisher
	roomID string
	userID string
	host   bool
}

// NewLink resolves the user's authority against the room once, at attach
// time. Host status does not change for the lifetime of a room.
func NewLink(store *Store, pub *Publisher, r *Room, userID string) *Link {
	return &Link{
		store:  store,
		pub:    pub,
		roomID: r.ID,
		userID: userID,
		host:   IsHost(r, userID),
	}
}

func (l *Link) IsHost() bool { return l.host }

func (l *Link) PlayInRoom(ctx context.Context, s song.EnhancedSong) error {
	return l.store.SetNowPlaying(ctx, l.roomID, s)
}

func (l *Link) AddToQueue(ctx context.Context, s song.EnhancedSong) error {
	return l.store.AddSongToQueue(ctx, l.roomID, s)
}

func (l *Link) RemoveFromQueue(ctx context.Context, songID string) error {
	return l.store.RemoveSongFromQueue(ctx, l.roomID, songID)
}

func (l *Link) SetQueue(ctx context.Context, songs []song.EnhancedSong) error {
	return l.store.SetQueue(ctx, l.roomID, songs)
}

func (l *Link) SendEvent(name string, payload map[string]any) {
	l.pub.Publish(context.Background(), l.roomID, name, payload)
}
