package room

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/swayam25/Aero/internal/player"
	"github.com/swayam25/Aero/internal/queue"
	"github.com/swayam25/Aero/internal/song"
)

// Event is the broadcast envelope. Type carries the "room." prefix; Payload
// stays raw until the type is known and decodes into the matching struct.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type playPayload struct {
	Queue      []song.EnhancedSong `json:"queue"`
	NowPlaying song.EnhancedSong   `json:"nowPlaying"`
}

type songPayload struct {
	Song song.EnhancedSong `json:"song"`
}

type seekPayload struct {
	Time float64 `json:"time"`
}

type loopPayload struct {
	Loop string `json:"loop"`
}

type shufflePayload struct {
	Shuffle bool `json:"shuffle"`
}

// RoomFetcher reads the persisted room row for reconciliation. The store
// satisfies it directly; remote tabs use an HTTP-backed implementation.
type RoomFetcher interface {
	GetRoom(ctx context.Context, id string) (Room, error)
}

// Syncer drives a member's player session from the room's broadcast channel.
// Events are applied as they arrive; anything missed while disconnected is
// recovered by Reconcile, never by replay.
type Syncer struct {
	session *player.Session
	fetcher RoomFetcher
	roomID  string
}

func NewSyncer(session *player.Session, fetcher RoomFetcher, roomID string) *Syncer {
	return &Syncer{
		session: session,
		fetcher: fetcher,
		roomID:  roomID,
	}
}

// Apply decodes one broadcast message and replays it into the session.
// Unknown event types are skipped, not errors: hosts may broadcast event
// kinds this build does not know yet.
func (sy *Syncer) Apply(data []byte) error {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return fmt.Errorf("decode event: %w", err)
	}

	name := strings.TrimPrefix(ev.Type, "room.")
	switch name {
	case "play":
		var p playPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return fmt.Errorf("decode play payload: %w", err)
		}
		return sy.session.ApplyPlay(p.Queue, p.NowPlaying)

	case "pause":
		return sy.session.ApplyPause()

	case "resume":
		return sy.session.ApplyResume()

	case "skip":
		var p songPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return fmt.Errorf("decode skip payload: %w", err)
		}
		return sy.session.ApplySkip(p.Song)

	case "previous":
		var p songPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return fmt.Errorf("decode previous payload: %w", err)
		}
		return sy.session.ApplyPrevious(p.Song)

	case "seek":
		var p seekPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return fmt.Errorf("decode seek payload: %w", err)
		}
		return sy.session.ApplySeek(p.Time)

	case "loop":
		var p loopPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return fmt.Errorf("decode loop payload: %w", err)
		}
		return sy.session.ApplyLoop(queue.Loop(p.Loop))

	case "shuffle":
		var p shufflePayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return fmt.Errorf("decode shuffle payload: %w", err)
		}
		return sy.session.ApplyShuffle(p.Shuffle)

	case "host_disconnect":
		sy.session.ApplyHostDisconnect()
		return nil

	default:
		log.Printf("room: skipping unknown event %q", ev.Type)
		return nil
	}
}

// Reconcile replaces the session's queue and now-playing with the persisted
// room row. Called on (re)connect and whenever the channel is suspected to
// have dropped messages.
func (sy *Syncer) Reconcile(ctx context.Context) error {
	r, err := sy.fetcher.GetRoom(ctx, sy.roomID)
	if err != nil {
		return err
	}
	sy.session.Reconcile(r.Queue, r.NowPlaying)
	return nil
}
