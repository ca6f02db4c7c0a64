package room

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"
)

// EventTopic is the room-scoped broadcast channel name.
func EventTopic(roomID string) string {
	return "room:" + roomID + ":events"
}

// Publisher fans playback events out to a room's live channel. Delivery is
// best-effort: no acknowledgement, no retry, failures are logged and
// swallowed, and receivers assume no ordering across events.
type Publisher struct {
	rdb *redis.Client
}

func NewPublisher(rdb *redis.Client) *Publisher {
	return &Publisher{rdb: rdb}
}

// Publish sends one event to the room channel. Callers must only invoke it
// after the corresponding persisted mutation succeeded.
func (p *Publisher) Publish(ctx context.Context, roomID, event string, payload map[string]any) {
	if p == nil || p.rdb == nil {
		return
	}
	body := map[string]any{
		"type":    "room." + event,
		"payload": payload,
	}
	data, err := json.Marshal(body)
	if err != nil {
		log.Printf("room: marshal %s event: %v", event, err)
		return
	}
	if err := p.rdb.Publish(ctx, EventTopic(roomID), string(data)).Err(); err != nil {
		log.Printf("room: publish %s event: %v", event, err)
	}
}
