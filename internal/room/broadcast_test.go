package room

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventTopic(t *testing.T) {
	assert.Equal(t, "room:abc:events", EventTopic("abc"))
}

func TestPublisherPublishesToRoomChannel(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	ctx := context.Background()
	sub := rdb.Subscribe(ctx, EventTopic("room-1"))
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	pub := NewPublisher(rdb)
	pub.Publish(ctx, "room-1", "pause", nil)

	select {
	case msg := <-sub.Channel():
		var ev Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &ev))
		assert.Equal(t, "room.pause", ev.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}
}

func TestPublisherSwallowsFailures(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mr.Close()
	defer rdb.Close()

	// Must not panic or block when the broker is gone.
	NewPublisher(rdb).Publish(context.Background(), "room-1", "pause", nil)
	NewPublisher(nil).Publish(context.Background(), "room-1", "pause", nil)
}
