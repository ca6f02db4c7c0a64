package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/swayam25/Aero/internal/song"
)

func mkSong(id string) song.EnhancedSong {
	return song.EnhancedSong{ID: id, Name: "song " + id, Artist: "artist"}
}

func ids(q *Queue) []string {
	out := []string{}
	for _, s := range q.Songs() {
		out = append(out, s.ID)
	}
	return out
}

func TestQueue_Enqueue(t *testing.T) {
	t.Run("appends at tail", func(t *testing.T) {
		q := New()
		q.Enqueue(mkSong("s1"))
		q.Enqueue(mkSong("s2"))
		assert.Equal(t, []string{"s1", "s2"}, ids(q))
	})

	t.Run("re-adding bumps to tail, preserves other order", func(t *testing.T) {
		q := New()
		q.Enqueue(mkSong("s1"))
		q.Enqueue(mkSong("s2"))
		q.Enqueue(mkSong("s3"))
		q.Enqueue(mkSong("s1"))
		assert.Equal(t, []string{"s2", "s3", "s1"}, ids(q))
	})

	t.Run("single entry re-added stays single", func(t *testing.T) {
		q := New()
		q.Enqueue(mkSong("s1"))
		q.Enqueue(mkSong("s1"))
		assert.Equal(t, []string{"s1"}, ids(q))
	})
}

func TestQueue_Dequeue(t *testing.T) {
	q := New()
	q.Enqueue(mkSong("s1"))
	q.Enqueue(mkSong("s2"))

	q.Dequeue("s1")
	assert.Equal(t, []string{"s2"}, ids(q))

	// Removing an absent id is a no-op.
	q.Dequeue("missing")
	assert.Equal(t, []string{"s2"}, ids(q))
}

func TestQueue_Next(t *testing.T) {
	build := func() *Queue {
		q := New()
		q.Enqueue(mkSong("s1"))
		q.Enqueue(mkSong("s2"))
		q.Enqueue(mkSong("s3"))
		return q
	}

	t.Run("advances and consumes current", func(t *testing.T) {
		q := build()
		next := q.Next(mkSong("s2"), false, LoopNone)
		assert.Equal(t, "s3", next.ID)
		assert.Equal(t, []string{"s1", "s3"}, ids(q))
	})

	t.Run("wraps from tail to head", func(t *testing.T) {
		q := build()
		next := q.Next(mkSong("s3"), false, LoopNone)
		assert.Equal(t, "s1", next.ID)
	})

	t.Run("unknown current defaults to head", func(t *testing.T) {
		q := build()
		next := q.Next(mkSong("zz"), false, LoopNone)
		assert.Equal(t, "s1", next.ID)
	})

	t.Run("loop single repeats current, queue unchanged", func(t *testing.T) {
		q := build()
		next := q.Next(mkSong("s2"), false, LoopSingle)
		assert.Equal(t, "s2", next.ID)
		assert.Equal(t, []string{"s1", "s2", "s3"}, ids(q))
	})

	t.Run("loop queue does not consume", func(t *testing.T) {
		q := build()
		next := q.Next(mkSong("s2"), false, LoopQueue)
		assert.Equal(t, "s3", next.ID)
		assert.Equal(t, []string{"s1", "s2", "s3"}, ids(q))
	})

	t.Run("shuffle excludes current", func(t *testing.T) {
		for i := 0; i < 50; i++ {
			q := build()
			next := q.Next(mkSong("s2"), true, LoopQueue)
			assert.NotEqual(t, "s2", next.ID)
		}
	})

	t.Run("shuffle with only current left repeats it", func(t *testing.T) {
		q := New()
		q.Enqueue(mkSong("s1"))
		next := q.Next(mkSong("s1"), true, LoopNone)
		assert.Equal(t, "s1", next.ID)
	})

	t.Run("shuffle pick is deterministic under injected rand", func(t *testing.T) {
		q := build()
		q.randIndex = func(n int) int { return n - 1 }
		next := q.Next(mkSong("s1"), true, LoopQueue)
		assert.Equal(t, "s3", next.ID)
	})

	t.Run("modulo walk over the whole queue", func(t *testing.T) {
		q := build()
		songs := q.Songs()
		for i, cur := range songs {
			want := songs[(i+1)%len(songs)].ID
			got := q.Next(cur, false, LoopQueue)
			assert.Equal(t, want, got.ID)
		}
	})
}

func TestQueue_Previous(t *testing.T) {
	build := func() *Queue {
		q := New()
		q.Enqueue(mkSong("s1"))
		q.Enqueue(mkSong("s2"))
		q.Enqueue(mkSong("s3"))
		return q
	}

	t.Run("walks backward", func(t *testing.T) {
		q := build()
		prev := q.Previous(mkSong("s2"), false, LoopNone)
		assert.Equal(t, "s1", prev.ID)
	})

	t.Run("wraps from head to tail", func(t *testing.T) {
		q := build()
		prev := q.Previous(mkSong("s1"), false, LoopNone)
		assert.Equal(t, "s3", prev.ID)
	})

	t.Run("never consumes", func(t *testing.T) {
		q := build()
		q.Previous(mkSong("s2"), false, LoopNone)
		assert.Equal(t, []string{"s1", "s2", "s3"}, ids(q))
	})

	t.Run("modulo walk over the whole queue", func(t *testing.T) {
		q := build()
		songs := q.Songs()
		for i, cur := range songs {
			want := songs[(i-1+len(songs))%len(songs)].ID
			got := q.Previous(cur, false, LoopNone)
			assert.Equal(t, want, got.ID)
		}
	})
}

func TestQueue_Replace(t *testing.T) {
	q := New()
	q.Enqueue(mkSong("old"))

	q.Replace([]song.EnhancedSong{mkSong("a"), mkSong("b"), mkSong("a")})
	assert.Equal(t, []string{"b", "a"}, ids(q))
}

func TestQueue_Reorder(t *testing.T) {
	q := New()
	q.Enqueue(mkSong("s1"))
	q.Enqueue(mkSong("s2"))
	q.Enqueue(mkSong("s3"))

	t.Run("applies permutation", func(t *testing.T) {
		q.Reorder([]string{"s3", "s1", "s2"})
		assert.Equal(t, []string{"s3", "s1", "s2"}, ids(q))
	})

	t.Run("unknown ids ignored, missing ids dropped", func(t *testing.T) {
		q.Reorder([]string{"s2", "ghost", "s3"})
		assert.Equal(t, []string{"s2", "s3"}, ids(q))
	})
}
