// Package queue implements the shared playback queue: an ordered list of
// enhanced songs with dedup-by-id semantics and the shuffle/loop selection
// policy for next/previous.
package queue

import (
	"math/rand"

	"github.com/swayam25/Aero/internal/song"
)

// Loop modes for advance selection.
type Loop string

const (
	LoopNone   Loop = "none"
	LoopSingle Loop = "single"
	LoopQueue  Loop = "queue"
)

// Queue is an ordered sequence of songs. No two entries share a song id.
// The zero value is an empty queue ready for use. Queue is not safe for
// concurrent use; the owning session serializes access.
type Queue struct {
	items []song.EnhancedSong

	// randIndex picks a random index in [0,n); swapped out in tests.
	randIndex func(n int) int
}

func New() *Queue {
	return &Queue{}
}

func (q *Queue) randInt(n int) int {
	if q.randIndex != nil {
		return q.randIndex(n)
	}
	return rand.Intn(n)
}

// Len returns the number of queued songs.
func (q *Queue) Len() int { return len(q.items) }

// Songs returns a copy of the queue in playback order.
func (q *Queue) Songs() []song.EnhancedSong {
	out := make([]song.EnhancedSong, len(q.items))
	copy(out, q.items)
	return out
}

// Enqueue removes any existing entry with the same id and appends s at the
// tail. Re-adding an already queued song bumps it to the end.
func (q *Queue) Enqueue(s song.EnhancedSong) {
	q.Dequeue(s.ID)
	q.items = append(q.items, s)
}

// Dequeue removes the entry with the given id. Removing an absent id is a
// no-op, not an error.
func (q *Queue) Dequeue(id string) {
	for i, it := range q.items {
		if it.ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return
		}
	}
}

// Contains reports whether a song with the given id is queued.
func (q *Queue) Contains(id string) bool {
	return q.indexOf(id) >= 0
}

// Clear drops every entry.
func (q *Queue) Clear() {
	q.items = nil
}

// Replace swaps the whole queue for the given songs, deduplicating by id
// (last occurrence wins position of first, matching Enqueue semantics).
func (q *Queue) Replace(songs []song.EnhancedSong) {
	q.items = nil
	for _, s := range songs {
		q.Enqueue(s)
	}
}

// Reorder rearranges the queue to match the given id order. Ids not present
// in the queue are ignored; queued songs missing from the order are dropped.
func (q *Queue) Reorder(ids []string) {
	reordered := make([]song.EnhancedSong, 0, len(q.items))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if i := q.indexOf(id); i >= 0 {
			reordered = append(reordered, q.items[i])
		}
	}
	q.items = reordered
}

func (q *Queue) indexOf(id string) int {
	for i, it := range q.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// Next selects the song to play after current and applies consume-on-advance:
// unless loop is LoopQueue, the consumed current entry is removed from the
// queue.
//
// Selection policy:
//   - loop single: the current song repeats, queue untouched.
//   - shuffle: uniformly random among entries excluding the current id; if
//     only the current song remains, it repeats.
//   - otherwise: entry after current, wrapping to the head; an unknown
//     current defaults to the head.
func (q *Queue) Next(current song.EnhancedSong, shuffle bool, loop Loop) song.EnhancedSong {
	if loop == LoopSingle {
		return current
	}
	if len(q.items) == 0 {
		return current
	}

	var next song.EnhancedSong
	if shuffle {
		next = q.pickRandomExcluding(current.ID)
	} else {
		// An unknown current has index -1, so the wrap lands on the head.
		idx := q.indexOf(current.ID)
		next = q.items[(idx+1)%len(q.items)]
	}

	if loop != LoopQueue {
		q.Dequeue(current.ID)
	}
	return next
}

// Previous mirrors Next but walks backward and never consumes entries.
func (q *Queue) Previous(current song.EnhancedSong, shuffle bool, loop Loop) song.EnhancedSong {
	if loop == LoopSingle {
		return current
	}
	if len(q.items) == 0 {
		return current
	}

	if shuffle {
		return q.pickRandomExcluding(current.ID)
	}

	idx := q.indexOf(current.ID)
	if idx <= 0 {
		return q.items[len(q.items)-1]
	}
	return q.items[idx-1]
}

func (q *Queue) pickRandomExcluding(id string) song.EnhancedSong {
	candidates := make([]song.EnhancedSong, 0, len(q.items))
	for _, it := range q.items {
		if it.ID != id {
			candidates = append(candidates, it)
		}
	}
	if len(candidates) == 0 {
		// Only the current song remains; repeat it.
		return q.items[0]
	}
	return candidates[q.randInt(len(candidates))]
}
