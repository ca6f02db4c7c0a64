package player

import (
	"context"
	"sync"
	"time"

	"github.com/swayam25/Aero/internal/queue"
	"github.com/swayam25/Aero/internal/song"
)

// LyricsSource fetches lyrics for the now-playing song. The metadata
// provider client satisfies it.
type LyricsSource interface {
	GetLyrics(ctx context.Context, id string) ([]string, error)
}

// RoomLink is the host-side bridge to the room command API and the event
// broadcaster. A nil RoomLink means solo playback, which reuses the host
// code paths unchanged.
type RoomLink interface {
	// IsHost reports whether the session user has write authority over the
	// attached room.
	IsHost() bool

	// Persisted mutations. Each must complete before the matching event is
	// broadcast; a failed write sends no event.
	PlayInRoom(ctx context.Context, s song.EnhancedSong) error
	AddToQueue(ctx context.Context, s song.EnhancedSong) error
	RemoveFromQueue(ctx context.Context, songID string) error
	SetQueue(ctx context.Context, songs []song.EnhancedSong) error

	// SendEvent publishes a fire-and-forget playback event to the room.
	SendEvent(name string, payload map[string]any)
}

type Lyrics struct {
	Lines []string `json:"lines,omitempty"`
	Err   string   `json:"error,omitempty"`
}

// State is an immutable snapshot of the session handed to subscribers.
type State struct {
	Status        Status              `json:"status"`
	NowPlaying    *song.EnhancedSong  `json:"nowPlaying"`
	Queue         []song.EnhancedSong `json:"queue"`
	Shuffle       bool                `json:"shuffle"`
	Loop          queue.Loop          `json:"loop"`
	CurrentTime   float64             `json:"currentTime"`
	TotalDuration float64             `json:"totalDuration"`
	Volume        int                 `json:"volume"`
	ShowQueue     bool                `json:"showQueue"`
	ShowLyrics    bool                `json:"showLyrics"`
	Lyrics        Lyrics              `json:"lyrics"`
}

// Session owns the ephemeral per-tab player state. It is never persisted;
// hosts mirror their mutations into the room row through the RoomLink and
// members rebuild it from reconciliation reads. All mutation is funneled
// through methods; UI layers observe snapshots via Subscribe.
type Session struct {
	mu sync.Mutex

	factory EmbedFactory
	embed   Embed
	lyrics  LyricsSource
	room    RoomLink

	status     Status
	nowPlaying *song.EnhancedSong
	queue      *queue.Queue
	shuffle    bool
	loop       queue.Loop
	current    float64
	total      float64
	volume     int
	showQueue  bool
	showLyrics bool
	lyricsData Lyrics

	subs []chan State

	pollEvery time.Duration
	pollOnce  sync.Once
	stopPoll  chan struct{}
}

func NewSession(factory EmbedFactory, lyrics LyricsSource, room RoomLink) *Session {
	return &Session{
		factory:   factory,
		lyrics:    lyrics,
		room:      room,
		status:    StatusUnstarted,
		queue:     queue.New(),
		loop:      queue.LoopNone,
		volume:    100,
		pollEvery: 250 * time.Millisecond,
		stopPoll:  make(chan struct{}),
	}
}

// Subscribe registers an observer. Snapshots are delivered best-effort; a
// slow observer misses intermediate states, never blocks the session.
func (s *Session) Subscribe() <-chan State {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan State, 8)
	s.subs = append(s.subs, ch)
	return ch
}

// Snapshot returns the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() State {
	return State{
		Status:        s.status,
		NowPlaying:    s.nowPlaying,
		Queue:         s.queue.Songs(),
		Shuffle:       s.shuffle,
		Loop:          s.loop,
		CurrentTime:   s.current,
		TotalDuration: s.total,
		Volume:        s.volume,
		ShowQueue:     s.showQueue,
		ShowLyrics:    s.showLyrics,
		Lyrics:        s.lyricsData,
	}
}

func (s *Session) notifyLocked() {
	snap := s.snapshotLocked()
	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}

// Close stops the time-tracking loop. The session must not be used after
// Close.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.stopPoll:
	default:
		close(s.stopPoll)
	}
}

// isHost defaults to true when no room is attached: solo playback reuses
// the host command paths.
func (s *Session) isHost() bool {
	if s.room == nil {
		return true
	}
	return s.room.IsHost()
}

func (s *Session) sendEvent(name string, payload map[string]any) {
	if s.room == nil || !s.room.IsHost() {
		return
	}
	s.room.SendEvent(name, payload)
}

// ensureEmbedLocked lazily builds the underlying player on first use and
// starts the time-tracking loop.
func (s *Session) ensureEmbedLocked() error {
	if s.embed != nil {
		return nil
	}
	embed, err := s.factory(s.handleStateChange)
	if err != nil {
		return err
	}
	embed.SetVolume(s.volume)
	s.embed = embed
	s.pollOnce.Do(func() {
		go s.runTimeLoop()
	})
	return nil
}

// runTimeLoop samples current time and duration from the embed while the
// status is playing. The ticker keeps firing when paused but sampling is
// skipped; Close stops it for good.
func (s *Session) runTimeLoop() {
	ticker := time.NewTicker(s.pollEvery)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopPoll:
			return
		case <-ticker.C:
			s.sampleTime()
		}
	}
}

func (s *Session) sampleTime() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusPlaying || s.embed == nil {
		return
	}
	if cur, err := s.embed.CurrentTime(); err == nil {
		s.current = cur
	}
	if total, err := s.embed.Duration(); err == nil {
		s.total = total
	}
	s.notifyLocked()
}

// handleStateChange receives provider state codes from the embed. Reaching
// ended auto-invokes Skip; that is the sole automatic transition.
func (s *Session) handleStateChange(code int) {
	status, ok := StatusFromCode(code)
	if !ok {
		return
	}
	s.mu.Lock()
	s.status = status
	s.notifyLocked()
	s.mu.Unlock()

	if status == StatusEnded {
		s.Skip(context.Background())
	}
}

// Play loads and starts the given song. Unless fromQueue is set the song is
// also enqueued (bumped to the queue tail). Non-hosts inside a room only get
// their player initialized; their play intent never leaves the tab.
func (s *Session) Play(ctx context.Context, raw song.Song, fromQueue bool) error {
	s.mu.Lock()

	if !s.isHost() {
		err := s.ensureEmbedLocked()
		s.mu.Unlock()
		return err
	}

	if err := s.ensureEmbedLocked(); err != nil {
		s.mu.Unlock()
		return err
	}

	enhanced := song.Enhance(raw)
	s.nowPlaying = &enhanced
	s.embed.LoadByID(enhanced.ID)
	if !fromQueue {
		s.queue.Enqueue(enhanced)
	}
	s.embed.Play()
	queueCopy := s.queue.Songs()
	s.notifyLocked()
	s.mu.Unlock()

	if s.room != nil && s.room.IsHost() {
		if !fromQueue {
			if err := s.room.AddToQueue(ctx, enhanced); err != nil {
				return err
			}
		}
		if err := s.room.PlayInRoom(ctx, enhanced); err != nil {
			return err
		}
	}
	s.sendEvent("play", map[string]any{"queue": queueCopy, "nowPlaying": enhanced})

	s.fetchLyrics(ctx)
	return nil
}

// TogglePause flips play/pause based on the current status.
func (s *Session) TogglePause(ctx context.Context) error {
	s.mu.Lock()
	if s.embed == nil {
		s.mu.Unlock()
		return ErrNoPlayer
	}
	playing := s.status == StatusPlaying
	if playing {
		s.embed.Pause()
	} else {
		s.embed.Play()
	}
	s.mu.Unlock()

	if playing {
		s.sendEvent("pause", nil)
	} else {
		s.sendEvent("resume", nil)
	}
	return nil
}

// Skip advances to the next song per the queue selection policy.
func (s *Session) Skip(ctx context.Context) error {
	s.mu.Lock()
	if s.embed == nil {
		s.mu.Unlock()
		return ErrNoPlayer
	}

	if s.loop == queue.LoopSingle {
		s.embed.SeekTo(0, true)
		s.embed.Play()
		s.notifyLocked()
		s.mu.Unlock()
		return nil
	}

	var next *song.EnhancedSong
	if s.queue.Len() >= 2 && s.nowPlaying != nil {
		picked := s.queue.Next(*s.nowPlaying, s.shuffle, s.loop)
		next = &picked
		s.nowPlaying = next
		s.embed.LoadByID(next.ID)
		s.embed.Play()
	}
	s.enforceQueuePolicyLocked()
	s.notifyLocked()
	s.mu.Unlock()

	if next != nil {
		if s.room != nil && s.room.IsHost() {
			if err := s.room.PlayInRoom(ctx, *next); err != nil {
				return err
			}
		}
		s.sendEvent("skip", map[string]any{"song": *next})
		s.fetchLyrics(ctx)
	}
	return nil
}

// Previous steps back to the prior song. Unlike Skip it never consumes
// queue entries; with a single-entry queue (or loop single) it restarts the
// current song.
func (s *Session) Previous(ctx context.Context) error {
	s.mu.Lock()
	if s.embed == nil {
		s.mu.Unlock()
		return ErrNoPlayer
	}

	if s.queue.Len() <= 1 || s.loop == queue.LoopSingle {
		s.embed.SeekTo(0, true)
		s.embed.Play()
		s.notifyLocked()
		s.mu.Unlock()
		return nil
	}

	var prev *song.EnhancedSong
	if s.nowPlaying != nil {
		picked := s.queue.Previous(*s.nowPlaying, s.shuffle, s.loop)
		prev = &picked
		s.nowPlaying = prev
		s.embed.LoadByID(prev.ID)
		s.embed.Play()
	}
	s.notifyLocked()
	s.mu.Unlock()

	if prev != nil {
		if s.room != nil && s.room.IsHost() {
			if err := s.room.PlayInRoom(ctx, *prev); err != nil {
				return err
			}
		}
		s.sendEvent("previous", map[string]any{"song": *prev})
		s.fetchLyrics(ctx)
	}
	return nil
}

// AddToQueue enqueues a song locally and, for room hosts, persists the
// addition. Re-adding an already queued song bumps it to the tail.
func (s *Session) AddToQueue(ctx context.Context, raw song.Song) error {
	s.mu.Lock()
	if s.embed == nil {
		s.mu.Unlock()
		return ErrNoPlayer
	}
	enhanced := song.Enhance(raw)
	s.queue.Enqueue(enhanced)
	s.notifyLocked()
	s.mu.Unlock()

	if s.room != nil && s.room.IsHost() {
		return s.room.AddToQueue(ctx, enhanced)
	}
	return nil
}

// RemoveFromQueue drops a song from the queue; absent ids are a no-op.
func (s *Session) RemoveFromQueue(ctx context.Context, songID string) error {
	s.mu.Lock()
	if s.embed == nil {
		s.mu.Unlock()
		return ErrNoPlayer
	}
	s.queue.Dequeue(songID)
	s.enforceQueuePolicyLocked()
	s.notifyLocked()
	s.mu.Unlock()

	if s.room != nil && s.room.IsHost() {
		return s.room.RemoveFromQueue(ctx, songID)
	}
	return nil
}

// ClearQueue empties the local queue.
func (s *Session) ClearQueue() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.embed == nil {
		return ErrNoPlayer
	}
	s.queue.Clear()
	s.enforceQueuePolicyLocked()
	s.notifyLocked()
	return nil
}

// PlayList starts the given song and replaces the queue with the playlist
// rotated so playback continues after it: [song, after..., before...].
func (s *Session) PlayList(ctx context.Context, start song.Song, all []song.Song) error {
	if err := s.Play(ctx, start, true); err != nil {
		return err
	}

	idx := -1
	for i, raw := range all {
		if raw.ID == start.ID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil
	}

	rotated := make([]song.EnhancedSong, 0, len(all))
	rotated = append(rotated, song.Enhance(start))
	for _, raw := range all[idx+1:] {
		rotated = append(rotated, song.Enhance(raw))
	}
	for _, raw := range all[:idx] {
		rotated = append(rotated, song.Enhance(raw))
	}

	s.mu.Lock()
	s.queue.Replace(rotated)
	s.notifyLocked()
	s.mu.Unlock()

	if s.room != nil && s.room.IsHost() {
		return s.room.SetQueue(ctx, rotated)
	}
	return nil
}

// SetLoop switches the loop mode and mirrors it to the embed.
func (s *Session) SetLoop(ctx context.Context, loop queue.Loop) error {
	s.mu.Lock()
	if s.embed == nil {
		s.mu.Unlock()
		return ErrNoPlayer
	}
	s.embed.SetLoop(loop == queue.LoopQueue)
	s.loop = loop
	s.notifyLocked()
	s.mu.Unlock()

	s.sendEvent("loop", map[string]any{"loop": string(loop)})
	return nil
}

// SetShuffle toggles random selection on advance.
func (s *Session) SetShuffle(ctx context.Context, shuffle bool) error {
	s.mu.Lock()
	if s.embed == nil {
		s.mu.Unlock()
		return ErrNoPlayer
	}
	s.shuffle = shuffle
	s.notifyLocked()
	s.mu.Unlock()

	s.sendEvent("shuffle", map[string]any{"shuffle": shuffle})
	return nil
}

// SeekTo jumps to the given position in seconds.
func (s *Session) SeekTo(ctx context.Context, seconds float64) error {
	s.mu.Lock()
	if s.embed == nil {
		s.mu.Unlock()
		return ErrNoPlayer
	}
	s.embed.SeekTo(seconds, true)
	s.current = seconds
	s.notifyLocked()
	s.mu.Unlock()

	s.sendEvent("seek", map[string]any{"time": seconds})
	return nil
}

// SetVolume adjusts the embed volume (0-100). Local only, never broadcast.
func (s *Session) SetVolume(volume int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.embed == nil {
		return ErrNoPlayer
	}
	if volume < 0 {
		volume = 0
	} else if volume > 100 {
		volume = 100
	}
	s.embed.SetVolume(volume)
	s.volume = volume
	s.notifyLocked()
	return nil
}

// Stop halts playback and resets the session to its initial state.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.embed == nil {
		return ErrNoPlayer
	}
	s.embed.Stop()
	s.status = StatusUnstarted
	s.nowPlaying = nil
	s.queue.Clear()
	s.shuffle = false
	s.loop = queue.LoopNone
	s.current = 0
	s.total = 0
	s.showQueue = false
	s.showLyrics = false
	s.lyricsData = Lyrics{}
	s.notifyLocked()
	return nil
}

// ToggleQueuePanel flips the queue panel; the lyrics panel closes with it.
func (s *Session) ToggleQueuePanel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.showQueue = !s.showQueue
	s.showLyrics = false
	s.notifyLocked()
}

// ToggleLyricsPanel flips the lyrics panel; the queue panel closes with it.
func (s *Session) ToggleLyricsPanel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.showLyrics = !s.showLyrics
	s.showQueue = false
	s.notifyLocked()
}

// enforceQueuePolicyLocked force-disables shuffle and closes the queue panel
// once fewer than two songs remain. A 0-or-1-length queue cannot be
// meaningfully shuffled or browsed.
func (s *Session) enforceQueuePolicyLocked() {
	if s.queue.Len() < 2 {
		s.shuffle = false
		s.showQueue = false
	}
}

// fetchLyrics refreshes lyrics for the now-playing song. Best-effort: a miss
// shows up in the state, never as a command failure.
func (s *Session) fetchLyrics(ctx context.Context) {
	s.mu.Lock()
	np := s.nowPlaying
	s.mu.Unlock()

	var data Lyrics
	if s.lyrics == nil || np == nil {
		data = Lyrics{Err: "Lyrics not found"}
	} else if lines, err := s.lyrics.GetLyrics(ctx, np.ID); err != nil {
		data = Lyrics{Err: "Lyrics not found"}
	} else {
		data = Lyrics{Lines: lines}
	}

	s.mu.Lock()
	s.lyricsData = data
	s.notifyLocked()
	s.mu.Unlock()
}
