package player

import (
	"github.com/swayam25/Aero/internal/queue"
	"github.com/swayam25/Aero/internal/song"
)

// Apply* methods replay host broadcast events into a member session. They
// bypass the authority gate and never persist or re-broadcast anything; each
// one is safe to apply independently of delivery order.

// ApplyPlay loads the host's now-playing song and adopts its queue.
func (s *Session) ApplyPlay(songs []song.EnhancedSong, nowPlaying song.EnhancedSong) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureEmbedLocked(); err != nil {
		return err
	}
	s.queue.Replace(songs)
	s.nowPlaying = &nowPlaying
	s.embed.LoadByID(nowPlaying.ID)
	s.embed.Play()
	s.enforceQueuePolicyLocked()
	s.notifyLocked()
	return nil
}

// ApplyPause pauses local playback.
func (s *Session) ApplyPause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.embed == nil {
		return ErrNoPlayer
	}
	s.embed.Pause()
	return nil
}

// ApplyResume resumes local playback.
func (s *Session) ApplyResume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.embed == nil {
		return ErrNoPlayer
	}
	s.embed.Play()
	return nil
}

// ApplySkip jumps to the song the host skipped to. The event names the
// target song outright, so members do not advance a pointer of their own;
// the consumed entry is dropped locally unless the whole queue loops.
func (s *Session) ApplySkip(next song.EnhancedSong) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureEmbedLocked(); err != nil {
		return err
	}
	if s.nowPlaying != nil && s.loop != queue.LoopQueue {
		s.queue.Dequeue(s.nowPlaying.ID)
	}
	s.nowPlaying = &next
	s.embed.LoadByID(next.ID)
	s.embed.Play()
	s.enforceQueuePolicyLocked()
	s.notifyLocked()
	return nil
}

// ApplyPrevious jumps to the song the host stepped back to. Never consumes.
func (s *Session) ApplyPrevious(prev song.EnhancedSong) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureEmbedLocked(); err != nil {
		return err
	}
	s.nowPlaying = &prev
	s.embed.LoadByID(prev.ID)
	s.embed.Play()
	s.notifyLocked()
	return nil
}

// ApplySeek mirrors the host's seek position.
func (s *Session) ApplySeek(seconds float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.embed == nil {
		return ErrNoPlayer
	}
	s.embed.SeekTo(seconds, true)
	s.current = seconds
	s.notifyLocked()
	return nil
}

// ApplyLoop mirrors the host's loop mode.
func (s *Session) ApplyLoop(loop queue.Loop) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.embed != nil {
		s.embed.SetLoop(loop == queue.LoopQueue)
	}
	s.loop = loop
	s.notifyLocked()
	return nil
}

// ApplyShuffle mirrors the host's shuffle flag.
func (s *Session) ApplyShuffle(shuffle bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shuffle = shuffle
	s.notifyLocked()
	return nil
}

// ApplyHostDisconnect tears playback down after the room is gone.
func (s *Session) ApplyHostDisconnect() {
	s.Stop()
}

// Reconcile replaces the local queue and now-playing wholesale with the
// persisted room row. Missed broadcast events are never replayed; the
// fetched row is the ground truth.
func (s *Session) Reconcile(songs []song.EnhancedSong, nowPlaying *song.EnhancedSong) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue.Replace(songs)
	s.nowPlaying = nowPlaying
	s.enforceQueuePolicyLocked()
	s.notifyLocked()
}
