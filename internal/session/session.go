package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/chorus-bot/chorus/internal/models"
	"github.com/chorus-bot/chorus/internal/shared"
)

// placeholderTitle is rendered when a queued track's metadata is missing
// from the cache.
const placeholderTitle = "Unknown Track"

// Session owns the playback state of a single guild: the live voice
// connection, the pending queue and the single current track.
//
// Every mutation runs under the session mutex. Queue advancement is driven
// by the connection's finished signal: one signal arrives per started track,
// and the watcher goroutine promotes the next entry in response. Commands
// never advance the queue themselves, they only stop the current track and
// let the signal do the rest, so natural track ends and skips share one code
// path.
type Session struct {
	guildID string
	conn    Connection
	cache   *MetadataCache
	logger  *log.Logger

	mu      sync.Mutex
	queue   []models.QueuedTrack
	current *models.QueuedTrack
	paused  bool
	closed  bool

	done chan struct{}
}

// TrackStatus is the rendered view of one queued or playing track.
type TrackStatus struct {
	ID        string
	Title     string
	Artist    string
	SourceURL string
	Requester string
}

// Snapshot is a point-in-time view of a session's playback state, taken
// atomically under the session mutex.
type Snapshot struct {
	GuildID string
	Current *TrackStatus
	Queue   []TrackStatus
	Paused  bool
}

func newSession(guildID string, conn Connection, cache *MetadataCache, logger *log.Logger) *Session {
	return &Session{
		guildID: guildID,
		conn:    conn,
		cache:   cache,
		logger:  shared.WithLogger(logger, "guild", guildID),
		done:    make(chan struct{}),
	}
}

// GuildID returns the owning guild's ID.
func (s *Session) GuildID() string {
	return s.guildID
}

// Enqueue appends a track to the queue, starting playback immediately when
// the session is idle. Returns the zero-based queue position the track
// landed at and whether it started playing.
func (s *Session) Enqueue(ctx context.Context, track models.QueuedTrack) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, false, shared.ErrNoActiveSession
	}

	if s.current == nil {
		if err := s.conn.Play(ctx, track.SourceURL); err != nil {
			return 0, false, fmt.Errorf("failed to start playback: %w", err)
		}
		s.current = &track
		s.paused = false
		return 0, true, nil
	}

	s.queue = append(s.queue, track)
	return len(s.queue), false, nil
}

// Skip stops the current track; the finished signal promotes the next entry.
func (s *Session) Skip() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return shared.ErrNothingPlaying
	}

	s.conn.Stop()
	return nil
}

// Pause suspends the current track.
func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return shared.ErrNothingPlaying
	}
	if err := s.conn.Pause(); err != nil {
		return err
	}
	s.paused = true
	return nil
}

// Resume continues a paused track.
func (s *Session) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return shared.ErrNothingPlaying
	}
	if err := s.conn.Resume(); err != nil {
		return err
	}
	s.paused = false
	return nil
}

// Stop clears the queue and halts playback. Idempotent: stopping an idle
// session is a no-op. State is cleared before the connection stop so the
// late finished signal finds nothing to advance.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	playing := s.current != nil
	s.queue = nil
	s.current = nil
	s.paused = false

	if playing {
		s.conn.Stop()
	}
}

// Status returns an atomic snapshot of the current track and pending queue.
// Tracks whose metadata fell out of the cache render with a placeholder
// title and their raw source URL.
func (s *Session) Status() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{GuildID: s.guildID, Paused: s.paused}
	if s.current != nil {
		st := s.trackStatus(*s.current)
		snap.Current = &st
	}
	for _, track := range s.queue {
		snap.Queue = append(snap.Queue, s.trackStatus(track))
	}
	return snap
}

// trackStatus resolves display metadata for a queued track. Callers hold the
// session mutex; the cache has its own lock.
func (s *Session) trackStatus(track models.QueuedTrack) TrackStatus {
	st := TrackStatus{
		ID:        track.ID,
		SourceURL: track.SourceURL,
		Requester: track.Requester,
		Title:     placeholderTitle,
	}
	if md, ok := s.cache.Get(track.ID); ok {
		st.Title = md.Title
		st.Artist = md.Artist
	}
	return st
}

// watch consumes finished signals until the session closes.
func (s *Session) watch() {
	for {
		select {
		case _, ok := <-s.conn.Finished():
			if !ok {
				return
			}
			s.advance(context.Background())
		case <-s.done:
			return
		}
	}
}

// advance drops the finished track and starts the next queued entry. A
// finished signal arriving after Stop cleared the state is a no-op. A track
// that fails to start produces no finished signal of its own, so the loop
// keeps promoting until something plays or the queue drains.
func (s *Session) advance(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.current == nil {
		return
	}

	for {
		if len(s.queue) == 0 {
			s.current = nil
			s.paused = false
			return
		}

		next := s.queue[0]
		s.queue = s.queue[1:]

		if err := s.conn.Play(ctx, next.SourceURL); err != nil {
			s.logger.Error("failed to start queued track, skipping", "track", next.ID, "error", err)
			continue
		}

		s.current = &next
		s.paused = false
		return
	}
}

// Close tears down the session and its connection. Safe to call more than
// once.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.queue = nil
	s.current = nil
	s.mu.Unlock()

	close(s.done)
	return s.conn.Close()
}
