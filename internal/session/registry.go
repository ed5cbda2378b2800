package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/chorus-bot/chorus/internal/shared"
)

// Registry maps guild IDs to live sessions. At most one session exists per
// guild; joining a guild that already has one replaces it, closing the old
// connection first so no voice handle leaks.
type Registry struct {
	transport VoiceTransport
	locator   ChannelLocator
	cache     *MetadataCache
	logger    *log.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry. The metadata cache is shared by all
// sessions it creates.
func NewRegistry(transport VoiceTransport, locator ChannelLocator, cache *MetadataCache, logger *log.Logger) *Registry {
	return &Registry{
		transport: transport,
		locator:   locator,
		cache:     cache,
		logger:    logger,
		sessions:  make(map[string]*Session),
	}
}

// Join connects to the voice channel the user currently occupies and
// registers a session for the guild. An existing session for the guild is
// closed and replaced, which makes re-joining after moving channels
// idempotent from the user's point of view.
func (r *Registry) Join(ctx context.Context, guildID, userID string) (*Session, error) {
	channelID, err := r.locator.UserChannel(guildID, userID)
	if err != nil {
		return nil, err
	}

	conn, err := r.transport.Join(ctx, guildID, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to join voice channel: %w", err)
	}

	sess := newSession(guildID, conn, r.cache, r.logger)

	r.mu.Lock()
	old := r.sessions[guildID]
	r.sessions[guildID] = sess
	r.mu.Unlock()

	if old != nil {
		if err := old.Close(); err != nil {
			r.logger.Warn("failed to close replaced session", "guild", guildID, "error", err)
		}
	}

	go sess.watch()
	return sess, nil
}

// Get returns the guild's live session.
func (r *Registry) Get(guildID string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[guildID]
	if !ok {
		return nil, shared.ErrNoActiveSession
	}
	return sess, nil
}

// Leave closes and removes the guild's session.
func (r *Registry) Leave(guildID string) error {
	r.mu.Lock()
	sess, ok := r.sessions[guildID]
	delete(r.sessions, guildID)
	r.mu.Unlock()

	if !ok {
		return shared.ErrNoActiveSession
	}
	return sess.Close()
}

// Shutdown closes every live session. Called at process exit.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, sess := range r.sessions {
		sessions = append(sessions, sess)
	}
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, sess := range sessions {
		if err := sess.Close(); err != nil {
			r.logger.Warn("failed to close session during shutdown", "guild", sess.GuildID(), "error", err)
		}
	}
}
