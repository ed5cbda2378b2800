package session

import "context"

// Connection is a live voice connection able to play one track at a time.
//
// Implementations deliver exactly one signal on Finished for every started
// track, whether it ended naturally or was stopped.
type Connection interface {
	// Play starts streaming the source. Only one track plays at a time;
	// callers serialize through the session.
	Play(ctx context.Context, sourceURL string) error

	// Stop halts the current track, if any. The finished signal for that
	// track still fires.
	Stop()

	// Pause suspends audio without ending the track.
	Pause() error

	// Resume continues a paused track.
	Resume() error

	// Finished yields one signal per started track. The channel closes when
	// the connection closes.
	Finished() <-chan struct{}

	// Close tears down the connection and releases the channel.
	Close() error
}

// VoiceTransport opens voice connections to guild channels.
type VoiceTransport interface {
	Join(ctx context.Context, guildID, channelID string) (Connection, error)
}

// ChannelLocator finds which voice channel a user currently occupies.
type ChannelLocator interface {
	// UserChannel returns the channel ID, or an error wrapping
	// [shared.ErrNotInVoiceChannel] when the user is not connected.
	UserChannel(guildID, userID string) (string, error)
}
