package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Voice session errors
	ErrNotInVoiceChannel = fmt.Errorf("user is not in a voice channel")
	ErrNoActiveSession   = fmt.Errorf("no active session for this guild")
	ErrNothingPlaying    = fmt.Errorf("nothing is playing")

	// Resolution and provider errors
	ErrNoSearchResults     = fmt.Errorf("no search results")
	ErrResolutionFailed    = fmt.Errorf("could not resolve a playable source")
	ErrInvalidPlaylistURL  = fmt.Errorf("invalid playlist URL")
	ErrProviderUnavailable = fmt.Errorf("provider unavailable")

	// Persistence errors
	ErrPersistenceFailed = fmt.Errorf("persistence failed")

	// Interaction errors
	ErrSelectionTimedOut = fmt.Errorf("selection timed out")
)
