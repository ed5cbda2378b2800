// package services defines provider adapters for track search and catalog playlists
package services

import (
	"context"

	"github.com/chorus-bot/chorus/internal/models"
)

// SearchProvider resolves free-text input into playable track candidates.
type SearchProvider interface {
	// ResolveDirect resolves a user-supplied string into a single playable
	// candidate. A well-formed http(s) URL passes through untouched; anything
	// else runs one search and takes the top hit.
	ResolveDirect(ctx context.Context, input string) (models.Candidate, error)

	// Search returns up to limit playable candidates for a query.
	// Candidates without a usable source URL are filtered out before the
	// limit is applied.
	Search(ctx context.Context, query string, limit int) ([]models.Candidate, error)

	// SearchSong finds the best playable match for a known track name and
	// artist, as produced by the catalog provider.
	SearchSong(ctx context.Context, name, artist string) (models.Candidate, error)
}

// CatalogProvider reads playlists from a music catalog that has track
// metadata but no playable streams (Spotify).
type CatalogProvider interface {
	// ExtractPlaylistID pulls the playlist ID out of a share URL or URI.
	ExtractPlaylistID(input string) (string, error)

	// PlaylistTracks fetches every track of a playlist, paging through the
	// catalog API. Non-track entries (episodes) are skipped.
	PlaylistTracks(ctx context.Context, playlistID string) ([]models.CatalogTrack, error)
}

// PlaylistLister flat-lists playlists hosted on the video platform itself,
// yielding one entry per item without per-entry round-trips.
type PlaylistLister interface {
	ListPlaylist(ctx context.Context, playlistURL string, max int) ([]models.PlaylistEntry, error)
}
