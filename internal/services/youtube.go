// YouTube implementation of [SearchProvider] and [PlaylistLister]
//
// Free-text search goes through the InnerTube search client; song lookups for
// catalog imports try YouTube Music first and fall back to plain search.
// Playlist flat-listing shells out to yt-dlp so large playlists cost a single
// subprocess instead of one request per entry.
package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/chorus-bot/chorus/internal/models"
	"github.com/chorus-bot/chorus/internal/shared"
	"github.com/lrstanley/go-ytdlp"
	"github.com/ppalone/ytsearch"
	"github.com/raitonoberu/ytmusic"
)

const watchURLPrefix = "https://www.youtube.com/watch?v="

// YouTubeService implements [SearchProvider] and [PlaylistLister].
//
// The three function fields are seams for tests; NewYouTubeService wires the
// real clients.
type YouTubeService struct {
	searchFn func(ctx context.Context, query string) ([]models.Candidate, error)
	songFn   func(name, artist string) ([]models.Candidate, error)
	listFn   func(ctx context.Context, playlistURL string, max int) ([]models.PlaylistEntry, error)
}

// NewYouTubeService creates a YouTube service backed by the real search
// clients and yt-dlp.
func NewYouTubeService() *YouTubeService {
	return &YouTubeService{
		searchFn: searchVideos,
		songFn:   searchMusicTracks,
		listFn:   flatListPlaylist,
	}
}

// ResolveDirect resolves a user-supplied string into one playable candidate.
//
// A well-formed http(s) URL is returned as-is without validation; whether it
// actually streams is the player's problem. Anything else runs a single
// search and takes the top usable hit.
func (y *YouTubeService) ResolveDirect(ctx context.Context, input string) (models.Candidate, error) {
	input = strings.TrimSpace(input)
	if isDirectURL(input) {
		return models.Candidate{SourceURL: input}, nil
	}

	candidates, err := y.Search(ctx, input, 1)
	if err != nil {
		return models.Candidate{}, err
	}
	if !candidates[0].Playable() {
		return models.Candidate{}, fmt.Errorf("%w: top result for %q has no source", shared.ErrResolutionFailed, input)
	}
	return candidates[0], nil
}

// Search returns up to limit playable candidates for a query. Results without
// a source URL are dropped, and duplicate title/artist pairs collapse to the
// first hit so disambiguation menus don't offer the same track twice. No
// retries: a transport failure surfaces immediately as
// [shared.ErrProviderUnavailable].
func (y *YouTubeService) Search(ctx context.Context, query string, limit int) ([]models.Candidate, error) {
	if limit <= 0 {
		limit = 5
	}

	results, err := y.searchFn(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrProviderUnavailable, err)
	}

	seen := make(map[string]bool, limit)
	candidates := make([]models.Candidate, 0, limit)
	for _, c := range results {
		if !c.Playable() {
			continue
		}
		key := shared.NormalizeTrackKey(c.Title, c.Artist)
		if seen[key] {
			continue
		}
		seen[key] = true
		candidates = append(candidates, c)
		if len(candidates) == limit {
			break
		}
	}

	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: %q", shared.ErrNoSearchResults, query)
	}
	return candidates, nil
}

// SearchSong finds the best playable match for a track name and artist.
// YouTube Music is tried first since catalog tracks are songs; a miss falls
// back to one plain search over the combined query.
func (y *YouTubeService) SearchSong(ctx context.Context, name, artist string) (models.Candidate, error) {
	query := strings.TrimSpace(name + " " + artist)

	if tracks, err := y.songFn(name, artist); err == nil {
		for _, c := range tracks {
			if c.Playable() {
				return c, nil
			}
		}
	}

	candidates, err := y.Search(ctx, query, 1)
	if err != nil {
		return models.Candidate{}, err
	}
	return candidates[0], nil
}

// ListPlaylist flat-lists a playlist hosted on the video platform.
func (y *YouTubeService) ListPlaylist(ctx context.Context, playlistURL string, max int) ([]models.PlaylistEntry, error) {
	entries, err := y.listFn(ctx, playlistURL, max)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrProviderUnavailable, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: playlist listed no entries", shared.ErrNoSearchResults)
	}
	return entries, nil
}

// isDirectURL reports whether the input parses as an absolute http(s) URL.
func isDirectURL(input string) bool {
	u, err := url.Parse(input)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// searchVideos queries the InnerTube search endpoint.
func searchVideos(ctx context.Context, query string) ([]models.Candidate, error) {
	c := ytsearch.NewClient(nil)
	r, err := c.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	candidates := make([]models.Candidate, 0, len(r.Results))
	for _, v := range r.Results {
		if v.VideoID == "" {
			continue
		}
		candidates = append(candidates, models.Candidate{
			Title:     v.Title,
			SourceURL: watchURLPrefix + v.VideoID,
		})
	}
	return candidates, nil
}

// searchMusicTracks queries YouTube Music's track search.
func searchMusicTracks(name, artist string) ([]models.Candidate, error) {
	s := ytmusic.TrackSearch(strings.TrimSpace(name + " " + artist))
	r, err := s.Next()
	if err != nil {
		return nil, err
	}

	candidates := make([]models.Candidate, 0, len(r.Tracks))
	for _, t := range r.Tracks {
		if t.VideoID == "" {
			continue
		}
		c := models.Candidate{
			Title:     t.Title,
			SourceURL: watchURLPrefix + t.VideoID,
		}
		if len(t.Artists) > 0 {
			c.Artist = t.Artists[0].Name
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

// flatListPlaylist shells out to yt-dlp in flat-playlist mode, printing one
// tab-separated line per entry.
func flatListPlaylist(ctx context.Context, playlistURL string, max int) ([]models.PlaylistEntry, error) {
	cmd := ytdlp.New().
		FlatPlaylist().
		Print("%(url)s\t%(title)s\t%(uploader)s\t%(duration)s").
		NoWarnings().
		IgnoreConfig()
	if max > 0 {
		cmd = cmd.PlaylistItems(fmt.Sprintf("1-%d", max))
	}

	res, err := cmd.Run(ctx, playlistURL)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(strings.TrimSpace(res.Stdout), "\n")
	entries := make([]models.PlaylistEntry, 0, len(lines))
	for _, line := range lines {
		parts := strings.Split(line, "\t")
		if len(parts) < 4 {
			continue
		}
		d, _ := time.ParseDuration(parts[3] + "s")
		entries = append(entries, models.PlaylistEntry{
			SourceURL: parts[0],
			Title:     parts[1],
			Uploader:  parts[2],
			Duration:  d,
		})
	}
	return entries, nil
}
