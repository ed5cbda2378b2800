// Spotify implementation of [CatalogProvider]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/chorus-bot/chorus/internal/models"
	"github.com/chorus-bot/chorus/internal/shared"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// Spotify caps the playlist tracks page size at 100.
	playlistPageLimit = 100
)

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Type       string          `json:"type"` // "track" or "episode"
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
}

// SpotifyPlaylistTrack represents a track within a playlist context.
type SpotifyPlaylistTrack struct {
	AddedAt string        `json:"added_at"`
	Track   *SpotifyTrack `json:"track"` // null for ghost entries
}

// SpotifyPaginatedTracks represents one page of a playlist's tracks.
type SpotifyPaginatedTracks struct {
	Items  []SpotifyPlaylistTrack `json:"items"`
	Total  int                    `json:"total"`
	Limit  int                    `json:"limit"`
	Offset int                    `json:"offset"`
	Next   *string                `json:"next"`
}

// SpotifyService implements [CatalogProvider] against the Spotify Web API.
//
// Uses the client-credentials grant: the bot only reads public playlists, so
// there is no user to send through an authorization flow. Page fetches are
// paced by a rate limiter to stay clear of 429s on large playlists.
type SpotifyService struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewSpotifyService creates a Spotify catalog service with the given
// application credentials.
func NewSpotifyService(clientID, clientSecret string) (*SpotifyService, error) {
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("%w: spotify client_id and client_secret are required", shared.ErrInvalidConfig)
	}

	config := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyTokenURL,
	}

	return &SpotifyService{
		baseURL:    spotifyBaseURL,
		httpClient: config.Client(context.Background()),
		limiter:    rate.NewLimiter(rate.Limit(10), 1),
	}, nil
}

// ExtractPlaylistID pulls the playlist ID out of a share URL or URI.
//
// Accepts the spotify:playlist:<id> URI form and any URL whose path contains
// a /playlist/<id> segment; query strings (si=, utm_*) are ignored.
func (s *SpotifyService) ExtractPlaylistID(input string) (string, error) {
	input = strings.TrimSpace(input)

	if id, ok := strings.CutPrefix(input, "spotify:playlist:"); ok {
		if id == "" {
			return "", fmt.Errorf("%w: empty playlist ID in %q", shared.ErrInvalidPlaylistURL, input)
		}
		return id, nil
	}

	u, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrInvalidPlaylistURL, err)
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, seg := range segments {
		if seg == "playlist" && i+1 < len(segments) && segments[i+1] != "" {
			return segments[i+1], nil
		}
	}

	return "", fmt.Errorf("%w: no playlist segment in %q", shared.ErrInvalidPlaylistURL, input)
}

// PlaylistTracks fetches every track of a playlist, paging at the API's
// maximum page size until the catalog reports no next page.
//
// Episodes and ghost entries (null track objects) are skipped silently; a
// failed page aborts the whole fetch rather than returning a partial listing.
func (s *SpotifyService) PlaylistTracks(ctx context.Context, playlistID string) ([]models.CatalogTrack, error) {
	var tracks []models.CatalogTrack
	offset := 0

	for {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrProviderUnavailable, err)
		}

		endpoint := fmt.Sprintf("/playlists/%s/tracks?limit=%d&offset=%d", url.PathEscape(playlistID), playlistPageLimit, offset)

		var page SpotifyPaginatedTracks
		if err := s.doRequest(ctx, http.MethodGet, endpoint, &page); err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			if item.Track == nil || item.Track.Type != "track" || item.Track.Name == "" {
				continue
			}

			track := models.CatalogTrack{
				Name:     item.Track.Name,
				Album:    item.Track.Album.Name,
				Duration: time.Duration(item.Track.DurationMS) * time.Millisecond,
			}
			if len(item.Track.Artists) > 0 {
				track.Artist = item.Track.Artists[0].Name
			}
			tracks = append(tracks, track)
		}

		if page.Next == nil {
			break
		}
		offset += playlistPageLimit
	}

	return tracks, nil
}

// doRequest performs an authenticated HTTP request against the catalog API.
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, result any) error {
	apiURL := s.baseURL + endpoint

	req, err := http.NewRequestWithContext(ctx, method, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: spotify API status %d", shared.ErrProviderUnavailable, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("%w: failed to decode response: %v", shared.ErrProviderUnavailable, err)
		}
	}

	return nil
}
