package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/chorus-bot/chorus/internal/models"
	"github.com/chorus-bot/chorus/internal/shared"
)

// fakeSearch returns a YouTubeService whose search seam yields the given
// candidates (or error).
func fakeSearch(results []models.Candidate, err error) *YouTubeService {
	return &YouTubeService{
		searchFn: func(ctx context.Context, query string) ([]models.Candidate, error) {
			return results, err
		},
	}
}

func TestYouTubeService(t *testing.T) {
	ctx := context.Background()

	t.Run("ResolveDirect", func(t *testing.T) {
		t.Run("URL Passes Through Untouched", func(t *testing.T) {
			svc := fakeSearch(nil, errors.New("search must not run"))

			c, err := svc.ResolveDirect(ctx, "https://example.com/watch?v=abc")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if c.SourceURL != "https://example.com/watch?v=abc" {
				t.Errorf("expected URL to pass through, got %q", c.SourceURL)
			}
		})

		t.Run("Query Takes Top Hit", func(t *testing.T) {
			svc := fakeSearch([]models.Candidate{
				{Title: "First", SourceURL: "https://yt/1"},
				{Title: "Second", SourceURL: "https://yt/2"},
			}, nil)

			c, err := svc.ResolveDirect(ctx, "some song")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if c.Title != "First" {
				t.Errorf("expected top hit, got %q", c.Title)
			}
		})

		t.Run("No Hits", func(t *testing.T) {
			svc := fakeSearch(nil, nil)

			if _, err := svc.ResolveDirect(ctx, "obscure query"); !errors.Is(err, shared.ErrNoSearchResults) {
				t.Errorf("expected ErrNoSearchResults, got %v", err)
			}
		})

		t.Run("Scheme Without Host Is A Query", func(t *testing.T) {
			svc := fakeSearch([]models.Candidate{{Title: "Hit", SourceURL: "https://yt/1"}}, nil)

			c, err := svc.ResolveDirect(ctx, "https:something")
			if err != nil {
				t.Fatalf("expected search fallback, got %v", err)
			}
			if c.Title != "Hit" {
				t.Errorf("expected search hit, got %+v", c)
			}
		})
	})

	t.Run("Search", func(t *testing.T) {
		t.Run("Filters Unplayable And Truncates", func(t *testing.T) {
			results := []models.Candidate{
				{Title: "No URL"},
				{Title: "A", SourceURL: "https://yt/a"},
				{Title: "B", SourceURL: "https://yt/b"},
				{Title: "C", SourceURL: "https://yt/c"},
			}
			svc := fakeSearch(results, nil)

			candidates, err := svc.Search(ctx, "query", 2)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(candidates) != 2 {
				t.Fatalf("expected 2 candidates, got %d", len(candidates))
			}
			if candidates[0].Title != "A" || candidates[1].Title != "B" {
				t.Errorf("unexpected candidates: %+v", candidates)
			}
		})

		t.Run("Collapses Duplicate Tracks", func(t *testing.T) {
			results := []models.Candidate{
				{Title: "Kashmir", Artist: "Led Zeppelin", SourceURL: "https://yt/a"},
				{Title: "  kashmir ", Artist: "LED ZEPPELIN", SourceURL: "https://yt/b"},
				{Title: "Kashmir", Artist: "Escala", SourceURL: "https://yt/c"},
			}
			svc := fakeSearch(results, nil)

			candidates, err := svc.Search(ctx, "kashmir", 5)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(candidates) != 2 {
				t.Fatalf("expected duplicate collapsed, got %d candidates", len(candidates))
			}
			if candidates[0].SourceURL != "https://yt/a" || candidates[1].SourceURL != "https://yt/c" {
				t.Errorf("unexpected candidates: %+v", candidates)
			}
		})

		t.Run("Transport Failure", func(t *testing.T) {
			svc := fakeSearch(nil, fmt.Errorf("connection reset"))

			if _, err := svc.Search(ctx, "query", 5); !errors.Is(err, shared.ErrProviderUnavailable) {
				t.Errorf("expected ErrProviderUnavailable, got %v", err)
			}
		})

		t.Run("All Results Unplayable", func(t *testing.T) {
			svc := fakeSearch([]models.Candidate{{Title: "No URL"}}, nil)

			if _, err := svc.Search(ctx, "query", 5); !errors.Is(err, shared.ErrNoSearchResults) {
				t.Errorf("expected ErrNoSearchResults, got %v", err)
			}
		})
	})

	t.Run("SearchSong", func(t *testing.T) {
		t.Run("Music Match Wins", func(t *testing.T) {
			svc := &YouTubeService{
				songFn: func(name, artist string) ([]models.Candidate, error) {
					return []models.Candidate{{Title: "Music Hit", Artist: artist, SourceURL: "https://ytm/1"}}, nil
				},
				searchFn: func(ctx context.Context, query string) ([]models.Candidate, error) {
					t.Error("plain search should not run when music search hits")
					return nil, nil
				},
			}

			c, err := svc.SearchSong(ctx, "Song", "Artist")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if c.Title != "Music Hit" {
				t.Errorf("expected music hit, got %q", c.Title)
			}
		})

		t.Run("Falls Back To Plain Search", func(t *testing.T) {
			svc := &YouTubeService{
				songFn: func(name, artist string) ([]models.Candidate, error) {
					return nil, errors.New("music search down")
				},
				searchFn: func(ctx context.Context, query string) ([]models.Candidate, error) {
					if query != "Song Artist" {
						t.Errorf("expected combined query, got %q", query)
					}
					return []models.Candidate{{Title: "Plain Hit", SourceURL: "https://yt/1"}}, nil
				},
			}

			c, err := svc.SearchSong(ctx, "Song", "Artist")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if c.Title != "Plain Hit" {
				t.Errorf("expected plain search fallback, got %q", c.Title)
			}
		})

		t.Run("Both Miss", func(t *testing.T) {
			svc := &YouTubeService{
				songFn: func(name, artist string) ([]models.Candidate, error) {
					return nil, nil
				},
				searchFn: func(ctx context.Context, query string) ([]models.Candidate, error) {
					return nil, nil
				},
			}

			if _, err := svc.SearchSong(ctx, "Song", "Artist"); !errors.Is(err, shared.ErrNoSearchResults) {
				t.Errorf("expected ErrNoSearchResults, got %v", err)
			}
		})
	})

	t.Run("ListPlaylist", func(t *testing.T) {
		t.Run("Returns Entries", func(t *testing.T) {
			svc := &YouTubeService{
				listFn: func(ctx context.Context, playlistURL string, max int) ([]models.PlaylistEntry, error) {
					return []models.PlaylistEntry{
						{Title: "One", SourceURL: "https://yt/1"},
						{Title: "Two", SourceURL: "https://yt/2"},
					}, nil
				},
			}

			entries, err := svc.ListPlaylist(ctx, "https://yt/playlist?list=x", 0)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(entries) != 2 {
				t.Errorf("expected 2 entries, got %d", len(entries))
			}
		})

		t.Run("Listing Failure", func(t *testing.T) {
			svc := &YouTubeService{
				listFn: func(ctx context.Context, playlistURL string, max int) ([]models.PlaylistEntry, error) {
					return nil, errors.New("yt-dlp exited 1")
				},
			}

			if _, err := svc.ListPlaylist(ctx, "https://yt/playlist?list=x", 0); !errors.Is(err, shared.ErrProviderUnavailable) {
				t.Errorf("expected ErrProviderUnavailable, got %v", err)
			}
		})

		t.Run("Empty Listing", func(t *testing.T) {
			svc := &YouTubeService{
				listFn: func(ctx context.Context, playlistURL string, max int) ([]models.PlaylistEntry, error) {
					return nil, nil
				},
			}

			if _, err := svc.ListPlaylist(ctx, "https://yt/playlist?list=x", 0); !errors.Is(err, shared.ErrNoSearchResults) {
				t.Errorf("expected ErrNoSearchResults, got %v", err)
			}
		})
	})

	t.Run("isDirectURL", func(t *testing.T) {
		tc := []struct {
			input string
			want  bool
		}{
			{"https://example.com/watch?v=abc", true},
			{"http://example.com", true},
			{"ftp://example.com", false},
			{"just a search query", false},
			{"https:no-host", false},
			{"", false},
		}

		for _, tt := range tc {
			if got := isDirectURL(tt.input); got != tt.want {
				t.Errorf("isDirectURL(%q) = %v, want %v", tt.input, got, tt.want)
			}
		}
	})
}
