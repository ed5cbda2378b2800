package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/chorus-bot/chorus/internal/models"
	"github.com/chorus-bot/chorus/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func archiveBatch(n int) []models.ArchivedTrack {
	tracks := make([]models.ArchivedTrack, n)
	for i := range tracks {
		tracks[i] = models.ArchivedTrack{
			Position:  i,
			Title:     fmt.Sprintf("Track %d", i),
			Artist:    fmt.Sprintf("Artist %d", i),
			SourceURL: fmt.Sprintf("https://www.youtube.com/watch?v=vid%d", i),
			Duration:  time.Duration(120+i) * time.Second,
		}
	}
	return tracks
}

func TestTrackRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("RecordPlaylistTracks", func(t *testing.T) {
		t.Run("Persists Batch", func(t *testing.T) {
			db := setupTestDB(t)
			repo := NewTrackRepository(db)

			if err := repo.RecordPlaylistTracks(ctx, "pl1", archiveBatch(3)); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			count, err := CountPlaylistTracks(ctx, db, "pl1")
			if err != nil {
				t.Fatalf("failed to count tracks: %v", err)
			}
			if count != 3 {
				t.Errorf("expected 3 archived tracks, got %d", count)
			}
		})

		t.Run("Assigns IDs And Timestamps", func(t *testing.T) {
			db := setupTestDB(t)
			repo := NewTrackRepository(db)

			if err := repo.RecordPlaylistTracks(ctx, "pl1", archiveBatch(2)); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			tracks, err := repo.ListPlaylistTracks(ctx, "pl1")
			if err != nil {
				t.Fatalf("failed to list tracks: %v", err)
			}
			for _, track := range tracks {
				if track.ID == "" {
					t.Errorf("expected generated ID for position %d", track.Position)
				}
				if track.CreatedAt.IsZero() {
					t.Errorf("expected created_at for position %d", track.Position)
				}
			}
		})

		t.Run("Empty Batch Is A No-Op", func(t *testing.T) {
			db := setupTestDB(t)
			repo := NewTrackRepository(db)

			if err := repo.RecordPlaylistTracks(ctx, "pl1", nil); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			count, err := CountPlaylistTracks(ctx, db, "pl1")
			if err != nil {
				t.Fatalf("failed to count tracks: %v", err)
			}
			if count != 0 {
				t.Errorf("expected no rows, got %d", count)
			}
		})

		t.Run("Reimport Replaces Previous Listing", func(t *testing.T) {
			db := setupTestDB(t)
			repo := NewTrackRepository(db)

			if err := repo.RecordPlaylistTracks(ctx, "pl1", archiveBatch(5)); err != nil {
				t.Fatalf("first import failed: %v", err)
			}
			if err := repo.RecordPlaylistTracks(ctx, "pl1", archiveBatch(2)); err != nil {
				t.Fatalf("second import failed: %v", err)
			}

			tracks, err := repo.ListPlaylistTracks(ctx, "pl1")
			if err != nil {
				t.Fatalf("failed to list tracks: %v", err)
			}
			if len(tracks) != 2 {
				t.Errorf("expected 2 tracks after re-import, got %d", len(tracks))
			}
		})

		t.Run("Duplicate Position Rolls Back Batch", func(t *testing.T) {
			db := setupTestDB(t)
			repo := NewTrackRepository(db)

			batch := archiveBatch(3)
			batch[2].Position = 1

			err := repo.RecordPlaylistTracks(ctx, "pl1", batch)
			if !errors.Is(err, shared.ErrPersistenceFailed) {
				t.Fatalf("expected ErrPersistenceFailed, got %v", err)
			}

			count, err := CountPlaylistTracks(ctx, db, "pl1")
			if err != nil {
				t.Fatalf("failed to count tracks: %v", err)
			}
			if count != 0 {
				t.Errorf("expected rollback to leave no rows, got %d", count)
			}
		})

		t.Run("Playlists Are Independent", func(t *testing.T) {
			db := setupTestDB(t)
			repo := NewTrackRepository(db)

			if err := repo.RecordPlaylistTracks(ctx, "pl1", archiveBatch(3)); err != nil {
				t.Fatalf("first playlist failed: %v", err)
			}
			if err := repo.RecordPlaylistTracks(ctx, "pl2", archiveBatch(4)); err != nil {
				t.Fatalf("second playlist failed: %v", err)
			}

			tracks, err := repo.ListPlaylistTracks(ctx, "pl2")
			if err != nil {
				t.Fatalf("failed to list tracks: %v", err)
			}
			if len(tracks) != 4 {
				t.Errorf("expected 4 tracks for pl2, got %d", len(tracks))
			}
		})
	})

	t.Run("ListPlaylistTracks", func(t *testing.T) {
		t.Run("Orders By Position", func(t *testing.T) {
			db := setupTestDB(t)
			repo := NewTrackRepository(db)

			batch := archiveBatch(4)
			// Insert out of order; position ordering must come from the query.
			batch[0], batch[3] = batch[3], batch[0]

			if err := repo.RecordPlaylistTracks(ctx, "pl1", batch); err != nil {
				t.Fatalf("import failed: %v", err)
			}

			tracks, err := repo.ListPlaylistTracks(ctx, "pl1")
			if err != nil {
				t.Fatalf("failed to list tracks: %v", err)
			}
			for i, track := range tracks {
				if track.Position != i {
					t.Errorf("expected position %d at index %d, got %d", i, i, track.Position)
				}
			}
		})

		t.Run("Round-Trips Fields", func(t *testing.T) {
			db := setupTestDB(t)
			repo := NewTrackRepository(db)

			want := models.ArchivedTrack{
				Position:  0,
				Title:     "Weightless",
				Artist:    "Marconi Union",
				SourceURL: "https://www.youtube.com/watch?v=UfcAVejslrU",
				Duration:  8 * time.Minute,
			}
			if err := repo.RecordPlaylistTracks(ctx, "pl1", []models.ArchivedTrack{want}); err != nil {
				t.Fatalf("import failed: %v", err)
			}

			tracks, err := repo.ListPlaylistTracks(ctx, "pl1")
			if err != nil {
				t.Fatalf("failed to list tracks: %v", err)
			}
			if len(tracks) != 1 {
				t.Fatalf("expected 1 track, got %d", len(tracks))
			}

			got := tracks[0]
			if got.Title != want.Title || got.Artist != want.Artist || got.SourceURL != want.SourceURL {
				t.Errorf("fields did not round-trip: %+v", got)
			}
			if got.Duration != want.Duration {
				t.Errorf("expected duration %v, got %v", want.Duration, got.Duration)
			}
			if got.PlaylistID != "pl1" {
				t.Errorf("expected playlist id pl1, got %q", got.PlaylistID)
			}
		})

		t.Run("Unknown Playlist Is Empty", func(t *testing.T) {
			db := setupTestDB(t)
			repo := NewTrackRepository(db)

			tracks, err := repo.ListPlaylistTracks(ctx, "missing")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(tracks) != 0 {
				t.Errorf("expected empty listing, got %d tracks", len(tracks))
			}
		})
	})

	t.Run("ListPlaylists", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewTrackRepository(db)

		older := archiveBatch(1)
		older[0].CreatedAt = time.Now().Add(-time.Hour)
		if err := repo.RecordPlaylistTracks(ctx, "pl-old", older); err != nil {
			t.Fatalf("first import failed: %v", err)
		}
		if err := repo.RecordPlaylistTracks(ctx, "pl-new", archiveBatch(1)); err != nil {
			t.Fatalf("second import failed: %v", err)
		}

		ids, err := repo.ListPlaylists(ctx)
		if err != nil {
			t.Fatalf("failed to list playlists: %v", err)
		}
		if len(ids) != 2 {
			t.Fatalf("expected 2 playlists, got %d", len(ids))
		}
		if ids[0] != "pl-new" || ids[1] != "pl-old" {
			t.Errorf("expected most recent first, got %v", ids)
		}
	})
}
