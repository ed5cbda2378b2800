package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/chorus-bot/chorus/internal/models"
	"github.com/chorus-bot/chorus/internal/shared"
)

// TrackRepository persists playlist track listings captured during imports.
//
// The archive is append-only history: one batch per import, written in a
// single transaction so a failed import never leaves half a playlist behind.
type TrackRepository struct {
	db *sql.DB
}

// NewTrackRepository creates a new TrackRepository with the given database connection
func NewTrackRepository(db *sql.DB) *TrackRepository {
	return &TrackRepository{db: db}
}

// RecordPlaylistTracks writes an import batch atomically. Earlier rows for
// the same playlist are replaced, so re-importing a playlist stores its
// current listing rather than stacking duplicates.
func (r *TrackRepository) RecordPlaylistTracks(ctx context.Context, playlistID string, tracks []models.ArchivedTrack) error {
	if len(tracks) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", shared.ErrPersistenceFailed, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM playlist_tracks WHERE playlist_id = ?", playlistID); err != nil {
		return fmt.Errorf("%w: failed to clear previous listing: %v", shared.ErrPersistenceFailed, err)
	}

	query := `
		INSERT INTO playlist_tracks (id, playlist_id, position, title, artist, source_url, duration, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("%w: failed to prepare insert: %v", shared.ErrPersistenceFailed, err)
	}
	defer stmt.Close()

	for _, track := range tracks {
		id := track.ID
		if id == "" {
			id = shared.GenerateID()
		}
		createdAt := track.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now()
		}

		_, err := stmt.ExecContext(ctx,
			id,
			playlistID,
			track.Position,
			track.Title,
			track.Artist,
			track.SourceURL,
			int64(track.Duration/time.Second),
			createdAt,
		)
		if err != nil {
			return fmt.Errorf("%w: failed to insert track %d: %v", shared.ErrPersistenceFailed, track.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit: %v", shared.ErrPersistenceFailed, err)
	}

	return nil
}

// ListPlaylistTracks returns a playlist's archived listing in position order.
func (r *TrackRepository) ListPlaylistTracks(ctx context.Context, playlistID string) ([]models.ArchivedTrack, error) {
	query := `
		SELECT id, playlist_id, position, title, artist, source_url, duration, created_at
		FROM playlist_tracks
		WHERE playlist_id = ?
		ORDER BY position ASC
	`

	rows, err := r.db.QueryContext(ctx, query, playlistID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query tracks: %v", shared.ErrPersistenceFailed, err)
	}
	defer rows.Close()

	var tracks []models.ArchivedTrack
	for rows.Next() {
		var (
			track   models.ArchivedTrack
			seconds int64
		)
		if err := rows.Scan(&track.ID, &track.PlaylistID, &track.Position, &track.Title, &track.Artist, &track.SourceURL, &seconds, &track.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: failed to scan track: %v", shared.ErrPersistenceFailed, err)
		}
		track.Duration = time.Duration(seconds) * time.Second
		tracks = append(tracks, track)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: row iteration error: %v", shared.ErrPersistenceFailed, err)
	}

	return tracks, nil
}

// ListPlaylists returns the distinct playlist IDs present in the archive,
// most recently imported first.
func (r *TrackRepository) ListPlaylists(ctx context.Context) ([]string, error) {
	query := `
		SELECT playlist_id, MAX(created_at) AS imported_at
		FROM playlist_tracks
		GROUP BY playlist_id
		ORDER BY imported_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query playlists: %v", shared.ErrPersistenceFailed, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		var importedAt string
		if err := rows.Scan(&id, &importedAt); err != nil {
			return nil, fmt.Errorf("%w: failed to scan playlist id: %v", shared.ErrPersistenceFailed, err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: row iteration error: %v", shared.ErrPersistenceFailed, err)
	}

	return ids, nil
}
