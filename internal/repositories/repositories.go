package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/chorus-bot/chorus/internal/shared"
)

// CountPlaylistTracks returns the number of archived rows for a playlist.
func CountPlaylistTracks(ctx context.Context, db *sql.DB, playlistID string) (int, error) {
	var count int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM playlist_tracks WHERE playlist_id = ?", playlistID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to count tracks: %v", shared.ErrPersistenceFailed, err)
	}
	return count, nil
}
