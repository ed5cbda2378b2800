package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/chorus-bot/chorus/internal/formatter"
	"github.com/chorus-bot/chorus/internal/repositories"
	"github.com/chorus-bot/chorus/internal/shared"
)

// History lists archived playlist imports. Without arguments it shows the
// known playlist IDs; with one it lists that playlist's archived tracks.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	repo := repositories.NewTrackRepository(db)

	playlistID := cmd.Args().First()
	if playlistID == "" {
		ids, err := repo.ListPlaylists(ctx)
		if err != nil {
			return err
		}

		if cmd.Bool("json") {
			return r.writeJSON(ids, true)
		}
		if len(ids) == 0 {
			return r.writePlain("No playlists archived yet.\n")
		}
		for _, id := range ids {
			r.writePlain("%s\n", id)
		}
		return nil
	}

	tracks, err := repo.ListPlaylistTracks(ctx, playlistID)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(tracks, true)
	}
	if len(tracks) == 0 {
		return r.writePlain("No archived tracks for %s.\n", playlistID)
	}
	for _, track := range tracks {
		r.writePlain("%3d. %s [%s]\n", track.Position+1, formatter.TrackLabel(track.Title, track.Artist, track.SourceURL), formatter.FormatDuration(track.Duration))
	}
	return nil
}
