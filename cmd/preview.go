package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/chorus-bot/chorus/internal/formatter"
	"github.com/chorus-bot/chorus/internal/services"
	"github.com/chorus-bot/chorus/internal/shared"
)

// Preview fetches a Spotify playlist's tracks and renders them without
// touching Discord or the queue. Useful for checking what an import would
// pull in.
func (r *Runner) Preview(ctx context.Context, cmd *cli.Command) error {
	input := cmd.Args().First()
	if input == "" {
		return fmt.Errorf("%w: a playlist URL is required", shared.ErrInvalidPlaylistURL)
	}

	config, err := r.loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	if config.Credentials.Spotify.ClientID == "" || config.Credentials.Spotify.ClientSecret == "" {
		return fmt.Errorf("%w: spotify credentials are not configured", shared.ErrMissingConfig)
	}

	spotify, err := services.NewSpotifyService(config.Credentials.Spotify.ClientID, config.Credentials.Spotify.ClientSecret)
	if err != nil {
		return err
	}

	playlistID, err := spotify.ExtractPlaylistID(input)
	if err != nil {
		return err
	}

	r.logger.Info("fetching playlist", "playlist", playlistID)

	tracks, err := spotify.PlaylistTracks(ctx, playlistID)
	if err != nil {
		return err
	}

	return r.writePlain("%s\n", formatter.RenderCatalogPreview(playlistID, tracks))
}
