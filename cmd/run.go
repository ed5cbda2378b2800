package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/chorus-bot/chorus/internal/discord"
	"github.com/chorus-bot/chorus/internal/repositories"
	"github.com/chorus-bot/chorus/internal/services"
	"github.com/chorus-bot/chorus/internal/session"
	"github.com/chorus-bot/chorus/internal/shared"
	"github.com/chorus-bot/chorus/internal/tasks"
)

// Run wires the providers, the player engine and the gateway bot, then
// blocks until the process is signalled to stop.
func (r *Runner) Run(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd.String("config"))
	if err != nil {
		r.logger.Warn("failed to load config, using startup config", "error", err)
		config = r.config
	}

	if err := config.Validate(); err != nil {
		return err
	}

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	youtube := services.NewYouTubeService()

	var catalog services.CatalogProvider
	if config.Credentials.Spotify.ClientID != "" && config.Credentials.Spotify.ClientSecret != "" {
		spotify, err := services.NewSpotifyService(config.Credentials.Spotify.ClientID, config.Credentials.Spotify.ClientSecret)
		if err != nil {
			r.logger.Warn("spotify catalog disabled", "error", err)
		} else {
			catalog = spotify
		}
	} else {
		r.logger.Info("no spotify credentials, catalog imports disabled")
	}

	cache := session.NewMetadataCache(config.Player.CacheMaxEntries)
	engine := tasks.NewPlayerEngine(tasks.EngineOpts{
		Search:  youtube,
		Catalog: catalog,
		Lister:  youtube,
		Archive: repositories.NewTrackRepository(db),
		Cache:   cache,
		Logger:  r.logger,
	})

	bot, err := discord.NewBot(config, engine, cache, r.logger)
	if err != nil {
		return err
	}

	if err := bot.Open(); err != nil {
		return err
	}

	r.logger.Info("bot is running, press ctrl+c to exit")

	waitCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-waitCtx.Done()

	r.logger.Info("shutting down")
	return bot.Close()
}
