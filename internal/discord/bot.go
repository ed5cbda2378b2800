package discord

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/charmbracelet/log"

	"github.com/chorus-bot/chorus/internal/formatter"
	"github.com/chorus-bot/chorus/internal/session"
	"github.com/chorus-bot/chorus/internal/shared"
	"github.com/chorus-bot/chorus/internal/tasks"
)

// commandTimeout bounds the work behind a single slash command. Playlist
// imports get a longer leash because they page through external catalogs.
const (
	commandTimeout = 2 * time.Minute
	importTimeout  = 10 * time.Minute
)

// Bot owns the gateway connection and routes slash commands to the session
// registry and the player engine.
type Bot struct {
	dg       *discordgo.Session
	registry *session.Registry
	engine   *tasks.PlayerEngine
	logger   *log.Logger
	cfg      shared.DiscordConfig

	registered []*discordgo.ApplicationCommand
}

// NewBot builds the gateway session, the voice transport and the per-guild
// session registry around the given engine.
func NewBot(cfg *shared.Config, engine *tasks.PlayerEngine, cache *session.MetadataCache, logger *log.Logger) (*Bot, error) {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	dg, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildVoiceStates

	registry := session.NewRegistry(NewTransport(dg, logger), NewLocator(dg), cache, logger)

	b := &Bot{
		dg:       dg,
		registry: registry,
		engine:   engine,
		logger:   shared.WithLogger(logger, "component", "bot"),
		cfg:      cfg.Discord,
	}

	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onInteraction)
	return b, nil
}

// Registry exposes the session registry, mainly for shutdown wiring.
func (b *Bot) Registry() *session.Registry {
	return b.registry
}

// Open connects to the gateway and registers the slash commands. Commands
// are scoped to the configured guild when one is set; global registration
// can take Discord up to an hour to propagate.
func (b *Bot) Open() error {
	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open gateway connection: %w", err)
	}

	registered, err := b.dg.ApplicationCommandBulkOverwrite(b.dg.State.User.ID, b.cfg.GuildID, commandDefinitions())
	if err != nil {
		b.dg.Close()
		return fmt.Errorf("failed to register commands: %w", err)
	}
	b.registered = registered

	b.logger.Info("gateway connected", "commands", len(registered), "guild", b.cfg.GuildID)
	return nil
}

// Close tears down every voice session and the gateway connection.
func (b *Bot) Close() error {
	b.registry.Shutdown()
	return b.dg.Close()
}

func (b *Bot) onReady(s *discordgo.Session, _ *discordgo.Ready) {
	if b.cfg.Status == "" {
		return
	}
	if err := s.UpdateStatusComplex(discordgo.UpdateStatusData{Status: b.cfg.Status}); err != nil {
		b.logger.Warn("failed to set presence status", "status", b.cfg.Status, "error", err)
	}
}

func (b *Bot) onInteraction(s *discordgo.Session, ic *discordgo.InteractionCreate) {
	if ic.Type != discordgo.InteractionApplicationCommand {
		return
	}

	name := ic.ApplicationCommandData().Name
	b.logger.Debug("command received", "command", name, "guild", ic.GuildID)

	switch name {
	case "join":
		b.handleJoin(ic)
	case "leave":
		b.handleLeave(ic)
	case "play":
		b.handlePlay(ic)
	case "search":
		b.handleSearch(ic)
	case "playlist":
		b.handlePlaylist(ic)
	case "skip":
		b.handleSkip(ic)
	case "pause":
		b.handlePause(ic)
	case "resume":
		b.handleResume(ic)
	case "stop":
		b.handleStop(ic)
	case "queue":
		b.handleQueue(ic)
	}
}

func commandDefinitions() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{Name: "join", Description: "Join your current voice channel"},
		{Name: "leave", Description: "Leave the voice channel"},
		{
			Name:        "play",
			Description: "Play a track by name or URL",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "query", Description: "Track name or URL", Required: true},
			},
		},
		{
			Name:        "search",
			Description: "Search and pick from the top results",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "query", Description: "Track name", Required: true},
			},
		},
		{
			Name:        "playlist",
			Description: "Import a playlist into the queue",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "url", Description: "Playlist URL", Required: true},
			},
		},
		{Name: "skip", Description: "Skip the current track"},
		{Name: "pause", Description: "Pause playback"},
		{Name: "resume", Description: "Resume playback"},
		{Name: "stop", Description: "Stop playback and clear the queue"},
		{Name: "queue", Description: "Show the current track and queue"},
	}
}

func (b *Bot) handleJoin(ic *discordgo.InteractionCreate) {
	ctx, done := b.acknowledge(ic)
	defer done()

	_, err := b.registry.Join(ctx, ic.GuildID, interactionUserID(ic.Interaction))
	if err != nil {
		b.respondError(ic, err)
		return
	}
	b.respond(ic, "Joined your voice channel.")
}

func (b *Bot) handleLeave(ic *discordgo.InteractionCreate) {
	_, done := b.acknowledge(ic)
	defer done()

	if err := b.registry.Leave(ic.GuildID); err != nil {
		b.respondError(ic, err)
		return
	}
	b.respond(ic, "Left the voice channel.")
}

func (b *Bot) handlePlay(ic *discordgo.InteractionCreate) {
	ctx, done := b.acknowledge(ic)
	defer done()

	sess, err := b.sessionFor(ctx, ic)
	if err != nil {
		b.respondError(ic, err)
		return
	}

	result, err := b.engine.Play(ctx, sess, interactionUserID(ic.Interaction), optionString(ic, "query"))
	if err != nil {
		b.respondError(ic, err)
		return
	}
	b.respond(ic, formatter.PlayMessage(*result))
}

func (b *Bot) handleSearch(ic *discordgo.InteractionCreate) {
	ctx, done := b.acknowledge(ic)
	defer done()

	sess, err := b.sessionFor(ctx, ic)
	if err != nil {
		b.respondError(ic, err)
		return
	}

	userID := interactionUserID(ic.Interaction)
	prompter := NewMenuPrompter(b.dg, ic.Interaction, b.logger)

	candidate, err := b.engine.Disambiguate(ctx, prompter, userID, optionString(ic, "query"))
	if err != nil {
		b.respondError(ic, err)
		return
	}

	result, err := b.engine.PlayCandidate(ctx, sess, userID, candidate)
	if err != nil {
		b.respondError(ic, err)
		return
	}
	b.respond(ic, formatter.PlayMessage(*result))
}

func (b *Bot) handlePlaylist(ic *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
	defer cancel()
	b.deferResponse(ic)

	sess, err := b.sessionFor(ctx, ic)
	if err != nil {
		b.respondError(ic, err)
		return
	}

	progress := make(chan tasks.ProgressUpdate, 16)
	relayDone := make(chan struct{})
	go b.relayProgress(ic, progress, relayDone)

	report, err := b.engine.Import(ctx, sess, interactionUserID(ic.Interaction), optionString(ic, "url"), progress)
	close(progress)
	<-relayDone

	if err != nil {
		b.respondError(ic, err)
		return
	}
	b.respond(ic, formatter.ImportMessage(*report))
}

// relayProgress mirrors import progress into the deferred response, at most
// once every couple of seconds to stay inside Discord's edit rate limits.
func (b *Bot) relayProgress(ic *discordgo.InteractionCreate, progress <-chan tasks.ProgressUpdate, done chan<- struct{}) {
	defer close(done)

	var lastEdit time.Time
	for update := range progress {
		if time.Since(lastEdit) < 2*time.Second {
			continue
		}
		lastEdit = time.Now()
		b.respond(ic, update.Message)
	}
}

func (b *Bot) handleSkip(ic *discordgo.InteractionCreate) {
	_, done := b.acknowledge(ic)
	defer done()

	sess, err := b.registry.Get(ic.GuildID)
	if err != nil {
		b.respondError(ic, err)
		return
	}
	if err := sess.Skip(); err != nil {
		b.respondError(ic, err)
		return
	}
	b.respond(ic, "Skipped.")
}

func (b *Bot) handlePause(ic *discordgo.InteractionCreate) {
	_, done := b.acknowledge(ic)
	defer done()

	sess, err := b.registry.Get(ic.GuildID)
	if err != nil {
		b.respondError(ic, err)
		return
	}
	if err := sess.Pause(); err != nil {
		b.respondError(ic, err)
		return
	}
	b.respond(ic, "Paused.")
}

func (b *Bot) handleResume(ic *discordgo.InteractionCreate) {
	_, done := b.acknowledge(ic)
	defer done()

	sess, err := b.registry.Get(ic.GuildID)
	if err != nil {
		b.respondError(ic, err)
		return
	}
	if err := sess.Resume(); err != nil {
		b.respondError(ic, err)
		return
	}
	b.respond(ic, "Resumed.")
}

func (b *Bot) handleStop(ic *discordgo.InteractionCreate) {
	_, done := b.acknowledge(ic)
	defer done()

	sess, err := b.registry.Get(ic.GuildID)
	if err != nil {
		b.respondError(ic, err)
		return
	}
	sess.Stop()
	b.respond(ic, "Stopped playback and cleared the queue.")
}

func (b *Bot) handleQueue(ic *discordgo.InteractionCreate) {
	_, done := b.acknowledge(ic)
	defer done()

	sess, err := b.registry.Get(ic.GuildID)
	if err != nil {
		b.respondError(ic, err)
		return
	}
	b.respond(ic, formatter.StatusMessage(sess.Status()))
}

// sessionFor returns the guild's session, joining the requester's voice
// channel first when none exists.
func (b *Bot) sessionFor(ctx context.Context, ic *discordgo.InteractionCreate) (*session.Session, error) {
	sess, err := b.registry.Get(ic.GuildID)
	if err == nil {
		return sess, nil
	}
	if !errors.Is(err, shared.ErrNoActiveSession) {
		return nil, err
	}
	return b.registry.Join(ctx, ic.GuildID, interactionUserID(ic.Interaction))
}

// acknowledge defers the interaction response and returns a bounded context
// for the command's work.
func (b *Bot) acknowledge(ic *discordgo.InteractionCreate) (context.Context, context.CancelFunc) {
	b.deferResponse(ic)
	return context.WithTimeout(context.Background(), commandTimeout)
}

func (b *Bot) deferResponse(ic *discordgo.InteractionCreate) {
	err := b.dg.InteractionRespond(ic.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		b.logger.Warn("failed to defer interaction", "error", err)
	}
}

func (b *Bot) respond(ic *discordgo.InteractionCreate, content string) {
	if _, err := b.dg.InteractionResponseEdit(ic.Interaction, &discordgo.WebhookEdit{Content: &content}); err != nil {
		b.logger.Warn("failed to edit interaction response", "error", err)
	}
}

func (b *Bot) respondError(ic *discordgo.InteractionCreate, err error) {
	b.logger.Error("command failed", "error", err)
	b.respond(ic, userMessage(err))
}

// userMessage maps internal errors to messages fit for the channel.
func userMessage(err error) string {
	switch {
	case errors.Is(err, shared.ErrNotInVoiceChannel):
		return "Join a voice channel first."
	case errors.Is(err, shared.ErrNoActiveSession):
		return "I'm not in a voice channel here. Use /join first."
	case errors.Is(err, shared.ErrNothingPlaying):
		return "Nothing is playing."
	case errors.Is(err, shared.ErrNoSearchResults):
		return "No results found."
	case errors.Is(err, shared.ErrSelectionTimedOut):
		return "Selection timed out, nothing was queued."
	case errors.Is(err, shared.ErrInvalidPlaylistURL):
		return "That doesn't look like a playlist URL."
	case errors.Is(err, shared.ErrProviderUnavailable):
		return "The music provider is unavailable right now, try again later."
	case errors.Is(err, shared.ErrResolutionFailed):
		return "Couldn't resolve that track."
	default:
		return "Something went wrong."
	}
}

func optionString(ic *discordgo.InteractionCreate, name string) string {
	for _, opt := range ic.ApplicationCommandData().Options {
		if opt.Name == name {
			return opt.StringValue()
		}
	}
	return ""
}
