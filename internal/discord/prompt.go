package discord

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"
	"github.com/charmbracelet/log"

	"github.com/chorus-bot/chorus/internal/formatter"
	"github.com/chorus-bot/chorus/internal/models"
	"github.com/chorus-bot/chorus/internal/shared"
	"github.com/chorus-bot/chorus/internal/tasks"
)

// MenuPrompter presents disambiguation candidates as a select menu attached
// to a deferred interaction response.
//
// Selection events from every user land on the choice channel; filtering to
// the requester happens upstream. The cancel func unregisters the component
// handler and strips the menu so stale prompts cannot be clicked.
type MenuPrompter struct {
	dg          *discordgo.Session
	interaction *discordgo.Interaction
	logger      *log.Logger
}

func NewMenuPrompter(dg *discordgo.Session, interaction *discordgo.Interaction, logger *log.Logger) *MenuPrompter {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &MenuPrompter{dg: dg, interaction: interaction, logger: logger}
}

func (p *MenuPrompter) Present(ctx context.Context, candidates []models.Candidate) (<-chan tasks.Choice, func(), error) {
	customID := "track-select-" + shared.GenerateID()

	options := make([]discordgo.SelectMenuOption, len(candidates))
	for i, candidate := range candidates {
		options[i] = discordgo.SelectMenuOption{
			Label: formatter.CandidateLabel(candidate),
			Value: strconv.Itoa(i),
		}
	}

	content := "Pick a track:"
	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					CustomID:    customID,
					Placeholder: "Select a result",
					Options:     options,
				},
			},
		},
	}

	if _, err := p.dg.InteractionResponseEdit(p.interaction, &discordgo.WebhookEdit{
		Content:    &content,
		Components: &components,
	}); err != nil {
		return nil, nil, fmt.Errorf("failed to present track menu: %w", err)
	}

	choices := make(chan tasks.Choice, 4)
	remove := p.dg.AddHandler(func(s *discordgo.Session, ic *discordgo.InteractionCreate) {
		if ic.Type != discordgo.InteractionMessageComponent {
			return
		}
		data := ic.MessageComponentData()
		if data.CustomID != customID || len(data.Values) == 0 {
			return
		}

		index, err := strconv.Atoi(data.Values[0])
		if err != nil {
			return
		}

		if err := s.InteractionRespond(ic.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseDeferredMessageUpdate,
		}); err != nil {
			p.logger.Warn("failed to acknowledge menu selection", "error", err)
		}

		select {
		case choices <- tasks.Choice{UserID: interactionUserID(ic.Interaction), Index: index}:
		default:
		}
	})

	cancel := func() {
		remove()
		empty := []discordgo.MessageComponent{}
		if _, err := p.dg.InteractionResponseEdit(p.interaction, &discordgo.WebhookEdit{
			Components: &empty,
		}); err != nil {
			p.logger.Warn("failed to withdraw track menu", "error", err)
		}
	}

	return choices, cancel, nil
}

// interactionUserID handles both guild interactions (Member set) and DM
// interactions (User set).
func interactionUserID(i *discordgo.Interaction) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
