package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/chorus-bot/chorus/internal/shared"
)

// Locator resolves a user's current voice channel from the gateway state
// cache. Requires the GuildVoiceStates intent.
type Locator struct {
	dg *discordgo.Session
}

func NewLocator(dg *discordgo.Session) *Locator {
	return &Locator{dg: dg}
}

func (l *Locator) UserChannel(guildID, userID string) (string, error) {
	guild, err := l.dg.State.Guild(guildID)
	if err != nil {
		return "", fmt.Errorf("%w: guild %s not in state cache", shared.ErrNotInVoiceChannel, guildID)
	}

	for _, vs := range guild.VoiceStates {
		if vs.UserID == userID && vs.ChannelID != "" {
			return vs.ChannelID, nil
		}
	}
	return "", fmt.Errorf("%w: user %s", shared.ErrNotInVoiceChannel, userID)
}
