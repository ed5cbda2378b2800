// Package discord is the gateway surface of the bot.
//
// It adapts discordgo to the interfaces the rest of the program is written
// against:
//
//   - [Bot] : slash command registration and routing, deferred responses,
//     presence status
//   - [Transport] : voice connections implementing [session.VoiceTransport];
//     playback pipes yt-dlp through ffmpeg into opus frames
//   - [Locator] : voice channel lookup from the gateway state cache
//   - [MenuPrompter] : disambiguation select menus implementing
//     [tasks.Prompter]
//
// Everything above this package is free of discordgo types, which keeps the
// session and task layers testable without a gateway connection.
package discord
