package discord

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/charmbracelet/log"
	"github.com/lrstanley/go-ytdlp"
	"gopkg.in/hraban/opus.v2"

	"github.com/chorus-bot/chorus/internal/session"
	"github.com/chorus-bot/chorus/internal/shared"
)

const (
	sampleRate = 48000
	channels   = 2
	frameSize  = 960 // 20ms at 48kHz
	maxOpusLen = frameSize * channels * 2
)

// Transport opens gateway voice connections and wraps them in the playback
// contract the session layer expects.
type Transport struct {
	dg     *discordgo.Session
	logger *log.Logger
}

func NewTransport(dg *discordgo.Session, logger *log.Logger) *Transport {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Transport{dg: dg, logger: logger}
}

// Join connects to a guild voice channel. Muted false, deafened true: the
// bot only sends audio.
func (t *Transport) Join(ctx context.Context, guildID, channelID string) (session.Connection, error) {
	vc, err := t.dg.ChannelVoiceJoin(guildID, channelID, false, true)
	if err != nil {
		return nil, fmt.Errorf("failed to join voice channel %s: %w", channelID, err)
	}
	return newVoiceConn(vc, shared.WithLogger(t.logger, "guild", guildID)), nil
}

// voiceConn streams one track at a time into a discordgo voice connection.
//
// Playback runs yt-dlp to resolve a direct media URL, decodes it to PCM with
// ffmpeg and encodes 20ms opus frames for the gateway. Every started track
// delivers exactly one signal on finished when its stream goroutine exits.
type voiceConn struct {
	vc     *discordgo.VoiceConnection
	logger *log.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	paused bool
	closed bool

	wg       sync.WaitGroup
	finished chan struct{}
}

func newVoiceConn(vc *discordgo.VoiceConnection, logger *log.Logger) *voiceConn {
	return &voiceConn{
		vc:       vc,
		logger:   logger,
		finished: make(chan struct{}, 1),
	}
}

func (c *voiceConn) Play(ctx context.Context, sourceURL string) error {
	streamURL, err := resolveStreamURL(ctx, sourceURL)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return shared.ErrNoActiveSession
	}

	// Playback outlives the triggering command, so it gets its own context.
	trackCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.paused = false
	c.mu.Unlock()

	ffmpeg := exec.CommandContext(trackCtx, "ffmpeg",
		"-reconnect", "1",
		"-reconnect_streamed", "1",
		"-reconnect_delay_max", "5",
		"-nostdin",
		"-i", streamURL,
		"-f", "s16le",
		"-ar", "48000",
		"-ac", "2",
		"pipe:1")

	stdout, err := ffmpeg.StdoutPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("failed to open ffmpeg pipe: %w", err)
	}

	if err := ffmpeg.Start(); err != nil {
		cancel()
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.stream(trackCtx, bufio.NewReaderSize(stdout, maxOpusLen*4))

		cancel()
		if err := ffmpeg.Wait(); err != nil && trackCtx.Err() == nil {
			c.logger.Warn("ffmpeg exited abnormally", "error", err)
		}

		c.mu.Lock()
		c.cancel = nil
		c.mu.Unlock()

		c.finished <- struct{}{}
	}()

	return nil
}

// stream reads PCM frames from ffmpeg, encodes them and sends them to the
// gateway until the input drains or the track is cancelled.
func (c *voiceConn) stream(ctx context.Context, audio io.Reader) {
	encoder, err := opus.NewEncoder(sampleRate, channels, opus.AppAudio)
	if err != nil {
		c.logger.Error("failed to create opus encoder", "error", err)
		return
	}

	c.vc.Speaking(true)
	defer c.vc.Speaking(false)

	pcm := make([]int16, frameSize*channels)
	for {
		if ctx.Err() != nil {
			return
		}

		if c.isPaused() {
			select {
			case <-time.After(100 * time.Millisecond):
			case <-ctx.Done():
				return
			}
			continue
		}

		err := binary.Read(audio, binary.LittleEndian, &pcm)
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return
		}
		if err != nil {
			if ctx.Err() == nil {
				c.logger.Warn("failed to read audio stream", "error", err)
			}
			return
		}

		frame := make([]byte, maxOpusLen)
		n, err := encoder.Encode(pcm, frame)
		if err != nil {
			c.logger.Warn("failed to encode opus frame", "error", err)
			return
		}

		select {
		case c.vc.OpusSend <- frame[:n]:
		case <-ctx.Done():
			return
		}
	}
}

func (c *voiceConn) isPaused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

func (c *voiceConn) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (c *voiceConn) Pause() error {
	c.mu.Lock()
	c.paused = true
	c.mu.Unlock()
	return c.vc.Speaking(false)
}

func (c *voiceConn) Resume() error {
	c.mu.Lock()
	c.paused = false
	c.mu.Unlock()
	return c.vc.Speaking(true)
}

func (c *voiceConn) Finished() <-chan struct{} {
	return c.finished
}

func (c *voiceConn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	cancel := c.cancel
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.wg.Wait()
	close(c.finished)

	return c.vc.Disconnect()
}

// resolveStreamURL asks yt-dlp for a direct audio URL for the source.
func resolveStreamURL(ctx context.Context, sourceURL string) (string, error) {
	res, err := ytdlp.New().
		Format("bestaudio/best").
		Print("%(url)s").
		NoPlaylist().
		NoWarnings().
		IgnoreConfig().
		Run(ctx, sourceURL)
	if err != nil {
		return "", fmt.Errorf("%w: failed to resolve audio stream: %v", shared.ErrResolutionFailed, err)
	}

	for _, line := range strings.Split(res.Stdout, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line, nil
		}
	}
	return "", fmt.Errorf("%w: no audio stream for %s", shared.ErrResolutionFailed, sourceURL)
}
