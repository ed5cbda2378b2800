// package formatter renders playback state and import results for Discord
// messages and terminal output
package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/chorus-bot/chorus/internal/models"
	"github.com/chorus-bot/chorus/internal/session"
	"github.com/chorus-bot/chorus/internal/tasks"
)

// maxQueueLines caps how many queued tracks a status message lists before
// truncating; Discord messages top out at 2000 characters.
const maxQueueLines = 10

// FormatDuration renders a duration as m:ss, or h:mm:ss past the hour mark.
// Zero and negative durations render as a placeholder.
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return "-:--"
	}

	total := int(d / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// TrackLabel renders a track as "Artist - Title", falling back to whichever
// part is present, then to the source URL.
func TrackLabel(title, artist, sourceURL string) string {
	switch {
	case title != "" && artist != "":
		return fmt.Sprintf("%s - %s", artist, title)
	case title != "":
		return title
	default:
		return sourceURL
	}
}

// NowPlaying renders the current track line for a status message.
func NowPlaying(track session.TrackStatus, paused bool) string {
	marker := "▶"
	if paused {
		marker = "⏸"
	}
	line := fmt.Sprintf("%s **%s**", marker, TrackLabel(track.Title, track.Artist, track.SourceURL))
	if track.Requester != "" {
		line += fmt.Sprintf(" (requested by <@%s>)", track.Requester)
	}
	return line
}

// StatusMessage renders a session snapshot as a Discord markdown message:
// the current track followed by the upcoming queue.
func StatusMessage(snap session.Snapshot) string {
	if snap.Current == nil {
		return "Nothing is playing."
	}

	var b strings.Builder
	b.WriteString(NowPlaying(*snap.Current, snap.Paused))

	if len(snap.Queue) == 0 {
		return b.String()
	}

	b.WriteString("\n\n**Up next**\n")
	for i, track := range snap.Queue {
		if i == maxQueueLines {
			b.WriteString(fmt.Sprintf("…and %d more\n", len(snap.Queue)-maxQueueLines))
			break
		}
		b.WriteString(fmt.Sprintf("%d. %s\n", i+1, TrackLabel(track.Title, track.Artist, track.SourceURL)))
	}

	return strings.TrimRight(b.String(), "\n")
}

// PlayMessage renders the confirmation for a single resolved track.
func PlayMessage(result tasks.PlayResult) string {
	if result.Started {
		return fmt.Sprintf("Now playing **%s**.", result.Title)
	}
	return fmt.Sprintf("Queued **%s** at position %d.", result.Title, result.Position)
}

// ImportMessage summarizes a playlist import for the requesting channel.
//
// Skips are the normal case for catalog imports, so the message leads with
// what made it in and only itemizes the first few failures.
func ImportMessage(report tasks.ImportReport) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Imported **%d/%d** tracks from the playlist.", report.Enqueued, report.Total))

	if report.Skipped > 0 {
		b.WriteString(fmt.Sprintf(" %d could not be matched or queued.", report.Skipped))
	}
	if !report.Persisted {
		b.WriteString(" (listing was not archived)")
	}

	const maxFailureLines = 5
	if len(report.Failures) > 0 {
		b.WriteString("\n\n**Skipped**\n")
		for i, failure := range report.Failures {
			if i == maxFailureLines {
				b.WriteString(fmt.Sprintf("…and %d more\n", len(report.Failures)-maxFailureLines))
				break
			}
			label := failure.Name
			if failure.Artist != "" {
				label = fmt.Sprintf("%s - %s", failure.Artist, failure.Name)
			}
			b.WriteString(fmt.Sprintf("- %s (%s)\n", label, failure.Reason))
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// CandidateLabel renders one disambiguation option for a select menu. Labels
// are truncated to Discord's 100 character option limit.
func CandidateLabel(candidate models.Candidate) string {
	label := TrackLabel(candidate.Title, candidate.Artist, candidate.SourceURL)
	if candidate.Duration > 0 {
		label = fmt.Sprintf("%s [%s]", label, FormatDuration(candidate.Duration))
	}
	if len(label) > 100 {
		label = label[:97] + "..."
	}
	return label
}

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	dim   lipgloss.Style
}

func NewPalette(t, s, e, d string) *Palette {
	return &Palette{
		title: NewBold(t).MarginBottom(1),
		ok:    NewBold(s),
		err:   NewBold(e),
		dim:   NewEm(d),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

// RenderCatalogPreview renders a playlist's catalog listing for the terminal,
// used by the preview command before an import.
func RenderCatalogPreview(name string, tracks []models.CatalogTrack) string {
	var b strings.Builder

	b.WriteString(styles.title.Render(name))
	b.WriteString("\n")

	if len(tracks) == 0 {
		b.WriteString(styles.dim.Render("(empty playlist)"))
		return b.String()
	}

	for i, track := range tracks {
		line := fmt.Sprintf("%3d. %s - %s", i+1, track.Artist, track.Name)
		if track.Album != "" {
			line += styles.dim.Render(fmt.Sprintf("  (%s)", track.Album))
		}
		line += fmt.Sprintf("  [%s]", FormatDuration(track.Duration))
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString(styles.ok.Render(fmt.Sprintf("%d tracks", len(tracks))))
	return b.String()
}
