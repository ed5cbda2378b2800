// package models defines the data model for the voice playback engine
package models

import (
	"time"
)

// TrackMetadata is the display metadata cached for a queued track.
//
// Entries are immutable once stored; a cache hit returns a copy.
type TrackMetadata struct {
	Title     string
	Artist    string
	SourceURL string
	Duration  time.Duration
}

// QueuedTrack is a single entry in a guild's playback queue.
type QueuedTrack struct {
	ID        string // engine-assigned UUID, key into the metadata cache
	SourceURL string // playable stream location
	Requester string // user ID that enqueued the track
}

// Candidate is one search result offered during disambiguation.
type Candidate struct {
	Title     string
	Artist    string
	SourceURL string
	Duration  time.Duration
}

// Playable reports whether the candidate carries a usable source URL.
func (c Candidate) Playable() bool {
	return c.SourceURL != ""
}

// CatalogTrack is a track listed by the catalog playlist provider
// (name and artist only, no playable URL).
type CatalogTrack struct {
	Name     string
	Artist   string
	Album    string
	Duration time.Duration
}

// PlaylistEntry is one entry of a direct (video-host) playlist flat listing.
type PlaylistEntry struct {
	Title     string
	Uploader  string
	SourceURL string
	Duration  time.Duration
}

// ArchivedTrack is a playlist track persisted to the archive.
type ArchivedTrack struct {
	ID         string
	PlaylistID string
	Position   int
	Title      string
	Artist     string
	SourceURL  string
	Duration   time.Duration
	CreatedAt  time.Time
}
