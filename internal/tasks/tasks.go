// package tasks orchestrates track resolution and playlist imports on top of
// the provider adapters and the session layer.
//
// The core abstraction is PlayerEngine, which turns user input (queries,
// track URLs, playlist URLs) into enqueued tracks. Long operations emit
// progress updates via channels for non-blocking status reporting.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/chorus-bot/chorus/internal/models"
	"github.com/chorus-bot/chorus/internal/services"
	"github.com/chorus-bot/chorus/internal/shared"
)

// TrackQueue is the slice of the session surface the engine drives.
type TrackQueue interface {
	Enqueue(ctx context.Context, track models.QueuedTrack) (position int, started bool, err error)
}

// MetadataStore caches display metadata for enqueued tracks.
type MetadataStore interface {
	Put(id string, md models.TrackMetadata)
}

// TrackArchiver persists imported playlist tracks. Optional: a nil archiver
// skips persistence without affecting playback.
type TrackArchiver interface {
	RecordPlaylistTracks(ctx context.Context, playlistID string, tracks []models.ArchivedTrack) error
}

// ImportFailure records one track that could not be enqueued during an
// import.
type ImportFailure struct {
	Name   string
	Artist string
	Reason string
}

// ImportReport summarizes a playlist import. Partial failure is the normal
// case: Enqueued + Skipped always equals Total.
type ImportReport struct {
	PlaylistID string          // catalog ID or the playlist URL for direct imports
	Source     string          // "catalog" or "direct"
	Total      int             // tracks the playlist listed
	Enqueued   int             // tracks that made it into the queue
	Skipped    int             // tracks with no match or failed enqueue
	Persisted  bool            // whether the archive write succeeded
	Failures   []ImportFailure // what was skipped and why
}

// PlayResult describes the outcome of resolving and enqueueing one track.
type PlayResult struct {
	Track    models.QueuedTrack
	Title    string
	Position int
	Started  bool
}

// PlayerEngine resolves user input into queued tracks.
//
// Dependencies are the provider adapters plus the session queue surface; the
// engine itself holds no per-guild state and is shared by all guilds.
type PlayerEngine struct {
	search  services.SearchProvider
	catalog services.CatalogProvider
	lister  services.PlaylistLister
	archive TrackArchiver
	cache   MetadataStore
	logger  *log.Logger

	// selectWait bounds disambiguation prompts; fixed except in tests.
	selectWait time.Duration
}

// EngineOpts contains the dependencies for a PlayerEngine. Catalog, lister
// and archive may be nil; the corresponding import paths report unavailable.
type EngineOpts struct {
	Search  services.SearchProvider
	Catalog services.CatalogProvider
	Lister  services.PlaylistLister
	Archive TrackArchiver
	Cache   MetadataStore
	Logger  *log.Logger
}

// NewPlayerEngine creates a PlayerEngine with the provided dependencies.
func NewPlayerEngine(opts EngineOpts) *PlayerEngine {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &PlayerEngine{
		search:     opts.Search,
		catalog:    opts.Catalog,
		lister:     opts.Lister,
		archive:    opts.Archive,
		cache:      opts.Cache,
		logger:     opts.Logger,
		selectWait: selectTimeout,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *PlayerEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Play resolves a query or track URL into a single track and enqueues it.
func (e *PlayerEngine) Play(ctx context.Context, queue TrackQueue, requester, input string) (*PlayResult, error) {
	candidate, err := e.search.ResolveDirect(ctx, input)
	if err != nil {
		return nil, err
	}
	return e.enqueueCandidate(ctx, queue, requester, candidate)
}

// PlayCandidate enqueues an already-resolved candidate, keeping its metadata.
// Used after a disambiguation prompt settles on one result.
func (e *PlayerEngine) PlayCandidate(ctx context.Context, queue TrackQueue, requester string, candidate models.Candidate) (*PlayResult, error) {
	return e.enqueueCandidate(ctx, queue, requester, candidate)
}

// enqueueCandidate assigns a track ID, caches the candidate's metadata and
// pushes the track onto the queue.
func (e *PlayerEngine) enqueueCandidate(ctx context.Context, queue TrackQueue, requester string, candidate models.Candidate) (*PlayResult, error) {
	track := models.QueuedTrack{
		ID:        shared.GenerateID(),
		SourceURL: candidate.SourceURL,
		Requester: requester,
	}
	e.cache.Put(track.ID, models.TrackMetadata{
		Title:     candidate.Title,
		Artist:    candidate.Artist,
		SourceURL: candidate.SourceURL,
		Duration:  candidate.Duration,
	})

	position, started, err := queue.Enqueue(ctx, track)
	if err != nil {
		return nil, err
	}

	title := candidate.Title
	if title == "" {
		title = candidate.SourceURL
	}
	return &PlayResult{Track: track, Title: title, Position: position, Started: started}, nil
}

// Import brings a whole playlist into the queue.
//
// Catalog URLs (recognized by the catalog provider) are fetched page by page
// and matched track by track against the search provider; direct URLs are
// flat-listed and enqueued as-is. Individual misses never abort the import.
func (e *PlayerEngine) Import(ctx context.Context, queue TrackQueue, requester, input string, progress chan<- ProgressUpdate) (*ImportReport, error) {
	if e.catalog != nil {
		playlistID, err := e.catalog.ExtractPlaylistID(input)
		if err == nil {
			return e.importCatalog(ctx, queue, requester, playlistID, progress)
		}
		if !errors.Is(err, shared.ErrInvalidPlaylistURL) {
			return nil, err
		}
	}

	return e.importDirect(ctx, queue, requester, input, progress)
}

// importCatalog fetches a catalog playlist, archives the listing and
// enqueues the best search match per track.
func (e *PlayerEngine) importCatalog(ctx context.Context, queue TrackQueue, requester, playlistID string, progress chan<- ProgressUpdate) (*ImportReport, error) {
	e.sendProgress(progress, fetchCatalogUpdate(playlistID))

	tracks, err := e.catalog.PlaylistTracks(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	report := &ImportReport{PlaylistID: playlistID, Source: "catalog", Total: len(tracks)}
	report.Persisted = e.archiveCatalogTracks(ctx, playlistID, tracks, progress)

	for i, track := range tracks {
		e.sendProgress(progress, matchTrackUpdate(i+1, report.Total, track.Name, track.Artist))

		candidate, err := e.search.SearchSong(ctx, track.Name, track.Artist)
		if err != nil {
			report.Skipped++
			report.Failures = append(report.Failures, ImportFailure{Name: track.Name, Artist: track.Artist, Reason: err.Error()})
			continue
		}
		if candidate.Duration == 0 {
			candidate.Duration = track.Duration
		}

		if _, err := e.enqueueCandidate(ctx, queue, requester, candidate); err != nil {
			report.Skipped++
			report.Failures = append(report.Failures, ImportFailure{Name: track.Name, Artist: track.Artist, Reason: err.Error()})
			continue
		}
		report.Enqueued++
		e.sendProgress(progress, enqueueUpdate(report.Enqueued, report.Total, candidate.Title))
	}

	return report, nil
}

// importDirect flat-lists a playlist hosted on the video platform and
// enqueues every entry directly.
func (e *PlayerEngine) importDirect(ctx context.Context, queue TrackQueue, requester, playlistURL string, progress chan<- ProgressUpdate) (*ImportReport, error) {
	if e.lister == nil {
		return nil, fmt.Errorf("%w: no playlist lister configured", shared.ErrProviderUnavailable)
	}

	e.sendProgress(progress, listEntriesUpdate(playlistURL))

	entries, err := e.lister.ListPlaylist(ctx, playlistURL, 0)
	if err != nil {
		return nil, err
	}

	report := &ImportReport{PlaylistID: playlistURL, Source: "direct", Total: len(entries)}
	report.Persisted = e.archiveDirectEntries(ctx, playlistURL, entries, progress)

	for _, entry := range entries {
		candidate := models.Candidate{
			Title:     entry.Title,
			Artist:    entry.Uploader,
			SourceURL: entry.SourceURL,
			Duration:  entry.Duration,
		}

		if _, err := e.enqueueCandidate(ctx, queue, requester, candidate); err != nil {
			report.Skipped++
			report.Failures = append(report.Failures, ImportFailure{Name: entry.Title, Artist: entry.Uploader, Reason: err.Error()})
			continue
		}
		report.Enqueued++
		e.sendProgress(progress, enqueueUpdate(report.Enqueued, report.Total, entry.Title))
	}

	return report, nil
}

// archiveCatalogTracks writes the playlist listing in one batch. Archive
// failures are recorded in the report, never propagated: losing history must
// not block playback.
func (e *PlayerEngine) archiveCatalogTracks(ctx context.Context, playlistID string, tracks []models.CatalogTrack, progress chan<- ProgressUpdate) bool {
	if e.archive == nil || len(tracks) == 0 {
		return false
	}

	e.sendProgress(progress, archiveUpdate(len(tracks)))

	batch := make([]models.ArchivedTrack, len(tracks))
	now := time.Now()
	for i, track := range tracks {
		batch[i] = models.ArchivedTrack{
			ID:         shared.GenerateID(),
			PlaylistID: playlistID,
			Position:   i,
			Title:      track.Name,
			Artist:     track.Artist,
			Duration:   track.Duration,
			CreatedAt:  now,
		}
	}

	if err := e.archive.RecordPlaylistTracks(ctx, playlistID, batch); err != nil {
		e.logger.Warn("failed to archive playlist tracks", "playlist", playlistID, "error", err)
		return false
	}
	return true
}

// archiveDirectEntries writes a flat-listed playlist in one batch.
func (e *PlayerEngine) archiveDirectEntries(ctx context.Context, playlistURL string, entries []models.PlaylistEntry, progress chan<- ProgressUpdate) bool {
	if e.archive == nil || len(entries) == 0 {
		return false
	}

	e.sendProgress(progress, archiveUpdate(len(entries)))

	batch := make([]models.ArchivedTrack, len(entries))
	now := time.Now()
	for i, entry := range entries {
		batch[i] = models.ArchivedTrack{
			ID:         shared.GenerateID(),
			PlaylistID: playlistURL,
			Position:   i,
			Title:      entry.Title,
			Artist:     entry.Uploader,
			SourceURL:  entry.SourceURL,
			Duration:   entry.Duration,
			CreatedAt:  now,
		}
	}

	if err := e.archive.RecordPlaylistTracks(ctx, playlistURL, batch); err != nil {
		e.logger.Warn("failed to archive playlist entries", "playlist", playlistURL, "error", err)
		return false
	}
	return true
}
