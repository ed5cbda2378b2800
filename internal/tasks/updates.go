package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the command layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
}

// Operation phase enumeration
type Phase int

const (
	FetchCatalog Phase = iota
	ListEntries
	Archive
	MatchTracks
	EnqueueTracks
)

func (p Phase) String() string {
	switch p {
	case FetchCatalog:
		return "fetch_catalog"
	case ListEntries:
		return "list_entries"
	case Archive:
		return "archive"
	case MatchTracks:
		return "match_tracks"
	case EnqueueTracks:
		return "enqueue_tracks"
	default:
		return ""
	}
}

func fetchCatalogUpdate(playlistID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchCatalog,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching playlist %s from catalog...", playlistID),
	}
}

func listEntriesUpdate(playlistURL string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ListEntries,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Listing playlist %s...", playlistURL),
	}
}

func archiveUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Archive,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Archiving %d tracks...", count),
	}
}

func matchTrackUpdate(step, total int, name, artist string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   MatchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s - %s", step, total, artist, name),
	}
}

func enqueueUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   EnqueueTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Queued: %s", step, total, title),
	}
}
