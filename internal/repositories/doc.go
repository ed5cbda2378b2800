// Package repositories implements SQLite persistence for imported playlists.
//
// [TrackRepository] archives the listing captured by each playlist import as
// one transactional batch keyed by playlist ID. Re-importing a playlist
// replaces its previous listing, so the archive always reflects the most
// recent import rather than accumulating duplicates.
//
// All failures wrap [shared.ErrPersistenceFailed] so callers can treat
// persistence as best-effort without inspecting driver errors.
package repositories
