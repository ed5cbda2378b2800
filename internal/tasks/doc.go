// Package tasks orchestrates track resolution, playlist imports and
// interactive disambiguation with real-time progress reporting.
//
// # Core Operations
//
// [PlayerEngine] exposes three operations:
//
//  1. [PlayerEngine.Play] : Resolve one query or URL and enqueue it
//     - Direct URLs pass through; queries take the top search hit
//     - Metadata is cached under the assigned track ID before enqueueing
//
//  2. [PlayerEngine.Import] : Bring a whole playlist into the queue
//     - Catalog URLs are fetched page by page, archived in one transaction,
//       and matched track by track (music search first, plain search
//       fallback)
//     - Direct playlist URLs are flat-listed and enqueued as-is
//     - Partial failure is the normal case; the report always satisfies
//       Enqueued + Skipped == Total
//
//  3. [PlayerEngine.Disambiguate] : Offer candidates and wait for a choice
//     - Five candidates, one prompt, filtered to the requesting user
//     - The wait is bounded; resolution happens exactly once
//
// # Progress Reporting
//
// Long operations accept an optional channel of [ProgressUpdate]. Updates
// use select with default so a slow or absent reader never blocks an import.
//
// # Track Archiving
//
// The optional [TrackArchiver] persists playlist listings during imports.
// Archive failures are recorded in the report (Persisted=false) and
// otherwise ignored: losing history must not block playback.
package tasks
