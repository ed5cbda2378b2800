// Package models defines the domain entities shared across the playback engine.
//
// The package contains two categories of types:
//
// 1. Playback types used by the session layer:
//   - [QueuedTrack] : A queue entry holding the playable source and requester
//   - [TrackMetadata] : Display metadata cached per queued track
//
// 2. Provider types returned by the search and catalog adapters:
//   - [Candidate] : A search result offered during disambiguation
//   - [CatalogTrack] : A catalog playlist entry (name/artist, no stream URL)
//   - [PlaylistEntry] : A direct playlist flat-listing entry
//   - [ArchivedTrack] : A playlist track persisted to the archive
//
// All types are plain value structs; identity and timestamps are assigned by
// the layer that creates them.
package models
