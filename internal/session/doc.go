// Package session implements per-guild playback state: the session registry,
// the track queue and the shared metadata cache.
//
// # Concurrency Model
//
// Two locks, never held together in a way that can invert:
//   - [Registry] guards the guild → session map with its own mutex.
//   - [Session] serializes every queue mutation under a per-session mutex.
//
// Queue advancement is message passing rather than polling: the voice
// [Connection] yields one finished signal per started track, and a watcher
// goroutine per session responds by promoting the next queued entry. Skip
// and natural track end therefore share a single advance path. Stop clears
// the queue and current pointer before halting the connection, so the late
// finished signal finds nothing to do.
//
// # Collaborators
//
// The session layer never touches the gateway directly. It depends on three
// interfaces implemented by the discord package: [VoiceTransport] to open
// connections, [Connection] to stream audio and [ChannelLocator] to find the
// caller's voice channel. Tests substitute all three with in-memory fakes.
package session
