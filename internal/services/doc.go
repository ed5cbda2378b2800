// Package services defines provider adapters for track resolution, search and catalog playlists.
//
// # Provider Interfaces
//
// Three small interfaces split the provider surface by capability:
//   - [SearchProvider] : resolve free text or URLs into playable candidates
//   - [CatalogProvider] : read playlists from a catalog without playable streams
//   - [PlaylistLister] : flat-list playlists hosted on the video platform
//
// # YouTube Implementation
//
// [YouTubeService] implements SearchProvider and PlaylistLister. Free-text
// search uses the InnerTube client; song lookups during imports query
// YouTube Music first (catalog tracks are songs, and the music index ranks
// them better) and fall back to plain search. Playlist flat-listing shells
// out to yt-dlp once per playlist instead of fetching entries one by one.
//
// # Spotify Implementation
//
// [SpotifyService] implements CatalogProvider over the Spotify Web API using
// the client-credentials grant; the bot only reads public playlists, so no
// user authorization flow exists. Track pages are fetched at the API maximum
// (100) and paced by a rate limiter.
//
// # Error Handling
//
// Adapters map failures onto the closed taxonomy in the shared package:
//   - [shared.ErrProviderUnavailable] : transport or API failure, never retried
//   - [shared.ErrNoSearchResults] : query produced no usable candidates
//   - [shared.ErrResolutionFailed] : a hit exists but carries no source URL
//   - [shared.ErrInvalidPlaylistURL] : input has no recognizable playlist ID
package services
