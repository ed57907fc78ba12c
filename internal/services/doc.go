// Package services defines the [Service] interface for music streaming providers and implements it for Spotify.
//
// # Service Interface
//
// The archiver only reads: a provider lists the user's playlists and the entries of one playlist, a page at a time.
// [Paginate] turns any page function into a complete listing; [AllPlaylists] and [AllTracks] fix the page sizes
// at [PlaylistPageSize] and [TrackPageSize].
//
// # Spotify Implementation
//
// [SpotifyService] uses OAuth2 for authentication with automatic token refresh.
//
// The [oauth2.Client] refreshes expired tokens using the refresh token. Each new access token is passed to the
// callback registered with [SpotifyService.SetTokenRefreshCallback] so callers can persist it.
//
// Requests are throttled by a [rate.Limiter] (see [WithRateLimit]).
//
// # OAuth Service Extension
//
// The [OAuthService] interface extends Service for OAuth providers.
// [SpotifyService] implements this for the local callback flow used by the CLI.
//
// # Error Handling
//
// Services return [shared.Error] values of kind [shared.KindTransport] that wrap a sentinel:
//   - [shared.ErrNotAuthenticated] : Authenticate() not called
//   - [shared.ErrTokenExpired] : the API answered 401, reauthorization needed
//   - [shared.ErrAPIRequest] : any other failed request
package services
