// Package server runs the short-lived local HTTP server used by `archify auth`.
//
// # Routing
//
// [Router] registers handlers and applies [Middleware] in registration order (first added runs first). [BasicRouter]
// implements it over [http.ServeMux] with method filtering.
//
// # OAuth callback
//
// [OAuthHandler] serves the Spotify redirect URI. It checks the state parameter, exchanges the authorization
// code for a token, and delivers exactly one [OAuthResult]. Later callbacks are rejected.
//
// [CallbackServer] listens before the browser is opened, so the redirect cannot race the listener, and is shut
// down as soon as the token arrives or the wait is abandoned.
package server
