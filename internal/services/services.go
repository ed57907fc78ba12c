// package services defines interface Service for reading playlists from a streaming API
package services

import (
	"context"

	"github.com/desertthunder/archify/internal/models"
	"golang.org/x/oauth2"
)

// Service defines the read-only surface the archiver needs from a music service.
type Service interface {
	// Authenticate performs OAuth or token authentication with the service.
	// Returns an error if authentication fails.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// PlaylistsPage returns one page of the current user's playlists.
	PlaylistsPage(ctx context.Context, offset, limit int) (models.Page[models.Playlist], error)

	// TracksPage returns one page of a playlist's entries.
	// Entries the service could not resolve are nil.
	TracksPage(ctx context.Context, playlistID string, offset, limit int) (models.Page[*models.Track], error)

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}

// OAuthService extends [Service] for providers that use the authorization code flow.
type OAuthService interface {
	Service

	// GetAuthURL returns the URL the user visits to grant access.
	GetAuthURL(state string) string

	// GetOAuthConfig exposes the client configuration for callback handlers.
	GetOAuthConfig() *oauth2.Config

	// OAuthenticate installs a token obtained from a previous flow or the config file.
	OAuthenticate(ctx context.Context, token *oauth2.Token) error
}
