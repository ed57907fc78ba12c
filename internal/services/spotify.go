// Spotify API implementation of [Service]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/desertthunder/archify/internal/models"
	"github.com/desertthunder/archify/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// DefaultRedirectURI is used when the credentials carry no redirect_uri.
	DefaultRedirectURI = "http://127.0.0.1:3000/callback"

	// DefaultRequestsPerSecond throttles API calls when no rate is configured.
	DefaultRequestsPerSecond = 10.0

	// tracksFields trims playlist item responses to what the archive needs.
	tracksFields = "items(track(name,artists(name))),next"
)

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Country     string `json:"country"`
	Product     string `json:"product"` // premium, free, etc.
}

// SpotifyArtist represents a simplified Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Artists []SpotifyArtist `json:"artists"`
}

// SpotifyPlaylistTrack represents a track within a playlist context.
//
// Track is null for entries Spotify can no longer resolve.
type SpotifyPlaylistTrack struct {
	AddedAt string        `json:"added_at"`
	Track   *SpotifyTrack `json:"track"`
}

type Owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type simplePlaylistTrack struct {
	Total int `json:"total"`
}

// SpotifySimplePlaylist represents a simplified playlist object (used in lists).
type SpotifySimplePlaylist struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Owner       Owner               `json:"owner"`
	Public      bool                `json:"public"`
	Tracks      simplePlaylistTrack `json:"tracks"`
}

// SpotifyPaging is the envelope of every paginated Spotify response.
type SpotifyPaging[T any] struct {
	Items  []T     `json:"items"`
	Total  int     `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
	Next   *string `json:"next"`
}

type spotifyErrorBody struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// SpotifyService implements the Service interface for Spotify API interactions.
// Uses [oauth2] for authentication and throttles requests with a [rate.Limiter].
type SpotifyService struct {
	config         *oauth2.Config
	token          *oauth2.Token
	httpClient     *http.Client
	baseURL        string
	limiter        *rate.Limiter
	onTokenRefresh func(*oauth2.Token)
	mu             sync.Mutex
}

// SpotifyOption customizes a [SpotifyService].
type SpotifyOption func(*SpotifyService)

// WithBaseURL points the service at a different API root. Used by tests.
func WithBaseURL(u string) SpotifyOption {
	return func(s *SpotifyService) { s.baseURL = u }
}

// WithRateLimit sets the sustained request rate. Non-positive values disable throttling.
func WithRateLimit(perSecond float64) SpotifyOption {
	return func(s *SpotifyService) {
		if perSecond <= 0 {
			s.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		s.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
func NewSpotifyService(credentials map[string]string, opts ...SpotifyOption) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id in credentials", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret in credentials", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = DefaultRedirectURI
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"playlist-read-private",
			"playlist-read-collaborative",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	s := &SpotifyService{
		config:  config,
		baseURL: spotifyBaseURL,
		limiter: rate.NewLimiter(rate.Limit(DefaultRequestsPerSecond), 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// GetOAuthConfig returns the client configuration used for code exchange.
func (s *SpotifyService) GetOAuthConfig() *oauth2.Config {
	return s.config
}

// SetTokenRefreshCallback registers fn to receive every token the client obtains by refreshing.
// Pass nil to stop notifications.
func (s *SpotifyService) SetTokenRefreshCallback(fn func(*oauth2.Token)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onTokenRefresh = fn
}

func (s *SpotifyService) notifyRefresh(token *oauth2.Token) {
	s.mu.Lock()
	fn := s.onTokenRefresh
	s.mu.Unlock()
	if fn != nil {
		fn(token)
	}
}

// Authenticate performs OAuth2 authentication with Spotify.
//
// Expects an "access_token" (optionally with "refresh_token") or an "auth_code" in credentials.
func (s *SpotifyService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if accessToken := credentials["access_token"]; accessToken != "" {
		return s.OAuthenticate(ctx, &oauth2.Token{
			AccessToken:  accessToken,
			RefreshToken: credentials["refresh_token"],
			TokenType:    "Bearer",
		})
	}

	if refreshToken := credentials["refresh_token"]; refreshToken != "" {
		return s.OAuthenticate(ctx, &oauth2.Token{RefreshToken: refreshToken})
	}

	if authCode := credentials["auth_code"]; authCode != "" {
		token, err := s.config.Exchange(ctx, authCode)
		if err != nil {
			return fmt.Errorf("%w: failed to exchange auth code: %v", shared.ErrAuthFailed, err)
		}
		return s.OAuthenticate(ctx, token)
	}

	return fmt.Errorf("%w: missing access_token, refresh_token or auth_code", shared.ErrMissingCredentials)
}

// OAuthenticate installs token and builds a client that refreshes it when it expires.
func (s *SpotifyService) OAuthenticate(ctx context.Context, token *oauth2.Token) error {
	if token == nil {
		return fmt.Errorf("%w: no token", shared.ErrNotAuthenticated)
	}

	source := &refreshableTokenSource{
		source:   s.config.TokenSource(context.WithoutCancel(ctx), token),
		callback: s.notifyRefresh,
		last:     token.AccessToken,
	}

	s.mu.Lock()
	s.token = token
	s.httpClient = oauth2.NewClient(context.WithoutCancel(ctx), source)
	s.mu.Unlock()
	return nil
}

// refreshableTokenSource wraps an [oauth2.TokenSource] and reports each new access token.
type refreshableTokenSource struct {
	source   oauth2.TokenSource
	callback func(*oauth2.Token)
	last     string
	mu       sync.Mutex
}

func (r *refreshableTokenSource) Token() (*oauth2.Token, error) {
	token, err := r.source.Token()
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	changed := token.AccessToken != r.last
	if changed {
		r.last = token.AccessToken
	}
	r.mu.Unlock()

	if changed && r.callback != nil {
		r.notify(token)
	}
	return token, nil
}

// notify runs the callback, containing any panic so a failing persistence hook
// cannot break an in-flight request.
func (r *refreshableTokenSource) notify(token *oauth2.Token) {
	defer func() { _ = recover() }()
	r.callback(token)
}

// doRequest performs an authenticated GET against the Spotify API and decodes the JSON body into result.
func (s *SpotifyService) doRequest(ctx context.Context, endpoint string, query url.Values, result any) error {
	s.mu.Lock()
	client := s.httpClient
	s.mu.Unlock()

	if client == nil {
		return shared.TransportError("GET "+endpoint, fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated))
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return shared.TransportError("GET "+endpoint, fmt.Errorf("%w: %v", shared.ErrTimeout, err))
	}

	apiURL := s.baseURL + endpoint
	if len(query) > 0 {
		apiURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return shared.TransportError("GET "+endpoint, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return shared.TransportError("GET "+endpoint, fmt.Errorf("%w: %s", shared.ErrTokenExpired, apiMessage(resp)))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return shared.TransportError("GET "+endpoint, fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, apiMessage(resp)))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return shared.TransportError("GET "+endpoint, fmt.Errorf("%w: failed to decode response: %v", shared.ErrAPIRequest, err))
		}
	}

	return nil
}

// apiMessage extracts the message from a Spotify error body, falling back to the status text.
func apiMessage(resp *http.Response) string {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err == nil {
		var e spotifyErrorBody
		if json.Unmarshal(body, &e) == nil && e.Error.Message != "" {
			return e.Error.Message
		}
	}
	return http.StatusText(resp.StatusCode)
}

func pageQuery(offset, limit int) url.Values {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	return q
}

// CurrentUser retrieves the current authenticated user's profile.
func (s *SpotifyService) CurrentUser(ctx context.Context) (*SpotifyUser, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UserPlaylists retrieves one page of the current user's playlists.
func (s *SpotifyService) UserPlaylists(ctx context.Context, offset, limit int) (*SpotifyPaging[SpotifySimplePlaylist], error) {
	var response SpotifyPaging[SpotifySimplePlaylist]
	if err := s.doRequest(ctx, "/me/playlists", pageQuery(offset, limit), &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// PlaylistItems retrieves one page of a playlist's entries.
func (s *SpotifyService) PlaylistItems(ctx context.Context, playlistID string, offset, limit int) (*SpotifyPaging[SpotifyPlaylistTrack], error) {
	if playlistID == "" {
		return nil, fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}

	q := pageQuery(offset, limit)
	q.Set("fields", tracksFields)

	var response SpotifyPaging[SpotifyPlaylistTrack]
	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))
	if err := s.doRequest(ctx, endpoint, q, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// PlaylistsPage implements [Service].
func (s *SpotifyService) PlaylistsPage(ctx context.Context, offset, limit int) (models.Page[models.Playlist], error) {
	response, err := s.UserPlaylists(ctx, offset, limit)
	if err != nil {
		return models.Page[models.Playlist]{}, err
	}

	page := models.Page[models.Playlist]{
		Items:   make([]models.Playlist, 0, len(response.Items)),
		HasNext: response.Next != nil,
	}
	for _, sp := range response.Items {
		page.Items = append(page.Items, models.Playlist{
			ID:          sp.ID,
			Name:        sp.Name,
			Description: sp.Description,
			TrackCount:  sp.Tracks.Total,
			Public:      sp.Public,
		})
	}
	return page, nil
}

// TracksPage implements [Service]. Entries with a null track come back as nil.
func (s *SpotifyService) TracksPage(ctx context.Context, playlistID string, offset, limit int) (models.Page[*models.Track], error) {
	response, err := s.PlaylistItems(ctx, playlistID, offset, limit)
	if err != nil {
		return models.Page[*models.Track]{}, err
	}

	page := models.Page[*models.Track]{
		Items:   make([]*models.Track, 0, len(response.Items)),
		HasNext: response.Next != nil,
	}
	for _, item := range response.Items {
		if item.Track == nil {
			page.Items = append(page.Items, nil)
			continue
		}

		track := &models.Track{Name: item.Track.Name, Artists: make([]string, 0, len(item.Track.Artists))}
		for _, a := range item.Track.Artists {
			track.Artists = append(track.Artists, a.Name)
		}
		page.Items = append(page.Items, track)
	}
	return page, nil
}
