package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/desertthunder/archify/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

func newCredentialService(t *testing.T, opts ...SpotifyOption) *SpotifyService {
	t.Helper()
	srv, err := NewSpotifyService(map[string]string{
		"client_id":     "test_client_id",
		"client_secret": "test_client_secret",
	}, opts...)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return srv
}

// newRefreshServer issues "fresh" for any refresh or code grant with a known code.
func newRefreshServer(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var grants []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("failed to parse token request: %v", err)
		}
		grants = append(grants, r.Form.Get("grant_type"))
		if r.Form.Get("grant_type") == "authorization_code" && r.Form.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":"invalid_grant"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"fresh","refresh_token":"next","token_type":"Bearer","expires_in":3600}`)
	}))
	t.Cleanup(srv.Close)
	return srv, &grants
}

func TestSpotifyService(t *testing.T) {
	ctx := context.Background()

	t.Run("NewSpotifyService", func(t *testing.T) {
		tests := []struct {
			name    string
			creds   map[string]string
			wantErr error
		}{
			{name: "valid", creds: map[string]string{"client_id": "id", "client_secret": "secret"}},
			{name: "missing client id", creds: map[string]string{"client_secret": "secret"}, wantErr: shared.ErrMissingCredentials},
			{name: "empty client id", creds: map[string]string{"client_id": "", "client_secret": "secret"}, wantErr: shared.ErrMissingCredentials},
			{name: "missing client secret", creds: map[string]string{"client_id": "id"}, wantErr: shared.ErrMissingCredentials},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				srv, err := NewSpotifyService(tt.creds)
				if tt.wantErr != nil {
					if !errors.Is(err, tt.wantErr) {
						t.Errorf("expected %v, got %v", tt.wantErr, err)
					}
					return
				}
				if err != nil {
					t.Fatalf("NewSpotifyService() error = %v", err)
				}
				if srv.Name() != "Spotify" {
					t.Errorf("expected name Spotify, got %s", srv.Name())
				}
				if srv.baseURL != spotifyBaseURL {
					t.Errorf("expected base URL %s, got %s", spotifyBaseURL, srv.baseURL)
				}
			})
		}
	})

	t.Run("read-only playlist scopes", func(t *testing.T) {
		srv := newCredentialService(t)

		want := []string{"playlist-read-private", "playlist-read-collaborative"}
		if got := srv.GetOAuthConfig().Scopes; len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
			t.Errorf("Scopes = %v, want %v", got, want)
		}
	})

	t.Run("redirect URI", func(t *testing.T) {
		srv := newCredentialService(t)
		if srv.config.RedirectURL != DefaultRedirectURI {
			t.Errorf("expected default redirect URI, got %s", srv.config.RedirectURL)
		}

		custom, err := NewSpotifyService(map[string]string{
			"client_id":     "id",
			"client_secret": "secret",
			"redirect_uri":  "http://127.0.0.1:9999/done",
		})
		if err != nil {
			t.Fatalf("NewSpotifyService() error = %v", err)
		}
		if custom.config.RedirectURL != "http://127.0.0.1:9999/done" {
			t.Errorf("expected custom redirect URI, got %s", custom.config.RedirectURL)
		}
	})

	t.Run("GetAuthURL", func(t *testing.T) {
		srv := newCredentialService(t)

		u, err := url.Parse(srv.GetAuthURL("test_state"))
		if err != nil {
			t.Fatalf("invalid auth URL: %v", err)
		}
		if u.Host != "accounts.spotify.com" || u.Path != "/authorize" {
			t.Errorf("unexpected auth endpoint %s%s", u.Host, u.Path)
		}

		q := u.Query()
		checks := map[string]string{
			"client_id":     "test_client_id",
			"state":         "test_state",
			"response_type": "code",
			"redirect_uri":  DefaultRedirectURI,
			"scope":         "playlist-read-private playlist-read-collaborative",
			"access_type":   "offline",
		}
		for key, want := range checks {
			if got := q.Get(key); got != want {
				t.Errorf("%s = %q, want %q", key, got, want)
			}
		}
	})

	t.Run("WithRateLimit", func(t *testing.T) {
		tests := []struct {
			name string
			opts []SpotifyOption
			want rate.Limit
		}{
			{name: "default", want: rate.Limit(DefaultRequestsPerSecond)},
			{name: "configured", opts: []SpotifyOption{WithRateLimit(2.5)}, want: rate.Limit(2.5)},
			{name: "zero disables throttling", opts: []SpotifyOption{WithRateLimit(0)}, want: rate.Inf},
			{name: "negative disables throttling", opts: []SpotifyOption{WithRateLimit(-1)}, want: rate.Inf},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				srv := newCredentialService(t, tt.opts...)
				if got := srv.limiter.Limit(); got != tt.want {
					t.Errorf("Limit() = %v, want %v", got, tt.want)
				}
				if srv.limiter.Burst() != 1 {
					t.Errorf("expected burst 1, got %d", srv.limiter.Burst())
				}
			})
		}
	})

	t.Run("WithBaseURL", func(t *testing.T) {
		srv := newCredentialService(t, WithBaseURL("http://127.0.0.1:1234/v1"))
		if srv.baseURL != "http://127.0.0.1:1234/v1" {
			t.Errorf("unexpected base URL %s", srv.baseURL)
		}
	})

	t.Run("OAuthenticate without a token", func(t *testing.T) {
		srv := newCredentialService(t)

		err := srv.OAuthenticate(ctx, nil)
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
		if srv.httpClient != nil {
			t.Error("expected no client to be built")
		}
	})

	t.Run("Authenticate", func(t *testing.T) {
		t.Run("access token", func(t *testing.T) {
			srv := newCredentialService(t)

			err := srv.Authenticate(ctx, map[string]string{"access_token": "access", "refresh_token": "refresh"})
			if err != nil {
				t.Fatalf("Authenticate() error = %v", err)
			}
			if srv.token.AccessToken != "access" || srv.token.RefreshToken != "refresh" || srv.token.TokenType != "Bearer" {
				t.Errorf("unexpected token %+v", srv.token)
			}
			if srv.httpClient == nil {
				t.Error("expected client to be built")
			}
		})

		t.Run("refresh token only", func(t *testing.T) {
			tokens, grants := newRefreshServer(t)
			api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.Header.Get("Authorization"); got != "Bearer fresh" {
					t.Errorf("expected refreshed bearer token, got %q", got)
				}
				w.Header().Set("Content-Type", "application/json")
				fmt.Fprint(w, `{"id":"user-1","display_name":"Test User"}`)
			}))
			defer api.Close()

			srv := newCredentialService(t, WithBaseURL(api.URL), WithRateLimit(0))
			srv.config.Endpoint.TokenURL = tokens.URL

			var refreshed *oauth2.Token
			srv.SetTokenRefreshCallback(func(token *oauth2.Token) { refreshed = token })

			if err := srv.Authenticate(ctx, map[string]string{"refresh_token": "stored"}); err != nil {
				t.Fatalf("Authenticate() error = %v", err)
			}
			if srv.token.AccessToken != "" || srv.token.RefreshToken != "stored" {
				t.Errorf("unexpected token %+v", srv.token)
			}

			user, err := srv.CurrentUser(ctx)
			if err != nil {
				t.Fatalf("CurrentUser() error = %v", err)
			}
			if user.ID != "user-1" {
				t.Errorf("unexpected user %+v", user)
			}
			if len(*grants) != 1 || (*grants)[0] != "refresh_token" {
				t.Errorf("expected one refresh grant, got %v", *grants)
			}
			if refreshed == nil || refreshed.AccessToken != "fresh" {
				t.Errorf("expected refresh callback with fresh token, got %+v", refreshed)
			}
		})

		t.Run("auth code", func(t *testing.T) {
			tokens, grants := newRefreshServer(t)
			srv := newCredentialService(t)
			srv.config.Endpoint.TokenURL = tokens.URL

			if err := srv.Authenticate(ctx, map[string]string{"auth_code": "good-code"}); err != nil {
				t.Fatalf("Authenticate() error = %v", err)
			}
			if srv.token.AccessToken != "fresh" || (*grants)[0] != "authorization_code" {
				t.Errorf("unexpected token %+v after grants %v", srv.token, *grants)
			}
		})

		t.Run("rejected auth code", func(t *testing.T) {
			tokens, _ := newRefreshServer(t)
			srv := newCredentialService(t)
			srv.config.Endpoint.TokenURL = tokens.URL

			err := srv.Authenticate(ctx, map[string]string{"auth_code": "bad-code"})
			if !errors.Is(err, shared.ErrAuthFailed) {
				t.Errorf("expected ErrAuthFailed, got %v", err)
			}
			if srv.token != nil {
				t.Error("expected no token to be installed")
			}
		})

		t.Run("missing credentials", func(t *testing.T) {
			srv := newCredentialService(t)

			if err := srv.Authenticate(ctx, map[string]string{}); !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})
	})

	t.Run("SetTokenRefreshCallback", func(t *testing.T) {
		srv := newCredentialService(t)
		token := &oauth2.Token{AccessToken: "new"}

		var calls []string
		srv.SetTokenRefreshCallback(func(*oauth2.Token) { calls = append(calls, "first") })
		srv.SetTokenRefreshCallback(func(tok *oauth2.Token) { calls = append(calls, "second:"+tok.AccessToken) })
		srv.notifyRefresh(token)

		if len(calls) != 1 || calls[0] != "second:new" {
			t.Errorf("expected only the replacement callback, got %v", calls)
		}

		srv.SetTokenRefreshCallback(nil)
		srv.notifyRefresh(token)
		if len(calls) != 1 {
			t.Errorf("expected no call after clearing the callback, got %v", calls)
		}
	})
}

func TestRefreshableTokenSource(t *testing.T) {
	t.Run("reports only new access tokens", func(t *testing.T) {
		mock := &mockTokenSource{token: &oauth2.Token{AccessToken: "stored"}}
		var seen []string
		source := &refreshableTokenSource{
			source:   mock,
			last:     "stored",
			callback: func(tok *oauth2.Token) { seen = append(seen, tok.AccessToken) },
		}

		steps := []string{"stored", "stored", "refreshed", "refreshed", "again"}
		for _, access := range steps {
			mock.token = &oauth2.Token{AccessToken: access}
			got, err := source.Token()
			if err != nil {
				t.Fatalf("Token() error = %v", err)
			}
			if got.AccessToken != access {
				t.Errorf("Token() = %s, want %s", got.AccessToken, access)
			}
		}

		if strings.Join(seen, ",") != "refreshed,again" {
			t.Errorf("expected callbacks for refreshed,again; got %v", seen)
		}
	})

	t.Run("nil callback", func(t *testing.T) {
		source := &refreshableTokenSource{source: &mockTokenSource{token: &oauth2.Token{AccessToken: "a"}}}

		if tok, err := source.Token(); err != nil || tok.AccessToken != "a" {
			t.Errorf("Token() = %v, %v", tok, err)
		}
	})

	t.Run("source errors skip the callback", func(t *testing.T) {
		source := &refreshableTokenSource{
			source:   &mockTokenSource{err: errors.New("token source error")},
			callback: func(*oauth2.Token) { t.Error("callback should not be called on error") },
		}

		tok, err := source.Token()
		if err == nil || !strings.Contains(err.Error(), "token source error") || tok != nil {
			t.Errorf("expected source error and nil token, got %v, %v", tok, err)
		}
	})

	t.Run("panicking callback still returns the token", func(t *testing.T) {
		source := &refreshableTokenSource{
			source:   &mockTokenSource{token: &oauth2.Token{AccessToken: "a"}},
			callback: func(*oauth2.Token) { panic("persist failed") },
		}

		tok, err := source.Token()
		if err != nil || tok.AccessToken != "a" {
			t.Errorf("Token() = %v, %v", tok, err)
		}
	})
}

// mockTokenSource implements [oauth2.TokenSource] for testing
type mockTokenSource struct {
	token *oauth2.Token
	err   error
}

func (m *mockTokenSource) Token() (*oauth2.Token, error) {
	return m.token, m.err
}
