package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/archify/internal/shared"
	tu "github.com/desertthunder/archify/internal/testing"
	"golang.org/x/oauth2"
)

// fakeSpotify serves /me/playlists and /playlists/{id}/tracks from memory.
type fakeSpotify struct {
	playlists []SpotifySimplePlaylist
	items     map[string][]SpotifyPlaylistTrack
	status    int
	requests  []string
}

func (f *fakeSpotify) handler(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, SpotifyUser{ID: "user-1", DisplayName: "Test User"})
	})

	mux.HandleFunc("/me/playlists", func(w http.ResponseWriter, r *http.Request) {
		f.requests = append(f.requests, r.URL.RequestURI())
		if f.status != 0 {
			w.WriteHeader(f.status)
			fmt.Fprintf(w, `{"error":{"status":%d,"message":"boom"}}`, f.status)
			return
		}
		offset, limit := paging(r)
		writeJSON(t, w, slicePage(f.playlists, offset, limit, r))
	})

	mux.HandleFunc("/playlists/{id}/tracks", func(w http.ResponseWriter, r *http.Request) {
		f.requests = append(f.requests, r.URL.RequestURI())
		if r.URL.Query().Get("fields") == "" {
			t.Error("expected fields parameter on tracks request")
		}
		items, ok := f.items[r.PathValue("id")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error":{"status":404,"message":"Not found."}}`)
			return
		}
		offset, limit := paging(r)
		writeJSON(t, w, slicePage(items, offset, limit, r))
	})

	return mux
}

func paging(r *http.Request) (int, int) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return offset, limit
}

func slicePage[T any](all []T, offset, limit int, r *http.Request) SpotifyPaging[T] {
	end := min(offset+limit, len(all))
	start := min(offset, len(all))
	page := SpotifyPaging[T]{Items: all[start:end], Total: len(all), Limit: limit, Offset: offset}
	if end < len(all) {
		next := fmt.Sprintf("http://%s%s?offset=%d&limit=%d", r.Host, r.URL.Path, end, limit)
		page.Next = &next
	}
	return page
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("failed to encode response: %v", err)
	}
}

func newTestService(t *testing.T, fake *fakeSpotify) *SpotifyService {
	t.Helper()
	ts := httptest.NewServer(fake.handler(t))
	t.Cleanup(ts.Close)

	srv, err := NewSpotifyService(map[string]string{
		"client_id":     "test_client_id",
		"client_secret": "test_client_secret",
	}, WithBaseURL(ts.URL), WithRateLimit(0))
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	if err := srv.Authenticate(context.Background(), map[string]string{"access_token": "token"}); err != nil {
		t.Fatalf("failed to authenticate: %v", err)
	}
	return srv
}

func TestSpotifyServiceHTTP(t *testing.T) {
	ctx := context.Background()

	t.Run("AllPlaylists walks every page", func(t *testing.T) {
		fake := &fakeSpotify{}
		for i := 0; i < 120; i++ {
			fake.playlists = append(fake.playlists, SpotifySimplePlaylist{
				ID:     fmt.Sprintf("id-%d", i),
				Name:   fmt.Sprintf("Playlist %d", i),
				Tracks: simplePlaylistTrack{Total: i},
			})
		}
		srv := newTestService(t, fake)

		playlists, err := AllPlaylists(ctx, srv)
		if err != nil {
			t.Fatalf("AllPlaylists() error = %v", err)
		}
		if len(playlists) != 120 {
			t.Fatalf("expected 120 playlists, got %d", len(playlists))
		}
		if len(fake.requests) != 3 {
			t.Errorf("expected 3 requests of 50, got %d: %v", len(fake.requests), fake.requests)
		}
		for i, p := range playlists {
			if p.ID != fmt.Sprintf("id-%d", i) {
				t.Fatalf("playlist %d out of order: %s", i, p.ID)
			}
		}
		if playlists[7].TrackCount != 7 {
			t.Errorf("expected track count 7, got %d", playlists[7].TrackCount)
		}
	})

	t.Run("AllTracks keeps null entries and empty artist names", func(t *testing.T) {
		fake := &fakeSpotify{items: map[string][]SpotifyPlaylistTrack{
			"pl": {
				{Track: &SpotifyTrack{Name: "Song A", Artists: []SpotifyArtist{{Name: "Artist 1"}, {Name: "Artist 2"}}}},
				{Track: nil},
				{Track: &SpotifyTrack{Name: "Song B", Artists: []SpotifyArtist{{Name: ""}}}},
			},
		}}
		srv := newTestService(t, fake)

		tracks, err := AllTracks(ctx, srv, "pl")
		if err != nil {
			t.Fatalf("AllTracks() error = %v", err)
		}
		if len(tracks) != 3 {
			t.Fatalf("expected 3 entries, got %d", len(tracks))
		}
		if tracks[1] != nil {
			t.Errorf("expected nil entry for null track, got %+v", tracks[1])
		}
		if got := tracks[0].Artists; len(got) != 2 || got[1] != "Artist 2" {
			t.Errorf("unexpected artists %v", got)
		}
		if got := tracks[2].Artists; len(got) != 1 || got[0] != "" {
			t.Errorf("expected a single empty artist name, got %v", got)
		}
	})

	t.Run("AllTracks pages by 100", func(t *testing.T) {
		items := make([]SpotifyPlaylistTrack, 101)
		for i := range items {
			items[i] = SpotifyPlaylistTrack{Track: &SpotifyTrack{Name: strconv.Itoa(i)}}
		}
		fake := &fakeSpotify{items: map[string][]SpotifyPlaylistTrack{"pl": items}}
		srv := newTestService(t, fake)

		tracks, err := AllTracks(ctx, srv, "pl")
		if err != nil {
			t.Fatalf("AllTracks() error = %v", err)
		}
		if len(tracks) != 101 {
			t.Errorf("expected 101 tracks, got %d", len(tracks))
		}
		if len(fake.requests) != 2 {
			t.Errorf("expected 2 requests, got %d", len(fake.requests))
		}
	})

	t.Run("Unauthorized maps to ErrTokenExpired", func(t *testing.T) {
		srv := newTestService(t, &fakeSpotify{status: http.StatusUnauthorized})

		_, err := srv.PlaylistsPage(ctx, 0, 50)
		if !errors.Is(err, shared.ErrTokenExpired) {
			t.Fatalf("expected ErrTokenExpired, got %v", err)
		}
		if shared.KindOf(err) != shared.KindTransport {
			t.Errorf("expected transport kind, got %v", shared.KindOf(err))
		}
	})

	t.Run("Server error maps to ErrAPIRequest", func(t *testing.T) {
		srv := newTestService(t, &fakeSpotify{status: http.StatusInternalServerError})

		_, err := srv.PlaylistsPage(ctx, 0, 50)
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Fatalf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("Unknown playlist", func(t *testing.T) {
		srv := newTestService(t, &fakeSpotify{items: map[string][]SpotifyPlaylistTrack{}})

		_, err := AllTracks(ctx, srv, "missing")
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("CurrentUser", func(t *testing.T) {
		srv := newTestService(t, &fakeSpotify{})

		user, err := srv.CurrentUser(ctx)
		if err != nil {
			t.Fatalf("CurrentUser() error = %v", err)
		}
		if user.DisplayName != "Test User" {
			t.Errorf("expected display name 'Test User', got %q", user.DisplayName)
		}
	})

	t.Run("Not authenticated", func(t *testing.T) {
		srv, err := NewSpotifyService(map[string]string{
			"client_id":     "id",
			"client_secret": "secret",
		})
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		_, err = srv.PlaylistsPage(ctx, 0, 50)
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("Expired token is refreshed and reported", func(t *testing.T) {
		tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseForm(); err != nil {
				t.Errorf("failed to parse token request: %v", err)
			}
			if got := r.Form.Get("refresh_token"); got != "refresh" {
				t.Errorf("expected refresh token 'refresh', got %q", got)
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"access_token":"fresh","token_type":"Bearer","expires_in":3600}`)
		}))
		defer tokenServer.Close()

		fake := &fakeSpotify{}
		api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Bearer fresh" {
				t.Errorf("expected refreshed bearer token, got %q", got)
			}
			fake.handler(t).ServeHTTP(w, r)
		}))
		defer api.Close()

		srv, err := NewSpotifyService(map[string]string{
			"client_id":     "id",
			"client_secret": "secret",
		}, WithBaseURL(api.URL), WithRateLimit(0))
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}
		srv.config.Endpoint.TokenURL = tokenServer.URL

		var refreshed *oauth2.Token
		srv.SetTokenRefreshCallback(func(token *oauth2.Token) { refreshed = token })

		expired := &oauth2.Token{
			AccessToken:  "stale",
			RefreshToken: "refresh",
			Expiry:       time.Now().Add(-time.Hour),
		}
		if err := srv.OAuthenticate(ctx, expired); err != nil {
			t.Fatalf("OAuthenticate() error = %v", err)
		}

		if _, err := srv.PlaylistsPage(ctx, 0, 50); err != nil {
			t.Fatalf("PlaylistsPage() error = %v", err)
		}
		if refreshed == nil || refreshed.AccessToken != "fresh" {
			t.Fatalf("expected refresh callback with new token, got %+v", refreshed)
		}
	})
}

func TestSpotifyServiceTransport(t *testing.T) {
	newService := func(t *testing.T, rt http.RoundTripper) *SpotifyService {
		t.Helper()
		srv, err := NewSpotifyService(map[string]string{
			"client_id":     "id",
			"client_secret": "secret",
		}, WithRateLimit(0))
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Transport: rt})
		if err := srv.OAuthenticate(ctx, &oauth2.Token{AccessToken: "token"}); err != nil {
			t.Fatalf("OAuthenticate() error = %v", err)
		}
		return srv
	}

	t.Run("connection failure", func(t *testing.T) {
		srv := newService(t, tu.NewMockRoundTripper(nil, errors.New("connection refused")))

		_, err := srv.PlaylistsPage(context.Background(), 0, 50)
		if !errors.Is(err, shared.ErrAPIRequest) || shared.KindOf(err) != shared.KindTransport {
			t.Errorf("expected transport ErrAPIRequest, got %v", err)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		resp := &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": []string{"application/json"}},
			Body:       io.NopCloser(strings.NewReader("not json")),
		}
		srv := newService(t, tu.NewMockRoundTripper(resp, nil))

		_, err := srv.CurrentUser(context.Background())
		if !errors.Is(err, shared.ErrAPIRequest) || !strings.Contains(err.Error(), "decode") {
			t.Errorf("expected decode error, got %v", err)
		}
	})
}
