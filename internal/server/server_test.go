package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/archify/internal/shared"
	"golang.org/x/oauth2"
)

func newTokenServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.Form.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, `{"access_token":"access","refresh_token":"refresh","token_type":"Bearer","expires_in":3600}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newConfig(tokenURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "id",
		ClientSecret: "secret",
		RedirectURL:  "http://127.0.0.1:3000/callback",
		Endpoint:     oauth2.Endpoint{AuthURL: "http://example.invalid/auth", TokenURL: tokenURL},
	}
}

func TestOAuthHandler(t *testing.T) {
	t.Run("Routes follow the redirect URL", func(t *testing.T) {
		tests := map[string]string{
			"http://127.0.0.1:3000/callback":      "/callback",
			"http://localhost:8888/spotify/done": "/spotify/done",
			"http://localhost:8888":              "/callback",
			"::bad::":                            "/callback",
		}
		for redirect, want := range tests {
			h := NewOAuthHandler(&oauth2.Config{RedirectURL: redirect}, "s")
			if got := h.Routes(); len(got) != 1 || got[0] != want {
				t.Errorf("Routes() for %q = %v, want [%s]", redirect, got, want)
			}
		}
	})

	t.Run("successful exchange", func(t *testing.T) {
		tokens := newTokenServer(t, http.StatusOK)
		h := NewOAuthHandler(newConfig(tokens.URL), "state-1")

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=state-1&code=good-code", nil))

		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Authorization Successful") {
			t.Errorf("unexpected response %d: %s", rec.Code, rec.Body.String())
		}

		token, err := h.Wait(context.Background(), nil)
		if err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
		if token.AccessToken != "access" || token.RefreshToken != "refresh" {
			t.Errorf("unexpected token %+v", token)
		}
	})

	t.Run("invalid state", func(t *testing.T) {
		h := NewOAuthHandler(newConfig("http://unused"), "expected")

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=forged&code=good-code", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		if _, err := h.Wait(context.Background(), nil); !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}
	})

	t.Run("denied by the user", func(t *testing.T) {
		h := NewOAuthHandler(newConfig("http://unused"), "s")

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=s&error=access_denied", nil))

		_, err := h.Wait(context.Background(), nil)
		if !errors.Is(err, shared.ErrAuthFailed) || !strings.Contains(err.Error(), "access_denied") {
			t.Errorf("unexpected error %v", err)
		}
	})

	t.Run("exchange failure", func(t *testing.T) {
		tokens := newTokenServer(t, http.StatusOK)
		h := NewOAuthHandler(newConfig(tokens.URL), "s")

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=s&code=bad-code", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
		if _, err := h.Wait(context.Background(), nil); !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}
	})

	t.Run("second callback is rejected", func(t *testing.T) {
		tokens := newTokenServer(t, http.StatusOK)
		h := NewOAuthHandler(newConfig(tokens.URL), "s")

		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/callback?state=s&code=good-code", nil))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=s&code=good-code", nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for replay, got %d", rec.Code)
		}
	})

	t.Run("Wait times out", func(t *testing.T) {
		h := NewOAuthHandler(newConfig("http://unused"), "s")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		if _, err := h.Wait(ctx, nil); !errors.Is(err, shared.ErrTimeout) {
			t.Errorf("expected ErrTimeout, got %v", err)
		}
	})

	t.Run("Wait reports server errors", func(t *testing.T) {
		h := NewOAuthHandler(newConfig("http://unused"), "s")
		errs := make(chan error, 1)
		errs <- errors.New("address in use")

		if _, err := h.Wait(context.Background(), errs); err == nil || !strings.Contains(err.Error(), "address in use") {
			t.Errorf("unexpected error %v", err)
		}
	})
}

func TestBasicRouter(t *testing.T) {
	t.Run("method filtering", func(t *testing.T) {
		r := NewBasicRouter()
		r.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, "pong")
		}))

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if rec.Body.String() != "pong" {
			t.Errorf("unexpected body %q", rec.Body.String())
		}

		rec = httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})

	t.Run("middleware order", func(t *testing.T) {
		var order []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, req)
				})
			}
		}

		r := NewBasicRouter()
		r.Use(mark("first"), mark("second"))
		r.Handle(http.MethodGet, "/", http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			order = append(order, "handler")
		}))

		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		if got := strings.Join(order, ","); got != "first,second,handler" {
			t.Errorf("order = %s", got)
		}
	})

	t.Run("Logging records the status", func(t *testing.T) {
		var buf bytes.Buffer
		logger := log.New(&buf)
		logger.SetLevel(log.DebugLevel)

		r := NewBasicRouter()
		r.Use(Logging(logger))
		r.Handle(http.MethodGet, "/missing", http.NotFoundHandler())

		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

		if !strings.Contains(buf.String(), "status=404") || !strings.Contains(buf.String(), "path=/missing") {
			t.Errorf("unexpected log output %q", buf.String())
		}
	})
}

func TestCallbackServer(t *testing.T) {
	tokens := newTokenServer(t, http.StatusOK)
	h := NewOAuthHandler(newConfig(tokens.URL), "s")

	r := NewBasicRouter()
	r.Handler(h)

	srv, err := StartCallbackServer("127.0.0.1:0", r, log.New(io.Discard))
	if err != nil {
		t.Fatalf("StartCallbackServer() error = %v", err)
	}

	resp, err := http.Get("http://" + srv.Addr() + "/callback?state=s&code=good-code")
	if err != nil {
		t.Fatalf("GET callback error = %v", err)
	}
	resp.Body.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	token, err := h.Wait(ctx, srv.Errors())
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if token.AccessToken != "access" {
		t.Errorf("unexpected token %+v", token)
	}

	if err := srv.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}
