// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/desertthunder/archify/internal/models"
)

// MockCatalog is an in-memory test double for [services.Service].
//
// Playlists are served in order, paged by the caller's offset and limit; Tracks maps playlist ids to their
// raw entries (nil entries allowed).
type MockCatalog struct {
	Playlists []models.Playlist
	Tracks    map[string][]*models.Track

	PlaylistsErr error
	TracksErr    map[string]error

	PlaylistCalls int
	TrackCalls    map[string]int
}

func (m *MockCatalog) Authenticate(ctx context.Context, credentials map[string]string) error {
	return nil
}

func (m *MockCatalog) Name() string { return "mock" }

func (m *MockCatalog) PlaylistsPage(ctx context.Context, offset, limit int) (models.Page[models.Playlist], error) {
	m.PlaylistCalls++
	if m.PlaylistsErr != nil {
		return models.Page[models.Playlist]{}, m.PlaylistsErr
	}
	items, next := window(m.Playlists, offset, limit)
	return models.Page[models.Playlist]{Items: items, HasNext: next}, nil
}

func (m *MockCatalog) TracksPage(ctx context.Context, playlistID string, offset, limit int) (models.Page[*models.Track], error) {
	if m.TrackCalls == nil {
		m.TrackCalls = map[string]int{}
	}
	m.TrackCalls[playlistID]++

	if err := m.TracksErr[playlistID]; err != nil {
		return models.Page[*models.Track]{}, err
	}
	items, next := window(m.Tracks[playlistID], offset, limit)
	return models.Page[*models.Track]{Items: items, HasNext: next}, nil
}

func window[T any](all []T, offset, limit int) ([]T, bool) {
	start := min(offset, len(all))
	end := min(offset+limit, len(all))
	return all[start:end], end < len(all)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertNoFile(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("File should not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func MustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
}
