package formatter

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/desertthunder/archify/internal/shared"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// DefaultArchiveDir is used when no directory is configured.
	DefaultArchiveDir = "archive"

	archiveSuffix = "_playlist_archive.md"
)

// ArchiveWriter persists playlist archives as Markdown files in a flat directory.
type ArchiveWriter struct {
	Dir string
}

// ArchiveEntry describes an archive file found on disk.
type ArchiveEntry struct {
	Name    string // display name derived from the file name
	Path    string
	Size    int64
	ModTime time.Time
}

// NewArchiveWriter returns a writer rooted at dir, or at [DefaultArchiveDir] when dir is empty.
func NewArchiveWriter(dir string) *ArchiveWriter {
	if dir == "" {
		dir = DefaultArchiveDir
	}
	return &ArchiveWriter{Dir: dir}
}

// Slug derives the file stem for a playlist name: spaces become underscores, path separators become dashes,
// and the result is lowercased. Different names can share a slug; the later archive overwrites the earlier.
func Slug(name string) string {
	r := strings.NewReplacer(" ", "_", "/", "-", "\\", "-")
	return strings.ToLower(r.Replace(name))
}

// Path returns the archive file path for a playlist name.
func (w *ArchiveWriter) Path(name string) string {
	return filepath.Join(w.Dir, Slug(name)+archiveSuffix)
}

// Write renders lines under a title for name and replaces the archive file.
//
// Content goes to a temporary file in the same directory that is then renamed over the target,
// so a failed write leaves any previous archive intact.
func (w *ArchiveWriter) Write(name string, lines []string) (string, error) {
	path := w.Path(name)

	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return "", shared.FilesystemError("create archive directory", fmt.Errorf("%w: %w", shared.ErrArchiveWrite, err))
	}

	tmp, err := os.CreateTemp(w.Dir, ".archive-*.tmp")
	if err != nil {
		return "", shared.FilesystemError("write "+path, fmt.Errorf("%w: %w", shared.ErrArchiveWrite, err))
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(RenderArchive(name, lines)); err != nil {
		tmp.Close()
		return "", shared.FilesystemError("write "+path, fmt.Errorf("%w: %w", shared.ErrArchiveWrite, err))
	}
	if err := tmp.Close(); err != nil {
		return "", shared.FilesystemError("write "+path, fmt.Errorf("%w: %w", shared.ErrArchiveWrite, err))
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return "", shared.FilesystemError("write "+path, fmt.Errorf("%w: %w", shared.ErrArchiveWrite, err))
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", shared.FilesystemError("write "+path, fmt.Errorf("%w: %w", shared.ErrArchiveWrite, err))
	}

	return path, nil
}

// List returns the archives in the directory, sorted by file name.
// A missing directory yields no entries and no error.
func (w *ArchiveWriter) List() ([]ArchiveEntry, error) {
	dirEntries, err := os.ReadDir(w.Dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []ArchiveEntry{}, nil
	}
	if err != nil {
		return nil, shared.FilesystemError("list "+w.Dir, err)
	}

	entries := []ArchiveEntry{}
	for _, de := range dirEntries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), archiveSuffix) {
			continue
		}

		info, err := de.Info()
		if err != nil {
			return nil, shared.FilesystemError("list "+w.Dir, err)
		}

		entries = append(entries, ArchiveEntry{
			Name:    DisplayName(de.Name()),
			Path:    filepath.Join(w.Dir, de.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return entries, nil
}

// DisplayName turns an archive file name back into a readable title.
//
// "summer_vibes_playlist_archive.md" becomes "Summer Vibes". The original casing is not recoverable.
func DisplayName(filename string) string {
	stem := strings.TrimSuffix(filepath.Base(filename), archiveSuffix)
	return cases.Title(language.Und).String(strings.ReplaceAll(stem, "_", " "))
}
