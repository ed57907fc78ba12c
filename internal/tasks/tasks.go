// package tasks implements playlist archive operations.
//
// The core abstraction is ArchiveEngine, which resolves playlist names and writes their archives one at a time.
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/archify/internal/formatter"
	"github.com/desertthunder/archify/internal/models"
	"github.com/desertthunder/archify/internal/services"
	"github.com/desertthunder/archify/internal/shared"
)

// ItemStatus is the per-playlist outcome of a batch.
type ItemStatus int

const (
	Archived ItemStatus = iota
	Skipped
	Failed
)

func (s ItemStatus) String() string {
	switch s {
	case Archived:
		return "archived"
	case Skipped:
		return "skipped"
	default:
		return "failed"
	}
}

// ItemResult is the outcome for one playlist.
type ItemResult struct {
	Query       string           // name as requested; empty for bulk archives
	Playlist    *models.Playlist // resolved playlist, nil when skipped
	Status      ItemStatus
	Path        string // archive file, set when archived
	TrackCount  int    // lines written
	Suggestions []string
	Err         error
}

// Name returns the resolved playlist name, falling back to the query.
func (r *ItemResult) Name() string {
	if r.Playlist != nil {
		return r.Playlist.Name
	}
	return r.Query
}

// BatchResult collects item results in input order.
type BatchResult struct {
	Items    []ItemResult
	Archived int
	Skipped  int
	Failed   int
}

func (b *BatchResult) add(item ItemResult) {
	b.Items = append(b.Items, item)
	switch item.Status {
	case Archived:
		b.Archived++
	case Skipped:
		b.Skipped++
	default:
		b.Failed++
	}
}

// RunRecorder stores a row for each archive written.
type RunRecorder interface {
	Record(ctx context.Context, run *models.ArchiveRun) error
}

// EngineOpts contains the dependencies of an [ArchiveEngine].
type EngineOpts struct {
	Catalog   services.Service
	Writer    *formatter.ArchiveWriter
	Recorder  RunRecorder // optional
	Threshold int         // fuzzy threshold; [DefaultThreshold] when outside 1..100
	Logger    *log.Logger
}

// ArchiveEngine resolves playlists and archives them sequentially.
type ArchiveEngine struct {
	catalog   services.Service
	writer    *formatter.ArchiveWriter
	recorder  RunRecorder
	threshold int
	logger    *log.Logger
	now       func() time.Time
}

// NewArchiveEngine creates a new ArchiveEngine with the provided dependencies.
func NewArchiveEngine(opts EngineOpts) *ArchiveEngine {
	if opts.Writer == nil {
		opts.Writer = formatter.NewArchiveWriter("")
	}
	if opts.Threshold <= 0 || opts.Threshold > 100 {
		opts.Threshold = DefaultThreshold
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &ArchiveEngine{
		catalog:   opts.Catalog,
		writer:    opts.Writer,
		recorder:  opts.Recorder,
		threshold: opts.Threshold,
		logger:    opts.Logger,
		now:       time.Now,
	}
}

// Writer returns the archive writer the engine persists to.
func (e *ArchiveEngine) Writer() *formatter.ArchiveWriter {
	return e.writer
}

// SetLogger replaces the engine's logger.
func (e *ArchiveEngine) SetLogger(l *log.Logger) {
	if l != nil {
		e.logger = l
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *ArchiveEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Playlists fetches the complete listing of the user's playlists.
func (e *ArchiveEngine) Playlists(ctx context.Context) ([]models.Playlist, error) {
	if e.catalog == nil {
		return nil, fmt.Errorf("%w: playlist service not initialized", shared.ErrServiceUnavailable)
	}

	playlists, err := services.AllPlaylists(ctx, e.catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}
	return playlists, nil
}

// Resolve fetches the listing and resolves name against it.
func (e *ArchiveEngine) Resolve(ctx context.Context, name string) (Outcome, error) {
	playlists, err := e.Playlists(ctx)
	if err != nil {
		return Outcome{}, err
	}
	return Resolve(name, playlists, e.threshold), nil
}

// Archive resolves name and archives the matching playlist.
//
// A name that does not resolve exactly returns a [shared.KindResolution] error carrying any suggestions.
func (e *ArchiveEngine) Archive(ctx context.Context, name string) (*ItemResult, error) {
	if shared.NormalizeName(name) == "" {
		return nil, shared.ValidationError(shared.ErrMissingArgument, "playlist name is required")
	}

	outcome, err := e.Resolve(ctx, name)
	if err != nil {
		return nil, err
	}

	if outcome.Kind != Found {
		e.logger.Info("playlist not resolved", "query", name, "outcome", outcome.Kind, "suggestions", len(outcome.Candidates))
		return nil, shared.ResolutionError(name, outcome.Suggestions())
	}

	item, err := e.ArchivePlaylist(ctx, outcome.Playlist)
	if err != nil {
		return nil, err
	}
	item.Query = name
	return item, nil
}

// ArchivePlaylist fetches every track of playlist, formats them, and writes the archive.
// The archive is named after the playlist, not the text used to find it.
func (e *ArchiveEngine) ArchivePlaylist(ctx context.Context, playlist models.Playlist) (*ItemResult, error) {
	if e.catalog == nil {
		return nil, fmt.Errorf("%w: playlist service not initialized", shared.ErrServiceUnavailable)
	}

	raw, err := services.AllTracks(ctx, e.catalog, playlist.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tracks for %q: %w", playlist.Name, err)
	}

	lines := formatter.FormatTracks(raw)

	path, err := e.writer.Write(playlist.Name, lines)
	if err != nil {
		return nil, err
	}

	e.logger.Info("archived", "playlist", playlist.Name, "tracks", len(lines), "path", path)
	e.record(ctx, playlist, path, len(lines))

	return &ItemResult{
		Playlist:   &playlist,
		Status:     Archived,
		Path:       path,
		TrackCount: len(lines),
	}, nil
}

// record stores an archive run. Failures are logged and never fail the archive.
func (e *ArchiveEngine) record(ctx context.Context, playlist models.Playlist, path string, tracks int) {
	if e.recorder == nil {
		return
	}

	run := &models.ArchiveRun{
		PlaylistID:   playlist.ID,
		PlaylistName: playlist.Name,
		Path:         path,
		TrackCount:   tracks,
		ArchivedAt:   e.now().UTC(),
	}
	if err := e.recorder.Record(ctx, run); err != nil {
		e.logger.Warn("failed to record archive run", "playlist", playlist.Name, "error", err)
	}
}

// ArchiveBatch archives each named playlist in order.
//
// The listing is fetched once. Names that do not resolve are Skipped with suggestions, and playlists whose
// tracks or archive cannot be fetched or written are Failed; neither stops the batch. Only a listing failure
// or a cancelled context returns an error.
func (e *ArchiveEngine) ArchiveBatch(ctx context.Context, progress chan<- ProgressUpdate, names []string) (*BatchResult, error) {
	if len(names) == 0 {
		return nil, shared.ValidationError(shared.ErrInvalidBatch, "no playlist names given")
	}

	e.sendProgress(progress, fetchPlaylistsUpdate())
	playlists, err := e.Playlists(ctx)
	if err != nil {
		return nil, err
	}

	result := &BatchResult{Items: make([]ItemResult, 0, len(names))}
	total := len(names)

	for i, name := range names {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		e.sendProgress(progress, archivingUpdate(i+1, total, name))

		var item ItemResult
		outcome := Resolve(name, playlists, e.threshold)
		if outcome.Kind != Found {
			item = ItemResult{
				Query:       name,
				Status:      Skipped,
				Suggestions: outcome.Suggestions(),
				Err:         shared.ResolutionError(name, outcome.Suggestions()),
			}
			e.logger.Warn("skipping playlist", "query", name, "suggestions", item.Suggestions)
		} else {
			item = e.archiveItem(ctx, outcome.Playlist)
			item.Query = name
		}

		result.add(item)
		e.sendProgress(progress, itemUpdate(i+1, total, &result.Items[len(result.Items)-1]))
	}

	e.sendProgress(progress, completeUpdate(result))
	return result, nil
}

// ArchiveAll archives every playlist in listing order. Per-playlist failures are recorded and skipped.
func (e *ArchiveEngine) ArchiveAll(ctx context.Context, progress chan<- ProgressUpdate) (*BatchResult, error) {
	e.sendProgress(progress, fetchPlaylistsUpdate())
	playlists, err := e.Playlists(ctx)
	if err != nil {
		return nil, err
	}

	result := &BatchResult{Items: make([]ItemResult, 0, len(playlists))}
	total := len(playlists)

	for i, playlist := range playlists {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		e.sendProgress(progress, archivingUpdate(i+1, total, playlist.Name))
		result.add(e.archiveItem(ctx, playlist))
		e.sendProgress(progress, itemUpdate(i+1, total, &result.Items[len(result.Items)-1]))
	}

	e.logger.Info("archive complete", "archived", result.Archived, "failed", result.Failed, "total", total)
	e.sendProgress(progress, completeUpdate(result))
	return result, nil
}

// archiveItem archives playlist and converts a failure into a Failed item.
func (e *ArchiveEngine) archiveItem(ctx context.Context, playlist models.Playlist) ItemResult {
	item, err := e.ArchivePlaylist(ctx, playlist)
	if err != nil {
		e.logger.Error("failed to archive playlist", "playlist", playlist.Name, "error", err)
		return ItemResult{Playlist: &playlist, Status: Failed, Err: err}
	}
	return *item
}
