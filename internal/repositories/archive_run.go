package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/archify/internal/models"
	"github.com/desertthunder/archify/internal/shared"
)

const archiveRunColumns = "id, sequence, playlist_id, playlist_name, path, track_count, archived_at"

// ArchiveRunRepository persists [models.ArchiveRun] rows.
type ArchiveRunRepository struct {
	db *sql.DB
}

// NewArchiveRunRepository creates a new ArchiveRunRepository with the given database connection
func NewArchiveRunRepository(db *sql.DB) *ArchiveRunRepository {
	return &ArchiveRunRepository{db: db}
}

// Create inserts run with a generated ID and sequence. A zero ArchivedAt is set to now.
func (r *ArchiveRunRepository) Create(ctx context.Context, run *models.ArchiveRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(ctx, r.db, "archive_runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	run.ID = shared.GenerateID()
	run.Sequence = sequence
	if run.ArchivedAt.IsZero() {
		run.ArchivedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO archive_runs (` + archiveRunColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		run.ID,
		run.Sequence,
		run.PlaylistID,
		run.PlaylistName,
		run.Path,
		run.TrackCount,
		run.ArchivedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert archive run: %w", err)
	}

	return nil
}

// Record implements tasks.RunRecorder.
func (r *ArchiveRunRepository) Record(ctx context.Context, run *models.ArchiveRun) error {
	return r.Create(ctx, run)
}

// Get retrieves a run by ID.
func (r *ArchiveRunRepository) Get(ctx context.Context, id string) (*models.ArchiveRun, error) {
	query := `SELECT ` + archiveRunColumns + ` FROM archive_runs WHERE id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// Latest retrieves the most recent run for a playlist.
func (r *ArchiveRunRepository) Latest(ctx context.Context, playlistID string) (*models.ArchiveRun, error) {
	query := `
		SELECT ` + archiveRunColumns + `
		FROM archive_runs
		WHERE playlist_id = ?
		ORDER BY archived_at DESC, sequence DESC
		LIMIT 1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, playlistID))
}

// List returns up to limit runs, newest first. A non-positive limit returns every run.
func (r *ArchiveRunRepository) List(ctx context.Context, limit int) ([]*models.ArchiveRun, error) {
	query := `
		SELECT ` + archiveRunColumns + `
		FROM archive_runs
		ORDER BY archived_at DESC, sequence DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list archive runs: %w", err)
	}
	defer rows.Close()

	return r.scanMany(rows)
}

// ListByPlaylist returns every run for a playlist, newest first.
func (r *ArchiveRunRepository) ListByPlaylist(ctx context.Context, playlistID string) ([]*models.ArchiveRun, error) {
	query := `
		SELECT ` + archiveRunColumns + `
		FROM archive_runs
		WHERE playlist_id = ?
		ORDER BY archived_at DESC, sequence DESC
	`

	rows, err := r.db.QueryContext(ctx, query, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to list archive runs: %w", err)
	}
	defer rows.Close()

	return r.scanMany(rows)
}

// Count returns the number of recorded runs.
func (r *ArchiveRunRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM archive_runs").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count archive runs: %w", err)
	}
	return n, nil
}

// Prune deletes runs archived before cutoff and reports how many were removed.
func (r *ArchiveRunRepository) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM archive_runs WHERE archived_at < ?", cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune archive runs: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *ArchiveRunRepository) scan(s scanner) (*models.ArchiveRun, error) {
	var run models.ArchiveRun
	err := s.Scan(
		&run.ID,
		&run.Sequence,
		&run.PlaylistID,
		&run.PlaylistName,
		&run.Path,
		&run.TrackCount,
		&run.ArchivedAt,
	)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *ArchiveRunRepository) scanOne(row *sql.Row) (*models.ArchiveRun, error) {
	run, err := r.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan archive run: %w", err)
	}
	return run, nil
}

func (r *ArchiveRunRepository) scanMany(rows *sql.Rows) ([]*models.ArchiveRun, error) {
	runs := []*models.ArchiveRun{}
	for rows.Next() {
		run, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan archive run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating archive runs: %w", err)
	}
	return runs, nil
}
