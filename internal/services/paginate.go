package services

import (
	"context"
	"fmt"

	"github.com/desertthunder/archify/internal/models"
	"github.com/desertthunder/archify/internal/shared"
)

const (
	// PlaylistPageSize is the page size used when listing playlists.
	PlaylistPageSize = 50
	// TrackPageSize is the page size used when listing playlist entries.
	TrackPageSize = 100
)

// PageFunc fetches the page starting at offset.
type PageFunc[T any] func(ctx context.Context, offset, limit int) (models.Page[T], error)

// Paginate collects every item from fetch, in fetch order.
//
// It starts at offset 0 and advances by limit until a page reports no next page.
// Two consecutive empty pages also end the walk, so a service that keeps
// advertising more results without returning any cannot loop forever.
// A fetch error aborts the walk; partial results are discarded.
func Paginate[T any](ctx context.Context, limit int, fetch PageFunc[T]) ([]T, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: page size must be positive, got %d", shared.ErrInvalidArgument, limit)
	}

	items := []T{}
	offset := 0
	empty := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := fetch(ctx, offset, limit)
		if err != nil {
			return nil, err
		}

		items = append(items, page.Items...)

		if len(page.Items) == 0 {
			empty++
		} else {
			empty = 0
		}

		if !page.HasNext || empty >= 2 {
			break
		}
		offset += limit
	}

	return items, nil
}

// AllPlaylists lists every playlist of the authenticated user.
func AllPlaylists(ctx context.Context, svc Service) ([]models.Playlist, error) {
	return Paginate(ctx, PlaylistPageSize, svc.PlaylistsPage)
}

// AllTracks lists every entry of a playlist, nil entries included.
func AllTracks(ctx context.Context, svc Service, playlistID string) ([]*models.Track, error) {
	return Paginate(ctx, TrackPageSize, func(ctx context.Context, offset, limit int) (models.Page[*models.Track], error) {
		return svc.TracksPage(ctx, playlistID, offset, limit)
	})
}
