// package models defines the data model shared by the archiver packages
package models

import (
	"time"
)

// Playlist represents a playlist owned by the authenticated user.
//
// ID is the remote identity; Name is the local lookup key.
type Playlist struct {
	ID          string
	Name        string
	Description string
	TrackCount  int
	Public      bool
}

// Track represents a single playlist entry.
//
// An empty string in Artists marks an artist whose name the service did not return.
type Track struct {
	Name    string
	Artists []string
}

// Page is one page of a paginated listing.
type Page[T any] struct {
	Items   []T
	HasNext bool
}

// ArchiveRun records a single successful archive write.
//
// Sequence orders runs written within the same timestamp.
type ArchiveRun struct {
	ID           string
	Sequence     int
	PlaylistID   string
	PlaylistName string
	Path         string
	TrackCount   int
	ArchivedAt   time.Time
}

// Validate checks that the run carries the fields the history store requires.
func (r *ArchiveRun) Validate() error {
	if r.PlaylistID == "" {
		return ErrMissingPlaylistID
	}
	if r.Path == "" {
		return ErrMissingPath
	}
	if r.TrackCount < 0 {
		return ErrNegativeTrackCount
	}
	return nil
}
