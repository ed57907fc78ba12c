package models

import "errors"

var (
	ErrMissingPlaylistID  = errors.New("archive run requires a playlist id")
	ErrMissingPath        = errors.New("archive run requires a path")
	ErrNegativeTrackCount = errors.New("archive run track count cannot be negative")
)
