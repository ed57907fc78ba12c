package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/archify/internal/formatter"
	"github.com/desertthunder/archify/internal/models"
	"github.com/dustin/go-humanize"
)

var (
	_ list.Item = playlistItem{}
	_ list.Item = trackItem{}
)

// playlistItem wraps [models.Playlist] with its archive on disk, if any.
type playlistItem struct {
	playlist models.Playlist
	archive  *formatter.ArchiveEntry
}

func (i playlistItem) FilterValue() string { return i.playlist.Name }
func (i playlistItem) Title() string       { return i.playlist.Name }
func (i playlistItem) Description() string {
	desc := fmt.Sprintf("%d tracks", i.playlist.TrackCount)
	if i.archive != nil {
		desc = fmt.Sprintf("%s • archived %s", desc, humanize.Time(i.archive.ModTime))
	} else {
		desc += " • not archived"
	}
	return desc
}

// trackItem wraps one archive line's track.
type trackItem struct {
	position int
	track    *models.Track
}

func (i trackItem) FilterValue() string { return i.track.Name }
func (i trackItem) Title() string       { return fmt.Sprintf("%d. %s", i.position, i.track.Name) }
func (i trackItem) Description() string { return formatter.Artists(i.track.Artists) }

func playlistItems(playlists []models.Playlist, archives []formatter.ArchiveEntry, writer *formatter.ArchiveWriter) []list.Item {
	byPath := make(map[string]*formatter.ArchiveEntry, len(archives))
	for i := range archives {
		byPath[archives[i].Path] = &archives[i]
	}

	items := make([]list.Item, len(playlists))
	for i, pl := range playlists {
		items[i] = playlistItem{playlist: pl, archive: byPath[writer.Path(pl.Name)]}
	}
	return items
}

// trackItems numbers tracks the way the archive does, skipping missing entries.
func trackItems(tracks []*models.Track) []list.Item {
	items := make([]list.Item, 0, len(tracks))
	for _, t := range tracks {
		if t == nil {
			continue
		}
		items = append(items, trackItem{position: len(items) + 1, track: t})
	}
	return items
}
