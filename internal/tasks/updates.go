package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchPlaylists Phase = iota
	ArchivePlaylist
	PlaylistArchived
	PlaylistSkipped
	PlaylistFailed
	Complete
)

func (p Phase) String() string {
	switch p {
	case FetchPlaylists:
		return "fetch_playlists"
	case ArchivePlaylist:
		return "archive_playlist"
	case PlaylistArchived:
		return "playlist_archived"
	case PlaylistSkipped:
		return "playlist_skipped"
	case PlaylistFailed:
		return "playlist_failed"
	case Complete:
		return "complete"
	default:
		return ""
	}
}

func fetchPlaylistsUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylists,
		Step:    0,
		Total:   1,
		Message: "Fetching playlists...",
	}
}

func archivingUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ArchivePlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Archiving: %s...", step, total, name),
	}
}

func itemUpdate(step, total int, item *ItemResult) ProgressUpdate {
	update := ProgressUpdate{Step: step, Total: total, Data: item}

	switch item.Status {
	case Archived:
		update.Phase = PlaylistArchived
		update.Message = fmt.Sprintf("[%d/%d] ✓ %s (%d tracks)", step, total, item.Name(), item.TrackCount)
	case Skipped:
		update.Phase = PlaylistSkipped
		update.Message = fmt.Sprintf("[%d/%d] - %s: not found", step, total, item.Name())
	default:
		update.Phase = PlaylistFailed
		update.Message = fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, item.Name(), item.Err)
	}
	return update
}

func completeUpdate(result *BatchResult) ProgressUpdate {
	total := len(result.Items)
	return ProgressUpdate{
		Phase:   Complete,
		Step:    total,
		Total:   total,
		Message: fmt.Sprintf("Archived %d of %d playlists", result.Archived, total),
		Data:    result,
	}
}
