package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/archify/internal/formatter"
	"github.com/desertthunder/archify/internal/models"
	"github.com/desertthunder/archify/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgPlaylistsFetched MsgKind = iota
	MsgTracksFetched
	MsgProgressUpdate
	MsgArchiveComplete
	MsgBatchComplete
)

type playlistsData struct {
	playlists []models.Playlist
	archives  []formatter.ArchiveEntry
	err       error
}

type tracksData struct {
	playlist models.Playlist
	tracks   []*models.Track
	err      error
}

type archiveData struct {
	item *tasks.ItemResult
	err  error
}

type batchData struct {
	result *tasks.BatchResult
	err    error
}

// playlistsFetchedMsg is the constructor for [MsgPlaylistsFetched]
func playlistsFetchedMsg(playlists []models.Playlist, archives []formatter.ArchiveEntry, err error) Msg {
	return Msg{kind: MsgPlaylistsFetched, data: playlistsData{playlists, archives, err}}
}

// tracksFetchedMsg is the constructor for [MsgTracksFetched]
func tracksFetchedMsg(playlist models.Playlist, tracks []*models.Track, err error) Msg {
	return Msg{kind: MsgTracksFetched, data: tracksData{playlist, tracks, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// archiveCompleteMsg is the constructor for [MsgArchiveComplete]
func archiveCompleteMsg(item *tasks.ItemResult, err error) Msg {
	return Msg{kind: MsgArchiveComplete, data: archiveData{item, err}}
}

// batchCompleteMsg is the constructor for [MsgBatchComplete]
func batchCompleteMsg(result *tasks.BatchResult, err error) Msg {
	return Msg{kind: MsgBatchComplete, data: batchData{result, err}}
}
