package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/archify/internal/console"
	"github.com/desertthunder/archify/internal/formatter"
	"github.com/desertthunder/archify/internal/models"
	"github.com/desertthunder/archify/internal/services"
	"github.com/desertthunder/archify/internal/tasks"
)

var theme = console.DefaultTheme()

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlaylistListView ViewState = iota
	TrackListView
	ConfirmView
	ArchiveView
	ResultView
)

// Engine is the archive surface the TUI drives. [tasks.ArchiveEngine] implements it.
type Engine interface {
	Playlists(ctx context.Context) ([]models.Playlist, error)
	ArchivePlaylist(ctx context.Context, playlist models.Playlist) (*tasks.ItemResult, error)
	ArchiveAll(ctx context.Context, progress chan<- tasks.ProgressUpdate) (*tasks.BatchResult, error)
	Writer() *formatter.ArchiveWriter
}

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	view    ViewState
	catalog services.Service
	engine  Engine
	width   int
	height  int

	playlistList   list.Model
	trackList      list.Model
	playlistsReady bool
	tracksReady    bool
	selected       *models.Playlist
	tracks         []*models.Track

	updates  chan tasks.ProgressUpdate
	done     chan Msg
	progress tasks.ProgressUpdate
	bar      progress.Model

	item  *tasks.ItemResult
	batch *tasks.BatchResult
	err   error

	help help.Model
	keys keyMap
}

// NewModel creates a new TUI model. catalog serves the track preview; engine does the archiving.
func NewModel(ctx context.Context, catalog services.Service, engine Engine) *Model {
	return &Model{
		ctx:     ctx,
		view:    PlaylistListView,
		catalog: catalog,
		engine:  engine,
		bar:     progress.New(progress.WithDefaultGradient()),
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init fetches the playlist listing.
func (m *Model) Init() tea.Cmd {
	return m.fetchPlaylists()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.playlistsReady {
			m.playlistList.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.tracksReady {
			m.trackList.SetSize(msg.Width-4, msg.Height-8)
		}
		m.bar.Width = max(10, min(msg.Width-4, 60))
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PlaylistListView:
			return m.handlePlaylistListKeys(msg)
		case TrackListView:
			return m.handleTrackListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		case ArchiveView:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgPlaylistsFetched:
		data := msg.data.(playlistsData)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.err = nil
		m.playlistList = list.New(playlistItems(data.playlists, data.archives, m.engine.Writer()), list.NewDefaultDelegate(), 0, 0)
		m.playlistList.Title = "Spotify Playlists"
		m.playlistList.SetSize(m.width-4, m.height-8)
		m.playlistList.AdditionalShortHelpKeys = func() []key.Binding { return []key.Binding{m.keys.all} }
		m.playlistsReady = true
		return m, nil

	case MsgTracksFetched:
		data := msg.data.(tracksData)
		if data.err != nil {
			m.err = data.err
			m.view = PlaylistListView
			return m, nil
		}
		pl := data.playlist
		m.selected = &pl
		m.tracks = data.tracks
		m.trackList = list.New(trackItems(data.tracks), list.NewDefaultDelegate(), 0, 0)
		m.trackList.Title = fmt.Sprintf("Tracks in '%s'", pl.Name)
		m.trackList.SetSize(m.width-4, m.height-8)
		m.tracksReady = true
		m.view = TrackListView
		return m, nil

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgArchiveComplete:
		data := msg.data.(archiveData)
		m.item, m.err = data.item, data.err
		m.view = ResultView
		return m, nil

	case MsgBatchComplete:
		data := msg.data.(batchData)
		m.batch, m.err = data.result, data.err
		m.updates, m.done = nil, nil
		m.view = ResultView
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return theme.Err.Render(fmt.Sprintf("Error: %v\n\nPress r to reload, q to quit", m.err))
	}

	switch m.view {
	case PlaylistListView:
		return m.renderPlaylistList()
	case TrackListView:
		return m.renderTrackList()
	case ConfirmView:
		return m.renderConfirm()
	case ArchiveView:
		return m.renderArchive()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handlePlaylistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.err != nil || !m.playlistsReady {
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case m.err != nil && key.Matches(msg, m.keys.restart):
			m.err = nil
			return m, m.fetchPlaylists()
		}
		return m, nil
	}

	if m.playlistList.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.all):
			return m, m.startArchiveAll()
		case key.Matches(msg, m.keys.enter):
			if pl, ok := m.playlistList.SelectedItem().(playlistItem); ok {
				return m, m.fetchTracks(pl.playlist)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.playlistList, cmd = m.playlistList.Update(msg)
	return m, cmd
}

func (m *Model) handleTrackListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.trackList.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.back):
			m.view = PlaylistListView
			return m, nil
		case key.Matches(msg, m.keys.enter):
			m.view = ConfirmView
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.trackList, cmd = m.trackList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		m.view = ArchiveView
		m.progress = tasks.ProgressUpdate{Message: fmt.Sprintf("Archiving: %s...", m.selected.Name)}
		return m, m.startArchive(*m.selected)
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.quit):
		m.view = TrackListView
		return m, nil
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.restart):
		m.view = PlaylistListView
		m.selected, m.tracks = nil, nil
		m.item, m.batch, m.err = nil, nil, nil
		return m, m.fetchPlaylists()
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.view == PlaylistListView && m.playlistsReady:
		m.playlistList, cmd = m.playlistList.Update(msg)
	case m.view == TrackListView && m.tracksReady:
		m.trackList, cmd = m.trackList.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchPlaylists() tea.Cmd {
	return func() tea.Msg {
		playlists, err := m.engine.Playlists(m.ctx)
		if err != nil {
			return playlistsFetchedMsg(nil, nil, err)
		}
		archives, err := m.engine.Writer().List()
		return playlistsFetchedMsg(playlists, archives, err)
	}
}

func (m *Model) fetchTracks(playlist models.Playlist) tea.Cmd {
	return func() tea.Msg {
		tracks, err := services.AllTracks(m.ctx, m.catalog, playlist.ID)
		return tracksFetchedMsg(playlist, tracks, err)
	}
}

func (m *Model) startArchive(playlist models.Playlist) tea.Cmd {
	return func() tea.Msg {
		item, err := m.engine.ArchivePlaylist(m.ctx, playlist)
		return archiveCompleteMsg(item, err)
	}
}

// startArchiveAll runs the bulk archive in the background. The result arrives on done, never through
// shared model fields.
func (m *Model) startArchiveAll() tea.Cmd {
	m.view = ArchiveView
	m.progress = tasks.ProgressUpdate{Message: "Fetching playlists..."}
	m.updates = make(chan tasks.ProgressUpdate, 50)
	m.done = make(chan Msg, 1)

	updates, done := m.updates, m.done
	go func() {
		result, err := m.engine.ArchiveAll(m.ctx, updates)
		done <- batchCompleteMsg(result, err)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	updates, done := m.updates, m.done
	if done == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case update := <-updates:
			return progressUpdateMsg(update)
		case msg := <-done:
			return msg
		}
	}
}

func (m *Model) renderPlaylistList() string {
	if !m.playlistsReady {
		return "Fetching playlists..."
	}
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.all, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.playlistList.View(), helpView)
}

func (m *Model) renderTrackList() string {
	archiveKey := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "archive"))
	helpView := m.help.ShortHelpView([]key.Binding{archiveKey, m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.trackList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	title := theme.Accent.MarginBottom(1).Render(fmt.Sprintf("Archive '%s'?", m.selected.Name))
	info := fmt.Sprintf("\nTracks: %d\nFile:   %s\n", len(trackItems(m.tracks)), m.engine.Writer().Path(m.selected.Name))
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no})
	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderArchive() string {
	title := theme.Accent.MarginBottom(1).Render("Archiving Playlists")

	if m.progress.Total == 0 || m.progress.Phase == tasks.FetchPlaylists {
		return fmt.Sprintf("%s\n\n%s", title, m.progress.Message)
	}

	pct := float64(m.progress.Step) / float64(m.progress.Total)
	return fmt.Sprintf("%s\n\n%s\n\n%s", title, m.bar.ViewAs(pct), m.progress.Message)
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.restart, m.keys.quit})

	if m.err != nil {
		return fmt.Sprintf("%s\n\n%s", theme.Err.Render(fmt.Sprintf("Archive failed: %v", m.err)), helpView)
	}

	switch {
	case m.item != nil:
		title := theme.OK.Render("✓ Archive Complete!")
		info := fmt.Sprintf("\nPlaylist '%s' has been archived successfully to %s\nTracks: %d",
			m.item.Name(), m.item.Path, m.item.TrackCount)
		return fmt.Sprintf("%s\n%s\n\n%s", title, info, helpView)

	case m.batch != nil:
		if len(m.batch.Items) == 0 {
			return fmt.Sprintf("No playlists found.\n\n%s", helpView)
		}
		title := theme.OK.Render(fmt.Sprintf("✓ Successfully archived %d playlists.", m.batch.Archived))

		var failed strings.Builder
		if m.batch.Failed > 0 {
			failed.WriteString("\n\n")
			failed.WriteString(theme.Warn.Render(fmt.Sprintf("Failed to archive %d playlists:", m.batch.Failed)))
			for _, item := range m.batch.Items {
				if item.Status == tasks.Failed {
					fmt.Fprintf(&failed, "\n  • %s: %v", item.Name(), item.Err)
				}
			}
		}
		return fmt.Sprintf("%s%s\n\n%s", title, failed.String(), helpView)
	}

	return fmt.Sprintf("%s\n\n%s", theme.Err.Render("No result available"), helpView)
}
