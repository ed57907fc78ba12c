package console

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/desertthunder/archify/internal/formatter"
	"github.com/desertthunder/archify/internal/models"
	"github.com/desertthunder/archify/internal/shared"
	"github.com/desertthunder/archify/internal/tasks"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"
)

// DefaultHistoryLimit is how many runs `history` shows without an argument.
const DefaultHistoryLimit = 10

// Archiver is the engine surface the console drives. [tasks.ArchiveEngine] implements it.
type Archiver interface {
	Playlists(ctx context.Context) ([]models.Playlist, error)
	Archive(ctx context.Context, name string) (*tasks.ItemResult, error)
	ArchiveBatch(ctx context.Context, progress chan<- tasks.ProgressUpdate, names []string) (*tasks.BatchResult, error)
	ArchiveAll(ctx context.Context, progress chan<- tasks.ProgressUpdate) (*tasks.BatchResult, error)
}

// HistoryStore lists recorded archive runs, newest first.
type HistoryStore interface {
	List(ctx context.Context, limit int) ([]*models.ArchiveRun, error)
}

// DefaultRegistry wires the standard console commands. store may be nil.
func DefaultRegistry(engine Archiver, writer *formatter.ArchiveWriter, store HistoryStore) *Registry {
	reg := NewRegistry(
		&ShowPlaylists{Engine: engine},
		&Archive{Engine: engine},
		&ArchiveBatch{Engine: engine},
		&ArchiveAll{Engine: engine},
		&ViewArchive{Writer: writer},
		&History{Store: store},
	)
	reg.Register(&Help{Registry: reg})
	reg.Register(Quit{})
	return reg
}

// ShowPlaylists prints the user's playlists, optionally narrowed by a fuzzy filter.
type ShowPlaylists struct{ Engine Archiver }

func (c *ShowPlaylists) Name() string { return "show-playlists" }
func (c *ShowPlaylists) Usage() string {
	return "Show all available playlists (show-playlists <text> filters them)"
}

func (c *ShowPlaylists) Run(ctx context.Context, arg string, env *Env) error {
	playlists, err := c.Engine.Playlists(ctx)
	if err != nil {
		return err
	}

	names := make([]string, len(playlists))
	for i, p := range playlists {
		names[i] = p.Name
	}

	if filter := strings.TrimSpace(arg); filter != "" {
		matches := fuzzy.Find(filter, names)
		names = make([]string, len(matches))
		for i, m := range matches {
			names[i] = m.Str
		}
	}

	if len(names) == 0 {
		env.Println("No playlists found.")
		return nil
	}

	env.Heading("Available Playlists")
	env.Columns(names)
	return nil
}

// Archive archives one playlist by name.
type Archive struct{ Engine Archiver }

func (c *Archive) Name() string  { return "archive" }
func (c *Archive) Usage() string { return "Archive a playlist (archive <playlist name>)" }

func (c *Archive) Run(ctx context.Context, arg string, env *Env) error {
	if strings.TrimSpace(arg) == "" {
		return shared.ValidationError(shared.ErrMissingArgument, "please enter a playlist name after archive")
	}

	item, err := c.Engine.Archive(ctx, arg)
	if err != nil {
		return err
	}

	env.Success("Playlist '%s' has been archived successfully to %s", item.Name(), item.Path)
	return nil
}

// ArchiveBatch archives every playlist named in a .batch file.
type ArchiveBatch struct{ Engine Archiver }

func (c *ArchiveBatch) Name() string { return "archive-batch" }
func (c *ArchiveBatch) Usage() string {
	return "Archive playlists listed one per line in a file (archive-batch <file.batch>)"
}

func (c *ArchiveBatch) Run(ctx context.Context, arg string, env *Env) error {
	if strings.TrimSpace(arg) == "" {
		return shared.ValidationError(shared.ErrMissingArgument, "please enter a %s file after archive-batch", tasks.BatchExt)
	}

	names, err := tasks.ReadBatchFile(arg)
	if err != nil {
		return err
	}

	// Sized so no update is ever dropped: one per item start, one per outcome, plus fetch and complete.
	updates := make(chan tasks.ProgressUpdate, 2*len(names)+2)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for u := range updates {
			printUpdate(env, u)
		}
	}()

	result, err := c.Engine.ArchiveBatch(ctx, updates, names)
	close(updates)
	<-done
	if err != nil {
		return err
	}

	for _, item := range result.Items {
		if item.Status == tasks.Skipped && len(item.Suggestions) > 0 {
			env.Warn(fmt.Sprintf("exact playlist match not found for '%s'", item.Query), item.Suggestions)
		}
	}

	env.Println()
	env.Printf("Archived %d, skipped %d, failed %d.\n", result.Archived, result.Skipped, result.Failed)
	return nil
}

func printUpdate(env *Env, u tasks.ProgressUpdate) {
	switch u.Phase {
	case tasks.FetchPlaylists, tasks.ArchivePlaylist:
		env.Println(env.Theme.Dim.Render(u.Message))
	case tasks.PlaylistArchived:
		env.Println(env.Theme.OK.Render(u.Message))
	case tasks.PlaylistSkipped:
		env.Println(env.Theme.Warn.Render(u.Message))
	case tasks.PlaylistFailed:
		env.Println(env.Theme.Err.Render(u.Message))
	}
}

// ArchiveAll archives every playlist with a progress bar.
type ArchiveAll struct{ Engine Archiver }

func (c *ArchiveAll) Name() string  { return "archive-all" }
func (c *ArchiveAll) Usage() string { return "Archive all playlists" }

func (c *ArchiveAll) Run(ctx context.Context, arg string, env *Env) error {
	bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(40))

	updates := make(chan tasks.ProgressUpdate, 64)
	done := make(chan struct{})
	drawn := false
	go func() {
		defer close(done)
		for u := range updates {
			if u.Phase == tasks.FetchPlaylists || u.Total == 0 {
				continue
			}
			pct := float64(u.Step) / float64(u.Total)
			if u.Phase == tasks.ArchivePlaylist {
				pct = float64(u.Step-1) / float64(u.Total)
			}
			env.Printf("\rArchiving Playlists %s %d/%d", bar.ViewAs(pct), u.Step, u.Total)
			drawn = true
		}
	}()

	result, err := c.Engine.ArchiveAll(ctx, updates)
	close(updates)
	<-done
	if err != nil {
		if drawn {
			env.Println()
		}
		return err
	}

	n := len(result.Items)
	if n == 0 {
		env.Println("No playlists found.")
		return nil
	}

	// Updates may have been dropped; the final frame comes from the result.
	env.Printf("\rArchiving Playlists %s %d/%d\n", bar.ViewAs(1), n, n)

	for _, item := range result.Items {
		if item.Status == tasks.Failed {
			env.Println(env.Theme.Err.Render(fmt.Sprintf("✗ %s: %v", item.Name(), item.Err)))
		}
	}
	env.Success("Successfully archived %d playlists.", result.Archived)
	return nil
}

// ViewArchive lists the archive files on disk.
type ViewArchive struct{ Writer *formatter.ArchiveWriter }

func (c *ViewArchive) Name() string { return "view-archive" }
func (c *ViewArchive) Usage() string {
	return "View archived playlists (view-archive -l shows size and age)"
}

func (c *ViewArchive) Run(ctx context.Context, arg string, env *Env) error {
	entries, err := c.Writer.List()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		env.Println("No archived playlists found")
		return nil
	}

	env.Heading("Archived Playlists")

	switch strings.TrimSpace(arg) {
	case "":
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name
		}
		env.Columns(names)
	case "-l", "--long":
		width := 0
		for _, e := range entries {
			width = max(width, runewidth.StringWidth(e.Name))
		}
		for _, e := range entries {
			env.Printf("%s  %8s  %s\n",
				runewidth.FillRight(e.Name, width),
				humanize.Bytes(uint64(e.Size)),
				env.Theme.Dim.Render(humanize.Time(e.ModTime)))
		}
	default:
		return shared.ValidationError(shared.ErrInvalidArgument, "unknown view-archive option %q", arg)
	}
	return nil
}

// History prints recent archive runs from the history database.
type History struct{ Store HistoryStore }

func (c *History) Name() string  { return "history" }
func (c *History) Usage() string { return "Show recent archive runs (history <count>)" }

func (c *History) Run(ctx context.Context, arg string, env *Env) error {
	if c.Store == nil {
		env.Println("Archive history is not enabled.")
		return nil
	}

	limit := DefaultHistoryLimit
	if arg = strings.TrimSpace(arg); arg != "" {
		n, err := strconv.Atoi(arg)
		if err != nil || n <= 0 {
			return shared.ValidationError(shared.ErrInvalidArgument, "history count must be a positive number, got %q", arg)
		}
		limit = n
	}

	runs, err := c.Store.List(ctx, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		env.Println("No archive runs recorded.")
		return nil
	}

	width := 0
	for _, r := range runs {
		width = max(width, runewidth.StringWidth(r.PlaylistName))
	}

	env.Heading("Archive History")
	for _, r := range runs {
		env.Printf("%s  %s  %s\n",
			runewidth.FillRight(r.PlaylistName, width),
			runewidth.FillLeft(humanize.Comma(int64(r.TrackCount))+" tracks", 12),
			env.Theme.Dim.Render(humanize.Time(r.ArchivedAt)))
	}
	return nil
}

// Help prints the command list.
type Help struct{ Registry *Registry }

func (c *Help) Name() string  { return "help" }
func (c *Help) Usage() string { return "Show this list of commands" }

func (c *Help) Run(ctx context.Context, arg string, env *Env) error {
	PrintCommands(env, c.Registry)
	return nil
}

// Quit ends the console loop.
type Quit struct{}

func (Quit) Name() string  { return "q" }
func (Quit) Usage() string { return "Quit the program" }

func (Quit) Run(ctx context.Context, arg string, env *Env) error {
	return ErrQuit
}
