package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/archify/internal/console"
	"github.com/desertthunder/archify/internal/formatter"
	"github.com/desertthunder/archify/internal/repositories"
	"github.com/desertthunder/archify/internal/services"
	"github.com/desertthunder/archify/internal/shared"
	"github.com/desertthunder/archify/internal/tasks"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	loadConfig bool

	spotify services.Service
	db      *sql.DB
	history *repositories.ArchiveRunRepository
	engine  *tasks.ArchiveEngine

	logger      *log.Logger
	output      io.Writer
	input       io.Reader
	env         *console.Env
	openBrowser func(url string) error
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config // loaded from --config before the first command when nil
	ConfigPath string
	Spotify    services.Service // built from the config when nil
	DB         *sql.DB          // history database; opened from the config when nil
	Logger     *log.Logger
	Output     io.Writer
	Input      io.Reader
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	loadConfig := opts.Config == nil
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}

	env := console.NewEnv(opts.Output)

	r := &Runner{
		config:      opts.Config,
		configPath:  opts.ConfigPath,
		loadConfig:  loadConfig,
		spotify:     opts.Spotify,
		db:          opts.DB,
		logger:      opts.Logger,
		output:      opts.Output,
		input:       opts.Input,
		env:         env,
		openBrowser: shared.OpenBrowser,
	}
	if opts.DB != nil {
		r.history = repositories.NewArchiveRunRepository(opts.DB)
	}
	return r
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		shellCommand, playlistsCommand, archiveCommand, archiveBatchCommand, archiveAllCommand,
		viewArchiveCommand, historyCommand, authCommand, setupCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// before resolves and loads the config file named by --config (or $ARCHIFY_CONFIG).
func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if r.loadConfig {
		r.configPath = shared.FindConfig(cmd.String("config"))
		if _, err := os.Stat(r.configPath); err == nil {
			config, err := shared.LoadConfig(r.configPath)
			if err != nil {
				return ctx, err
			}
			r.config = config
		} else {
			r.logger.Debug("config file not found, using defaults", "path", r.configPath)
		}
	}

	r.config.ApplyEnv()
	if err := shared.SetLogLevel(r.logger, r.config.Log.Level); err != nil {
		r.logger.Warn("ignoring log level", "error", err)
	}
	return ctx, nil
}

// Close releases the history database.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db, r.history = nil, nil
	return err
}

// SetLogger replaces the logger used by the runner and its engine.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
	if r.engine != nil {
		r.engine.SetLogger(l)
	}
}

// connect builds the archive engine.
//
// The engine is always built so offline commands work. When Spotify cannot be reached with the stored
// credentials, the engine has no catalog and the reason is returned.
func (r *Runner) connect(ctx context.Context) error {
	if r.engine != nil {
		if r.spotify == nil {
			return r.spotifyUnavailable()
		}
		return nil
	}

	var spotifyErr error
	if r.spotify == nil {
		svc, err := r.newSpotify(ctx)
		if err != nil {
			spotifyErr = err
		} else {
			r.spotify = svc
		}
	}

	r.openHistory()

	opts := tasks.EngineOpts{
		Catalog:   r.spotify,
		Writer:    formatter.NewArchiveWriter(r.config.Archive.Dir),
		Threshold: r.config.Archive.FuzzyThreshold,
		Logger:    r.logger,
	}
	if r.history != nil {
		opts.Recorder = r.history
	}
	r.engine = tasks.NewArchiveEngine(opts)

	return spotifyErr
}

func (r *Runner) spotifyUnavailable() error {
	if !r.config.Credentials.Spotify.HasClient() {
		return shared.ValidationError(shared.ErrMissingCredentials,
			"set client_id and client_secret in %s or SPOTIPY_CLIENT_ID and SPOTIPY_CLIENT_SECRET", r.configFile())
	}
	return shared.ValidationError(shared.ErrNotAuthenticated, "run 'archify auth' to connect your Spotify account")
}

// newSpotify creates the Spotify client from stored credentials and token.
func (r *Runner) newSpotify(ctx context.Context) (*services.SpotifyService, error) {
	creds := r.config.Credentials.Spotify
	if !creds.HasClient() || creds.Token() == nil {
		return nil, r.spotifyUnavailable()
	}

	svc, err := services.NewSpotifyService(creds.Map(), services.WithRateLimit(r.config.Spotify.RequestsPerSecond))
	if err != nil {
		return nil, fmt.Errorf("failed to create Spotify service: %w", err)
	}

	svc.SetTokenRefreshCallback(func(token *oauth2.Token) {
		if err := r.saveTokens(token); err != nil {
			r.logger.Warn("failed to persist refreshed token", "error", err)
		}
	})

	if err := svc.OAuthenticate(ctx, creds.Token()); err != nil {
		return nil, fmt.Errorf("failed to authenticate with stored token: %w", err)
	}
	return svc, nil
}

// openHistory opens the history database. Failures disable history and are logged.
func (r *Runner) openHistory() {
	if r.history != nil {
		return
	}

	path, err := r.config.DatabasePath()
	if err != nil {
		r.logger.Warn("archive history disabled", "error", err)
		return
	}

	db, err := shared.OpenHistory(path, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
	if err != nil {
		r.logger.Warn("archive history disabled", "path", path, "error", err)
		return
	}

	r.db = db
	r.history = repositories.NewArchiveRunRepository(db)
}

// registry returns the console commands backed by the current engine.
func (r *Runner) registry() *console.Registry {
	var store console.HistoryStore
	if r.history != nil {
		store = r.history
	}
	return console.DefaultRegistry(r.engine, r.engine.Writer(), store)
}

// runConsole runs one console command. online commands fail early when Spotify is unavailable.
func (r *Runner) runConsole(ctx context.Context, name, arg string, online bool) error {
	if err := r.connect(ctx); err != nil && online {
		return err
	}

	cmd, ok := r.registry().Lookup(name)
	if !ok {
		return fmt.Errorf("%w: unknown command %s", shared.ErrInvalidArgument, name)
	}
	return cmd.Run(ctx, arg, r.env)
}

// saveTokens stores token in the config and writes it to the config file when one is known.
func (r *Runner) saveTokens(token *oauth2.Token) error {
	if r.config == nil {
		return fmt.Errorf("%w: config is nil", shared.ErrInvalidConfig)
	}

	if err := r.config.Credentials.Spotify.Update(token); err != nil {
		return fmt.Errorf("failed to update spotify configuration: %w", err)
	}

	if r.configPath == "" {
		return nil
	}

	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	r.logger.Debug("tokens saved", "path", r.configPath)
	return nil
}

func (r *Runner) configFile() string {
	if r.configPath == "" {
		return "config.toml"
	}
	return r.configPath
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	if _, err := fmt.Fprintf(r.output, format, args...); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	return r.writePlain("\n"+format+"\n", args...)
}
