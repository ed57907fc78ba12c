// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// app returns the root command. Without a subcommand it starts the interactive shell.
func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:    "archify",
		Usage:   "Archive your Spotify playlists into local Markdown files",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Sources: cli.EnvVars("ARCHIFY_CONFIG"),
			},
		},
		Before:   r.before,
		Action:   r.Shell,
		Commands: r.register(),
	}
}

// shellCommand starts the interactive console explicitly.
func shellCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "shell",
		Aliases: []string{"repl"},
		Usage:   "Start the interactive archive console",
		Action:  r.Shell,
	}
}

// playlistsCommand lists the user's playlists
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "playlists",
		Aliases:   []string{"ls"},
		Usage:     "List Spotify playlists, optionally filtered",
		ArgsUsage: "[filter]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print JSON output",
				Value: true,
			},
		},
		Action: r.Playlists,
	}
}

func archiveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "archive",
		Usage:     "Archive one playlist by name",
		ArgsUsage: "<playlist name>",
		Action:    r.Archive,
	}
}

func archiveBatchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "archive-batch",
		Aliases:   []string{"batch"},
		Usage:     "Archive the playlists listed one per line in a .batch file",
		ArgsUsage: "<file.batch>",
		Action:    r.ArchiveBatch,
	}
}

func archiveAllCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "archive-all",
		Usage:  "Archive every playlist",
		Action: r.ArchiveAll,
	}
}

func viewArchiveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "view-archive",
		Usage: "List archived playlists",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "long",
				Aliases: []string{"l"},
				Usage:   "Show file size and age",
			},
		},
		Action: r.ViewArchive,
	}
}

// historyCommand shows and prunes recorded archive runs
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recent archive runs",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Number of runs to show",
				Value:   10,
			},
			&cli.IntFlag{
				Name:  "prune-days",
				Usage: "Delete runs older than this many days before listing",
			},
		},
		Action: r.History,
	}
}

// authCommand runs the Spotify OAuth flow
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "auth",
		Usage:  "Authorize archify to read your Spotify playlists",
		Action: r.Auth,
	}
}

// setupCommand creates the config file and history database
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create the config file and initialize the history database",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "status",
				Usage: "Show migration status instead of applying migrations",
			},
			&cli.BoolFlag{
				Name:  "rollback",
				Usage: "Roll back the most recent migration",
			},
		},
		Action: r.Setup,
	}
}

// tuiCommand returns the top-level TUI command.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Browse and archive playlists in a terminal UI",
		Action:  r.TUI,
	}
}
