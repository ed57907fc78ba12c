package main

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/archify/internal/console"
	"github.com/desertthunder/archify/internal/services"
	"github.com/desertthunder/archify/internal/shared"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"
)

// Shell starts the interactive console. A Spotify problem is reported but does not prevent offline commands.
func (r *Runner) Shell(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx); err != nil {
		r.env.Report(err)
		r.env.Println()
	}

	reg := r.registry()
	console.Banner(r.env, reg)
	return console.Loop(ctx, r.input, reg, r.env)
}

// Playlists lists playlists through the console command, or as JSON.
func (r *Runner) Playlists(ctx context.Context, cmd *cli.Command) error {
	filter := strings.Join(cmd.Args().Slice(), " ")
	if !cmd.Bool("json") {
		return r.runConsole(ctx, "show-playlists", filter, true)
	}

	if err := r.connect(ctx); err != nil {
		return err
	}
	playlists, err := services.AllPlaylists(ctx, r.spotify)
	if err != nil {
		return err
	}
	return r.writeJSON(playlists, cmd.Bool("pretty"))
}

func (r *Runner) Archive(ctx context.Context, cmd *cli.Command) error {
	return r.runConsole(ctx, "archive", strings.Join(cmd.Args().Slice(), " "), true)
}

func (r *Runner) ArchiveBatch(ctx context.Context, cmd *cli.Command) error {
	return r.runConsole(ctx, "archive-batch", cmd.Args().First(), true)
}

func (r *Runner) ArchiveAll(ctx context.Context, cmd *cli.Command) error {
	return r.runConsole(ctx, "archive-all", "", true)
}

func (r *Runner) ViewArchive(ctx context.Context, cmd *cli.Command) error {
	arg := ""
	if cmd.Bool("long") {
		arg = "-l"
	}
	return r.runConsole(ctx, "view-archive", arg, false)
}

// History optionally prunes old runs, then lists the most recent ones.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	_ = r.connect(ctx)

	if days := cmd.Int("prune-days"); days > 0 {
		if r.history == nil {
			return shared.ValidationError(shared.ErrServiceUnavailable, "archive history is not enabled")
		}
		cutoff := time.Now().AddDate(0, 0, -int(days))
		removed, err := r.history.Prune(ctx, cutoff)
		if err != nil {
			return err
		}
		remaining, err := r.history.Count(ctx)
		if err != nil {
			return err
		}
		r.writePlain("Pruned %s runs older than %d days; %s remain.\n\n",
			humanize.Comma(removed), days, humanize.Comma(int64(remaining)))
	}

	return r.runConsole(ctx, "history", strconv.Itoa(int(cmd.Int("limit"))), false)
}
