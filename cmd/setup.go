package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/archify/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup creates the config file when missing and initializes the history database.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	path := r.configFile()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		r.logger.Info("config file not found, creating from template", "path", path)
		if err := shared.CreateConfigFile(path); err != nil {
			return err
		}
		r.writePlain("✓ Created %s\n", path)

		config, err := shared.LoadConfig(path)
		if err != nil {
			return err
		}
		config.ApplyEnv()
		r.config = config
	} else {
		r.writePlain("✓ Using %s\n", path)
	}

	dbPath, err := r.config.DatabasePath()
	if err != nil {
		return fmt.Errorf("failed to resolve database path: %w", err)
	}

	r.logger.Info("initializing database", "path", dbPath)
	db, err := shared.NewDatabase(dbPath)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	switch {
	case cmd.Bool("rollback"):
		if err := shared.RollbackMigration(db); err != nil {
			return fmt.Errorf("failed to roll back migration: %w", err)
		}
		r.writePlain("✓ Rolled back latest migration\n")
	case !cmd.Bool("status"):
		if err := shared.RunMigrations(db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		r.writePlain("✓ Database ready at %s\n", dbPath)
	}

	statuses, err := shared.Migrations(db)
	if err != nil {
		return err
	}
	r.writePlainln("Migrations:")
	for _, m := range statuses {
		mark := " "
		if m.Applied {
			mark = "x"
		}
		r.writePlain("[%s] %03d %s\n", mark, m.Version, m.Name)
	}

	if !r.config.Credentials.Spotify.HasClient() {
		r.writePlainln("Next: add your Spotify client_id and client_secret to %s, then run 'archify auth'", path)
	}
	return nil
}
