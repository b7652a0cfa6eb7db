package main

import (
	"context"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/desertthunder/fetchmixes/internal/shared"
	"github.com/urfave/cli/v3"
)

// DBMigrate applies every pending migration.
func (r *Runner) DBMigrate(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	before, err := shared.SchemaVersion(ctx, db)
	if err != nil {
		return err
	}

	r.logger.Info("running database migrations", "path", r.config.Database.Path)
	after, err := shared.RunMigrations(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if after == before {
		return r.writePlain("Schema already at version %d\n", after)
	}
	return r.writePlain("Migrated schema from version %d to %d\n", before, after)
}

// DBRollback rolls back the most recent migration.
func (r *Runner) DBRollback(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	version, err := shared.RollbackMigration(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}
	return r.writePlain("Rolled back schema to version %d\n", version)
}

// DBVersion prints the stored schema version next to the latest known one.
func (r *Runner) DBVersion(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	version, err := shared.SchemaVersion(ctx, db)
	if err != nil {
		return err
	}

	migrations, err := shared.Migrations()
	if err != nil {
		return err
	}
	return r.writePlain("Schema version %d of %d\n", version, len(migrations))
}

// ConfigInit writes the default configuration to the --config path.
func (r *Runner) ConfigInit(ctx context.Context, cmd *cli.Command) error {
	if err := shared.CreateConfigFile(r.configPath); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", r.configPath)
	return r.writePlain("Wrote %s\n", r.configPath)
}

// ConfigShow prints the configuration after overrides, as TOML.
func (r *Runner) ConfigShow(ctx context.Context, cmd *cli.Command) error {
	if err := toml.NewEncoder(r.output).Encode(r.config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}
