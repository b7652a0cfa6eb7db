package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/fetchmixes/internal/formatter"
	"github.com/desertthunder/fetchmixes/internal/models"
	"github.com/desertthunder/fetchmixes/internal/repositories"
	"github.com/desertthunder/fetchmixes/internal/ui"
	"github.com/urfave/cli/v3"
)

// setFilter resolves a --creator username to a [repositories.SetFilter].
func setFilter(ctx context.Context, db *sql.DB, username string, limit int) (repositories.SetFilter, *models.Creator, error) {
	filter := repositories.SetFilter{Limit: limit}
	if username == "" {
		return filter, nil, nil
	}

	creator, err := repositories.NewCreatorRepository(db).GetByUsername(ctx, username)
	if err != nil {
		return filter, nil, err
	}
	filter.CreatorID = &creator.ID
	return filter, creator, nil
}

// SetsList prints stored sets newest first.
func (r *Runner) SetsList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	filter, _, err := setFilter(ctx, db, cmd.String("creator"), cmd.Int("limit"))
	if err != nil {
		return err
	}

	sets, err := repositories.NewSetRepository(db).List(ctx, filter)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(sets, true)
	}

	if len(sets) == 0 {
		return r.writePlain("No sets stored.\n")
	}
	return r.writePlain("%s\n", ui.SetsTable(sets))
}

// SetsExport writes stored sets in the format chosen with --format.
func (r *Runner) SetsExport(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	filter, creator, err := setFilter(ctx, db, cmd.String("creator"), 0)
	if err != nil {
		return err
	}

	sets, err := repositories.NewSetRepository(db).List(ctx, filter)
	if err != nil {
		return err
	}

	export := &formatter.SetExport{Creator: creator, Sets: sets, GeneratedAt: time.Now().UTC()}
	path, err := formatter.WriteExport(export, cmd.String("format"), cmd.String("output"))
	if err != nil {
		return err
	}

	r.logger.Info("export written", "path", path, "sets", len(sets))
	return r.writePlain("Exported %d sets to %s\n", len(sets), path)
}

// SetsBrowse opens a filterable list of stored sets and prints the chosen URL.
func (r *Runner) SetsBrowse(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	filter, creator, err := setFilter(ctx, db, cmd.String("creator"), 0)
	if err != nil {
		return err
	}

	sets, err := repositories.NewSetRepository(db).List(ctx, filter)
	if err != nil {
		return err
	}
	if len(sets) == 0 {
		return r.writePlain("No sets stored.\n")
	}

	title := "All sets"
	if creator != nil {
		title = "Sets by " + creator.Username
	}

	model := ui.NewBrowseModel(title, sets)
	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	if selected := model.Selected(); selected != nil {
		return r.writePlain("%s\n", selected.URL)
	}
	return nil
}

// CreatorsList prints every stored creator with a set count.
func (r *Runner) CreatorsList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	creators, err := repositories.NewCreatorRepository(db).List(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(creators, true)
	}

	if len(creators) == 0 {
		return r.writePlain("No creators stored.\n")
	}
	return r.writePlain("%s\n", ui.CreatorsTable(creators))
}

// CrawlsList prints recorded crawls, most recent first.
func (r *Runner) CrawlsList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := repositories.NewCrawlRunRepository(db).List(ctx, cmd.Int("limit"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(runs, true)
	}

	if len(runs) == 0 {
		return r.writePlain("No crawls recorded.\n")
	}
	return r.writePlain("%s\n", ui.CrawlsTable(runs))
}
