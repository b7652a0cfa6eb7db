package main

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/fetchmixes/internal/repositories"
	"github.com/desertthunder/fetchmixes/internal/shared"
	"github.com/desertthunder/fetchmixes/internal/tasks"
	"github.com/desertthunder/fetchmixes/internal/ui"
	"github.com/urfave/cli/v3"
)

const progressBuffer = 50

var tuiLogPath = filepath.Join("tmp", "fetchmixes-tui.log")

// crawlOpts merges the crawl flags over the [mixcloud] configuration.
func (r *Runner) crawlOpts(cmd *cli.Command) tasks.CrawlOpts {
	opts := tasks.CrawlOpts{
		Source:   r.config.Mixcloud.Source,
		PageSize: r.config.Mixcloud.PageSize,
		OrderBy:  r.config.Mixcloud.OrderBy,
		MaxPages: r.config.Mixcloud.MaxPages,
	}
	if source := cmd.String("source"); source != "" {
		opts.Source = source
	}
	if size := cmd.Int("page-size"); size > 0 {
		opts.PageSize = size
	}
	if cmd.IsSet("max-pages") {
		opts.MaxPages = cmd.Int("max-pages")
	}
	if orderBy := cmd.String("order-by"); orderBy != "" {
		opts.OrderBy = orderBy
	}
	return opts
}

// Crawl fetches every published set of the creator named on the command line and syncs them into the store.
func (r *Runner) Crawl(ctx context.Context, cmd *cli.Command) error {
	username := cmd.StringArg("username")
	if username == "" {
		return fmt.Errorf("%w: username is required", shared.ErrMissingArgument)
	}

	opts := r.crawlOpts(cmd)
	if opts.MaxPages < 0 {
		return fmt.Errorf("%w: --max-pages cannot be negative", shared.ErrInvalidArgument)
	}

	if cmd.Bool("tui") {
		// Logs would tear the TUI rendering.
		fileLogger, f, err := shared.NewFileLogger(tuiLogPath)
		if err != nil {
			return fmt.Errorf("failed to create file logger: %w", err)
		}
		defer f.Close()
		level, _ := shared.ParseLogLevel(r.config.Log.Level)
		shared.SetLogLevel(fileLogger, level)
		r.SetLogger(fileLogger)
	}

	platform, err := r.Platform()
	if err != nil {
		return err
	}

	db, err := r.openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	store := repositories.NewSyncRepository(db)

	if cmd.Bool("tui") {
		return r.crawlTUI(ctx, username, func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (*tasks.CrawlResult, error) {
			o := opts
			o.Progress = progress
			return tasks.NewCrawlEngine(platform, store, r.logger, o).Crawl(ctx, username)
		})
	}

	asJSON := cmd.Bool("json")
	progress := make(chan tasks.ProgressUpdate, progressBuffer)
	opts.Progress = progress

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range progress {
			if !asJSON {
				r.writePlain("%s\n", ui.FormatUpdate(update))
			}
		}
	}()

	result, err := tasks.NewCrawlEngine(platform, store, r.logger, opts).Crawl(ctx, username)
	close(progress)
	wg.Wait()

	if err != nil {
		return err
	}

	if asJSON {
		return r.writeJSON(result, true)
	}

	r.writePlainHeader(ui.Styles.Title("Crawl complete: " + result.Creator.Username))
	r.writePlain("Mixcloud ID: %s\n", result.Creator.MixcloudID)
	r.writePlain("Source:      %s\n", result.Source)
	if result.Expected >= 0 {
		r.writePlain("Expected:    %d\n", result.Expected)
	}
	r.writePlain("Fetched:     %d\n", result.Fetched)
	r.writePlain("New:         %s\n", ui.Styles.OK(fmt.Sprint(result.Inserted)))
	r.writePlain("Took:        %s\n", result.Run.Duration())
	return nil
}

// crawlTUI returns only after the crawl goroutine has stopped, so the store stays open for it.
func (r *Runner) crawlTUI(ctx context.Context, username string, run ui.CrawlFunc) error {
	model := ui.NewCrawlModel(ctx, username, run)
	p := tea.NewProgram(model, tea.WithContext(ctx))

	_, runErr := p.Run()
	_, err := model.Result()
	if runErr != nil {
		return fmt.Errorf("error running TUI: %w", runErr)
	}
	return err
}
