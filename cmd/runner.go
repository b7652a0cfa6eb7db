package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/fetchmixes/internal/services"
	"github.com/desertthunder/fetchmixes/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	platform   services.Platform
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
//
// A nil Platform is built from the loaded configuration on first use.
type RunnerOpts struct {
	Config   *shared.Config
	Platform services.Platform
	Logger   *log.Logger
	Output   io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:   opts.Config,
		platform: opts.Platform,
		logger:   opts.Logger,
		output:   opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		crawlCommand, setsCommand, creatorsCommand, crawlsCommand, dbCommand, configCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger used by later commands.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// Configure loads the configuration file named by --config and applies the global overrides.
//
// A missing file leaves the defaults in place.
func (r *Runner) Configure(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	path := cmd.String("config")

	config, err := shared.LoadConfig(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if cmd.IsSet("config") {
			r.logger.Warn("config file not found, using defaults", "path", path)
		}
		config = shared.DefaultConfig()
	case err != nil:
		return ctx, err
	}

	if db := cmd.String("database"); db != "" {
		config.Database.Path = db
	}
	if level := cmd.String("log-level"); level != "" {
		config.Log.Level = level
	}
	if err := config.Validate(); err != nil {
		return ctx, err
	}

	level, _ := shared.ParseLogLevel(config.Log.Level)
	shared.SetLogLevel(r.logger, level)

	r.config = config
	r.configPath = path
	return ctx, nil
}

// Platform returns the crawl target, building a [services.MixcloudService] from the configuration when none was injected.
func (r *Runner) Platform() (services.Platform, error) {
	if r.platform != nil {
		return r.platform, nil
	}

	api := services.NewAPIService(services.APIOpts{
		HTTPClient:        services.NewHTTPClient(r.config.HTTP.Timeout()),
		RequestsPerSecond: r.config.HTTP.RequestsPerSecond,
		UserAgent:         r.config.HTTP.UserAgent,
	})

	svc, err := services.NewMixcloudService(services.MixcloudOpts{
		API:         api,
		FrontendURL: r.config.Mixcloud.FrontendURL,
		APIURL:      r.config.Mixcloud.APIURL,
		GraphQLURL:  r.config.Mixcloud.GraphQLURL,
		Logger:      r.logger,
	})
	if err != nil {
		return nil, err
	}

	r.platform = svc
	return svc, nil
}

// openDB opens the configured database without touching its schema.
func (r *Runner) openDB() (*sql.DB, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
	return db, nil
}

// openStore opens the configured database and brings its schema up to date.
func (r *Runner) openStore(ctx context.Context) (*sql.DB, error) {
	db, err := r.openDB()
	if err != nil {
		return nil, err
	}

	version, err := shared.RunMigrations(ctx, db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	r.logger.Debug("store ready", "path", r.config.Database.Path, "version", version)
	return db, nil
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
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
