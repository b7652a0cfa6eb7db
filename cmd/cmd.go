// submodule cmd contains command definitions
package main

import (
	"strings"

	"github.com/desertthunder/fetchmixes/internal/formatter"
	"github.com/urfave/cli/v3"
)

// crawlCommand fetches one creator's sets and syncs them into the store
func crawlCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "crawl-dj",
		Aliases: []string{"crawl"},
		Usage:   "Fetch every published set of a creator and store the new ones",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "username",
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "source",
				Usage: "Listing to walk: graphql or rest (overrides mixcloud.source)",
			},
			&cli.IntFlag{
				Name:  "page-size",
				Usage: "Edges requested per GraphQL page (overrides mixcloud.page_size)",
			},
			&cli.IntFlag{
				Name:  "max-pages",
				Usage: "Stop after this many pages, 0 for no limit (overrides mixcloud.max_pages)",
			},
			&cli.StringFlag{
				Name:  "order-by",
				Usage: "Uploads ordering (overrides mixcloud.order_by)",
			},
			&cli.BoolFlag{
				Name:  "tui",
				Usage: "Follow the crawl in an interactive view",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the crawl result as JSON",
			},
		},
		Action: r.Crawl,
	}
}

// setsCommand reads stored sets
func setsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sets",
		Usage: "Stored set operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List stored sets, newest first",
				Flags: []cli.Flag{
					creatorFlag(),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of sets to list, 0 for all",
						Value: 50,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.SetsList,
			},
			{
				Name:  "export",
				Usage: "Write stored sets to a file",
				Flags: []cli.Flag{
					creatorFlag(),
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: " + strings.Join(formatter.Formats(), ", "),
						Value:   formatter.FormatMarkdown,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (defaults to <creator>_sets.<ext>)",
					},
				},
				Action: r.SetsExport,
			},
			{
				Name:   "browse",
				Usage:  "Browse stored sets interactively",
				Flags:  []cli.Flag{creatorFlag()},
				Action: r.SetsBrowse,
			},
		},
	}
}

// creatorsCommand lists stored creators
func creatorsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "creators",
		Usage: "List stored creators with their set counts",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.CreatorsList,
	}
}

// crawlsCommand lists the crawl history
func crawlsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "crawls",
		Usage: "List recorded crawls, most recent first",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of crawls to list, 0 for all",
				Value: 20,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.CrawlsList,
	}
}

// dbCommand manages the store schema
func dbCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "db",
		Usage: "Database schema operations",
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Apply every pending migration",
				Action: r.DBMigrate,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent migration",
				Action: r.DBRollback,
			},
			{
				Name:   "version",
				Usage:  "Print the schema version",
				Action: r.DBVersion,
			},
		},
	}
}

// configCommand manages the configuration file
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration file operations",
		Commands: []*cli.Command{
			{
				Name:   "init",
				Usage:  "Write the default configuration to --config",
				Action: r.ConfigInit,
			},
			{
				Name:   "show",
				Usage:  "Print the effective configuration",
				Action: r.ConfigShow,
			},
		},
	}
}

func creatorFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "creator",
		Usage: "Only sets of this username",
	}
}
