// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles database initialization.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize database and run migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// authCommand handles tracker authentication.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage tracker authentication",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Authenticate with a tracker using OAuth2",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "tracker"},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "logout",
				Usage: "Drop a tracker's stored tokens",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "tracker"},
				},
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Show authentication state for all trackers",
				Action: r.AuthStatus,
			},
		},
	}
}

// detectCommand feeds a progress observation into the engine.
func detectCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "detect",
		Usage: "Record a progress observation from a source platform",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "platform",
				Aliases:  []string{"p"},
				Usage:    "Source platform identifier",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "title",
				Aliases:  []string{"t"},
				Usage:    "Title as observed on the platform",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "kind",
				Usage: "Media kind: anime, manga, manhwa, manhua, novel",
				Value: "manga",
			},
			&cli.IntFlag{
				Name:     "progress",
				Aliases:  []string{"n"},
				Usage:    "Chapter or episode number reached",
				Required: true,
			},
		},
		Action: r.Detect,
	}
}

// listCommand shows the tracked library.
func listCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List tracked entries",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "archived",
				Usage: "Show archived entries instead of active ones",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		},
		Action: r.List,
	}
}

// searchCommand queries a tracker's catalog.
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search a tracker's catalog",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "query"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "tracker",
				Usage: "Tracker to search (defaults to the default tracker)",
			},
			&cli.StringFlag{
				Name:  "kind",
				Usage: "Media kind: anime, manga, manhwa, manhua, novel",
				Value: "manga",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.SearchCatalog,
	}
}

// linkCommand binds an entry to a tracker.
func linkCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "link",
		Usage: "Bind a tracked entry to a tracker entry and sync",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "key"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "tracker",
				Usage:    "Tracker to bind",
				Required: true,
			},
			&cli.IntFlag{
				Name:     "id",
				Usage:    "Tracker entry id (from search results)",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "status",
				Usage: "Watch/read status to apply on link",
			},
		},
		Action: r.Link,
	}
}

// unlinkCommand removes one tracker binding.
func unlinkCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "unlink",
		Usage: "Remove a tracker binding from an entry",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "key"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "tracker",
				Usage:    "Tracker to unbind",
				Required: true,
			},
		},
		Action: r.Unlink,
	}
}

// syncCommand pushes an entry's progress to its trackers.
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Push an entry's progress to all linked trackers",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "key"},
		},
		Action: r.Sync,
	}
}

// statusCommand changes an entry's watch/read status.
func statusCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Set an entry's status and push it to linked trackers",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "key"},
			&cli.StringArg{Name: "status"},
		},
		Action: r.SetStatus,
	}
}

// migrateCommand moves an entry to a new platform.
func migrateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Archive an entry and recreate it on a new platform",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "from"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "platform",
				Aliases:  []string{"p"},
				Usage:    "Target platform identifier",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "title",
				Aliases:  []string{"t"},
				Usage:    "Title as it appears on the target platform",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "reason",
				Usage: "Reason recorded on the migration",
			},
		},
		Action: r.Migrate,
	}
}

// exportCommand writes the library to a file.
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export the tracked library",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Export format: csv, markdown, txt, json",
				Value:   "json",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path (default: trax_export.<format>)",
			},
			&cli.BoolFlag{
				Name:  "archived",
				Usage: "Include archived entries",
			},
		},
		Action: r.Export,
	}
}

// tuiCommand returns the top-level TUI command for interactive library management.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for the tracked library",
		Action:  r.TUI,
	}
}
