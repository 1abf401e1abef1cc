package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		code := 1
		var coder cli.ExitCoder
		if errors.As(err, &coder) && coder.ExitCode() != 0 {
			code = coder.ExitCode()
		}
		os.Exit(code)
	}
}

// newApp — описание команд; вынесено для тестов.
func newApp() *cli.App {
	return &cli.App{
		Name:  "steamcache",
		Usage: "local cache of Steam profiles (nickname and avatar)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "backend",
				Usage: "store backend override: file|memory|postgres|redis",
			},
			&cli.StringFlag{
				Name:  "data-dir",
				Usage: "profile directory for the file backend",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		ExitErrHandler: func(cctx *cli.Context, err error) {
			if err != nil {
				fmt.Fprintln(cctx.App.ErrWriter, err)
			}
		},
		Commands: []*cli.Command{
			{
				Name:      "cache",
				Usage:     "cache a profile, refreshing it if the record is stale",
				ArgsUsage: "<steamid>",
				Action:    runCache,
			},
			{
				Name:      "get",
				Usage:     "print a cached profile without calling Steam",
				ArgsUsage: "<steamid>",
				Action:    runGet,
			},
			{
				Name:      "refresh",
				Usage:     "refresh a cached profile if it is stale",
				ArgsUsage: "<steamid>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "force", Usage: "refresh regardless of record age"},
				},
				Action: runRefresh,
			},
			{
				Name:  "refresh-all",
				Usage: "refresh every cached profile in batches",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "respect-staleness", Usage: "skip records that are still fresh"},
					&cli.IntFlag{Name: "workers", Usage: "batches processed concurrently"},
				},
				Action: runRefreshAll,
			},
			{
				Name:  "list",
				Usage: "list cached steam ids",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Value: 0, Usage: "max ids to print, 0 means all"},
					&cli.IntFlag{Name: "offset", Value: 0},
				},
				Action: runList,
			},
			{
				Name:  "import",
				Usage: "validate a list of steam ids and cache each valid one",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "in", Required: true, Usage: "path to input (.txt or .jsonl)"},
					&cli.StringFlag{Name: "format", Value: "auto", Usage: "input format: auto|text|jsonl"},
				},
				Action: runImport,
			},
			{
				Name:   "serve",
				Usage:  "run the HTTP API (and the Kafka consumer when enabled)",
				Action: runServe,
			},
			{
				Name:   "migrate",
				Usage:  "apply Postgres migrations",
				Action: runMigrate,
			},
		},
	}
}
