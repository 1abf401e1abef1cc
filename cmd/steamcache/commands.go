package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/Gunvolt24/steam_cache/config"
	"github.com/Gunvolt24/steam_cache/internal/app"
	"github.com/Gunvolt24/steam_cache/internal/domain"
	pgstore "github.com/Gunvolt24/steam_cache/internal/store/postgres"
	"github.com/Gunvolt24/steam_cache/pkg/validate"
)

// loadConfig — конфигурация из окружения с учётом глобальных флагов.
func loadConfig(cctx *cli.Context) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, cli.Exit(err.Error(), 1)
	}
	if b := cctx.String("backend"); b != "" {
		cfg.Store.Backend = b
	}
	if d := cctx.String("data-dir"); d != "" {
		cfg.Store.Dir = d
	}
	if cctx.Bool("debug") {
		cfg.Logger.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, cli.Exit(err.Error(), 1)
	}
	return cfg, nil
}

// withCore — собрать доменный слой, выполнить fn и освободить ресурсы.
func withCore(cctx *cli.Context, tune func(*config.Config), fn func(ctx context.Context, core *app.Core) error) error {
	cfg, err := loadConfig(cctx)
	if err != nil {
		return err
	}
	if tune != nil {
		tune(cfg)
	}

	core, cleanup, err := app.BuildCore(cctx.Context, cfg)
	if err != nil {
		return cli.Exit(fmt.Sprintf("startup: %v", err), 1)
	}
	defer cleanup()

	return fn(cctx.Context, core)
}

func steamIDArg(cctx *cli.Context) (string, error) {
	id, err := validate.NormalizeSteamID(cctx.Args().First())
	if err != nil {
		return "", cli.Exit(fmt.Sprintf("need a valid steam id as an argument: %v", err), 1)
	}
	return id, nil
}

func printProfile(w io.Writer, p *domain.Profile) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		SteamID string `json:"steamid"`
		*domain.Profile
	}{SteamID: p.SteamID, Profile: p})
}

func runCache(cctx *cli.Context) error {
	id, err := steamIDArg(cctx)
	if err != nil {
		return err
	}
	return withCore(cctx, nil, func(ctx context.Context, core *app.Core) error {
		p, err := core.Service.CacheUser(ctx, id)
		if err != nil {
			return cli.Exit(fmt.Sprintf("cache %s: %v", id, err), 1)
		}
		return printProfile(cctx.App.Writer, p)
	})
}

func runGet(cctx *cli.Context) error {
	id, err := steamIDArg(cctx)
	if err != nil {
		return err
	}
	return withCore(cctx, nil, func(ctx context.Context, core *app.Core) error {
		p, err := core.Service.GetProfile(ctx, id)
		if err != nil {
			return cli.Exit(fmt.Sprintf("get %s: %v", id, err), 1)
		}
		return printProfile(cctx.App.Writer, p)
	})
}

func runRefresh(cctx *cli.Context) error {
	id, err := steamIDArg(cctx)
	if err != nil {
		return err
	}
	force := cctx.Bool("force")
	return withCore(cctx, nil, func(ctx context.Context, core *app.Core) error {
		refresh := core.Service.RefreshOne
		if force {
			refresh = core.Service.ForceRefresh
		}
		p, err := refresh(ctx, id)
		if err != nil {
			return cli.Exit(fmt.Sprintf("refresh %s: %v", id, err), 1)
		}
		return printProfile(cctx.App.Writer, p)
	})
}

func runRefreshAll(cctx *cli.Context) error {
	tune := func(cfg *config.Config) {
		if cctx.Bool("respect-staleness") {
			cfg.Refresh.BulkRespectsStaleness = true
		}
		if n := cctx.Int("workers"); n > 0 {
			cfg.Refresh.BulkWorkers = n
		}
	}
	return withCore(cctx, tune, func(ctx context.Context, core *app.Core) error {
		report, err := core.Service.RefreshAll(ctx)
		printReport(cctx.App.Writer, report)
		if err != nil {
			return cli.Exit(fmt.Sprintf("refresh-all interrupted: %v", err), 1)
		}
		if len(report.FailedBatches) > 0 || len(report.FailedRecords) > 0 {
			return cli.Exit("refresh-all finished with failures", 1)
		}
		return nil
	})
}

// printReport — построчный статус по каждому Steam ID и итог.
func printReport(w io.Writer, r domain.BulkReport) {
	if r.Empty() {
		fmt.Fprintln(w, "no cached users found")
		return
	}
	for _, id := range r.Updated {
		fmt.Fprintf(w, "%s\tupdated\n", id)
	}
	for _, id := range r.Missing {
		fmt.Fprintf(w, "%s\tmissing from response, kept\n", id)
	}
	for _, id := range r.Orphans {
		fmt.Fprintf(w, "%s\tno local record, skipped\n", id)
	}
	for _, id := range r.FailedRecords {
		fmt.Fprintf(w, "%s\twrite failed\n", id)
	}
	for _, b := range r.FailedBatches {
		for _, id := range b.SteamIDs {
			fmt.Fprintf(w, "%s\tbatch %d failed: %s\n", id, b.Index, b.Error)
		}
	}
	fmt.Fprintf(w, "total=%d skipped=%d batches=%d updated=%d\n",
		r.Total, r.Skipped, r.Batches, len(r.Updated))
	fmt.Fprintf(w, "elapsed %.3fs\n", r.Elapsed.Seconds())
}

func runList(cctx *cli.Context) error {
	return withCore(cctx, nil, func(ctx context.Context, core *app.Core) error {
		ids, err := core.Service.ListProfiles(ctx, cctx.Int("limit"), cctx.Int("offset"))
		if err != nil {
			return cli.Exit(fmt.Sprintf("list: %v", err), 1)
		}
		for _, id := range ids {
			fmt.Fprintln(cctx.App.Writer, id)
		}
		return nil
	})
}

func runImport(cctx *cli.Context) error {
	path := cctx.String("in")
	format := validate.InputFormat(cctx.String("format"))

	return withCore(cctx, nil, func(ctx context.Context, core *app.Core) error {
		res, err := validate.ReadSteamIDFile(ctx, path, format)
		if err != nil {
			return cli.Exit(fmt.Sprintf("import: %v (%s)", err, res), 1)
		}
		fmt.Fprintf(cctx.App.ErrWriter, "input: %s\n", res)

		start := time.Now()
		failed := 0
		for _, id := range res.Valid {
			if _, err := core.Service.CacheUser(ctx, id); err != nil {
				if errors.Is(err, context.Canceled) {
					return cli.Exit("import interrupted", 1)
				}
				failed++
				fmt.Fprintf(cctx.App.Writer, "%s\tfailed: %v\n", id, err)
				continue
			}
			fmt.Fprintf(cctx.App.Writer, "%s\tcached\n", id)
		}
		fmt.Fprintf(cctx.App.Writer, "imported %d/%d in %.3fs\n",
			len(res.Valid)-failed, len(res.Valid), time.Since(start).Seconds())

		if failed > 0 {
			return cli.Exit(fmt.Sprintf("import: %d ids failed", failed), 1)
		}
		return nil
	})
}

func runServe(cctx *cli.Context) error {
	cfg, err := loadConfig(cctx)
	if err != nil {
		return err
	}

	a, cleanup, err := app.Bootstrap(cctx.Context, cfg)
	if err != nil {
		return cli.Exit(fmt.Sprintf("startup: %v", err), 1)
	}
	defer cleanup()

	if err := a.Run(cctx.Context); err != nil {
		return cli.Exit(fmt.Sprintf("serve: %v", err), 1)
	}
	return nil
}

func runMigrate(cctx *cli.Context) error {
	cfg, err := loadConfig(cctx)
	if err != nil {
		return err
	}
	if err := pgstore.Migrate(cctx.Context, cfg.Postgres.DSN); err != nil {
		return cli.Exit(fmt.Sprintf("migrate: %v", err), 1)
	}
	fmt.Fprintln(cctx.App.Writer, "migrations applied")
	return nil
}
