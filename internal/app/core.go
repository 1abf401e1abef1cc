package app

import (
	"context"
	"fmt"

	"github.com/Gunvolt24/steam_cache/config"
	"github.com/Gunvolt24/steam_cache/internal/ports"
	"github.com/Gunvolt24/steam_cache/internal/steam"
	filestore "github.com/Gunvolt24/steam_cache/internal/store/file"
	memstore "github.com/Gunvolt24/steam_cache/internal/store/memory"
	pgstore "github.com/Gunvolt24/steam_cache/internal/store/postgres"
	redisstore "github.com/Gunvolt24/steam_cache/internal/store/redis"
	"github.com/Gunvolt24/steam_cache/internal/usecase"
	"github.com/Gunvolt24/steam_cache/pkg/logger"
	"github.com/Gunvolt24/steam_cache/pkg/metrics"
	"github.com/Gunvolt24/steam_cache/pkg/telemetry"
)

// Core — логгер, хранилище и сервис профилей; общая часть для CLI и serve.
type Core struct {
	Logger  ports.Logger
	Store   ports.ProfileStore
	Service *usecase.ProfileService
	Config  *config.Config
}

// Cleanup — функция освобождения ресурсов.
type Cleanup func()

// BuildCore — собирает доменный слой по конфигурации.
func BuildCore(ctx context.Context, cfg *config.Config) (*Core, Cleanup, error) {
	logg, cleanupLogger, err := logger.NewZapLogger(logger.Options{
		Debug:  cfg.Logger.Debug,
		Prefix: cfg.Logger.Prefix,
		IsProd: cfg.Logger.IsProd,
	})
	if err != nil {
		return nil, func() {}, err
	}
	closeLogger := func() { _ = cleanupLogger() }

	metrics.MustRegister()

	// Трейсинг OTEL (при включённой конфигурации); по умолчанию — no-op.
	shutdownTrace, err := telemetry.SetupTracing(ctx, telemetry.Options{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		Endpoint:    cfg.Tracing.Endpoint,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		logg.Warnf(ctx, "failed to setup tracing: %v", err)
		shutdownTrace = func(context.Context) error { return nil }
	} else if cfg.Tracing.Enabled {
		logg.Infof(ctx, "otel tracing enabled service=%s endpoint=%s sample=%.2f",
			cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio)
	}

	store, closeStore, err := OpenStore(ctx, cfg, logg)
	if err != nil {
		_ = shutdownTrace(context.Background())
		closeLogger()
		return nil, func() {}, err
	}

	if cfg.Steam.APIKey == "" {
		logg.Warnf(ctx, "steam api key is empty, remote lookups will likely fail")
	}
	client, err := steam.NewClient(steam.Config{
		BaseURL: cfg.Steam.BaseURL,
		APIKey:  cfg.Steam.APIKey,
		Timeout: cfg.Steam.Timeout,
	}, logg)
	if err != nil {
		closeStore()
		_ = shutdownTrace(context.Background())
		closeLogger()
		return nil, func() {}, err
	}

	service := usecase.NewProfileService(store, client, logg, nil, usecase.Options{
		StaleAfter:            cfg.Refresh.StaleAfter,
		BatchSize:             cfg.Refresh.BatchSize,
		BulkRespectsStaleness: cfg.Refresh.BulkRespectsStaleness,
		BulkWorkers:           cfg.Refresh.BulkWorkers,
	})

	core := &Core{Logger: logg, Store: store, Service: service, Config: cfg}

	// Очистка ресурсов (в обратном порядке).
	cleanup := func() {
		closeStore()
		if terr := shutdownTrace(context.Background()); terr != nil {
			logg.Warnf(ctx, "shutdown tracing: %v", terr)
		}
		closeLogger()
	}
	return core, cleanup, nil
}

// OpenStore — хранилище профилей по STORE_BACKEND и функция его закрытия.
func OpenStore(ctx context.Context, cfg *config.Config, log ports.Logger) (ports.ProfileStore, func(), error) {
	switch cfg.Store.Backend {
	case config.BackendFile, "":
		log.Debugf(ctx, "using file store dir=%s", cfg.Store.Dir)
		return filestore.NewProfileStore(cfg.Store.Dir), func() {}, nil

	case config.BackendMemory:
		return memstore.NewProfileStore(), func() {}, nil

	case config.BackendPostgres:
		if cfg.Postgres.AutoMigrate {
			if err := pgstore.Migrate(ctx, cfg.Postgres.DSN); err != nil {
				return nil, nil, fmt.Errorf("postgres migrate: %w", err)
			}
		}
		pool, err := pgstore.NewPool(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres pool: %w", err)
		}
		return pgstore.NewProfileStore(pool), pool.Close, nil

	case config.BackendRedis:
		client, err := redisstore.NewClient(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			UseTLS:   cfg.Redis.UseTLS,
		})
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := client.Close(); err != nil {
				log.Warnf(ctx, "redis close: %v", err)
			}
		}
		return redisstore.NewProfileStore(client), closeFn, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
