package config_test

import (
	"slices"
	"testing"
	"time"

	cfg "github.com/Gunvolt24/steam_cache/config"
)

// TestLoadWithPrefix_Defaults — проверка наличия значений по умолчанию.
func TestLoadWithPrefix_Defaults(t *testing.T) {
	t.Parallel()

	c, err := cfg.LoadWithPrefix("STEAMCACHE_TEST_DEFAULTS")
	if err != nil {
		t.Fatalf("LoadWithPrefix error: %v", err)
	}

	// Steam
	if c.Steam.BaseURL != "https://api.steampowered.com" || c.Steam.Timeout != 10*time.Second {
		t.Fatalf("Steam defaults wrong: %+v", c.Steam)
	}

	// Logger
	if c.Logger.Debug || c.Logger.IsProd {
		t.Fatalf("Logger flags: want false, got %+v", c.Logger)
	}
	if c.Logger.Prefix != "[SteamCacheSystem]" {
		t.Fatalf("Logger.Prefix: want [SteamCacheSystem], got %q", c.Logger.Prefix)
	}

	// Store
	if c.Store.Backend != cfg.BackendFile || c.Store.Dir != "./data" {
		t.Fatalf("Store defaults wrong: %+v", c.Store)
	}

	// Refresh
	if c.Refresh.StaleAfter != 48*time.Hour || c.Refresh.BatchSize != 100 {
		t.Fatalf("Refresh defaults wrong: %+v", c.Refresh)
	}
	if c.Refresh.BulkRespectsStaleness || c.Refresh.BulkWorkers != 1 {
		t.Fatalf("Refresh bulk defaults wrong: %+v", c.Refresh)
	}

	// HTTP
	if c.HTTP.Addr != ":8080" || c.HTTP.GinMode != "release" {
		t.Fatalf("HTTP defaults wrong: %+v", c.HTTP)
	}
	if c.HTTP.ReadHeaderTimeout != 5*time.Second || c.HTTP.HandlerTimeout != 90*time.Second {
		t.Fatalf("HTTP timeouts wrong: %+v", c.HTTP)
	}

	// Metrics
	if c.Metrics.Addr != "" {
		t.Fatalf("Metrics.Addr: want empty, got %q", c.Metrics.Addr)
	}

	// Tracing
	if c.Tracing.Enabled || c.Tracing.ServiceName != "steamcache" || c.Tracing.SampleRatio != 1 {
		t.Fatalf("Tracing defaults wrong: %+v", c.Tracing)
	}

	// Postgres
	if c.Postgres.DSN == "" || c.Postgres.MaxConns != 10 || !c.Postgres.AutoMigrate {
		t.Fatalf("Postgres defaults wrong: %+v", c.Postgres)
	}

	// Redis
	if c.Redis.Addr != "localhost:6379" || c.Redis.DB != 0 || c.Redis.UseTLS {
		t.Fatalf("Redis defaults wrong: %+v", c.Redis)
	}

	// Kafka
	if c.Kafka.Enabled {
		t.Fatalf("Kafka.Enabled: want false")
	}
	if !slices.Equal(c.Kafka.Brokers, []string{"localhost:9092"}) {
		t.Fatalf("Kafka.Brokers: want [localhost:9092], got %v", c.Kafka.Brokers)
	}
	if c.Kafka.Topic != "steamids" || c.Kafka.GroupID != "steamcache" || c.Kafka.StartOffset != "last" {
		t.Fatalf("Kafka defaults wrong: %+v", c.Kafka)
	}
	if c.Kafka.ProcessTimeout != 15*time.Second || c.Kafka.RetryInitial != time.Second || c.Kafka.RetryMax != 30*time.Second {
		t.Fatalf("Kafka timeouts wrong: %+v", c.Kafka)
	}
}

// Меняем окружение.
func TestLoadWithPrefix_Overrides(t *testing.T) {
	const p = "STEAMCACHE_TEST_OVR"

	t.Setenv(p+"_STEAM_API_KEY", "k-123")
	t.Setenv(p+"_STEAM_BASE_URL", "http://127.0.0.1:9000")
	t.Setenv(p+"_STEAM_TIMEOUT", "3s")

	t.Setenv(p+"_LOGGER_DEBUG_MODE", "true")
	t.Setenv(p+"_LOGGER_PREFIX", "[Test]")
	t.Setenv(p+"_LOGGER_IS_PROD", "true")

	t.Setenv(p+"_STORE_BACKEND", " Redis ")
	t.Setenv(p+"_REDIS_ADDR", "cache:6380")
	t.Setenv(p+"_REDIS_DB", "3")
	t.Setenv(p+"_REDIS_USE_TLS", "true")

	t.Setenv(p+"_REFRESH_STALE_AFTER", "12h")
	t.Setenv(p+"_REFRESH_BATCH_SIZE", "50")
	t.Setenv(p+"_REFRESH_BULK_RESPECTS_STALENESS", "true")
	t.Setenv(p+"_REFRESH_BULK_WORKERS", "4")

	t.Setenv(p+"_HTTP_ADDR", ":9999")
	t.Setenv(p+"_HTTP_HANDLER_TIMEOUT", "4500ms")
	t.Setenv(p+"_METRICS_ADDR", ":9998")

	t.Setenv(p+"_TRACING_OTEL_ENABLED", "true")
	t.Setenv(p+"_TRACING_OTEL_SERVICE_NAME", "svc")
	t.Setenv(p+"_TRACING_OTEL_ENDPOINT", "collector:4318")
	t.Setenv(p+"_TRACING_OTEL_SAMPLE_RATIO", "0.25")

	t.Setenv(p+"_KAFKA_ENABLED", "true")
	t.Setenv(p+"_KAFKA_BROKERS", "k1:9092,k2:9093")
	t.Setenv(p+"_KAFKA_TOPIC", "steamids-test")
	t.Setenv(p+"_KAFKA_START_OFFSET", "first")
	t.Setenv(p+"_KAFKA_RETRY_MAX", "2m")

	c, err := cfg.LoadWithPrefix(p)
	if err != nil {
		t.Fatalf("LoadWithPrefix error: %v", err)
	}

	if c.Steam.APIKey != "k-123" || c.Steam.BaseURL != "http://127.0.0.1:9000" || c.Steam.Timeout != 3*time.Second {
		t.Fatalf("Steam overrides wrong: %+v", c.Steam)
	}
	if !c.Logger.Debug || c.Logger.Prefix != "[Test]" || !c.Logger.IsProd {
		t.Fatalf("Logger overrides wrong: %+v", c.Logger)
	}
	if c.Store.Backend != cfg.BackendRedis {
		t.Fatalf("Store.Backend: want redis, got %q", c.Store.Backend)
	}
	if c.Redis.Addr != "cache:6380" || c.Redis.DB != 3 || !c.Redis.UseTLS {
		t.Fatalf("Redis overrides wrong: %+v", c.Redis)
	}
	if c.Refresh.StaleAfter != 12*time.Hour || c.Refresh.BatchSize != 50 ||
		!c.Refresh.BulkRespectsStaleness || c.Refresh.BulkWorkers != 4 {
		t.Fatalf("Refresh overrides wrong: %+v", c.Refresh)
	}
	if c.HTTP.Addr != ":9999" || c.HTTP.HandlerTimeout != 4500*time.Millisecond {
		t.Fatalf("HTTP overrides wrong: %+v", c.HTTP)
	}
	if c.Metrics.Addr != ":9998" {
		t.Fatalf("Metrics.Addr override wrong: %q", c.Metrics.Addr)
	}
	if !c.Tracing.Enabled || c.Tracing.ServiceName != "svc" || c.Tracing.Endpoint != "collector:4318" || c.Tracing.SampleRatio != 0.25 {
		t.Fatalf("Tracing overrides wrong: %+v", c.Tracing)
	}
	if !c.Kafka.Enabled || !slices.Equal(c.Kafka.Brokers, []string{"k1:9092", "k2:9093"}) ||
		c.Kafka.Topic != "steamids-test" || c.Kafka.StartOffset != "first" || c.Kafka.RetryMax != 2*time.Minute {
		t.Fatalf("Kafka overrides wrong: %+v", c.Kafka)
	}
}

// Ключ Steam API из привычной переменной без префикса.
func TestLoadWithPrefix_PlainSteamAPIKey(t *testing.T) {
	const p = "STEAMCACHE_TEST_PLAIN_KEY"
	t.Setenv("STEAM_API_KEY", "plain-key")

	c, err := cfg.LoadWithPrefix(p)
	if err != nil {
		t.Fatalf("LoadWithPrefix error: %v", err)
	}
	if c.Steam.APIKey != "plain-key" {
		t.Fatalf("Steam.APIKey: want plain-key, got %q", c.Steam.APIKey)
	}
}

// Тоже меняем окружение — но с невалидным значением.
func TestLoadWithPrefix_InvalidValue_ReturnsError(t *testing.T) {
	const p = "STEAMCACHE_TEST_BAD"
	t.Setenv(p+"_HTTP_READ_TIMEOUT", "not-a-duration")

	if _, err := cfg.LoadWithPrefix(p); err == nil {
		t.Fatalf("expected error for invalid duration, got nil")
	}
}

func TestLoadWithPrefix_InvalidSemantics_ReturnsError(t *testing.T) {
	cases := map[string]string{
		"_STORE_BACKEND":             "sqlite",
		"_REFRESH_BATCH_SIZE":        "101",
		"_REFRESH_BULK_WORKERS":      "0",
		"_TRACING_OTEL_SAMPLE_RATIO": "1.5",
		"_KAFKA_START_OFFSET":        "middle",
		"_REFRESH_STALE_AFTER":       "-1h",
	}
	for suffix, value := range cases {
		t.Run(suffix, func(t *testing.T) {
			const p = "STEAMCACHE_TEST_SEM"
			t.Setenv(p+suffix, value)

			if _, err := cfg.LoadWithPrefix(p); err == nil {
				t.Fatalf("expected error for %s=%s, got nil", suffix, value)
			}
		})
	}
}
