package redis

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Gunvolt24/steam_cache/internal/domain"
	"github.com/Gunvolt24/steam_cache/internal/ports"
	"github.com/Gunvolt24/steam_cache/internal/store"
	"github.com/Gunvolt24/steam_cache/pkg/metrics"
)

var _ ports.ProfileStore = (*ProfileStore)(nil)

const (
	keyPrefix = "steamcache:profile:"
	indexKey  = "steamcache:profiles"
)

type Config struct {
	Addr     string
	Password string
	DB       int
	UseTLS   bool
}

// NewClient — клиент Redis с проверкой соединения.
func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.UseTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// ProfileStore — профили в Redis: JSON по ключу steamcache:profile:<id>
// и множество steamcache:profiles со всеми Steam ID для перечисления.
type ProfileStore struct {
	client *redis.Client
}

func NewProfileStore(client *redis.Client) *ProfileStore {
	return &ProfileStore{client: client}
}

func key(steamID string) string { return keyPrefix + steamID }

func (s *ProfileStore) Exists(ctx context.Context, steamID string) (bool, error) {
	n, err := s.client.Exists(ctx, key(steamID)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return n > 0, nil
}

func (s *ProfileStore) Get(ctx context.Context, steamID string) (*domain.Profile, error) {
	raw, err := s.client.Get(ctx, key(steamID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.StoreOps.WithLabelValues("redis", "miss").Inc()
			return nil, fmt.Errorf("%w: steam_id=%s", domain.ErrNotFound, steamID)
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}
	metrics.StoreOps.WithLabelValues("redis", "read").Inc()
	return store.Decode(steamID, raw)
}

// Save — запись и индекс меняются в одной транзакции MULTI/EXEC.
func (s *ProfileStore) Save(ctx context.Context, profile *domain.Profile) error {
	raw, err := store.Encode(profile)
	if err != nil {
		return err
	}
	if profile.SteamID == "" {
		return fmt.Errorf("%w: steam_id is required", domain.ErrInvalidIdentifier)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key(profile.SteamID), raw, 0)
		pipe.SAdd(ctx, indexKey, profile.SteamID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save: %w", err)
	}

	metrics.StoreOps.WithLabelValues("redis", "write").Inc()
	return nil
}

func (s *ProfileStore) ListIDs(ctx context.Context) ([]string, error) {
	ids, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis smembers: %w", err)
	}
	return ids, nil
}
