package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Gunvolt24/steam_cache/internal/domain"
	"github.com/Gunvolt24/steam_cache/internal/ports"
	"github.com/Gunvolt24/steam_cache/internal/store"
	"github.com/Gunvolt24/steam_cache/pkg/metrics"
)

// Проверка, что ProfileStore удовлетворяет интерфейсу ports.ProfileStore.
var _ ports.ProfileStore = (*ProfileStore)(nil)

// ProfileStore — хранилище профилей в Postgres (pgxpool), таблица steam_profiles.
// Полезная нагрузка хранится в том же JSON-формате, что и файлы.
type ProfileStore struct {
	pool *pgxpool.Pool
}

// NewProfileStore - конструктор ProfileStore.
func NewProfileStore(pool *pgxpool.Pool) *ProfileStore { return &ProfileStore{pool: pool} }

// Exists — есть ли строка для Steam ID.
func (s *ProfileStore) Exists(ctx context.Context, steamID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM steam_profiles WHERE steam_id = $1)`, steamID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("select exists: %w", err)
	}
	return exists, nil
}

// Get — читает полезную нагрузку и разбирает её общим кодеком.
func (s *ProfileStore) Get(ctx context.Context, steamID string) (*domain.Profile, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM steam_profiles WHERE steam_id = $1`, steamID,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			metrics.StoreOps.WithLabelValues("postgres", "miss").Inc()
			return nil, fmt.Errorf("%w: steam_id=%s", domain.ErrNotFound, steamID)
		}
		return nil, fmt.Errorf("select profile: %w", err)
	}
	metrics.StoreOps.WithLabelValues("postgres", "read").Inc()
	return store.Decode(steamID, raw)
}

// Save — идемпотентный upsert по steam_id одной командой.
func (s *ProfileStore) Save(ctx context.Context, profile *domain.Profile) error {
	raw, err := store.Encode(profile)
	if err != nil {
		return err
	}
	if profile.SteamID == "" {
		return fmt.Errorf("%w: steam_id is required", domain.ErrInvalidIdentifier)
	}

	if _, err := s.pool.Exec(ctx, `
		INSERT INTO steam_profiles (steam_id, payload, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (steam_id) DO UPDATE SET
			payload    = EXCLUDED.payload,
			updated_at = EXCLUDED.updated_at
	`, profile.SteamID, string(raw), profile.Update); err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}

	metrics.StoreOps.WithLabelValues("postgres", "write").Inc()
	return nil
}

// ListIDs — все Steam ID из таблицы.
func (s *ProfileStore) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT steam_id FROM steam_profiles`)
	if err != nil {
		return nil, fmt.Errorf("select steam ids: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect steam ids: %w", err)
	}
	return ids, nil
}
