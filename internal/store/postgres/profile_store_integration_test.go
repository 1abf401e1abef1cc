//go:build integration

package postgres_test

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Gunvolt24/steam_cache/internal/domain"
	pgstore "github.com/Gunvolt24/steam_cache/internal/store/postgres"
	"github.com/Gunvolt24/steam_cache/internal/testutil"
)

func startStore(t *testing.T) (*pgstore.ProfileStore, *testutil.PGContainer) {
	t.Helper()

	// длинный контекст — только на подъём контейнера
	ctxStart, cancelStart := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancelStart()

	pg, stopPG, err := testutil.StartPostgresTC(ctxStart)
	require.NoError(t, err)
	t.Cleanup(func() { _ = stopPG(context.Background()) })

	require.NoError(t, pgstore.Migrate(ctxStart, pg.DSN))
	return pgstore.NewProfileStore(pg.Pool), pg
}

// 1) Сохранение, чтение, повторное сохранение
func TestStore_SaveGetUpsert_TC(t *testing.T) {
	t.Parallel()
	s, _ := startStore(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	p := testutil.MakeProfile()
	ok, err := s.Exists(ctx, p.SteamID)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Save(ctx, p))
	got, err := s.Get(ctx, p.SteamID)
	require.NoError(t, err)
	require.Equal(t, p, got)

	p.Username = "renamed"
	p.Update += 10
	require.NoError(t, s.Save(ctx, p))
	got, err = s.Get(ctx, p.SteamID)
	require.NoError(t, err)
	require.Equal(t, "renamed", got.Username)
	require.Equal(t, p.Update, got.Update)
}

// 2) Отсутствующая запись и перечисление
func TestStore_NotFoundAndList_TC(t *testing.T) {
	t.Parallel()
	s, _ := startStore(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err := s.Get(ctx, "76561190000000000")
	require.ErrorIs(t, err, domain.ErrNotFound)

	a, b := testutil.MakeProfile(), testutil.MakeProfile()
	require.NoError(t, s.Save(ctx, a))
	require.NoError(t, s.Save(ctx, b))

	ids, err := s.ListIDs(ctx)
	require.NoError(t, err)
	sort.Strings(ids)
	want := []string{a.SteamID, b.SteamID}
	sort.Strings(want)
	require.Equal(t, want, ids)
}

// 3) Повреждённая полезная нагрузка
func TestStore_Corrupt_TC(t *testing.T) {
	t.Parallel()
	s, pg := startStore(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	const id = "76561199999999999"
	_, err := pg.Pool.Exec(ctx,
		`INSERT INTO steam_profiles (steam_id, payload, updated_at) VALUES ($1, '{"username":"x"}', 0)`, id)
	require.NoError(t, err)

	_, err = s.Get(ctx, id)
	require.ErrorIs(t, err, domain.ErrCorruptRecord)
}
