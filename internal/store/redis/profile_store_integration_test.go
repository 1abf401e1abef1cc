//go:build integration

package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Gunvolt24/steam_cache/internal/domain"
	rdstore "github.com/Gunvolt24/steam_cache/internal/store/redis"
	"github.com/Gunvolt24/steam_cache/internal/testutil"
)

func TestRedisStore_TC(t *testing.T) {
	ctxStart, cancelStart := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancelStart()

	env, stop, err := testutil.StartRedisTC(ctxStart)
	require.NoError(t, err)
	t.Cleanup(func() { _ = stop(context.Background()) })

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := rdstore.NewClient(ctx, rdstore.Config{Addr: env.Addr})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	s := rdstore.NewProfileStore(client)

	p := testutil.MakeProfile()
	_, err = s.Get(ctx, p.SteamID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, s.Save(ctx, p))
	ok, err := s.Exists(ctx, p.SteamID)
	require.NoError(t, err)
	require.True(t, ok)

	got, err := s.Get(ctx, p.SteamID)
	require.NoError(t, err)
	require.Equal(t, p, got)

	ids, err := s.ListIDs(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{p.SteamID}, ids)

	// повреждённая запись
	require.NoError(t, client.Set(ctx, "steamcache:profile:76561199999999999", "{", 0).Err())
	_, err = s.Get(ctx, "76561199999999999")
	require.ErrorIs(t, err, domain.ErrCorruptRecord)
}
