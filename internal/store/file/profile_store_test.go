package file_test

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Gunvolt24/steam_cache/internal/domain"
	"github.com/Gunvolt24/steam_cache/internal/store/file"
)

const (
	id1 = "76561197960287930"
	id2 = "76561198000000001"
)

func newProfile(id string) *domain.Profile {
	return &domain.Profile{SteamID: id, Username: "gabe", Avatar: "https://cdn/a.jpg", Update: 1700000000}
}

func TestSave_CreatesDirAndRoundTrips(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s := file.NewProfileStore(dir)

	ok, err := s.Exists(ctx, id1)
	require.NoError(t, err)
	require.False(t, ok)

	in := newProfile(id1)
	require.NoError(t, s.Save(ctx, in))

	ok, err = s.Exists(ctx, id1)
	require.NoError(t, err)
	require.True(t, ok)

	out, err := s.Get(ctx, id1)
	require.NoError(t, err)
	require.Equal(t, in, out)

	raw, err := os.ReadFile(filepath.Join(dir, id1+".json"))
	require.NoError(t, err)
	require.JSONEq(t, `{"username":"gabe","avatar":"https://cdn/a.jpg","update":1700000000}`, string(raw))
}

func TestSave_OverwritesWithoutLeftovers(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := file.NewProfileStore(dir)

	require.NoError(t, s.Save(ctx, newProfile(id1)))
	updated := newProfile(id1)
	updated.Username = "gaben"
	updated.Update++
	require.NoError(t, s.Save(ctx, updated))

	got, err := s.Get(ctx, id1)
	require.NoError(t, err)
	require.Equal(t, "gaben", got.Username)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
}

func TestGet_NotFound(t *testing.T) {
	s := file.NewProfileStore(t.TempDir())

	_, err := s.Get(context.Background(), id1)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGet_Corrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, id1+".json"), []byte("{broken"), 0o600))

	s := file.NewProfileStore(dir)
	_, err := s.Get(context.Background(), id1)
	require.ErrorIs(t, err, domain.ErrCorruptRecord)
}

func TestListIDs(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := file.NewProfileStore(dir)

	ids, err := s.ListIDs(ctx)
	require.NoError(t, err)
	require.Empty(t, ids)

	require.NoError(t, s.Save(ctx, newProfile(id1)))
	require.NoError(t, s.Save(ctx, newProfile(id2)))
	// посторонние файлы и каталоги не считаются записями
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".tmp-"+id1+"-123"), []byte("x"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.json"), 0o755))

	ids, err = s.ListIDs(ctx)
	require.NoError(t, err)
	sort.Strings(ids)
	require.Equal(t, []string{id1, id2}, ids)
}

func TestListIDs_MissingDir(t *testing.T) {
	s := file.NewProfileStore(filepath.Join(t.TempDir(), "absent"))

	ids, err := s.ListIDs(context.Background())
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestUnsafeKeysRejected(t *testing.T) {
	ctx := context.Background()
	s := file.NewProfileStore(t.TempDir())

	for _, key := range []string{"", "../etc/passwd", "a/b", ".hidden"} {
		_, err := s.Get(ctx, key)
		require.ErrorIs(t, err, domain.ErrInvalidIdentifier, "key=%q", key)

		p := newProfile(key)
		require.ErrorIs(t, s.Save(ctx, p), domain.ErrInvalidIdentifier, "key=%q", key)
	}
}
