package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Gunvolt24/steam_cache/internal/domain"
	"github.com/Gunvolt24/steam_cache/internal/ports"
	"github.com/Gunvolt24/steam_cache/internal/store"
	"github.com/Gunvolt24/steam_cache/pkg/metrics"
)

// Проверка, что ProfileStore удовлетворяет интерфейсу ports.ProfileStore.
var _ ports.ProfileStore = (*ProfileStore)(nil)

const (
	ext        = ".json"
	tempPrefix = ".tmp-"
)

// ProfileStore — хранилище профилей в каталоге: один файл <dir>/<steamid>.json на запись.
type ProfileStore struct {
	dir string
}

// NewProfileStore — конструктор; каталог создаётся при первой записи.
func NewProfileStore(dir string) *ProfileStore {
	return &ProfileStore{dir: dir}
}

// Dir — каталог с данными.
func (s *ProfileStore) Dir() string { return s.dir }

// Exists — есть ли файл записи.
func (s *ProfileStore) Exists(_ context.Context, steamID string) (bool, error) {
	path, err := s.pathFor(steamID)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(path)
	switch {
	case err == nil:
		return info.Mode().IsRegular(), nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
}

// Get — читает и разбирает файл записи.
func (s *ProfileStore) Get(_ context.Context, steamID string) (*domain.Profile, error) {
	path, err := s.pathFor(steamID)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			metrics.StoreOps.WithLabelValues("file", "miss").Inc()
			return nil, fmt.Errorf("%w: steam_id=%s", domain.ErrNotFound, steamID)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	metrics.StoreOps.WithLabelValues("file", "read").Inc()
	return store.Decode(steamID, raw)
}

// Save — пишет запись во временный файл того же каталога и атомарно
// переименовывает его поверх старого; при ошибке прежний файл не меняется.
func (s *ProfileStore) Save(_ context.Context, profile *domain.Profile) error {
	raw, err := store.Encode(profile)
	if err != nil {
		return err
	}
	path, err := s.pathFor(profile.SteamID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, tempPrefix+profile.SteamID+"-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	// после успешного Rename файла уже нет — ошибку Remove игнорируем.
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("move temp file: %w", err)
	}

	metrics.StoreOps.WithLabelValues("file", "write").Inc()
	return nil
}

// ListIDs — все Steam ID по именам файлов *.json; отсутствие каталога — пустой список.
func (s *ProfileStore) ListIDs(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read data dir: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || strings.HasPrefix(name, tempPrefix) || !strings.HasSuffix(name, ext) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ext))
	}
	return ids, nil
}

// pathFor — путь к файлу записи; Steam ID не должен выходить за пределы каталога.
func (s *ProfileStore) pathFor(steamID string) (string, error) {
	if steamID == "" || steamID != filepath.Base(steamID) || strings.HasPrefix(steamID, ".") {
		return "", fmt.Errorf("%w: unsafe key %q", domain.ErrInvalidIdentifier, steamID)
	}
	return filepath.Join(s.dir, steamID+ext), nil
}
