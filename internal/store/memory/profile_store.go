package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/Gunvolt24/steam_cache/internal/domain"
	"github.com/Gunvolt24/steam_cache/internal/ports"
	"github.com/Gunvolt24/steam_cache/internal/store"
	"github.com/Gunvolt24/steam_cache/pkg/metrics"
)

var _ ports.ProfileStore = (*ProfileStore)(nil)

// ProfileStore — хранилище профилей в памяти процесса (dev-режим и тесты).
// Хранит закодированную полезную нагрузку, чтобы поведение совпадало с файловым бэкендом.
type ProfileStore struct {
	mu    sync.RWMutex
	items map[string][]byte
}

func NewProfileStore() *ProfileStore {
	return &ProfileStore{items: make(map[string][]byte)}
}

func (s *ProfileStore) Exists(_ context.Context, steamID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.items[steamID]
	return ok, nil
}

func (s *ProfileStore) Get(_ context.Context, steamID string) (*domain.Profile, error) {
	s.mu.RLock()
	raw, ok := s.items[steamID]
	s.mu.RUnlock()

	if !ok {
		metrics.StoreOps.WithLabelValues("memory", "miss").Inc()
		return nil, fmt.Errorf("%w: steam_id=%s", domain.ErrNotFound, steamID)
	}
	metrics.StoreOps.WithLabelValues("memory", "read").Inc()
	return store.Decode(steamID, raw)
}

func (s *ProfileStore) Save(_ context.Context, profile *domain.Profile) error {
	raw, err := store.Encode(profile)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.items[profile.SteamID] = raw
	size := len(s.items)
	s.mu.Unlock()

	metrics.StoreOps.WithLabelValues("memory", "write").Inc()
	metrics.StoreSize.WithLabelValues("memory").Set(float64(size))
	return nil
}

func (s *ProfileStore) ListIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.items))
	for id := range s.items {
		ids = append(ids, id)
	}
	return ids, nil
}

// Raw — закодированная запись как есть (для побайтовых сравнений в тестах).
func (s *ProfileStore) Raw(steamID string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.items[steamID]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), raw...), true
}

// PutRaw — положить произвольную полезную нагрузку (в т.ч. повреждённую).
func (s *ProfileStore) PutRaw(steamID string, raw []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[steamID] = append([]byte(nil), raw...)
}
