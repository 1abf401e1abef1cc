package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Gunvolt24/steam_cache/internal/domain"
	"github.com/Gunvolt24/steam_cache/internal/ports"
	"github.com/Gunvolt24/steam_cache/pkg/ctxmeta"
	"github.com/Gunvolt24/steam_cache/pkg/metrics"
	"github.com/Gunvolt24/steam_cache/pkg/validate"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"
)

const secondsPerDay = 86400

// inflightTimeout — предел для одной критической секции по Steam ID.
const inflightTimeout = time.Minute

// Options — политика обновления кэша.
type Options struct {
	StaleAfter            time.Duration // запись старше этого перезапрашивается
	BatchSize             int           // размер пачки для массового обновления, не больше domain.MaxBatchSize
	BulkRespectsStaleness bool          // массовое обновление пропускает свежие записи
	BulkWorkers           int           // сколько пачек обрабатывается одновременно
}

// DefaultOptions — 2 дня, пачки по 100, массовое обновление без фильтра свежести, последовательно.
func DefaultOptions() Options {
	return Options{
		StaleAfter:  48 * time.Hour,
		BatchSize:   domain.MaxBatchSize,
		BulkWorkers: 1,
	}
}

func (o Options) normalized() Options {
	def := DefaultOptions()
	if o.StaleAfter <= 0 {
		o.StaleAfter = def.StaleAfter
	}
	if o.BatchSize <= 0 || o.BatchSize > domain.MaxBatchSize {
		o.BatchSize = def.BatchSize
	}
	if o.BulkWorkers <= 0 {
		o.BulkWorkers = def.BulkWorkers
	}
	return o
}

// ProfileService — решает, когда ходить в Steam, нормализует ответы и пишет записи.
// Решение "проверить свежесть + запросить + записать" для одного Steam ID
// выполняется одним вызовом на процесс: параллельные запросы по тому же ID ждут первый.
type ProfileService struct {
	store   ports.ProfileStore
	fetcher ports.ProfileFetcher
	log     ports.Logger
	clock   clockwork.Clock
	opts    Options

	inflight singleflight.Group
}

var _ ports.ProfileService = (*ProfileService)(nil)

// NewProfileService — DI-конструктор; nil clock означает реальное время.
func NewProfileService(
	store ports.ProfileStore,
	fetcher ports.ProfileFetcher,
	log ports.Logger,
	clock clockwork.Clock,
	opts Options,
) *ProfileService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &ProfileService{
		store:   store,
		fetcher: fetcher,
		log:     log,
		clock:   clock,
		opts:    opts.normalized(),
	}
}

// Options — действующие параметры (после подстановки дефолтов).
func (s *ProfileService) Options() Options { return s.opts }

// CacheUser — основной сценарий: нет записи, значит запросить и сохранить;
// есть запись, значит обычное обновление с проверкой свежести.
func (s *ProfileService) CacheUser(ctx context.Context, steamID string) (*domain.Profile, error) {
	if err := validate.SteamID(steamID); err != nil {
		s.log.Warnf(ctx, "Invalid SteamID %q: %v", steamID, err)
		return nil, err
	}
	ctx = ctxmeta.WithSteamID(ctx, steamID)
	s.log.Infof(ctx, "Caching SteamID: %s", steamID)

	return s.once(ctx, "gated:"+steamID, func(ctx context.Context) (*domain.Profile, error) {
		exists, err := s.store.Exists(ctx, steamID)
		if err != nil {
			return nil, fmt.Errorf("check profile %s: %w", steamID, err)
		}
		if exists {
			return s.refreshGated(ctx, steamID, "cache")
		}

		p, err := s.fetchAndSave(ctx, steamID, "cache")
		if err != nil {
			return nil, err
		}
		metrics.ProfileRefresh.WithLabelValues("cache", "created").Inc()
		s.log.Infof(ctx, "SteamID %s was successfully cached", steamID)
		return p, nil
	})
}

// RefreshOne — обновление существующей записи, только если она старше StaleAfter.
// Свежая запись возвращается как есть, без обращения к Steam.
func (s *ProfileService) RefreshOne(ctx context.Context, steamID string) (*domain.Profile, error) {
	if err := validate.SteamID(steamID); err != nil {
		return nil, err
	}
	ctx = ctxmeta.WithSteamID(ctx, steamID)

	return s.once(ctx, "gated:"+steamID, func(ctx context.Context) (*domain.Profile, error) {
		return s.refreshGated(ctx, steamID, "refresh")
	})
}

// ForceRefresh — перезапрос существующей записи без проверки свежести.
// Повреждённая запись при этом перезаписывается целиком.
func (s *ProfileService) ForceRefresh(ctx context.Context, steamID string) (*domain.Profile, error) {
	if err := validate.SteamID(steamID); err != nil {
		return nil, err
	}
	ctx = ctxmeta.WithSteamID(ctx, steamID)

	return s.once(ctx, "force:"+steamID, func(ctx context.Context) (*domain.Profile, error) {
		exists, err := s.store.Exists(ctx, steamID)
		if err != nil {
			return nil, fmt.Errorf("check profile %s: %w", steamID, err)
		}
		if !exists {
			return nil, fmt.Errorf("force refresh %s: %w", steamID, domain.ErrNotFound)
		}

		s.log.Infof(ctx, "Force updating data from SteamID: %s", steamID)
		p, err := s.fetchAndSave(ctx, steamID, "force")
		if err != nil {
			return nil, err
		}
		metrics.ProfileRefresh.WithLabelValues("force", "updated").Inc()
		s.log.Infof(ctx, "SteamID %s was updated successfully", steamID)
		return p, nil
	})
}

// GetProfile — чтение записи без обращения к Steam.
func (s *ProfileService) GetProfile(ctx context.Context, steamID string) (*domain.Profile, error) {
	if err := validate.SteamID(steamID); err != nil {
		return nil, err
	}
	return s.store.Get(ctxmeta.WithSteamID(ctx, steamID), steamID)
}

// ListProfiles — отсортированные Steam ID из кэша с пагинацией; limit<=0 означает "все".
func (s *ProfileService) ListProfiles(ctx context.Context, limit, offset int) ([]string, error) {
	ids, err := s.store.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	sort.Strings(ids)

	if offset < 0 {
		offset = 0
	}
	if offset >= len(ids) {
		return []string{}, nil
	}
	ids = ids[offset:]
	if limit > 0 && limit < len(ids) {
		ids = ids[:limit]
	}
	return ids, nil
}

// refreshGated — вызывается внутри критической секции по steamID.
func (s *ProfileService) refreshGated(ctx context.Context, steamID, pathLabel string) (*domain.Profile, error) {
	current, err := s.store.Get(ctx, steamID)
	if err != nil {
		if errors.Is(err, domain.ErrCorruptRecord) {
			metrics.ProfileRefresh.WithLabelValues(pathLabel, "corrupt").Inc()
		}
		return nil, fmt.Errorf("read profile %s: %w", steamID, err)
	}

	if !s.isStale(current) {
		metrics.ProfileRefresh.WithLabelValues(pathLabel, "fresh").Inc()
		s.log.Debugf(ctx, "SteamID %s is fresh, updated %s", steamID, current.UpdatedAt().UTC().Format(time.RFC3339))
		return current, nil
	}

	s.log.Infof(ctx, "Updating data from SteamID: %s", steamID)
	p, err := s.fetchAndSave(ctx, steamID, pathLabel)
	if err != nil {
		return nil, err
	}
	metrics.ProfileRefresh.WithLabelValues(pathLabel, "updated").Inc()
	s.log.Infof(ctx, "SteamID %s was updated successfully", steamID)
	return p, nil
}

// fetchAndSave — один запрос к Steam на один ID, нормализация и запись всех трёх полей разом.
// При ошибке предыдущая запись остаётся нетронутой.
func (s *ProfileService) fetchAndSave(ctx context.Context, steamID, pathLabel string) (*domain.Profile, error) {
	summaries, err := s.fetcher.FetchProfiles(ctx, []string{steamID})
	if err != nil {
		metrics.ProfileRefresh.WithLabelValues(pathLabel, "fetch_failed").Inc()
		s.log.Errorf(ctx, "An error occurred while getting the information for SteamID %s: %v", steamID, err)
		return nil, fmt.Errorf("fetch profile %s: %w", steamID, err)
	}

	summary, ok := summaries[steamID]
	if !ok {
		s.log.Warnf(ctx, "SteamID %s is absent from the API response, using placeholders", steamID)
	}

	p := s.build(steamID, summary)
	if err := s.store.Save(ctx, p); err != nil {
		metrics.ProfileRefresh.WithLabelValues(pathLabel, "write_failed").Inc()
		s.log.Errorf(ctx, "An error occurred while saving SteamID %s: %v", steamID, err)
		return nil, fmt.Errorf("save profile %s: %w", steamID, err)
	}
	return p, nil
}

// build — общий для всех путей записи конструктор записи со свежей меткой времени.
func (s *ProfileService) build(steamID string, summary domain.PlayerSummary) *domain.Profile {
	username, avatar := Normalize(summary)
	return &domain.Profile{
		SteamID:  steamID,
		Username: username,
		Avatar:   avatar,
		Update:   s.clock.Now().Unix(),
	}
}

// isStale — прошедшие сутки считаются дробно, как (now-update)/86400.
func (s *ProfileService) isStale(p *domain.Profile) bool {
	elapsedDays := float64(s.clock.Now().Unix()-p.Update) / secondsPerDay
	return elapsedDays >= s.opts.StaleAfter.Hours()/24
}

// once — критическая секция по ключу; каждому вызывающему отдаётся своя копия записи.
// fn выполняется под контекстом без отмены первого вызывающего и с собственным
// пределом inflightTimeout: отмена одного ожидающего не роняет остальных.
// Вызывающий с отменённым контекстом перестаёт ждать и получает ctx.Err().
func (s *ProfileService) once(ctx context.Context, key string, fn func(ctx context.Context) (*domain.Profile, error)) (*domain.Profile, error) {
	ch := s.inflight.DoChan(key, func() (any, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), inflightTimeout)
		defer cancel()
		return fn(runCtx)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		p, _ := res.Val.(*domain.Profile)
		if p == nil {
			return nil, nil
		}
		cp := *p
		return &cp, nil
	}
}
