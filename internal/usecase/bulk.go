package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/Gunvolt24/steam_cache/internal/domain"
	"github.com/Gunvolt24/steam_cache/pkg/ctxmeta"
	"github.com/Gunvolt24/steam_cache/pkg/metrics"
	"github.com/Gunvolt24/steam_cache/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// batchResult — итог одной пачки; сливается в BulkReport в порядке пачек.
type batchResult struct {
	ran     bool
	updated []string
	missing []string
	orphans []string
	failed  []string
	err     error
}

// RefreshAll — массовое обновление всех записей кэша: пачки по BatchSize, один запрос на пачку.
// Ошибка пачки не останавливает остальные. Steam ID, которых нет в ответе, не трогаются.
// Ошибка возвращается только если не удалось получить список записей или отменён контекст.
func (s *ProfileService) RefreshAll(ctx context.Context) (report domain.BulkReport, err error) {
	ctx, span := telemetry.StartSpan(ctx, "profiles.refresh_all")
	defer span.End()

	start := s.clock.Now()
	defer func() {
		report.Elapsed = s.clock.Since(start)
		metrics.BulkRefreshDuration.Observe(report.Elapsed.Seconds())
	}()

	s.log.Infof(ctx, "Updating cached users...")

	ids, err := s.store.ListIDs(ctx)
	if err != nil {
		return report, fmt.Errorf("list profiles: %w", err)
	}
	sort.Strings(ids)
	report.Total = len(ids)
	if len(ids) == 0 {
		s.log.Warnf(ctx, "No cached users found.")
		return report, nil
	}
	s.log.Infof(ctx, "Total cached users: %d", len(ids))

	if s.opts.BulkRespectsStaleness {
		var skipped int
		ids, skipped = s.dropFresh(ctx, ids)
		report.Skipped = skipped
		if len(ids) == 0 {
			s.log.Infof(ctx, "All %d cached users are fresh, nothing to update", report.Total)
			return report, nil
		}
	}

	batches := chunk(ids, s.opts.BatchSize)
	results := make([]batchResult, len(batches))
	span.SetAttributes(attribute.Int("profiles.total", report.Total), attribute.Int("profiles.batches", len(batches)))

	var g errgroup.Group
	g.SetLimit(s.opts.BulkWorkers)
	for i, batch := range batches {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			results[i] = s.refreshBatch(ctx, i, batch)
			return nil
		})
	}
	_ = g.Wait()

	for i, r := range results {
		if !r.ran {
			continue
		}
		report.Batches++
		report.Updated = append(report.Updated, r.updated...)
		report.Missing = append(report.Missing, r.missing...)
		report.Orphans = append(report.Orphans, r.orphans...)
		report.FailedRecords = append(report.FailedRecords, r.failed...)
		if r.err != nil {
			report.FailedBatches = append(report.FailedBatches, domain.BatchFailure{
				Index:    i,
				SteamIDs: batches[i],
				Error:    r.err.Error(),
			})
		}
	}

	if err := ctx.Err(); err != nil {
		return report, err
	}
	s.log.Infof(ctx, "Update completed in %s: updated=%d missing=%d orphans=%d failed_batches=%d failed_records=%d",
		s.clock.Since(start), len(report.Updated), len(report.Missing), len(report.Orphans),
		len(report.FailedBatches), len(report.FailedRecords))
	return report, nil
}

// refreshBatch — один вызов Steam API и перезапись вернувшихся профилей этой пачки.
func (s *ProfileService) refreshBatch(ctx context.Context, index int, batch []string) batchResult {
	ctx, span := telemetry.StartSpan(ctx, "profiles.refresh_batch",
		attribute.Int("batch.index", index), attribute.Int("batch.size", len(batch)))
	defer span.End()

	res := batchResult{ran: true}

	summaries, err := s.fetcher.FetchProfiles(ctx, batch)
	if err != nil {
		metrics.ProfileRefresh.WithLabelValues("bulk", "fetch_failed").Inc()
		s.log.Errorf(ctx, "Batch #%d (%d ids) failed: %v", index+1, len(batch), err)
		span.RecordError(err)
		res.err = fmt.Errorf("fetch batch %d: %w", index, err)
		return res
	}

	requested := make(map[string]struct{}, len(batch))
	entry := 0
	for _, id := range batch {
		requested[id] = struct{}{}
		summary, ok := summaries[id]
		if !ok {
			metrics.ProfileRefresh.WithLabelValues("bulk", "missing").Inc()
			s.log.Warnf(ctxmeta.WithSteamID(ctx, id), "SteamID %s is absent from the API response", id)
			res.missing = append(res.missing, id)
			continue
		}
		entry++
		s.applyBulkEntry(ctx, entry, id, summary, &res)
	}

	// Steam может вернуть ID, которых не просили: обновляем, если запись есть локально.
	var extra []string
	for id := range summaries {
		if _, ok := requested[id]; !ok {
			extra = append(extra, id)
		}
	}
	sort.Strings(extra)
	for _, id := range extra {
		entry++
		s.applyBulkEntry(ctx, entry, id, summaries[id], &res)
	}
	return res
}

func (s *ProfileService) applyBulkEntry(ctx context.Context, n int, id string, summary domain.PlayerSummary, res *batchResult) {
	ctx = ctxmeta.WithSteamID(ctx, id)
	s.log.Debugf(ctx, "Updating user #%d...", n)

	exists, err := s.store.Exists(ctx, id)
	if err != nil {
		metrics.ProfileRefresh.WithLabelValues("bulk", "write_failed").Inc()
		s.log.Errorf(ctx, "Checking SteamID %s failed: %v", id, err)
		res.failed = append(res.failed, id)
		return
	}
	if !exists {
		metrics.ProfileRefresh.WithLabelValues("bulk", "orphan").Inc()
		s.log.Warnf(ctx, "File not found for SteamID: %s", id)
		res.orphans = append(res.orphans, id)
		return
	}

	if err := s.store.Save(ctx, s.build(id, summary)); err != nil {
		metrics.ProfileRefresh.WithLabelValues("bulk", "write_failed").Inc()
		s.log.Errorf(ctx, "An error occurred while saving SteamID %s: %v", id, err)
		res.failed = append(res.failed, id)
		return
	}
	metrics.ProfileRefresh.WithLabelValues("bulk", "updated").Inc()
	s.log.Infof(ctx, "SteamID %s was updated successfully", id)
	res.updated = append(res.updated, id)
}

// dropFresh — фильтр свежести для массового режима. Повреждённые записи остаются в списке,
// чтобы обновление их перезаписало.
func (s *ProfileService) dropFresh(ctx context.Context, ids []string) ([]string, int) {
	stale := make([]string, 0, len(ids))
	skipped := 0
	for _, id := range ids {
		p, err := s.store.Get(ctx, id)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			skipped++
			continue
		case err != nil:
			s.log.Warnf(ctxmeta.WithSteamID(ctx, id), "SteamID %s unreadable, refreshing anyway: %v", id, err)
		case !s.isStale(p):
			skipped++
			continue
		}
		stale = append(stale, id)
	}
	return stale, skipped
}

// chunk — последовательные пачки не длиннее size.
func chunk(ids []string, size int) [][]string {
	out := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		out = append(out, ids[start:end:end])
	}
	return out
}
