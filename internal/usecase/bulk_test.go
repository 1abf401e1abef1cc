package usecase_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/Gunvolt24/steam_cache/internal/domain"
	"github.com/Gunvolt24/steam_cache/internal/ports/mocks"
	"github.com/Gunvolt24/steam_cache/internal/store/memory"
	"github.com/Gunvolt24/steam_cache/internal/usecase"
	"github.com/golang/mock/gomock"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

func makeIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("765611979%08d", i)
	}
	return ids
}

// echoFetcher — отвечает по каждому запрошенному ID, кроме omit; fail ломает вызов, содержащий ID.
type echoFetcher struct {
	mu    sync.Mutex
	sizes []int
	omit  map[string]bool
	fail  map[string]bool
	extra []string
}

func (f *echoFetcher) fetch(_ context.Context, ids []string) (map[string]domain.PlayerSummary, error) {
	f.mu.Lock()
	f.sizes = append(f.sizes, len(ids))
	f.mu.Unlock()

	out := make(map[string]domain.PlayerSummary, len(ids))
	for _, id := range ids {
		if f.fail[id] {
			return nil, fmt.Errorf("%w: unexpected status 500", domain.ErrRemoteFetch)
		}
		if f.omit[id] {
			continue
		}
		out[id] = domain.PlayerSummary{SteamID: id, PersonaName: "new-" + id[12:], AvatarFull: "https://cdn/" + id + ".gif"}
	}
	for _, id := range f.extra {
		out[id] = domain.PlayerSummary{SteamID: id, PersonaName: "stranger"}
	}
	return out, nil
}

func (f *echoFetcher) sortedSizes() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]int(nil), f.sizes...)
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}

func bulkFixture(t *testing.T, n int, opts usecase.Options, ef *echoFetcher) (*usecase.ProfileService, *memory.ProfileStore, []string) {
	t.Helper()
	ctrl := gomock.NewController(t)
	st := memory.NewProfileStore()
	ids := makeIDs(n)
	for _, id := range ids {
		seed(t, st, id, time.Hour)
	}

	f := mocks.NewMockProfileFetcher(ctrl)
	f.EXPECT().FetchProfiles(gomock.Any(), gomock.Any()).DoAndReturn(ef.fetch).AnyTimes()

	clock := clockwork.NewFakeClockAt(baseTime)
	clock.Advance(time.Minute)
	return newService(st, f, clock, opts), st, ids
}

func TestRefreshAll_250IDs_ThreeBatches(t *testing.T) {
	ef := &echoFetcher{omit: map[string]bool{}}
	svc, st, ids := bulkFixture(t, 250, usecase.DefaultOptions(), ef)

	notEchoed := ids[137]
	ef.omit[notEchoed] = true
	before, _ := st.Raw(notEchoed)

	report, err := svc.RefreshAll(context.Background())
	require.NoError(t, err)

	require.Equal(t, []int{100, 100, 50}, ef.sortedSizes())
	require.Equal(t, 250, report.Total)
	require.Equal(t, 3, report.Batches)
	require.Len(t, report.Updated, 249)
	require.Equal(t, []string{notEchoed}, report.Missing)
	require.Empty(t, report.FailedBatches)

	after, _ := st.Raw(notEchoed)
	require.Equal(t, before, after)

	got, err := st.Get(context.Background(), ids[0])
	require.NoError(t, err)
	require.Equal(t, "new-"+ids[0][12:], got.Username)
	require.Equal(t, domain.FallbackAvatar, got.Avatar) // .gif заменяется
	require.Equal(t, baseTime.Add(time.Minute).Unix(), got.Update)
}

func TestRefreshAll_BypassesStalenessByDefault(t *testing.T) {
	ef := &echoFetcher{}
	svc, _, _ := bulkFixture(t, 3, usecase.DefaultOptions(), ef)

	report, err := svc.RefreshAll(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Updated, 3)
	require.Zero(t, report.Skipped)
}

func TestRefreshAll_RespectsStalenessWhenEnabled(t *testing.T) {
	ef := &echoFetcher{}
	opts := usecase.DefaultOptions()
	opts.BulkRespectsStaleness = true
	svc, st, _ := bulkFixture(t, 3, opts, ef)

	staleID := "76561197999999999"
	seed(t, st, staleID, 72*time.Hour)

	report, err := svc.RefreshAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, 4, report.Total)
	require.Equal(t, 3, report.Skipped)
	require.Equal(t, []string{staleID}, report.Updated)
	require.Equal(t, []int{1}, ef.sortedSizes())
}

func TestRefreshAll_BatchFailureIsolated(t *testing.T) {
	ef := &echoFetcher{fail: map[string]bool{}}
	svc, st, ids := bulkFixture(t, 250, usecase.DefaultOptions(), ef)

	ef.fail[ids[150]] = true // вторая пачка
	before, _ := st.Raw(ids[120])

	report, err := svc.RefreshAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, report.Batches)
	require.Len(t, report.Updated, 150)
	require.Len(t, report.FailedBatches, 1)
	require.Equal(t, 1, report.FailedBatches[0].Index)
	require.Len(t, report.FailedBatches[0].SteamIDs, 100)

	after, _ := st.Raw(ids[120])
	require.Equal(t, before, after)
}

func TestRefreshAll_OrphansReported(t *testing.T) {
	orphan := "76561198000000001"
	ef := &echoFetcher{extra: []string{orphan}}
	svc, st, _ := bulkFixture(t, 2, usecase.DefaultOptions(), ef)

	report, err := svc.RefreshAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{orphan}, report.Orphans)

	ok, err := st.Exists(context.Background(), orphan)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRefreshAll_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := newService(memory.NewProfileStore(), mocks.NewMockProfileFetcher(ctrl), clockwork.NewFakeClockAt(baseTime), usecase.DefaultOptions())

	report, err := svc.RefreshAll(context.Background())
	require.NoError(t, err)
	require.True(t, report.Empty())
	require.Zero(t, report.Batches)
}

func TestRefreshAll_ConcurrentWorkers(t *testing.T) {
	ef := &echoFetcher{}
	opts := usecase.DefaultOptions()
	opts.BulkWorkers = 4
	opts.BatchSize = 30
	svc, _, _ := bulkFixture(t, 250, opts, ef)

	report, err := svc.RefreshAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, 9, report.Batches)
	require.Len(t, report.Updated, 250)
	require.Len(t, ef.sortedSizes(), 9)
	require.True(t, sort.StringsAreSorted(report.Updated))
}

func TestRefreshAll_CorruptRecordOverwritten(t *testing.T) {
	ef := &echoFetcher{}
	svc, st, ids := bulkFixture(t, 2, usecase.DefaultOptions(), ef)
	st.PutRaw(ids[1], []byte("not json"))

	report, err := svc.RefreshAll(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Updated, 2)

	_, err = st.Get(context.Background(), ids[1])
	require.NoError(t, err)
}

func TestRefreshAll_CancelledContext(t *testing.T) {
	ef := &echoFetcher{}
	svc, _, _ := bulkFixture(t, 5, usecase.DefaultOptions(), ef)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := svc.RefreshAll(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, report.Batches)
	require.Empty(t, ef.sortedSizes())
}
