package steam_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Gunvolt24/steam_cache/internal/domain"
	"github.com/Gunvolt24/steam_cache/internal/steam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopLogger struct{}

func (noopLogger) Debugf(context.Context, string, ...any) {}
func (noopLogger) Infof(context.Context, string, ...any)  {}
func (noopLogger) Warnf(context.Context, string, ...any)  {}
func (noopLogger) Errorf(context.Context, string, ...any) {}

const (
	id1 = "76561197960287930"
	id2 = "76561197960287931"
)

func newClient(t *testing.T, h http.HandlerFunc, timeout time.Duration) (*steam.Client, *int32) {
	t.Helper()
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		h(w, r)
	}))
	t.Cleanup(ts.Close)

	c, err := steam.NewClient(steam.Config{BaseURL: ts.URL, APIKey: "secret", Timeout: timeout}, noopLogger{})
	require.NoError(t, err)
	return c, &calls
}

func TestFetchProfiles_OK(t *testing.T) {
	c, calls := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ISteamUser/GetPlayerSummaries/v0002/", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		assert.Equal(t, id1+","+id2, r.URL.Query().Get("steamids"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"response":{"players":[
			{"steamid":%q,"personaname":"gabe","avatarfull":"https://cdn/a.jpg","profileurl":"x"},
			{"steamid":"","personaname":"ghost"}
		]}}`, id1)
	}, time.Second)

	got, err := c.FetchProfiles(context.Background(), []string{id1, id2})
	require.NoError(t, err)
	require.Equal(t, int32(1), atomic.LoadInt32(calls))
	require.Len(t, got, 1)
	require.Equal(t, domain.PlayerSummary{SteamID: id1, PersonaName: "gabe", AvatarFull: "https://cdn/a.jpg"}, got[id1])
}

func TestFetchProfiles_MissingResponseDegradesToEmpty(t *testing.T) {
	for _, body := range []string{`{}`, `{"response":{}}`, `{"response":{"players":[]}}`} {
		body := body
		c, _ := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(body))
		}, time.Second)

		got, err := c.FetchProfiles(context.Background(), []string{id1})
		require.NoError(t, err, body)
		require.Empty(t, got, body)
	}
}

func TestFetchProfiles_Failures(t *testing.T) {
	tests := []struct {
		name string
		h    http.HandlerFunc
	}{
		{"status_500", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusInternalServerError) }},
		{"status_403", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusForbidden) }},
		{"bad_json", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(`{"response":`)) }},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newClient(t, tt.h, time.Second)
			_, err := c.FetchProfiles(context.Background(), []string{id1})
			require.ErrorIs(t, err, domain.ErrRemoteFetch)
		})
	}
}

func TestFetchProfiles_TimeoutIsFetchFailure(t *testing.T) {
	c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}, 50*time.Millisecond)

	_, err := c.FetchProfiles(context.Background(), []string{id1})
	require.ErrorIs(t, err, domain.ErrRemoteFetch)
	require.NotContains(t, err.Error(), "secret")
}

func TestFetchProfiles_BatchLimit(t *testing.T) {
	c, calls := newClient(t, func(http.ResponseWriter, *http.Request) {}, time.Second)

	ids := make([]string, domain.MaxBatchSize+1)
	for i := range ids {
		ids[i] = fmt.Sprintf("7656119796%07d", i)
	}
	_, err := c.FetchProfiles(context.Background(), ids)
	require.True(t, errors.Is(err, steam.ErrBatchTooLarge))
	require.Zero(t, atomic.LoadInt32(calls))

	got, err := c.FetchProfiles(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, got)
	require.Zero(t, atomic.LoadInt32(calls))
}

func TestNewClient_BadBaseURL(t *testing.T) {
	_, err := steam.NewClient(steam.Config{BaseURL: "not a url"}, noopLogger{})
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "bad base url"))
}
