//go:build !integration

package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Gunvolt24/steam_cache/internal/domain"
)

const benchSteamID = "76561197960287930"

// Профиль из кэша: LEAN (только маршрут) vs FULL (продовый пайплайн middleware)
func BenchmarkHTTP_GetProfile(b *testing.B) {
	p := &domain.Profile{SteamID: benchSteamID, Username: "bench", Avatar: "https://cdn/a.jpg", Update: 1700000000}
	h := NewHandler(svcStub{p: p}, nopLogger{}, 2*time.Second)

	b.Run("lean/no-mw", func(b *testing.B) {
		benchServe(b, makeLeanRouter(h), http.MethodGet, "/profiles/"+benchSteamID)
	})
	b.Run("full/prod-mw", func(b *testing.B) {
		gin.SetMode(gin.ReleaseMode)
		benchServe(b, NewRouter(h, ""), http.MethodGet, "/profiles/"+benchSteamID)
	})
}

// Потолок без маршалинга: заранее закодированный JSON
func BenchmarkHTTP_GetProfile_PreMarshaledBytes(b *testing.B) {
	raw, _ := json.Marshal(toResponse(&domain.Profile{SteamID: benchSteamID, Username: "bench"}))

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.GET("/profiles/:steamid", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", raw)
	})

	benchServe(b, r, http.MethodGet, "/profiles/"+benchSteamID)
}

// Листинг: 10/100/1000 Steam ID
func BenchmarkHTTP_ListProfiles(b *testing.B) {
	for _, n := range []int{10, 100, 1000} {
		b.Run("N="+strconv.Itoa(n), func(b *testing.B) {
			ids := make([]string, n)
			for i := range ids {
				ids[i] = benchSteamID
			}
			h := NewHandler(svcStub{ids: ids}, nopLogger{}, 2*time.Second)
			benchServe(b, makeLeanRouter(h), http.MethodGet, "/profiles?limit="+strconv.Itoa(n))
		})
	}
}

type nopLogger struct{}

func (nopLogger) Debugf(context.Context, string, ...any) {}
func (nopLogger) Infof(context.Context, string, ...any)  {}
func (nopLogger) Warnf(context.Context, string, ...any)  {}
func (nopLogger) Errorf(context.Context, string, ...any) {}

// svcStub — заранее подготовленные ответы без аллокаций на вызов.
type svcStub struct {
	p   *domain.Profile
	ids []string
}

func (s svcStub) CacheUser(context.Context, string) (*domain.Profile, error)    { return s.p, nil }
func (s svcStub) RefreshOne(context.Context, string) (*domain.Profile, error)   { return s.p, nil }
func (s svcStub) ForceRefresh(context.Context, string) (*domain.Profile, error) { return s.p, nil }
func (s svcStub) RefreshAll(context.Context) (domain.BulkReport, error)         { return domain.BulkReport{}, nil }
func (s svcStub) GetProfile(context.Context, string) (*domain.Profile, error)   { return s.p, nil }
func (s svcStub) ListProfiles(context.Context, int, int) ([]string, error)      { return s.ids, nil }

func makeLeanRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New() // без Recovery/otel/logger
	r.GET("/profiles", h.listProfiles)
	r.GET("/profiles/:steamid", h.getProfile)
	return r
}

func benchServe(b *testing.B, r *gin.Engine, method, path string) {
	b.Helper()
	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			req, _ := http.NewRequest(method, path, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			_, _ = io.Copy(io.Discard, w.Body)
			if w.Code != http.StatusOK {
				b.Fatalf("status=%d", w.Code)
			}
		}
	})
}
