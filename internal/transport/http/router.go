package rest

import (
	"net/http"
	"time"

	"github.com/Gunvolt24/steam_cache/internal/ports"
	"github.com/Gunvolt24/steam_cache/pkg/httpx"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// Handler — HTTP-обработчики поверх ProfileService.
type Handler struct {
	service    ports.ProfileService
	log        ports.Logger
	reqTimeout time.Duration
}

// NewHandler — reqTimeout<=0 отключает лимит на запрос.
func NewHandler(service ports.ProfileService, log ports.Logger, reqTimeout time.Duration) *Handler {
	return &Handler{service: service, log: log, reqTimeout: reqTimeout}
}

// NewRouter — gin.Engine с middleware и маршрутами; непустой tracingService включает otelgin.
func NewRouter(h *Handler, tracingService string) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(gin.Recovery())
	if tracingService != "" {
		r.Use(otelgin.Middleware(tracingService))
	}
	r.Use(httpx.RequestIDMiddleware())
	r.Use(httpx.RequestLogger(h.log))
	r.Use(httpx.RequestTimeout(h.reqTimeout))

	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	profiles := r.Group("/profiles")
	profiles.GET("", h.listProfiles)
	profiles.POST("/refresh", h.refreshAll)
	profiles.GET("/:steamid", h.getProfile)
	profiles.POST("/:steamid/refresh", h.refreshProfile)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})

	return r
}
