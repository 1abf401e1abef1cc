package rest

import (
	"errors"
	"net/http"

	"github.com/Gunvolt24/steam_cache/internal/domain"
	"github.com/Gunvolt24/steam_cache/pkg/httpx"
	"github.com/gin-gonic/gin"
)

// profileResponse — запись кэша вместе с ключом.
type profileResponse struct {
	SteamID  string `json:"steamid"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
	Update   int64  `json:"update"`
}

func toResponse(p *domain.Profile) profileResponse {
	return profileResponse{SteamID: p.SteamID, Username: p.Username, Avatar: p.Avatar, Update: p.Update}
}

type listResponse struct {
	SteamIDs []string `json:"steam_ids"`
	Limit    int      `json:"limit"`
	Offset   int      `json:"offset"`
}

type bulkResponse struct {
	domain.BulkReport
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}

// getProfile — GET /profiles/:steamid: кэширует или обновляет профиль и отдаёт запись.
func (h *Handler) getProfile(c *gin.Context) {
	id, err := httpx.SteamIDParam(c, "steamid")
	if err != nil {
		h.writeError(c, err)
		return
	}
	p, err := h.service.CacheUser(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(p))
}

// refreshProfile — POST /profiles/:steamid/refresh[?force=true].
func (h *Handler) refreshProfile(c *gin.Context) {
	id, err := httpx.SteamIDParam(c, "steamid")
	if err != nil {
		h.writeError(c, err)
		return
	}
	force, err := httpx.QueryBool(c, "force")
	if err != nil {
		h.writeError(c, err)
		return
	}

	refresh := h.service.RefreshOne
	if force {
		refresh = h.service.ForceRefresh
	}
	p, err := refresh(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(p))
}

// refreshAll — POST /profiles/refresh: массовое обновление, в ответе отчёт.
func (h *Handler) refreshAll(c *gin.Context) {
	report, err := h.service.RefreshAll(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, bulkResponse{BulkReport: report, ElapsedSeconds: report.Elapsed.Seconds()})
}

// listProfiles — GET /profiles?limit=&offset=.
func (h *Handler) listProfiles(c *gin.Context) {
	page, err := httpx.ParsePage(c, defaultListLimit, maxListLimit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	ids, err := h.service.ListProfiles(c.Request.Context(), page.Limit, page.Offset)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse{SteamIDs: ids, Limit: page.Limit, Offset: page.Offset})
}

// writeError — ошибки домена в HTTP-статусы; детали 5xx только в лог.
func (h *Handler) writeError(c *gin.Context, err error) {
	ctx := c.Request.Context()
	switch {
	case errors.Is(err, domain.ErrInvalidIdentifier):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid steam id"})
	case errors.Is(err, httpx.ErrBadQuery):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
	case errors.Is(err, domain.ErrRemoteFetch):
		h.log.Errorf(ctx, "steam api failure: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "steam api unavailable"})
	case errors.Is(err, domain.ErrCorruptRecord):
		h.log.Errorf(ctx, "corrupt record: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "corrupt profile record"})
	default:
		h.log.Errorf(ctx, "request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
