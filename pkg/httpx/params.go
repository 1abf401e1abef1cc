package httpx

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/Gunvolt24/steam_cache/pkg/validate"
	"github.com/gin-gonic/gin"
)

// ErrBadQuery — query-параметр не парсится или вне допустимого диапазона.
var ErrBadQuery = errors.New("invalid query parameter")

// Page — limit/offset для листинга.
type Page struct {
	Limit  int
	Offset int
}

// ClampInt — ограничение значения v в диапазоне [lo, hi].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ParsePage — читает limit/offset; отсутствующие берутся по умолчанию,
// limit сверху прижимается к maxLimit, мусор и отрицательные значения дают ErrBadQuery.
func ParsePage(c *gin.Context, defaultLimit, maxLimit int) (Page, error) {
	p := Page{Limit: ClampInt(defaultLimit, 1, maxLimit)}

	if raw, ok := c.GetQuery("limit"); ok {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			return Page{}, fmt.Errorf("%w: limit=%q", ErrBadQuery, raw)
		}
		p.Limit = ClampInt(v, 1, maxLimit)
	}
	if raw, ok := c.GetQuery("offset"); ok {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return Page{}, fmt.Errorf("%w: offset=%q", ErrBadQuery, raw)
		}
		p.Offset = v
	}
	return p, nil
}

// QueryBool — булев флаг из query (?force=true); пустое или отсутствующее значение = false.
func QueryBool(c *gin.Context, name string) (bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %s=%q", ErrBadQuery, name, raw)
	}
	return v, nil
}

// SteamIDParam — Steam ID из параметра пути, без пробелов по краям и проверенный по длине.
func SteamIDParam(c *gin.Context, name string) (string, error) {
	return validate.NormalizeSteamID(c.Param(name))
}
