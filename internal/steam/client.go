package steam

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Gunvolt24/steam_cache/internal/domain"
	"github.com/Gunvolt24/steam_cache/internal/ports"
	"github.com/Gunvolt24/steam_cache/pkg/metrics"
	"github.com/hashicorp/go-cleanhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	// DefaultBaseURL — публичный Steam Web API.
	DefaultBaseURL = "https://api.steampowered.com"

	summariesPath = "/ISteamUser/GetPlayerSummaries/v0002/"

	// ответ на 100 профилей укладывается в десятки килобайт
	maxBodyBytes = 4 << 20
)

// ErrBatchTooLarge — в одном запросе больше Steam ID, чем принимает API.
var ErrBatchTooLarge = errors.New("steam: too many ids in one request")

// Config — параметры клиента Steam Web API.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Option — настройка клиента (для тестов и нестандартных транспортов).
type Option func(*Client)

// WithHTTPClient — подменяет http.Client целиком.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// Client — ports.ProfileFetcher поверх GetPlayerSummaries. Повторов нет:
// любой сбой запроса возвращается вызывающему как ErrRemoteFetch.
type Client struct {
	http     *http.Client
	endpoint string
	apiKey   string
	log      ports.Logger
}

var _ ports.ProfileFetcher = (*Client)(nil)

func NewClient(cfg Config, log ports.Logger, opts ...Option) (*Client, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("steam: bad base url %q: %w", cfg.BaseURL, err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		http: &http.Client{
			Transport: otelhttp.NewTransport(cleanhttp.DefaultPooledTransport()),
			Timeout:   timeout,
		},
		endpoint: base + summariesPath,
		apiKey:   cfg.APIKey,
		log:      log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type summariesResponse struct {
	Response *struct {
		Players []domain.PlayerSummary `json:"players"`
	} `json:"response"`
}

// FetchProfiles — один запрос на пачку до 100 Steam ID. Ответ без response/players
// это пустой результат, а не ошибка.
func (c *Client) FetchProfiles(ctx context.Context, steamIDs []string) (map[string]domain.PlayerSummary, error) {
	if len(steamIDs) == 0 {
		return map[string]domain.PlayerSummary{}, nil
	}
	if len(steamIDs) > domain.MaxBatchSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrBatchTooLarge, len(steamIDs), domain.MaxBatchSize)
	}

	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("steamids", strings.Join(steamIDs, ","))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", domain.ErrRemoteFetch, err)
	}
	req.Header.Set("Accept", "application/json")

	c.log.Debugf(ctx, "steam: requesting %d profiles", len(steamIDs))

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.SteamAPIRequests.WithLabelValues("transport_error").Inc()
		return nil, fmt.Errorf("%w: %v", domain.ErrRemoteFetch, c.redact(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.SteamAPIRequests.WithLabelValues("http_error").Inc()
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, fmt.Errorf("%w: unexpected status %d", domain.ErrRemoteFetch, resp.StatusCode)
	}

	var body summariesResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&body); err != nil {
		metrics.SteamAPIRequests.WithLabelValues("decode_error").Inc()
		return nil, fmt.Errorf("%w: decode response: %v", domain.ErrRemoteFetch, err)
	}
	metrics.SteamAPIRequests.WithLabelValues("ok").Inc()

	out := make(map[string]domain.PlayerSummary, len(steamIDs))
	if body.Response == nil {
		c.log.Warnf(ctx, "steam: response without players for %d ids", len(steamIDs))
		return out, nil
	}
	for _, p := range body.Response.Players {
		if p.SteamID == "" {
			continue
		}
		out[p.SteamID] = p
	}
	return out, nil
}

// redact — в url.Error лежит полный URL с ключом API; оставляем только endpoint.
func (c *Client) redact(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return &url.Error{Op: uerr.Op, URL: c.endpoint, Err: uerr.Err}
	}
	return err
}
