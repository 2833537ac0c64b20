// Package polymarket is the REST client for the Polymarket Gamma API, which
// provides market discovery and metadata.
package polymarket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/predictwatch/arbscan/internal/domain"
)

// GammaClient is the REST client for the Gamma API.
type GammaClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewGammaClient creates a new Gamma API client.
//
// baseURL is the Gamma API root, e.g. "https://gamma-api.polymarket.com".
func NewGammaClient(baseURL string) *GammaClient {
	return &GammaClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetOpenMarkets returns a page of markets that are still open for trading.
func (g *GammaClient) GetOpenMarkets(ctx context.Context, limit, offset int) ([]APIMarket, error) {
	params := url.Values{}
	params.Set("closed", "false")
	params.Set("active", "true")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	body, err := g.doGet(ctx, "/markets?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("polymarket/gamma: get markets: %w", err)
	}

	markets, err := decodeMarkets(body)
	if err != nil {
		return nil, fmt.Errorf("polymarket/gamma: decode markets: %w", err)
	}
	return markets, nil
}

// GetMarketBySlug returns a single market looked up by its URL slug.
func (g *GammaClient) GetMarketBySlug(ctx context.Context, slug string) (APIMarket, error) {
	params := url.Values{}
	params.Set("slug", slug)

	body, err := g.doGet(ctx, "/markets?"+params.Encode())
	if err != nil {
		return APIMarket{}, fmt.Errorf("polymarket/gamma: get market by slug %s: %w", slug, err)
	}

	markets, err := decodeMarkets(body)
	if err != nil {
		return APIMarket{}, fmt.Errorf("polymarket/gamma: decode markets: %w", err)
	}
	if len(markets) == 0 {
		return APIMarket{}, fmt.Errorf("polymarket/gamma: %w: slug=%s", domain.ErrNotFound, slug)
	}
	return markets[0], nil
}

// decodeMarkets handles both Gamma response shapes: a bare array and a
// wrapper object with a "markets" field.
func decodeMarkets(body []byte) ([]APIMarket, error) {
	var direct []APIMarket
	if err := json.Unmarshal(body, &direct); err == nil {
		return direct, nil
	}

	var wrapped struct {
		Markets []APIMarket `json:"markets"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Markets, nil
}

// doGet sends an unauthenticated GET request to the Gamma API.
func (g *GammaClient) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := checkHTTPStatus(resp.StatusCode, body); err != nil {
		return nil, err
	}

	return body, nil
}

// checkHTTPStatus maps non-2xx status codes to appropriate domain errors.
func checkHTTPStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	bodyStr := string(body)
	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, bodyStr)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, bodyStr)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, bodyStr)
	default:
		return fmt.Errorf("HTTP %d: %s", statusCode, bodyStr)
	}
}

// Source adapts the Gamma client to domain.MarketSource with a cache-aside
// layer, so repeated scans inside the TTL reuse one upstream fetch.
type Source struct {
	gamma  *GammaClient
	cache  domain.MarketCache
	ttl    time.Duration
	logger *slog.Logger
}

var _ domain.MarketSource = (*Source)(nil)

const cacheKey = "polymarket"

// NewSource creates a Source. cache may be nil to disable caching.
func NewSource(gamma *GammaClient, cache domain.MarketCache, ttl time.Duration, logger *slog.Logger) *Source {
	return &Source{gamma: gamma, cache: cache, ttl: ttl, logger: logger}
}

// Platform identifies this source.
func (s *Source) Platform() domain.Platform { return domain.PlatformPolymarket }

// ListOpenMarkets returns up to limit open markets in unified form.
func (s *Source) ListOpenMarkets(ctx context.Context, limit int) ([]domain.UnifiedMarket, error) {
	if s.cache != nil {
		cached, err := s.cache.GetMarkets(ctx, cacheKey)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.WarnContext(ctx, "polymarket: cache read failed",
				slog.String("error", err.Error()),
			)
		}
	}

	apiMarkets, err := s.gamma.GetOpenMarkets(ctx, limit, 0)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	markets := make([]domain.UnifiedMarket, 0, len(apiMarkets))
	for i := range apiMarkets {
		m := apiMarkets[i].ToUnified(now)
		if m.Title == "" {
			continue
		}
		markets = append(markets, m)
	}

	if s.cache != nil {
		if err := s.cache.SetMarkets(ctx, cacheKey, markets, s.ttl); err != nil {
			s.logger.WarnContext(ctx, "polymarket: cache write failed",
				slog.String("error", err.Error()),
			)
		}
	}
	return markets, nil
}
