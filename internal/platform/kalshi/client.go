// Package kalshi is the REST client for the Kalshi exchange API.
package kalshi

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/predictwatch/arbscan/internal/domain"
)

// Client is the REST client for the Kalshi exchange API. Public market data
// works unauthenticated; configuring an API key and RSA private key enables
// signed requests, which get more generous rate limits.
type Client struct {
	baseURL    string
	apiKeyID   string
	privateKey *rsa.PrivateKey
	httpClient *http.Client
}

// NewClient creates a new Kalshi REST client.
//
// baseURL is the API root, e.g. "https://api.elections.kalshi.com/trade-api/v2".
// apiKeyID is the Kalshi API key identifier; empty disables signing.
func NewClient(baseURL, apiKeyID string) *Client {
	return &Client{
		baseURL:  baseURL,
		apiKeyID: apiKeyID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetRSAPrivateKey loads an RSA private key from PEM-encoded bytes and
// configures the client for RSA-signed authentication.
func (c *Client) SetRSAPrivateKey(pemBytes []byte) error {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return fmt.Errorf("kalshi: no PEM block found in private key")
	}

	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		// Try PKCS1 as fallback.
		pkcs1Key, pkcs1Err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if pkcs1Err != nil {
			return fmt.Errorf("kalshi: parse private key: %w (pkcs1: %v)", err, pkcs1Err)
		}
		c.privateKey = pkcs1Key
		return nil
	}

	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return fmt.Errorf("kalshi: expected RSA private key, got %T", key)
	}
	c.privateKey = rsaKey
	return nil
}

// GetOpenMarkets returns up to limit markets currently open for trading.
func (c *Client) GetOpenMarkets(ctx context.Context, limit int) ([]KalshiMarket, error) {
	params := url.Values{}
	params.Set("status", "open")
	params.Set("limit", strconv.Itoa(limit))

	body, err := c.doRequest(ctx, http.MethodGet, "/markets?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("kalshi: get markets: %w", err)
	}

	var resp struct {
		Markets []KalshiMarket `json:"markets"`
		Cursor  string         `json:"cursor"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("kalshi: decode markets: %w", err)
	}

	return resp.Markets, nil
}

// GetMarket returns a single market by its ticker.
func (c *Client) GetMarket(ctx context.Context, ticker string) (KalshiMarket, error) {
	path := fmt.Sprintf("/markets/%s", url.PathEscape(ticker))

	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return KalshiMarket{}, fmt.Errorf("kalshi: get market %s: %w", ticker, err)
	}

	var resp struct {
		Market KalshiMarket `json:"market"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return KalshiMarket{}, fmt.Errorf("kalshi: decode market: %w", err)
	}

	return resp.Market, nil
}

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

// doRequest builds, optionally signs, sends, and reads an HTTP request
// against the Kalshi API.
func (c *Client) doRequest(ctx context.Context, method, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	if c.privateKey != nil {
		if err := c.signRequest(req, method, path); err != nil {
			return nil, fmt.Errorf("sign request: %w", err)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := c.checkStatus(resp.StatusCode, respBody); err != nil {
		return nil, err
	}

	return respBody, nil
}

// signRequest adds RSA authentication headers to the HTTP request.
// Kalshi uses RSA-PSS-SHA256 signatures over the timestamp + method + path
// message string. The signed path excludes the query string.
func (c *Client) signRequest(req *http.Request, method, path string) error {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 10)

	signPath, _, _ := strings.Cut(path, "?")
	message := ts + method + signPath

	hash := sha256.Sum256([]byte(message))
	signature, err := rsa.SignPSS(rand.Reader, c.privateKey, crypto.SHA256, hash[:], &rsa.PSSOptions{
		SaltLength: rsa.PSSSaltLengthEqualsHash,
	})
	if err != nil {
		return fmt.Errorf("RSA sign: %w", err)
	}

	req.Header.Set("KALSHI-ACCESS-KEY", c.apiKeyID)
	req.Header.Set("KALSHI-ACCESS-SIGNATURE", base64.StdEncoding.EncodeToString(signature))
	req.Header.Set("KALSHI-ACCESS-TIMESTAMP", ts)

	return nil
}

// checkStatus maps non-2xx HTTP status codes to appropriate errors.
func (c *Client) checkStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	var apiErr KalshiErrorResponse
	_ = json.Unmarshal(body, &apiErr)

	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("kalshi: %w: %s (%s)", domain.ErrNotFound, apiErr.Message, apiErr.Code)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("kalshi: %w: %s (%s)", domain.ErrUnauthorized, apiErr.Message, apiErr.Code)
	case http.StatusTooManyRequests:
		return fmt.Errorf("kalshi: %w: %s (%s)", domain.ErrRateLimited, apiErr.Message, apiErr.Code)
	default:
		return fmt.Errorf("kalshi: HTTP %d: %s (%s)", statusCode, apiErr.Message, apiErr.Code)
	}
}

// Source adapts the Kalshi client to domain.MarketSource with a cache-aside
// layer mirroring the Polymarket side.
type Source struct {
	client *Client
	cache  domain.MarketCache
	ttl    time.Duration
	logger *slog.Logger
}

var _ domain.MarketSource = (*Source)(nil)

const cacheKey = "kalshi"

// NewSource creates a Source. cache may be nil to disable caching.
func NewSource(client *Client, cache domain.MarketCache, ttl time.Duration, logger *slog.Logger) *Source {
	return &Source{client: client, cache: cache, ttl: ttl, logger: logger}
}

// Platform identifies this source.
func (s *Source) Platform() domain.Platform { return domain.PlatformKalshi }

// ListOpenMarkets returns up to limit open markets in unified form.
func (s *Source) ListOpenMarkets(ctx context.Context, limit int) ([]domain.UnifiedMarket, error) {
	if s.cache != nil {
		cached, err := s.cache.GetMarkets(ctx, cacheKey)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.WarnContext(ctx, "kalshi: cache read failed",
				slog.String("error", err.Error()),
			)
		}
	}

	apiMarkets, err := s.client.GetOpenMarkets(ctx, limit)
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
			s.logger.WarnContext(ctx, "kalshi: cache write failed",
				slog.String("error", err.Error()),
			)
		}
	}
	return markets, nil
}
