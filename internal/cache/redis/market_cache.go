package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/predictwatch/arbscan/internal/domain"
)

// MarketCache implements domain.MarketCache using JSON-serialized market
// lists with a TTL. One key holds the whole fetch result for a platform, so
// a scan either hits a coherent snapshot or refetches everything.
//
// Key schema:
//
//	markets:{platform} - JSON array of unified markets
type MarketCache struct {
	rdb *redis.Client
}

// NewMarketCache creates a MarketCache backed by the given Client.
func NewMarketCache(c *Client) *MarketCache {
	return &MarketCache{rdb: c.Underlying()}
}

var _ domain.MarketCache = (*MarketCache)(nil)

func marketsKey(key string) string { return "markets:" + key }

// SetMarkets stores a market list under the given key with the given TTL.
func (mc *MarketCache) SetMarkets(ctx context.Context, key string, markets []domain.UnifiedMarket, ttl time.Duration) error {
	data, err := json.Marshal(markets)
	if err != nil {
		return fmt.Errorf("redis: marshal markets %s: %w", key, err)
	}
	if err := mc.rdb.Set(ctx, marketsKey(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis: set markets %s: %w", key, err)
	}
	return nil
}

// GetMarkets retrieves a market list by key. It returns domain.ErrNotFound
// when the key does not exist or has expired.
func (mc *MarketCache) GetMarkets(ctx context.Context, key string) ([]domain.UnifiedMarket, error) {
	data, err := mc.rdb.Get(ctx, marketsKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("redis: get markets %s: %w", key, err)
	}

	var markets []domain.UnifiedMarket
	if err := json.Unmarshal(data, &markets); err != nil {
		return nil, fmt.Errorf("redis: unmarshal markets %s: %w", key, err)
	}
	return markets, nil
}

// Invalidate removes a cached market list.
func (mc *MarketCache) Invalidate(ctx context.Context, key string) error {
	if err := mc.rdb.Del(ctx, marketsKey(key)).Err(); err != nil {
		return fmt.Errorf("redis: invalidate markets %s: %w", key, err)
	}
	return nil
}
