package domain

import "context"

// MarketSource is a platform client viewed from the core: it lists open
// markets already normalized to the unified shape and 0-100 price scale.
type MarketSource interface {
	// Platform identifies which exchange this source serves.
	Platform() Platform

	// ListOpenMarkets returns up to limit open/active markets.
	ListOpenMarkets(ctx context.Context, limit int) ([]UnifiedMarket, error)
}
