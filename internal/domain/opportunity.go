package domain

import (
	"fmt"
	"time"
)

// OpportunityStatus is the lifecycle state of a persisted opportunity.
type OpportunityStatus string

const (
	OpportunityActive  OpportunityStatus = "active"
	OpportunityExpired OpportunityStatus = "expired"
)

// Direction describes which way an arbitrage trade flows: buy on the cheap
// venue, realize the price on the expensive one.
type Direction string

const (
	// DirectionKalshiToPoly: buy on Kalshi, sell on Polymarket.
	DirectionKalshiToPoly Direction = "kalshi-to-poly"
	// DirectionPolyToKalshi: buy on Polymarket, sell on Kalshi.
	DirectionPolyToKalshi Direction = "poly-to-kalshi"
	// DirectionNone: gap is within the noise floor, not actionable.
	DirectionNone Direction = ""
)

// VenueQuote is a per-venue snapshot taken at detection time. Price is the
// side-specific normalized price, not necessarily the yes price.
type VenueQuote struct {
	ID    string  `json:"id"`
	Price float64 `json:"price"`
	URL   string  `json:"url,omitempty"`
}

// ArbitrageOpportunity is a detected, persisted, directional profit signal
// between a matched Polymarket/Kalshi pair on one outcome side.
type ArbitrageOpportunity struct {
	ID          string            `json:"id"`
	MarketTitle string            `json:"market_title"`
	Side        Side              `json:"side"`
	Polymarket  VenueQuote        `json:"polymarket"`
	Kalshi      VenueQuote        `json:"kalshi"`

	PriceDifference float64   `json:"price_difference"` // absolute gap, 0-100 scale
	PercentageGap   float64   `json:"percentage_gap"`   // diff / min(price) * 100
	PotentialProfit float64   `json:"potential_profit"` // on a fixed notional stake
	Direction       Direction `json:"direction"`

	DetectedAt time.Time         `json:"detected_at"`
	Status     OpportunityStatus `json:"status"`
}

// OpportunityID builds the deterministic opportunity key for a market pair and
// side. The same pair+side always yields the same ID, so re-detection across
// scans upserts a single row instead of accumulating duplicates.
func OpportunityID(polymarketID, kalshiID string, side Side) string {
	return fmt.Sprintf("%s-%s-%s", polymarketID, kalshiID, side)
}

// OpportunityStats aggregates the currently active opportunities.
type OpportunityStats struct {
	TotalOpportunities   int64   `json:"total_opportunities"`
	LargestGap           float64 `json:"largest_gap"`
	AverageGap           float64 `json:"average_gap"`
	TotalPotentialProfit float64 `json:"total_potential_profit"`
}
