package domain

import "time"

// Platform identifies the exchange a market record originated from.
type Platform string

const (
	PlatformPolymarket Platform = "polymarket"
	PlatformKalshi     Platform = "kalshi"
)

// Side is the outcome of a binary market a price refers to.
type Side string

const (
	SideYes Side = "yes"
	SideNo  Side = "no"
)

// UnifiedMarket is a platform-agnostic market record. Prices are on a 0-100
// scale; yesPrice + noPrice is roughly 100 when both sides are known, but one
// side may have been inferred as 100 minus the other. Records are value
// objects created fresh on every fetch and never updated in place.
type UnifiedMarket struct {
	ID         string   `json:"id"`
	Platform   Platform `json:"platform"`
	ExternalID string   `json:"external_id"`

	Title       string   `json:"title"`
	Category    string   `json:"category,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`

	YesPrice float64 `json:"yes_price"`
	NoPrice  float64 `json:"no_price"`

	Volume24h float64 `json:"volume_24h,omitempty"`
	Liquidity float64 `json:"liquidity,omitempty"`

	EndDate     *time.Time `json:"end_date,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	LastUpdated time.Time  `json:"last_updated"`

	URL string `json:"url,omitempty"`

	// At most one of these is set, depending on Platform.
	Polymarket *PolymarketExtra `json:"polymarket,omitempty"`
	Kalshi     *KalshiExtra     `json:"kalshi,omitempty"`
}

// PolymarketExtra carries Polymarket-specific fields retained for matching
// signal and display.
type PolymarketExtra struct {
	Slug     string   `json:"slug,omitempty"`
	Outcomes []string `json:"outcomes,omitempty"`
	Active   bool     `json:"active"`
	Closed   bool     `json:"closed"`
}

// KalshiExtra carries Kalshi-specific fields. Subtitle, rules text, and
// tickers feed the text similarity scorer.
type KalshiExtra struct {
	Ticker         string  `json:"ticker"`
	EventTicker    string  `json:"event_ticker,omitempty"`
	Subtitle       string  `json:"subtitle,omitempty"`
	RulesPrimary   string  `json:"rules_primary,omitempty"`
	RulesSecondary string  `json:"rules_secondary,omitempty"`
	Status         string  `json:"status,omitempty"`
	YesBid         float64 `json:"yes_bid,omitempty"`
	YesAsk         float64 `json:"yes_ask,omitempty"`
	NoBid          float64 `json:"no_bid,omitempty"`
	NoAsk          float64 `json:"no_ask,omitempty"`
	OpenInterest   float64 `json:"open_interest,omitempty"`
}

// Price returns the market's price for the given outcome side.
func (m UnifiedMarket) Price(side Side) float64 {
	if side == SideNo {
		return m.NoPrice
	}
	return m.YesPrice
}

// MarketMatch pairs one market from each platform believed to represent the
// same real-world question. Matches are ephemeral: produced per scan and
// consumed immediately by the arbitrage calculator.
type MarketMatch struct {
	Polymarket UnifiedMarket
	Kalshi     UnifiedMarket
	Similarity float64 // matcher confidence in [0,1]
}
