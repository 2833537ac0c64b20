package kalshi

import (
	"time"

	"github.com/predictwatch/arbscan/internal/domain"
)

// KalshiMarket represents a market as returned by the Kalshi REST API.
// Prices are quoted in cents (0-100).
type KalshiMarket struct {
	Ticker         string  `json:"ticker"`
	EventTicker    string  `json:"event_ticker"`
	Title          string  `json:"title"`
	Subtitle       string  `json:"subtitle"`
	RulesPrimary   string  `json:"rules_primary"`
	RulesSecondary string  `json:"rules_secondary"`
	Status         string  `json:"status"` // "open", "closed", "settled"
	Category       string  `json:"category"`
	YesBid         float64 `json:"yes_bid"`
	YesAsk         float64 `json:"yes_ask"`
	NoBid          float64 `json:"no_bid"`
	NoAsk          float64 `json:"no_ask"`
	LastPrice      float64 `json:"last_price"`
	Volume         int64   `json:"volume"`
	Volume24H      int64   `json:"volume_24h"`
	Liquidity      float64 `json:"liquidity"`
	OpenInterest   int64   `json:"open_interest"`
	OpenTime       string  `json:"open_time"`
	CloseTime      string  `json:"close_time"`
	ExpirationTime string  `json:"expiration_time"`
	Result         string  `json:"result"` // "yes", "no", "" (unsettled)
}

// KalshiErrorResponse represents a Kalshi API error response.
type KalshiErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ToUnified converts a Kalshi market into the cross-platform representation.
// Bid/ask midpoints stand in for traded prices; when a book side is empty
// the last trade price (or the yes complement) fills in.
func (m *KalshiMarket) ToUnified(now time.Time) domain.UnifiedMarket {
	yesPrice := m.LastPrice
	if m.YesBid > 0 && m.YesAsk > 0 {
		yesPrice = (m.YesBid + m.YesAsk) / 2
	}
	if yesPrice == 0 {
		yesPrice = 50
	}

	noPrice := 100 - yesPrice
	if m.NoBid > 0 && m.NoAsk > 0 {
		noPrice = (m.NoBid + m.NoAsk) / 2
	}

	description := m.Subtitle
	if description == "" {
		description = m.RulesPrimary
	}

	liquidity := m.Liquidity
	if liquidity == 0 {
		liquidity = float64(m.OpenInterest)
	}

	var endDate *time.Time
	if t, err := time.Parse(time.RFC3339, m.CloseTime); err == nil {
		endDate = &t
	}
	var startDate *time.Time
	if t, err := time.Parse(time.RFC3339, m.OpenTime); err == nil {
		startDate = &t
	}

	return domain.UnifiedMarket{
		ID:          m.Ticker,
		Platform:    domain.PlatformKalshi,
		ExternalID:  m.Ticker,
		Title:       m.Title,
		Category:    m.Category,
		Description: description,
		YesPrice:    yesPrice,
		NoPrice:     noPrice,
		Volume24h:   float64(m.Volume24H),
		Liquidity:   liquidity,
		EndDate:     endDate,
		StartDate:   startDate,
		LastUpdated: now,
		URL:         "https://kalshi.com/markets/" + m.Ticker,
		Kalshi: &domain.KalshiExtra{
			Ticker:         m.Ticker,
			EventTicker:    m.EventTicker,
			Subtitle:       m.Subtitle,
			RulesPrimary:   m.RulesPrimary,
			RulesSecondary: m.RulesSecondary,
			Status:         m.Status,
			YesBid:         m.YesBid,
			YesAsk:         m.YesAsk,
			NoBid:          m.NoBid,
			NoAsk:          m.NoAsk,
			OpenInterest:   float64(m.OpenInterest),
		},
	}
}
