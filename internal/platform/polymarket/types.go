package polymarket

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/predictwatch/arbscan/internal/domain"
	"github.com/predictwatch/arbscan/internal/match"
)

// APIMarket mirrors the Gamma API market shape. Gamma serves several fields
// (outcomes, outcomePrices, volume, liquidity) as JSON-encoded strings, so
// the flexible wrapper types below absorb both representations.
type APIMarket struct {
	ID            string     `json:"id"`
	ConditionID   string     `json:"conditionId"`
	Question      string     `json:"question"`
	Description   string     `json:"description"`
	Slug          string     `json:"slug"`
	Category      string     `json:"category"`
	Outcomes      stringList `json:"outcomes"`
	OutcomePrices stringList `json:"outcomePrices"`
	Volume        flexFloat  `json:"volume"`
	Volume24hr    flexFloat  `json:"volume24hr"`
	Liquidity     flexFloat  `json:"liquidity"`
	LiquidityNum  flexFloat  `json:"liquidityNum"`
	EndDateISO    string     `json:"endDateIso"`
	StartDateISO  string     `json:"startDateIso"`
	EndDate       string     `json:"endDate"`
	StartDate     string     `json:"startDate"`
	Active        bool       `json:"active"`
	Closed        bool       `json:"closed"`
	Tags          []string   `json:"tags"`
}

// stringList decodes either a JSON array of strings or a JSON string that
// itself contains an encoded array, which is how Gamma ships outcomes and
// outcome prices.
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	var direct []string
	if err := json.Unmarshal(data, &direct); err == nil {
		*l = direct
		return nil
	}

	var encoded string
	if err := json.Unmarshal(data, &encoded); err != nil {
		return err
	}
	var nested []string
	if err := json.Unmarshal([]byte(encoded), &nested); err == nil {
		*l = nested
		return nil
	}

	// Last resort: comma-separated values.
	parts := strings.Split(encoded, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	*l = out
	return nil
}

// flexFloat decodes either a JSON number or a numeric string.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexFloat(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f = flexFloat(n)
	return nil
}

// ToUnified converts a Gamma market into the cross-platform representation.
// Prices land on the 0-100 scale regardless of which scale Gamma used.
func (m *APIMarket) ToUnified(now time.Time) domain.UnifiedMarket {
	yesRaw, noRaw, hasYes, hasNo := m.outcomePrices()

	// Infer a missing side from its complement on the 0-1 scale.
	if hasYes && !hasNo {
		noRaw = 1 - yesRaw
		hasNo = true
	} else if hasNo && !hasYes {
		yesRaw = 1 - noRaw
		hasYes = true
	}

	yesPrice, noPrice := 50.0, 50.0
	if hasYes {
		yesPrice = match.EnsurePercent(yesRaw)
	}
	if hasNo {
		noPrice = match.EnsurePercent(noRaw)
	} else if hasYes {
		noPrice = 100 - yesPrice
	}

	id := m.ConditionID
	if id == "" {
		id = m.ID
	}
	if id == "" {
		id = m.Slug
	}

	var marketURL string
	if m.Slug != "" {
		marketURL = "https://polymarket.com/event/" + m.Slug
	}

	volume := float64(m.Volume24hr)
	if volume == 0 {
		volume = float64(m.Volume)
	}
	liquidity := float64(m.LiquidityNum)
	if liquidity == 0 {
		liquidity = float64(m.Liquidity)
	}

	return domain.UnifiedMarket{
		ID:          id,
		Platform:    domain.PlatformPolymarket,
		ExternalID:  id,
		Title:       m.Question,
		Category:    m.Category,
		Description: m.Description,
		Tags:        m.Tags,
		YesPrice:    yesPrice,
		NoPrice:     noPrice,
		Volume24h:   volume,
		Liquidity:   liquidity,
		EndDate:     m.endDate(),
		StartDate:   m.startDate(),
		LastUpdated: now,
		URL:         marketURL,
		Polymarket: &domain.PolymarketExtra{
			Slug:     m.Slug,
			Outcomes: m.Outcomes,
			Active:   m.Active,
			Closed:   m.Closed,
		},
	}
}

// outcomePrices pairs the outcome labels with their prices, falling back to
// positional yes/no when the labels are missing.
func (m *APIMarket) outcomePrices() (yes, no float64, hasYes, hasNo bool) {
	prices := make([]float64, 0, len(m.OutcomePrices))
	for _, p := range m.OutcomePrices {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			continue
		}
		prices = append(prices, v)
	}
	if len(prices) == 0 {
		return 0, 0, false, false
	}

	yesIdx, noIdx := -1, -1
	for i, o := range m.Outcomes {
		switch strings.ToLower(o) {
		case "yes":
			yesIdx = i
		case "no":
			noIdx = i
		}
	}

	if yesIdx >= 0 && yesIdx < len(prices) {
		yes, hasYes = prices[yesIdx], true
	}
	if noIdx >= 0 && noIdx < len(prices) {
		no, hasNo = prices[noIdx], true
	}
	if !hasYes {
		yes, hasYes = prices[0], true
	}
	if !hasNo && len(prices) >= 2 {
		no, hasNo = prices[1], true
	}
	return yes, no, hasYes, hasNo
}

func (m *APIMarket) endDate() *time.Time {
	return parseFirstTime(m.EndDateISO, m.EndDate)
}

func (m *APIMarket) startDate() *time.Time {
	return parseFirstTime(m.StartDateISO, m.StartDate)
}

// parseFirstTime returns the first candidate that parses as RFC3339 or a
// bare date.
func parseFirstTime(candidates ...string) *time.Time {
	for _, c := range candidates {
		if c == "" {
			continue
		}
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if t, err := time.Parse(layout, c); err == nil {
				return &t
			}
		}
	}
	return nil
}
