package polymarket

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/predictwatch/arbscan/internal/domain"
)

func TestAPIMarket_DecodeEncodedFields(t *testing.T) {
	// Gamma ships outcomes and prices as JSON strings containing arrays.
	raw := `{
		"id": "12345",
		"conditionId": "0xabc",
		"question": "Will Bitcoin reach $100k by 2025?",
		"slug": "btc-100k-2025",
		"category": "Crypto",
		"outcomes": "[\"Yes\", \"No\"]",
		"outcomePrices": "[\"0.65\", \"0.35\"]",
		"volume24hr": 12500.5,
		"liquidity": "88000.25",
		"endDateIso": "2025-12-31T00:00:00Z",
		"active": true,
		"closed": false
	}`

	var m APIMarket
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if len(m.Outcomes) != 2 || m.Outcomes[0] != "Yes" {
		t.Errorf("Outcomes = %v", m.Outcomes)
	}
	if len(m.OutcomePrices) != 2 || m.OutcomePrices[0] != "0.65" {
		t.Errorf("OutcomePrices = %v", m.OutcomePrices)
	}
	if float64(m.Liquidity) != 88000.25 {
		t.Errorf("Liquidity = %v", m.Liquidity)
	}

	u := m.ToUnified(time.Now())
	if u.ID != "0xabc" {
		t.Errorf("ID = %q, want condition ID", u.ID)
	}
	if u.Platform != domain.PlatformPolymarket {
		t.Errorf("Platform = %q", u.Platform)
	}
	if u.YesPrice != 65 || u.NoPrice != 35 {
		t.Errorf("prices = %v/%v, want 65/35", u.YesPrice, u.NoPrice)
	}
	if u.URL != "https://polymarket.com/event/btc-100k-2025" {
		t.Errorf("URL = %q", u.URL)
	}
	if u.EndDate == nil || u.EndDate.Year() != 2025 {
		t.Errorf("EndDate = %v", u.EndDate)
	}
	if u.Polymarket == nil || u.Polymarket.Slug != "btc-100k-2025" {
		t.Errorf("Polymarket extra = %+v", u.Polymarket)
	}
}

func TestAPIMarket_DecodeArrayFields(t *testing.T) {
	raw := `{
		"id": "7",
		"question": "q",
		"outcomes": ["Yes", "No"],
		"outcomePrices": ["0.40", "0.60"],
		"volume": "1500"
	}`

	var m APIMarket
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	u := m.ToUnified(time.Now())
	if u.YesPrice != 40 || u.NoPrice != 60 {
		t.Errorf("prices = %v/%v, want 40/60", u.YesPrice, u.NoPrice)
	}
	if u.Volume24h != 1500 {
		t.Errorf("Volume24h = %v", u.Volume24h)
	}
}

func TestAPIMarket_ReversedOutcomeOrder(t *testing.T) {
	m := APIMarket{
		ID:            "1",
		Question:      "q",
		Outcomes:      stringList{"No", "Yes"},
		OutcomePrices: stringList{"0.30", "0.70"},
	}

	u := m.ToUnified(time.Now())
	if u.YesPrice != 70 || u.NoPrice != 30 {
		t.Errorf("prices = %v/%v, want 70/30 from labeled outcomes", u.YesPrice, u.NoPrice)
	}
}

func TestAPIMarket_InferMissingNoSide(t *testing.T) {
	m := APIMarket{
		ID:            "1",
		Question:      "q",
		Outcomes:      stringList{"Yes"},
		OutcomePrices: stringList{"0.80"},
	}

	// (1-0.8)*100 carries float rounding noise, so compare with a tolerance.
	u := m.ToUnified(time.Now())
	if u.YesPrice != 80 || math.Abs(u.NoPrice-20) > 1e-9 {
		t.Errorf("prices = %v/%v, want 80/20", u.YesPrice, u.NoPrice)
	}
}

func TestAPIMarket_NoPricesDefaultsToEven(t *testing.T) {
	m := APIMarket{ID: "1", Question: "q"}

	u := m.ToUnified(time.Now())
	if u.YesPrice != 50 || u.NoPrice != 50 {
		t.Errorf("prices = %v/%v, want 50/50", u.YesPrice, u.NoPrice)
	}
}
