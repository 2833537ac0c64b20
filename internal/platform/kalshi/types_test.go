package kalshi

import (
	"testing"
	"time"

	"github.com/predictwatch/arbscan/internal/domain"
)

func TestToUnified_Midpoints(t *testing.T) {
	m := KalshiMarket{
		Ticker:       "BTC-100K",
		EventTicker:  "BTC",
		Title:        "Will Bitcoin reach $100k by 2025?",
		Category:     "Crypto",
		Status:       "open",
		YesBid:       62,
		YesAsk:       66,
		NoBid:        34,
		NoAsk:        38,
		LastPrice:    64,
		Volume24H:    5000,
		OpenInterest: 1200,
		CloseTime:    "2025-12-31T00:00:00Z",
	}

	u := m.ToUnified(time.Now())
	if u.Platform != domain.PlatformKalshi {
		t.Errorf("Platform = %q", u.Platform)
	}
	if u.ID != "BTC-100K" {
		t.Errorf("ID = %q", u.ID)
	}
	if u.YesPrice != 64 {
		t.Errorf("YesPrice = %v, want midpoint 64", u.YesPrice)
	}
	if u.NoPrice != 36 {
		t.Errorf("NoPrice = %v, want midpoint 36", u.NoPrice)
	}
	if u.URL != "https://kalshi.com/markets/BTC-100K" {
		t.Errorf("URL = %q", u.URL)
	}
	if u.EndDate == nil || u.EndDate.Year() != 2025 {
		t.Errorf("EndDate = %v", u.EndDate)
	}
	if u.Kalshi == nil || u.Kalshi.EventTicker != "BTC" {
		t.Fatalf("Kalshi extra = %+v", u.Kalshi)
	}
	if u.Kalshi.OpenInterest != 1200 {
		t.Errorf("OpenInterest = %v, want 1200", u.Kalshi.OpenInterest)
	}
}

func TestToUnified_FallbackToLastPrice(t *testing.T) {
	m := KalshiMarket{Ticker: "T", Title: "q", LastPrice: 58}

	u := m.ToUnified(time.Now())
	if u.YesPrice != 58 {
		t.Errorf("YesPrice = %v, want last price 58", u.YesPrice)
	}
	if u.NoPrice != 42 {
		t.Errorf("NoPrice = %v, want complement 42", u.NoPrice)
	}
}

func TestToUnified_EmptyBookDefaultsToEven(t *testing.T) {
	m := KalshiMarket{Ticker: "T", Title: "q"}

	u := m.ToUnified(time.Now())
	if u.YesPrice != 50 || u.NoPrice != 50 {
		t.Errorf("prices = %v/%v, want 50/50", u.YesPrice, u.NoPrice)
	}
}

func TestToUnified_DescriptionFallsBackToRules(t *testing.T) {
	m := KalshiMarket{Ticker: "T", Title: "q", RulesPrimary: "resolves yes if..."}

	u := m.ToUnified(time.Now())
	if u.Description != "resolves yes if..." {
		t.Errorf("Description = %q", u.Description)
	}
}
