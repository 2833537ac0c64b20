package match

import (
	"testing"
	"time"

	"github.com/predictwatch/arbscan/internal/domain"
)

func polyMarket(id, title string) domain.UnifiedMarket {
	return domain.UnifiedMarket{
		ID:       "poly-" + id,
		Platform: domain.PlatformPolymarket,
		Title:    title,
	}
}

func kalshiMarket(id, title string) domain.UnifiedMarket {
	return domain.UnifiedMarket{
		ID:       "kalshi-" + id,
		Platform: domain.PlatformKalshi,
		Title:    title,
	}
}

func TestMatch_IdenticalTitles(t *testing.T) {
	m := NewMatcher(DefaultConfig())

	matches := m.Match(
		[]domain.UnifiedMarket{polyMarket("1", "Will Bitcoin reach $100k by 2025?")},
		[]domain.UnifiedMarket{kalshiMarket("1", "Will Bitcoin reach $100k by 2025?")},
	)

	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	if matches[0].Similarity < 0.9 {
		t.Errorf("Similarity = %v, want >= 0.9", matches[0].Similarity)
	}
}

func TestMatch_NoPlausibleCounterpart(t *testing.T) {
	m := NewMatcher(DefaultConfig())

	matches := m.Match(
		[]domain.UnifiedMarket{polyMarket("1", "Will it rain in Paris tomorrow?")},
		[]domain.UnifiedMarket{kalshiMarket("1", "Will the Fed cut rates in March?")},
	)

	if len(matches) != 0 {
		t.Fatalf("got %d matches, want 0: %+v", len(matches), matches)
	}
}

func TestMatch_FloorIsExclusive(t *testing.T) {
	// Identical titles with no category or end date score exactly 1.0 with
	// no boosts, which pins the boundary.
	poly := []domain.UnifiedMarket{polyMarket("1", "Will Bitcoin reach $100k by 2025?")}
	kalshi := []domain.UnifiedMarket{kalshiMarket("1", "Will Bitcoin reach $100k by 2025?")}

	cfg := DefaultConfig()
	cfg.MinScore = 1.0
	if got := NewMatcher(cfg).Match(poly, kalshi); len(got) != 0 {
		t.Errorf("score == floor: got %d matches, want 0", len(got))
	}

	cfg.MinScore = 0.999
	if got := NewMatcher(cfg).Match(poly, kalshi); len(got) != 1 {
		t.Errorf("score > floor: got %d matches, want 1", len(got))
	}
}

func TestMatch_BoostsLiftBorderlinePair(t *testing.T) {
	poly := polyMarket("1", "Will Bitcoin reach $100k by 2025?")
	kalshi := kalshiMarket("1", "Will Bitcoin reach $100k by 2025?")

	end := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
	kalshiEnd := end.Add(3 * 24 * time.Hour)
	poly.Category = "Crypto"
	kalshi.Category = "crypto"
	poly.EndDate = &end
	kalshi.EndDate = &kalshiEnd

	// Base score is 1.0; category and end-date boosts should add 0.15.
	cfg := DefaultConfig()
	cfg.MinScore = 1.1
	matches := NewMatcher(cfg).Match(
		[]domain.UnifiedMarket{poly},
		[]domain.UnifiedMarket{kalshi},
	)
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	if matches[0].Similarity < 1.14 || matches[0].Similarity > 1.16 {
		t.Errorf("boosted Similarity = %v, want ~1.15", matches[0].Similarity)
	}
}

func TestMatch_EndDateOutsideWindowNotBoosted(t *testing.T) {
	poly := polyMarket("1", "Will Bitcoin reach $100k by 2025?")
	kalshi := kalshiMarket("1", "Will Bitcoin reach $100k by 2025?")

	end := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	farEnd := end.Add(10 * 24 * time.Hour)
	poly.EndDate = &end
	kalshi.EndDate = &farEnd

	cfg := DefaultConfig()
	cfg.MinScore = 1.05
	matches := NewMatcher(cfg).Match(
		[]domain.UnifiedMarket{poly},
		[]domain.UnifiedMarket{kalshi},
	)
	if len(matches) != 0 {
		t.Errorf("end dates 10 days apart still boosted: %+v", matches)
	}
}

func TestMatch_GreedyBestPerSource(t *testing.T) {
	m := NewMatcher(DefaultConfig())

	// Both Polymarket questions are closest to the same Kalshi market, and
	// greedy matching lets them share it.
	matches := m.Match(
		[]domain.UnifiedMarket{
			polyMarket("1", "Will Trump win the 2024 election?"),
			polyMarket("2", "Trump wins 2024 presidential election?"),
		},
		[]domain.UnifiedMarket{
			kalshiMarket("1", "Will Trump win the 2024 presidential election?"),
			kalshiMarket("2", "Will Bitcoin close above $90k in Dec 2024?"),
		},
	)

	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2: %+v", len(matches), matches)
	}
	for _, mm := range matches {
		if mm.Kalshi.ID != "kalshi-1" {
			t.Errorf("poly %s paired with %s, want kalshi-1", mm.Polymarket.ID, mm.Kalshi.ID)
		}
	}
}

func TestMatch_SortedBySimilarityDesc(t *testing.T) {
	m := NewMatcher(DefaultConfig())

	matches := m.Match(
		[]domain.UnifiedMarket{
			polyMarket("exact", "Will the Fed cut rates in March 2025?"),
			polyMarket("close", "Fed rate cut by March 2025?"),
		},
		[]domain.UnifiedMarket{
			kalshiMarket("1", "Will the Fed cut rates in March 2025?"),
		},
	)

	if len(matches) < 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Similarity > matches[i-1].Similarity {
			t.Errorf("matches out of order at %d: %v > %v", i, matches[i].Similarity, matches[i-1].Similarity)
		}
	}
	if matches[0].Polymarket.ID != "poly-exact" {
		t.Errorf("best match = %s, want poly-exact", matches[0].Polymarket.ID)
	}
}

func TestMatch_EmptyInputs(t *testing.T) {
	m := NewMatcher(DefaultConfig())

	if got := m.Match(nil, []domain.UnifiedMarket{kalshiMarket("1", "x")}); got != nil {
		t.Errorf("nil source: got %+v, want nil", got)
	}
	if got := m.Match([]domain.UnifiedMarket{polyMarket("1", "x")}, nil); got != nil {
		t.Errorf("nil target: got %+v, want nil", got)
	}
}
