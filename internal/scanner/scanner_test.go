package scanner

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/predictwatch/arbscan/internal/arb"
	"github.com/predictwatch/arbscan/internal/domain"
	"github.com/predictwatch/arbscan/internal/match"
)

type fakeSource struct {
	platform domain.Platform
	markets  []domain.UnifiedMarket
	err      error
}

func (f *fakeSource) Platform() domain.Platform { return f.platform }

func (f *fakeSource) ListOpenMarkets(ctx context.Context, limit int) ([]domain.UnifiedMarket, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.markets, nil
}

type fakeStore struct {
	replaced     [][]domain.ArbitrageOpportunity
	replaceErr   error
	listed       []domain.ArbitrageOpportunity
	stats        domain.OpportunityStats
}

func (f *fakeStore) ReplaceActive(ctx context.Context, opps []domain.ArbitrageOpportunity) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.replaced = append(f.replaced, opps)
	return nil
}

func (f *fakeStore) ListActive(ctx context.Context, opts domain.ListOpts) ([]domain.ArbitrageOpportunity, error) {
	return f.listed, nil
}

func (f *fakeStore) Stats(ctx context.Context) (domain.OpportunityStats, error) {
	return f.stats, nil
}

func (f *fakeStore) ListExpiredBefore(ctx context.Context, cutoff time.Time) ([]domain.ArbitrageOpportunity, error) {
	return nil, nil
}

func (f *fakeStore) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

type fakeLock struct {
	err      error
	acquired int
}

func (f *fakeLock) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	if f.err != nil {
		return nil, f.err
	}
	f.acquired++
	return func() {}, nil
}

func pairedMarkets(polyYes, polyNo, kalshiYes, kalshiNo float64) (*fakeSource, *fakeSource) {
	title := "Will Bitcoin reach $100k by 2025?"
	poly := &fakeSource{
		platform: domain.PlatformPolymarket,
		markets: []domain.UnifiedMarket{{
			ID:       "0xabc",
			Platform: domain.PlatformPolymarket,
			Title:    title,
			YesPrice: polyYes,
			NoPrice:  polyNo,
			URL:      "https://polymarket.com/event/btc-100k",
		}},
	}
	kalshi := &fakeSource{
		platform: domain.PlatformKalshi,
		markets: []domain.UnifiedMarket{{
			ID:       "BTC-100K",
			Platform: domain.PlatformKalshi,
			Title:    title,
			YesPrice: kalshiYes,
			NoPrice:  kalshiNo,
			URL:      "https://kalshi.com/markets/BTC-100K",
		}},
	}
	return poly, kalshi
}

func newTestScanner(poly, kalshi domain.MarketSource, store domain.OpportunityStore, locks domain.LockManager, cfg Config) *Scanner {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(
		poly, kalshi,
		match.NewMatcher(match.DefaultConfig()),
		arb.NewCalculator(0, 0),
		store, locks, cfg, logger,
	)
}

func TestScan_PicksSideWithLargerGap(t *testing.T) {
	// YES prices differ by 1.5 points, NO prices by 6. The NO side should
	// be recorded.
	poly, kalshi := pairedMarkets(50, 50, 51.5, 44)
	store := &fakeStore{}
	sc := newTestScanner(poly, kalshi, store, &fakeLock{}, Config{})

	opps, err := sc.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(opps) != 1 {
		t.Fatalf("got %d opportunities, want 1", len(opps))
	}

	opp := opps[0]
	if opp.Side != domain.SideNo {
		t.Errorf("Side = %q, want %q", opp.Side, domain.SideNo)
	}
	if opp.ID != "0xabc-BTC-100K-no" {
		t.Errorf("ID = %q, want %q", opp.ID, "0xabc-BTC-100K-no")
	}
	if opp.PriceDifference != 6 {
		t.Errorf("PriceDifference = %v, want 6", opp.PriceDifference)
	}
	if opp.Polymarket.Price != 50 || opp.Kalshi.Price != 44 {
		t.Errorf("quotes = %v/%v, want 50/44", opp.Polymarket.Price, opp.Kalshi.Price)
	}
	// Kalshi NO is cheaper, Polymarket NO is richer.
	if opp.Direction != domain.DirectionKalshiToPoly {
		t.Errorf("Direction = %q, want %q", opp.Direction, domain.DirectionKalshiToPoly)
	}
	if opp.Status != domain.OpportunityActive {
		t.Errorf("Status = %q, want active", opp.Status)
	}
}

func TestScan_YesWinsTies(t *testing.T) {
	// Equal 5-point gaps on both sides keep the YES side.
	poly, kalshi := pairedMarkets(55, 45, 50, 50)
	store := &fakeStore{}
	sc := newTestScanner(poly, kalshi, store, &fakeLock{}, Config{})

	opps, err := sc.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(opps) != 1 {
		t.Fatalf("got %d opportunities, want 1", len(opps))
	}
	if opps[0].Side != domain.SideYes {
		t.Errorf("Side = %q, want %q", opps[0].Side, domain.SideYes)
	}
}

func TestScan_DeterministicIDs(t *testing.T) {
	poly, kalshi := pairedMarkets(50, 50, 51.5, 44)
	store := &fakeStore{}
	sc := newTestScanner(poly, kalshi, store, &fakeLock{}, Config{})

	first, err := sc.Scan(context.Background())
	if err != nil {
		t.Fatalf("first Scan: %v", err)
	}
	second, err := sc.Scan(context.Background())
	if err != nil {
		t.Fatalf("second Scan: %v", err)
	}
	if first[0].ID != second[0].ID {
		t.Errorf("IDs differ across cycles: %q vs %q", first[0].ID, second[0].ID)
	}
}

func TestScan_ThresholdFiltersOnPercentageGap(t *testing.T) {
	// 6-point gap on NO is 13.6% of the cheap price. A 20% threshold
	// drops it, but the store is still asked to replace the active set.
	poly, kalshi := pairedMarkets(50, 50, 51.5, 44)
	store := &fakeStore{}
	sc := newTestScanner(poly, kalshi, store, &fakeLock{}, Config{MinGapThreshold: 20})

	opps, err := sc.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(opps) != 0 {
		t.Fatalf("got %d opportunities, want 0", len(opps))
	}
	if len(store.replaced) != 1 {
		t.Fatalf("ReplaceActive called %d times, want 1", len(store.replaced))
	}
	if len(store.replaced[0]) != 0 {
		t.Errorf("ReplaceActive got %d rows, want 0", len(store.replaced[0]))
	}
}

func TestScan_BelowNoiseFloorNotRecorded(t *testing.T) {
	// 1.5-point gaps on both sides never clear the calculator's noise
	// floor, so no direction is assigned and nothing is recorded.
	poly, kalshi := pairedMarkets(50, 50, 51.5, 48.5)
	store := &fakeStore{}
	sc := newTestScanner(poly, kalshi, store, &fakeLock{}, Config{})

	opps, err := sc.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(opps) != 0 {
		t.Fatalf("got %d opportunities, want 0: %+v", len(opps), opps)
	}
}

func TestScan_SourceFailureAbortsCycle(t *testing.T) {
	poly, _ := pairedMarkets(50, 50, 51.5, 44)
	kalshi := &fakeSource{platform: domain.PlatformKalshi, err: errors.New("status 503")}
	store := &fakeStore{}
	sc := newTestScanner(poly, kalshi, store, &fakeLock{}, Config{})

	_, err := sc.Scan(context.Background())
	if err == nil {
		t.Fatal("Scan succeeded despite source failure")
	}

	var srcErr *domain.SourceError
	if !errors.As(err, &srcErr) {
		t.Fatalf("error %v is not a SourceError", err)
	}
	if srcErr.Platform != domain.PlatformKalshi {
		t.Errorf("SourceError.Platform = %q, want %q", srcErr.Platform, domain.PlatformKalshi)
	}
	if len(store.replaced) != 0 {
		t.Errorf("store mutated on aborted cycle: %d ReplaceActive calls", len(store.replaced))
	}
}

func TestScan_InFlight(t *testing.T) {
	poly, kalshi := pairedMarkets(50, 50, 51.5, 44)
	store := &fakeStore{}
	locks := &fakeLock{err: domain.ErrLockHeld}
	sc := newTestScanner(poly, kalshi, store, locks, Config{})

	_, err := sc.Scan(context.Background())
	if !errors.Is(err, domain.ErrScanInFlight) {
		t.Fatalf("err = %v, want ErrScanInFlight", err)
	}
	if len(store.replaced) != 0 {
		t.Errorf("store mutated while scan in flight")
	}
}

func TestSetMinGapThreshold(t *testing.T) {
	poly, kalshi := pairedMarkets(50, 50, 51.5, 44)
	sc := newTestScanner(poly, kalshi, &fakeStore{}, &fakeLock{}, Config{})

	if err := sc.SetMinGapThreshold(0); err == nil {
		t.Error("threshold 0 accepted, want error")
	}
	if err := sc.SetMinGapThreshold(-1); err == nil {
		t.Error("negative threshold accepted, want error")
	}
	if err := sc.SetMinGapThreshold(3.5); err != nil {
		t.Fatalf("SetMinGapThreshold(3.5): %v", err)
	}
	if got := sc.MinGapThreshold(); got != 3.5 {
		t.Errorf("MinGapThreshold = %v, want 3.5", got)
	}
}
