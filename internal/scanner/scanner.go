// Package scanner orchestrates a scan cycle: fetch open markets from both
// venues, match them, evaluate both sides of each pair, and replace the
// active opportunity set in the store.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/predictwatch/arbscan/internal/arb"
	"github.com/predictwatch/arbscan/internal/domain"
	"github.com/predictwatch/arbscan/internal/match"
)

const (
	// scanLockKey guards the scan cycle. Only one scan runs at a time,
	// across all processes sharing the lock manager.
	scanLockKey = "scan:arbitrage"

	defaultFetchLimit      = 200
	defaultFetchTimeout    = 15 * time.Second
	defaultLockTTL         = 60 * time.Second
	defaultMinGapThreshold = 0.5
)

// Config holds the scan cycle parameters.
type Config struct {
	// FetchLimit is the number of open markets requested per venue.
	FetchLimit int
	// FetchTimeout bounds the concurrent market fetch.
	FetchTimeout time.Duration
	// LockTTL bounds how long a crashed scan can hold the cycle lock.
	LockTTL time.Duration
	// MinGapThreshold is the minimum percentage gap for an evaluated pair
	// to be recorded as an opportunity.
	MinGapThreshold float64
}

// DefaultConfig returns the scan parameters used when the config file does
// not override them.
func DefaultConfig() Config {
	return Config{
		FetchLimit:      defaultFetchLimit,
		FetchTimeout:    defaultFetchTimeout,
		LockTTL:         defaultLockTTL,
		MinGapThreshold: defaultMinGapThreshold,
	}
}

// Scanner runs scan cycles and serves reads over the persisted result set.
type Scanner struct {
	polymarket domain.MarketSource
	kalshi     domain.MarketSource
	matcher    *match.Matcher
	calc       *arb.Calculator
	store      domain.OpportunityStore
	locks      domain.LockManager
	logger     *slog.Logger

	fetchLimit   int
	fetchTimeout time.Duration
	lockTTL      time.Duration

	mu     sync.RWMutex
	minGap float64
}

// New creates a Scanner. Zero-valued config fields fall back to defaults.
func New(
	polymarket, kalshi domain.MarketSource,
	matcher *match.Matcher,
	calc *arb.Calculator,
	store domain.OpportunityStore,
	locks domain.LockManager,
	cfg Config,
	logger *slog.Logger,
) *Scanner {
	if cfg.FetchLimit <= 0 {
		cfg.FetchLimit = defaultFetchLimit
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = defaultFetchTimeout
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = defaultLockTTL
	}
	if cfg.MinGapThreshold <= 0 {
		cfg.MinGapThreshold = defaultMinGapThreshold
	}
	return &Scanner{
		polymarket:   polymarket,
		kalshi:       kalshi,
		matcher:      matcher,
		calc:         calc,
		store:        store,
		locks:        locks,
		logger:       logger,
		fetchLimit:   cfg.FetchLimit,
		fetchTimeout: cfg.FetchTimeout,
		lockTTL:      cfg.LockTTL,
		minGap:       cfg.MinGapThreshold,
	}
}

// Scan runs one full cycle and returns the opportunities it recorded.
// A second Scan while one is in flight returns domain.ErrScanInFlight
// without touching the store.
func (s *Scanner) Scan(ctx context.Context) ([]domain.ArbitrageOpportunity, error) {
	unlock, err := s.locks.Acquire(ctx, scanLockKey, s.lockTTL)
	if err != nil {
		if errors.Is(err, domain.ErrLockHeld) {
			return nil, domain.ErrScanInFlight
		}
		return nil, fmt.Errorf("scanner: acquire scan lock: %w", err)
	}
	defer unlock()

	cycle := uuid.NewString()
	s.logger.InfoContext(ctx, "scanner: cycle started",
		slog.String("cycle_id", cycle),
		slog.Int("fetch_limit", s.fetchLimit),
	)

	polymarkets, kalshiMarkets, err := s.fetchMarkets(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "scanner: cycle aborted",
			slog.String("cycle_id", cycle),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	s.logger.InfoContext(ctx, "scanner: markets fetched",
		slog.String("cycle_id", cycle),
		slog.Int("polymarket", len(polymarkets)),
		slog.Int("kalshi", len(kalshiMarkets)),
	)

	matches := s.matcher.Match(polymarkets, kalshiMarkets)
	s.logger.InfoContext(ctx, "scanner: pairs matched",
		slog.String("cycle_id", cycle),
		slog.Int("pairs", len(matches)),
	)

	now := time.Now().UTC()
	threshold := s.MinGapThreshold()
	opportunities := make([]domain.ArbitrageOpportunity, 0, len(matches))
	for _, mm := range matches {
		if opp, ok := s.evaluate(mm, threshold, now); ok {
			opportunities = append(opportunities, opp)
		}
	}

	if err := s.store.ReplaceActive(ctx, opportunities); err != nil {
		return nil, fmt.Errorf("scanner: replace active set: %w", err)
	}

	s.logger.InfoContext(ctx, "scanner: cycle finished",
		slog.String("cycle_id", cycle),
		slog.Int("opportunities", len(opportunities)),
	)
	return opportunities, nil
}

// fetchMarkets pulls the open markets from both venues concurrently. Either
// venue failing aborts the cycle; a half-fetched cycle would expire real
// opportunities on the venue that did respond.
func (s *Scanner) fetchMarkets(ctx context.Context) ([]domain.UnifiedMarket, []domain.UnifiedMarket, error) {
	ctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	var polymarkets, kalshiMarkets []domain.UnifiedMarket
	g, ctx := errgroup.WithContext(ctx)
	for _, src := range []domain.MarketSource{s.polymarket, s.kalshi} {
		g.Go(func() error {
			markets, err := src.ListOpenMarkets(ctx, s.fetchLimit)
			if err != nil {
				return &domain.SourceError{Platform: src.Platform(), Err: err}
			}
			switch src.Platform() {
			case domain.PlatformPolymarket:
				polymarkets = markets
			case domain.PlatformKalshi:
				kalshiMarkets = markets
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return polymarkets, kalshiMarkets, nil
}

// evaluate scores both sides of a matched pair and keeps the side with the
// larger absolute price gap, YES winning ties. The pair is recorded only
// when that side clears the gap threshold and carries a direction.
func (s *Scanner) evaluate(mm domain.MarketMatch, threshold float64, now time.Time) (domain.ArbitrageOpportunity, bool) {
	yes := s.calc.Calculate(mm.Polymarket.YesPrice, mm.Kalshi.YesPrice)
	no := s.calc.Calculate(mm.Polymarket.NoPrice, mm.Kalshi.NoPrice)

	side, best := domain.SideYes, yes
	if no.PriceDifference > yes.PriceDifference {
		side, best = domain.SideNo, no
	}

	if best.PercentageGap < threshold || best.Direction == domain.DirectionNone {
		return domain.ArbitrageOpportunity{}, false
	}

	return domain.ArbitrageOpportunity{
		ID:          domain.OpportunityID(mm.Polymarket.ID, mm.Kalshi.ID, side),
		MarketTitle: fmt.Sprintf("%s (%s)", mm.Polymarket.Title, strings.ToUpper(string(side))),
		Polymarket: domain.VenueQuote{
			ID:    mm.Polymarket.ID,
			Price: mm.Polymarket.Price(side),
			URL:   mm.Polymarket.URL,
		},
		Kalshi: domain.VenueQuote{
			ID:    mm.Kalshi.ID,
			Price: mm.Kalshi.Price(side),
			URL:   mm.Kalshi.URL,
		},
		Side:            side,
		PriceDifference: best.PriceDifference,
		PercentageGap:   best.PercentageGap,
		PotentialProfit: best.PotentialProfit,
		Direction:       best.Direction,
		DetectedAt:      now,
		Status:          domain.OpportunityActive,
	}, true
}

// ListActive returns the currently active opportunities from the store.
func (s *Scanner) ListActive(ctx context.Context, opts domain.ListOpts) ([]domain.ArbitrageOpportunity, error) {
	opps, err := s.store.ListActive(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("scanner: list active: %w", err)
	}
	return opps, nil
}

// Stats returns aggregates over the active opportunity set.
func (s *Scanner) Stats(ctx context.Context) (domain.OpportunityStats, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return domain.OpportunityStats{}, fmt.Errorf("scanner: stats: %w", err)
	}
	return stats, nil
}

// SetMinGapThreshold updates the recording threshold for subsequent cycles.
// Non-positive values are rejected.
func (s *Scanner) SetMinGapThreshold(threshold float64) error {
	if threshold <= 0 {
		return fmt.Errorf("scanner: min gap threshold must be positive, got %v", threshold)
	}
	s.mu.Lock()
	s.minGap = threshold
	s.mu.Unlock()
	return nil
}

// MinGapThreshold returns the current recording threshold.
func (s *Scanner) MinGapThreshold() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.minGap
}
