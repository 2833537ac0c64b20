package domain

import (
	"context"
	"time"
)

// SortBy selects the ordering of an active-opportunity listing.
type SortBy string

const (
	SortByGap      SortBy = "gap"      // percentage gap, descending
	SortByProfit   SortBy = "profit"   // potential profit, descending
	SortByDetected SortBy = "detected" // detection time, most recent first
)

// ListOpts filters and orders active-opportunity queries.
type ListOpts struct {
	MinGap float64 // minimum percentage gap, 0 means no filter
	SortBy SortBy  // defaults to SortByDetected
	Limit  int     // 0 means the store default
}

// OpportunityStore persists arbitrage opportunities keyed by their
// deterministic ID.
type OpportunityStore interface {
	// ReplaceActive atomically expires every currently active row and
	// upserts the given opportunities back to active with fresh snapshots.
	// The expire step happens-before any upsert, so a scan can never expire
	// its own output. On error the store is left unchanged.
	ReplaceActive(ctx context.Context, opps []ArbitrageOpportunity) error

	// ListActive returns active opportunities matching opts.
	ListActive(ctx context.Context, opts ListOpts) ([]ArbitrageOpportunity, error)

	// Stats aggregates all currently active rows.
	Stats(ctx context.Context) (OpportunityStats, error)

	// ListExpiredBefore returns expired rows whose detection time is
	// strictly before the cutoff, for archival.
	ListExpiredBefore(ctx context.Context, before time.Time) ([]ArbitrageOpportunity, error)

	// DeleteExpiredBefore removes expired rows older than the cutoff and
	// returns the number deleted. Call only after archiving.
	DeleteExpiredBefore(ctx context.Context, before time.Time) (int64, error)
}
