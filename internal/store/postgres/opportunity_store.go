package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/predictwatch/arbscan/internal/domain"
)

// OpportunityStore implements domain.OpportunityStore using PostgreSQL.
type OpportunityStore struct {
	pool *pgxpool.Pool
}

var _ domain.OpportunityStore = (*OpportunityStore)(nil)

// NewOpportunityStore creates a new OpportunityStore backed by the given
// connection pool.
func NewOpportunityStore(pool *pgxpool.Pool) *OpportunityStore {
	return &OpportunityStore{pool: pool}
}

const defaultListLimit = 50

const oppSelectCols = `id, market_title, side,
	polymarket_id, polymarket_price, polymarket_url,
	kalshi_id, kalshi_price, kalshi_url,
	price_difference, percentage_gap, potential_profit,
	direction, detected_at, status`

// ReplaceActive atomically replaces the active opportunity set: every row
// currently active is marked expired, then the given rows are upserted as
// active. A recurring opportunity keeps its ID and flips straight back to
// active with fresh prices.
func (s *OpportunityStore) ReplaceActive(ctx context.Context, opps []domain.ArbitrageOpportunity) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin replace active: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE arbitrage_opportunities SET status = $1 WHERE status = $2`,
		domain.OpportunityExpired, domain.OpportunityActive,
	); err != nil {
		return fmt.Errorf("postgres: expire active opportunities: %w", err)
	}

	const upsert = `
		INSERT INTO arbitrage_opportunities (
			id, market_title, side,
			polymarket_id, polymarket_price, polymarket_url,
			kalshi_id, kalshi_price, kalshi_url,
			price_difference, percentage_gap, potential_profit,
			direction, detected_at, status
		) VALUES (
			$1, $2, $3,
			$4, $5, $6,
			$7, $8, $9,
			$10, $11, $12,
			$13, $14, $15
		)
		ON CONFLICT (id) DO UPDATE SET
			polymarket_price = EXCLUDED.polymarket_price,
			kalshi_price     = EXCLUDED.kalshi_price,
			price_difference = EXCLUDED.price_difference,
			percentage_gap   = EXCLUDED.percentage_gap,
			potential_profit = EXCLUDED.potential_profit,
			direction        = EXCLUDED.direction,
			detected_at      = EXCLUDED.detected_at,
			status           = EXCLUDED.status`

	for _, opp := range opps {
		if _, err := tx.Exec(ctx, upsert,
			opp.ID, opp.MarketTitle, opp.Side,
			opp.Polymarket.ID, opp.Polymarket.Price, opp.Polymarket.URL,
			opp.Kalshi.ID, opp.Kalshi.Price, opp.Kalshi.URL,
			opp.PriceDifference, opp.PercentageGap, opp.PotentialProfit,
			opp.Direction, opp.DetectedAt, opp.Status,
		); err != nil {
			return fmt.Errorf("postgres: upsert opportunity %s: %w", opp.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit replace active: %w", err)
	}
	return nil
}

// ListActive returns active opportunities filtered and sorted per opts.
func (s *OpportunityStore) ListActive(ctx context.Context, opts domain.ListOpts) ([]domain.ArbitrageOpportunity, error) {
	var orderBy string
	switch opts.SortBy {
	case domain.SortByGap:
		orderBy = "percentage_gap DESC"
	case domain.SortByProfit:
		orderBy = "potential_profit DESC"
	default:
		orderBy = "detected_at DESC"
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := `SELECT ` + oppSelectCols + `
		FROM arbitrage_opportunities
		WHERE status = $1 AND percentage_gap >= $2
		ORDER BY ` + orderBy + `
		LIMIT $3`

	rows, err := s.pool.Query(ctx, query, domain.OpportunityActive, opts.MinGap, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list active opportunities: %w", err)
	}
	defer rows.Close()

	return scanOpportunities(rows)
}

// Stats aggregates over the active opportunity set in a single query.
func (s *OpportunityStore) Stats(ctx context.Context) (domain.OpportunityStats, error) {
	const query = `
		SELECT
			COUNT(*),
			COALESCE(MAX(percentage_gap), 0),
			COALESCE(AVG(percentage_gap), 0),
			COALESCE(SUM(potential_profit), 0)
		FROM arbitrage_opportunities
		WHERE status = $1`

	var stats domain.OpportunityStats
	if err := s.pool.QueryRow(ctx, query, domain.OpportunityActive).Scan(
		&stats.TotalOpportunities,
		&stats.LargestGap,
		&stats.AverageGap,
		&stats.TotalPotentialProfit,
	); err != nil {
		return domain.OpportunityStats{}, fmt.Errorf("postgres: opportunity stats: %w", err)
	}
	return stats, nil
}

// ListExpiredBefore returns expired opportunities last detected before the
// cutoff, oldest first. The archiver drains these before pruning.
func (s *OpportunityStore) ListExpiredBefore(ctx context.Context, cutoff time.Time) ([]domain.ArbitrageOpportunity, error) {
	query := `SELECT ` + oppSelectCols + `
		FROM arbitrage_opportunities
		WHERE status = $1 AND detected_at < $2
		ORDER BY detected_at ASC`

	rows, err := s.pool.Query(ctx, query, domain.OpportunityExpired, cutoff)
	if err != nil {
		return nil, fmt.Errorf("postgres: list expired opportunities: %w", err)
	}
	defer rows.Close()

	return scanOpportunities(rows)
}

// DeleteExpiredBefore removes expired opportunities last detected before the
// cutoff and reports how many rows were dropped.
func (s *OpportunityStore) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM arbitrage_opportunities WHERE status = $1 AND detected_at < $2`,
		domain.OpportunityExpired, cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("postgres: delete expired opportunities: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanOpportunities(rows pgx.Rows) ([]domain.ArbitrageOpportunity, error) {
	var opps []domain.ArbitrageOpportunity
	for rows.Next() {
		var opp domain.ArbitrageOpportunity
		if err := rows.Scan(
			&opp.ID, &opp.MarketTitle, &opp.Side,
			&opp.Polymarket.ID, &opp.Polymarket.Price, &opp.Polymarket.URL,
			&opp.Kalshi.ID, &opp.Kalshi.Price, &opp.Kalshi.URL,
			&opp.PriceDifference, &opp.PercentageGap, &opp.PotentialProfit,
			&opp.Direction, &opp.DetectedAt, &opp.Status,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan opportunity: %w", err)
		}
		opps = append(opps, opp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: opportunity rows: %w", err)
	}
	return opps, nil
}
