package match

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/predictwatch/arbscan/internal/domain"
)

const (
	defaultMinScore      = 0.35
	defaultCategoryBoost = 0.05
	defaultEndDateBoost  = 0.10
	defaultEndDateWindow = 7 * 24 * time.Hour
)

// Config holds the matcher's tunable parameters. The defaults are empirically
// chosen; treat them as starting points, not law.
type Config struct {
	// MinScore is the acceptance floor. A candidate is kept only when its
	// boosted score is strictly greater than this.
	MinScore float64
	// CategoryBoost is added when the two categories match or contain each
	// other, case-insensitively.
	CategoryBoost float64
	// EndDateBoost is added when both markets close within EndDateWindow of
	// each other.
	EndDateBoost  float64
	EndDateWindow time.Duration
	Weights       Weights
}

// DefaultConfig returns the tuned matcher parameters.
func DefaultConfig() Config {
	return Config{
		MinScore:      defaultMinScore,
		CategoryBoost: defaultCategoryBoost,
		EndDateBoost:  defaultEndDateBoost,
		EndDateWindow: defaultEndDateWindow,
		Weights:       DefaultWeights(),
	}
}

// Matcher finds, for each Polymarket market, its best-scoring Kalshi
// counterpart. Matching is greedy best-per-source: no global assignment, and
// the same Kalshi market may pair with several Polymarket markets.
type Matcher struct {
	cfg    Config
	scorer *Scorer
}

// NewMatcher creates a Matcher from the given config.
func NewMatcher(cfg Config) *Matcher {
	return &Matcher{cfg: cfg, scorer: NewScorer(cfg.Weights)}
}

// Match pairs source markets with their best target counterpart, keeping only
// pairs whose boosted score clears the acceptance floor. The result is sorted
// by similarity, highest first. Cost is O(n*m); callers should batch rather
// than re-run per request.
func (m *Matcher) Match(polymarkets, kalshiMarkets []domain.UnifiedMarket) []domain.MarketMatch {
	if len(polymarkets) == 0 || len(kalshiMarkets) == 0 {
		return nil
	}

	// Profile the target side once; the pairwise loop reuses them.
	kalshiProfiles := make([]Profile, len(kalshiMarkets))
	for i, k := range kalshiMarkets {
		kalshiProfiles[i] = BuildProfile(k)
	}

	var matches []domain.MarketMatch
	for _, poly := range polymarkets {
		pp := BuildProfile(poly)

		bestIdx := -1
		bestScore := math.Inf(-1)
		for i := range kalshiMarkets {
			score := m.scorer.Score(pp, kalshiProfiles[i])
			score += m.boosts(poly, kalshiMarkets[i])
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}

		if bestIdx >= 0 && bestScore > m.cfg.MinScore {
			matches = append(matches, domain.MarketMatch{
				Polymarket: poly,
				Kalshi:     kalshiMarkets[bestIdx],
				Similarity: bestScore,
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	return matches
}

// boosts applies the category and end-date heuristics. They belong to the
// matcher, not the scorer: they compare market metadata, not text.
func (m *Matcher) boosts(a, b domain.UnifiedMarket) float64 {
	var boost float64
	if a.Category != "" && b.Category != "" {
		ac := strings.ToLower(a.Category)
		bc := strings.ToLower(b.Category)
		if ac == bc || strings.Contains(ac, bc) || strings.Contains(bc, ac) {
			boost += m.cfg.CategoryBoost
		}
	}
	if a.EndDate != nil && b.EndDate != nil {
		diff := a.EndDate.Sub(*b.EndDate)
		if diff < 0 {
			diff = -diff
		}
		if diff <= m.cfg.EndDateWindow {
			boost += m.cfg.EndDateBoost
		}
	}
	return boost
}
