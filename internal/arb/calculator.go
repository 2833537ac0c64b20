// Package arb computes directional arbitrage signals for matched market
// pairs on the 0-100 price scale.
package arb

import (
	"math"

	"github.com/predictwatch/arbscan/internal/domain"
)

const (
	// DefaultNoiseFloor is the price gap, in points, below which a
	// discrepancy is considered unreliable and not actionable.
	DefaultNoiseFloor = 2.0
	// DefaultStake is the fixed notional the profit estimate is quoted on.
	DefaultStake = 100.0
)

// Result is the outcome of evaluating one matched pair on one side.
type Result struct {
	PriceDifference float64
	PercentageGap   float64
	PotentialProfit float64
	Direction       domain.Direction
}

// Calculator derives gap and profit figures from a pair of normalized prices.
type Calculator struct {
	noiseFloor float64
	stake      float64
}

// NewCalculator creates a Calculator. Non-positive arguments fall back to the
// defaults.
func NewCalculator(noiseFloor, stake float64) *Calculator {
	if noiseFloor <= 0 {
		noiseFloor = DefaultNoiseFloor
	}
	if stake <= 0 {
		stake = DefaultStake
	}
	return &Calculator{noiseFloor: noiseFloor, stake: stake}
}

// Calculate compares a Polymarket price against a Kalshi price, both on the
// 0-100 scale. The gap figures are symmetric in their arguments. Direction
// and profit are assigned only when the gap strictly exceeds the noise floor:
// buy on the cheaper venue and realize the higher price, so
//
//	profit = stake / cheapPrice * (expensivePrice - cheapPrice)
func (c *Calculator) Calculate(polyPrice, kalshiPrice float64) Result {
	diff := math.Abs(polyPrice - kalshiPrice)
	res := Result{
		PriceDifference: diff,
		PercentageGap:   diff / math.Min(polyPrice, kalshiPrice) * 100,
		Direction:       domain.DirectionNone,
	}

	switch {
	case polyPrice > kalshiPrice && diff > c.noiseFloor:
		res.PotentialProfit = c.stake / kalshiPrice * diff
		res.Direction = domain.DirectionKalshiToPoly
	case kalshiPrice > polyPrice && diff > c.noiseFloor:
		res.PotentialProfit = c.stake / polyPrice * diff
		res.Direction = domain.DirectionPolyToKalshi
	}
	return res
}

// Stake returns the notional the profit estimates are quoted on.
func (c *Calculator) Stake() float64 { return c.stake }
