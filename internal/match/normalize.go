// Package match implements price normalization, text similarity scoring, and
// cross-platform market matching between Polymarket and Kalshi.
package match

import "github.com/predictwatch/arbscan/internal/domain"

// NormalizePrice converts a platform-native price to the common 0-100 scale.
// Polymarket quotes fractions in [0,1]; Kalshi quotes cents, already 0-100.
func NormalizePrice(price float64, platform domain.Platform) float64 {
	if platform == domain.PlatformPolymarket {
		return price * 100
	}
	return price
}

// EnsurePercent coerces a price-like value of uncertain scale onto 0-100.
// Some upstream fields deliver either a fraction or a percent; a value at or
// below 1 is treated as a fraction. Apply this to every ingested price-like
// field exactly once to avoid double scaling.
func EnsurePercent(v float64) float64 {
	if v <= 1 {
		return v * 100
	}
	return v
}
