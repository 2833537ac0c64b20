package match

import (
	"testing"

	"github.com/predictwatch/arbscan/internal/domain"
)

func TestNormalizePrice(t *testing.T) {
	tests := []struct {
		price    float64
		platform domain.Platform
		want     float64
	}{
		{0.65, domain.PlatformPolymarket, 65},
		{1, domain.PlatformPolymarket, 100},
		{0, domain.PlatformPolymarket, 0},
		{65, domain.PlatformKalshi, 65},
		{1, domain.PlatformKalshi, 1},
	}
	for _, tt := range tests {
		if got := NormalizePrice(tt.price, tt.platform); got != tt.want {
			t.Errorf("NormalizePrice(%v, %s) = %v, want %v", tt.price, tt.platform, got, tt.want)
		}
	}
}

func TestEnsurePercent(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0.65, 65},
		{1, 100},
		{1.0001, 1.0001},
		{65, 65},
		{100, 100},
	}
	for _, tt := range tests {
		if got := EnsurePercent(tt.in); got != tt.want {
			t.Errorf("EnsurePercent(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
