package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/predictwatch/arbscan/internal/domain"
	"github.com/predictwatch/arbscan/internal/server/handler"
)

type stubArbService struct{}

func (stubArbService) ListActive(ctx context.Context, opts domain.ListOpts) ([]domain.ArbitrageOpportunity, error) {
	return nil, nil
}

func (stubArbService) Stats(ctx context.Context) (domain.OpportunityStats, error) {
	return domain.OpportunityStats{}, nil
}

func (stubArbService) Scan(ctx context.Context) ([]domain.ArbitrageOpportunity, error) {
	return nil, nil
}

func (stubArbService) SetMinGapThreshold(threshold float64) error { return nil }

func (stubArbService) MinGapThreshold() float64 { return 0.5 }

func newTestServer(t *testing.T, cfg Config) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := NewServer(cfg, Handlers{
		Health:    handler.NewHealthHandler(logger),
		Arbitrage: handler.NewArbitrageHandler(stubArbService{}, logger),
		Markets:   handler.NewMarketHandler(nil, logger),
	}, logger)
	return srv.httpServer.Handler
}

func TestRoutes(t *testing.T) {
	h := newTestServer(t, Config{Port: 8000})

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/api/health", http.StatusOK},
		{http.MethodGet, "/api/arbitrage", http.StatusOK},
		{http.MethodGet, "/api/arbitrage/stats", http.StatusOK},
		{http.MethodPost, "/api/arbitrage/scan", http.StatusOK},
		{http.MethodDelete, "/api/arbitrage", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
		if rec.Code != tt.want {
			t.Errorf("%s %s = %d, want %d", tt.method, tt.path, rec.Code, tt.want)
		}
	}
}

func TestAdminTokenGuardsMutatingRoutes(t *testing.T) {
	h := newTestServer(t, Config{Port: 8000, AdminToken: "s3cret"})

	// Reads stay open.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/arbitrage", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("GET /api/arbitrage = %d, want 200", rec.Code)
	}

	// Scan without a token is rejected.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/arbitrage/scan", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated scan = %d, want 401", rec.Code)
	}

	// Bearer token passes.
	req := httptest.NewRequest(http.MethodPost, "/api/arbitrage/scan", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("authenticated scan = %d, want 200", rec.Code)
	}

	// X-API-Key works too.
	req = httptest.NewRequest(http.MethodPost, "/api/arbitrage/scan", nil)
	req.Header.Set("X-API-Key", "s3cret")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("api-key scan = %d, want 200", rec.Code)
	}

	// Wrong token is rejected.
	req = httptest.NewRequest(http.MethodPost, "/api/arbitrage/scan", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong token scan = %d, want 401", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := newTestServer(t, Config{Port: 8000, CORSOrigins: []string{"https://app.example.com"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/arbitrage", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("Allow-Origin = %q", got)
	}

	// Disallowed origins get no CORS headers.
	req = httptest.NewRequest(http.MethodGet, "/api/arbitrage", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Allow-Origin leaked to disallowed origin: %q", got)
	}
}
