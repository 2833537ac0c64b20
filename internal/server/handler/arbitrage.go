package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/predictwatch/arbscan/internal/domain"
)

// ArbitrageService defines the methods the arbitrage handler requires from the
// scanner. It is declared locally so the handler package does not depend on
// the concrete scanner implementation.
type ArbitrageService interface {
	ListActive(ctx context.Context, opts domain.ListOpts) ([]domain.ArbitrageOpportunity, error)
	Stats(ctx context.Context) (domain.OpportunityStats, error)
	Scan(ctx context.Context) ([]domain.ArbitrageOpportunity, error)
	SetMinGapThreshold(threshold float64) error
	MinGapThreshold() float64
}

// ArbitrageHandler serves the arbitrage HTTP endpoints.
type ArbitrageHandler struct {
	svc    ArbitrageService
	logger *slog.Logger
}

// NewArbitrageHandler creates an ArbitrageHandler with the given service and logger.
func NewArbitrageHandler(svc ArbitrageService, logger *slog.Logger) *ArbitrageHandler {
	return &ArbitrageHandler{
		svc:    svc,
		logger: logger,
	}
}

// listOpportunitiesResponse wraps the list endpoint output with metadata.
type listOpportunitiesResponse struct {
	Opportunities []domain.ArbitrageOpportunity `json:"opportunities"`
	Count         int                           `json:"count"`
	Limit         int                           `json:"limit"`
}

// List returns the currently active opportunities.
// GET /api/arbitrage?min_gap=2.5&sort_by=gap&limit=50
func (h *ArbitrageHandler) List(w http.ResponseWriter, r *http.Request) {
	opts := parseListOpts(r)

	opps, err := h.svc.ListActive(r.Context(), opts)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list opportunities failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list opportunities")
		return
	}
	if opps == nil {
		opps = []domain.ArbitrageOpportunity{}
	}

	writeJSON(w, http.StatusOK, listOpportunitiesResponse{
		Opportunities: opps,
		Count:         len(opps),
		Limit:         opts.Limit,
	})
}

// GetStats returns aggregates over the active opportunity set.
// GET /api/arbitrage/stats
func (h *ArbitrageHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: opportunity stats failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// scanResponse summarises a completed scan cycle.
type scanResponse struct {
	Opportunities []domain.ArbitrageOpportunity `json:"opportunities"`
	Count         int                           `json:"count"`
}

// TriggerScan runs a full scan cycle synchronously and returns the recorded
// opportunities. A concurrent scan yields 409 Conflict.
// POST /api/arbitrage/scan
func (h *ArbitrageHandler) TriggerScan(w http.ResponseWriter, r *http.Request) {
	opps, err := h.svc.Scan(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrScanInFlight) {
			writeError(w, http.StatusConflict, "a scan is already in progress")
			return
		}
		var srcErr *domain.SourceError
		if errors.As(err, &srcErr) {
			h.logger.ErrorContext(r.Context(), "handler: scan source failed",
				slog.String("platform", string(srcErr.Platform)),
				slog.String("error", err.Error()),
			)
			writeError(w, http.StatusBadGateway, "upstream market data unavailable")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: scan failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "scan failed")
		return
	}
	if opps == nil {
		opps = []domain.ArbitrageOpportunity{}
	}

	writeJSON(w, http.StatusOK, scanResponse{
		Opportunities: opps,
		Count:         len(opps),
	})
}

// updateConfigRequest is the body of the threshold update endpoint.
type updateConfigRequest struct {
	MinGapThreshold float64 `json:"min_gap_threshold"`
}

// UpdateConfig adjusts the minimum gap threshold used by subsequent scans.
// PUT /api/arbitrage/config
func (h *ArbitrageHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var req updateConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.svc.SetMinGapThreshold(req.MinGapThreshold); err != nil {
		writeError(w, http.StatusBadRequest, "min_gap_threshold must be positive")
		return
	}

	h.logger.InfoContext(r.Context(), "handler: min gap threshold updated",
		slog.Float64("min_gap_threshold", req.MinGapThreshold),
	)
	writeJSON(w, http.StatusOK, map[string]float64{
		"min_gap_threshold": h.svc.MinGapThreshold(),
	})
}
