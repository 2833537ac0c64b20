package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/predictwatch/arbscan/internal/domain"
)

// MarketHandler serves the unified market listing endpoint, reading directly
// from the venue sources (cache-backed, so repeated calls are cheap).
type MarketHandler struct {
	sources []domain.MarketSource
	logger  *slog.Logger
}

// NewMarketHandler creates a MarketHandler over the given sources.
func NewMarketHandler(sources []domain.MarketSource, logger *slog.Logger) *MarketHandler {
	return &MarketHandler{
		sources: sources,
		logger:  logger,
	}
}

// listMarketsResponse wraps the list endpoint output with metadata.
type listMarketsResponse struct {
	Markets []domain.UnifiedMarket `json:"markets"`
	Count   int                    `json:"count"`
}

// ListMarkets returns open markets in the unified shape, optionally filtered
// to a single platform.
// GET /api/markets?platform=polymarket&limit=100
func (h *MarketHandler) ListMarkets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 100
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > 500 {
		limit = 500
	}

	sources := h.sources
	if platform := q.Get("platform"); platform != "" {
		sources = nil
		for _, src := range h.sources {
			if string(src.Platform()) == platform {
				sources = append(sources, src)
			}
		}
		if len(sources) == 0 {
			writeError(w, http.StatusBadRequest, "unknown platform: "+platform)
			return
		}
	}

	perSource := make([][]domain.UnifiedMarket, len(sources))
	g, ctx := errgroup.WithContext(r.Context())
	for i, src := range sources {
		g.Go(func() error {
			markets, err := src.ListOpenMarkets(ctx, limit)
			if err != nil {
				return &domain.SourceError{Platform: src.Platform(), Err: err}
			}
			perSource[i] = markets
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list markets failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "upstream market data unavailable")
		return
	}

	markets := []domain.UnifiedMarket{}
	for _, batch := range perSource {
		markets = append(markets, batch...)
	}

	writeJSON(w, http.StatusOK, listMarketsResponse{
		Markets: markets,
		Count:   len(markets),
	})
}
