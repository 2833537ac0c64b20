package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// checkTimeout bounds each dependency probe so a hung backend cannot stall
// the health endpoint.
const checkTimeout = 2 * time.Second

// Check probes one backing dependency.
type Check func(ctx context.Context) error

// HealthHandler serves the health-check endpoint, reporting liveness plus the
// status of each registered dependency.
type HealthHandler struct {
	logger *slog.Logger
	checks map[string]Check
}

// NewHealthHandler creates a HealthHandler with the provided logger.
func NewHealthHandler(logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		logger: logger,
		checks: make(map[string]Check),
	}
}

// WithCheck registers a named dependency probe and returns the handler for
// chaining.
func (h *HealthHandler) WithCheck(name string, check Check) *HealthHandler {
	h.checks[name] = check
	return h
}

// HealthCheck responds with the overall status and a per-dependency breakdown.
// Any failing dependency degrades the response to 503.
// GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	httpStatus := http.StatusOK
	deps := make(map[string]string, len(h.checks))

	for name, check := range h.checks {
		ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
		err := check(ctx)
		cancel()

		if err != nil {
			h.logger.WarnContext(r.Context(), "handler: health check failed",
				slog.String("dependency", name),
				slog.String("error", err.Error()),
			)
			deps[name] = "unavailable"
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	body := map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if len(deps) > 0 {
		body["dependencies"] = deps
	}
	writeJSON(w, httpStatus, body)
}
