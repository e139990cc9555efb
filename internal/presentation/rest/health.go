package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger reports backend connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves liveness and readiness probes over HTTP. Backends
// registered for readiness are optional: only configured ones are checked.
type HealthHandler struct {
	service  string
	backends map[string]Pinger
	logger   *slog.Logger
}

// NewHealthHandler creates a health check HTTP handler.
func NewHealthHandler(service string, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		service:  service,
		backends: make(map[string]Pinger),
		logger:   logger,
	}
}

// AddBackend registers a named backend for the readiness probe.
func (h *HealthHandler) AddBackend(name string, p Pinger) {
	h.backends[name] = p
}

// RegisterRoutes attaches health-check routes to the given mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.liveness)
	mux.HandleFunc("GET /readyz", h.readiness)
}

func (h *HealthHandler) liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": h.service,
	})
}

func (h *HealthHandler) readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]string, len(h.backends))
	ready := true
	for name, backend := range h.backends {
		if err := backend.Ping(ctx); err != nil {
			h.logger.Warn("readiness check failed", "backend", name, "error", err)
			checks[name] = "down"
			ready = false
			continue
		}
		checks[name] = "up"
	}

	status := http.StatusOK
	state := "ready"
	if !ready {
		status = http.StatusServiceUnavailable
		state = "degraded"
	}
	writeJSON(w, status, map[string]any{
		"status":  state,
		"service": h.service,
		"checks":  checks,
	})
}
