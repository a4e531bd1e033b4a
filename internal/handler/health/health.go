package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// Checker verifies that an infrastructure dependency is reachable.
type Checker interface {
	Check(ctx context.Context) error
}

// CheckerFunc adapts a plain function to Checker.
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) Check(ctx context.Context) error { return f(ctx) }

// Gauge reports a point-in-time count, e.g. active game sessions.
type Gauge func() int

type Handler struct {
	checks  map[string]Checker
	gauges  map[string]Gauge
	timeout time.Duration
	logger  *slog.Logger
}

func NewHandler(logger *slog.Logger, checks map[string]Checker, gauges map[string]Gauge) *Handler {
	return &Handler{
		checks:  checks,
		gauges:  gauges,
		timeout: 3 * time.Second,
		logger:  logger,
	}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.check)
	return r
}

type result struct {
	Status string `json:"status"`
}

// Response is the body of the health endpoint.
type Response struct {
	Status string            `json:"status"`
	Checks map[string]result `json:"checks"`
	Gauges map[string]int    `json:"gauges,omitempty"`
}

func (h *Handler) check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	resp := Response{
		Status: "ok",
		Checks: make(map[string]result, len(h.checks)),
	}
	status := http.StatusOK

	for name, c := range h.checks {
		if err := c.Check(ctx); err != nil {
			h.logger.Error("health check failed", "name", name, "error", err)
			resp.Checks[name] = result{Status: "error"}
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = result{Status: "ok"}
	}

	if len(h.gauges) > 0 {
		resp.Gauges = make(map[string]int, len(h.gauges))
		for name, g := range h.gauges {
			resp.Gauges[name] = g()
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
