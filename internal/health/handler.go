// AngelaMos | 2026
// handler.go

package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
)

const probeTimeout = 5 * time.Second

const (
	statusOK           = "ok"
	statusDegraded     = "degraded"
	statusNotReady     = "not_ready"
	statusShuttingDown = "shutting_down"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependency is one readiness probe.
type Dependency struct {
	Name   string
	Pinger Pinger
}

// Handler serves the orchestrator probes. Liveness only reflects shutdown;
// readiness also pings every dependency.
type Handler struct {
	deps     []Dependency
	ready    atomic.Bool
	shutdown atomic.Bool
}

func NewHandler(deps ...Dependency) *Handler {
	h := &Handler{deps: deps}
	h.ready.Store(true)
	return h
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.Liveness)
	r.Get("/livez", h.Liveness)
	r.Get("/readyz", h.Readiness)
}

func (h *Handler) SetReady(ready bool)       { h.ready.Store(ready) }
func (h *Handler) SetShutdown(shutdown bool) { h.shutdown.Store(shutdown) }

func (h *Handler) Liveness(w http.ResponseWriter, _ *http.Request) {
	if h.shutdown.Load() {
		writeStatus(w, http.StatusServiceUnavailable, StatusResponse{Status: statusShuttingDown})
		return
	}
	writeStatus(w, http.StatusOK, StatusResponse{Status: statusOK})
}

func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.shutdown.Load() {
		writeStatus(w, http.StatusServiceUnavailable, StatusResponse{Status: statusShuttingDown})
		return
	}
	if !h.ready.Load() {
		writeStatus(w, http.StatusServiceUnavailable, StatusResponse{Status: statusNotReady})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	resp := ReadinessResponse{Status: statusOK, Checks: h.probeAll(ctx)}
	code := http.StatusOK
	for _, c := range resp.Checks {
		if !c.Healthy {
			resp.Status, code = statusDegraded, http.StatusServiceUnavailable
			break
		}
	}

	writeStatus(w, code, resp)
}

// probeAll pings every dependency concurrently. Results keep the
// registration order.
func (h *Handler) probeAll(ctx context.Context) []HealthCheck {
	checks := make([]HealthCheck, len(h.deps))

	var g errgroup.Group
	for i, dep := range h.deps {
		g.Go(func() error {
			checks[i] = probe(ctx, dep)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // probes record failures in checks

	return checks
}

func probe(ctx context.Context, dep Dependency) HealthCheck {
	check := HealthCheck{Name: dep.Name}
	if dep.Pinger == nil {
		check.Message = "no checker configured"
		return check
	}

	start := time.Now()
	err := dep.Pinger.Ping(ctx)
	check.Latency = time.Since(start).String()
	check.Healthy = err == nil
	if err != nil {
		check.Message = "ping failed"
	}
	return check
}

func writeStatus(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	//nolint:errcheck // best-effort response
	_ = json.NewEncoder(w).Encode(data)
}

type StatusResponse struct {
	Status string `json:"status"`
}

type ReadinessResponse struct {
	Status string        `json:"status"`
	Checks []HealthCheck `json:"checks"`
}

type HealthCheck struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Latency string `json:"latency,omitempty"`
	Message string `json:"message,omitempty"`
}
