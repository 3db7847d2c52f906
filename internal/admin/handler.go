// AngelaMos | 2026
// handler.go

package admin

import (
	"context"
	"database/sql"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/carterperez-dev/taskboard/internal/core"
	"github.com/carterperez-dev/taskboard/internal/realtime"
	"github.com/carterperez-dev/taskboard/internal/report"
)

const probeTimeout = 3 * time.Second

type OverviewProvider interface {
	SystemOverview(ctx context.Context) (*report.SystemOverview, error)
}

// HandlerConfig wires the process-level sources the admin dashboard reads.
// Any of them may be nil; the matching section is then omitted or reported
// unhealthy.
type HandlerConfig struct {
	DBStats    func() sql.DBStats
	RedisStats func() *redis.PoolStats
	DBPing     func(ctx context.Context) error
	RedisPing  func(ctx context.Context) error
	HubStats   func() realtime.HubStats
	Reports    OverviewProvider
}

type Handler struct {
	cfg       HandlerConfig
	startedAt time.Time
}

func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{cfg: cfg, startedAt: time.Now()}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(authenticator, adminOnly)

		r.Get("/stats", h.SystemStats)
		r.Get("/reports/overview", h.Overview)
	})
}

// SystemStats reports pool usage and reachability of Postgres and Redis,
// the local realtime hub and the Go runtime in one document.
func (h *Handler) SystemStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	resp := SystemStatsResponse{
		Database: DatabaseStatus{Stats: dbPoolStats(h.cfg.DBStats)},
		Redis:    RedisStatus{Stats: redisPoolStats(h.cfg.RedisStats)},
		Realtime: hubStats(h.cfg.HubStats),
		Runtime:  runtimeStats(h.startedAt),
	}

	var g errgroup.Group
	g.Go(func() error {
		resp.Database.Healthy = probe(ctx, h.cfg.DBPing)
		return nil
	})
	g.Go(func() error {
		resp.Redis.Healthy = probe(ctx, h.cfg.RedisPing)
		return nil
	})
	_ = g.Wait() //nolint:errcheck // probes never fail the group

	core.OK(w, resp)
}

func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	if h.cfg.Reports == nil {
		core.NotFound(w, "overview")
		return
	}

	o, err := h.cfg.Reports.SystemOverview(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}
	core.OK(w, report.ToOverviewResponse(o))
}

// probe reports false for a missing or failing ping.
func probe(ctx context.Context, ping func(context.Context) error) bool {
	return ping != nil && ping(ctx) == nil
}

func runtimeStats(startedAt time.Time) RuntimeStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return RuntimeStats{
		GoVersion:    runtime.Version(),
		Uptime:       time.Since(startedAt).Round(time.Second).String(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     mem.Alloc,
		MemSys:       mem.Sys,
		NumGC:        mem.NumGC,
	}
}

func hubStats(src func() realtime.HubStats) *RealtimeStats {
	if src == nil {
		return nil
	}
	s := src()
	return &RealtimeStats{Clients: s.Clients, Groups: s.Groups, Dropped: s.Dropped}
}

func dbPoolStats(src func() sql.DBStats) *DBPoolStats {
	if src == nil {
		return nil
	}
	s := src()
	return &DBPoolStats{
		MaxOpenConnections: s.MaxOpenConnections,
		OpenConnections:    s.OpenConnections,
		InUse:              s.InUse,
		Idle:               s.Idle,
		WaitCount:          s.WaitCount,
		WaitDuration:       s.WaitDuration.String(),
		MaxIdleClosed:      s.MaxIdleClosed,
		MaxLifetimeClosed:  s.MaxLifetimeClosed,
	}
}

func redisPoolStats(src func() *redis.PoolStats) *RedisPoolStats {
	if src == nil {
		return nil
	}
	s := src()
	if s == nil {
		return nil
	}
	return &RedisPoolStats{
		Hits:       s.Hits,
		Misses:     s.Misses,
		Timeouts:   s.Timeouts,
		TotalConns: s.TotalConns,
		IdleConns:  s.IdleConns,
		StaleConns: s.StaleConns,
	}
}
