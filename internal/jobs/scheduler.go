// AngelaMos | 2026
// scheduler.go

package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/carterperez-dev/taskboard/internal/core"
)

const defaultRunTimeout = 5 * time.Minute

// Job is a periodic maintenance task. Run reports how many rows it touched.
type Job struct {
	Name     string
	Interval time.Duration
	Timeout  time.Duration
	Run      func(ctx context.Context) (int64, error)
}

type Scheduler struct {
	jobs       []Job
	runOnStart bool
	logger     *slog.Logger
}

type Option func(*Scheduler)

// WithRunOnStart executes every job once before its first tick.
func WithRunOnStart() Option {
	return func(s *Scheduler) {
		s.runOnStart = true
	}
}

func NewScheduler(logger *slog.Logger, jobs []Job, opts ...Option) *Scheduler {
	s := &Scheduler{
		jobs:   jobs,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start runs every job on its own ticker and blocks until ctx is done.
// A failing run is logged and retried on the next tick.
func (s *Scheduler) Start(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, job := range s.jobs {
		if job.Interval <= 0 {
			return fmt.Errorf("job %s: interval must be positive", job.Name)
		}
	}

	for _, job := range s.jobs {
		g.Go(func() error {
			s.loop(ctx, job)
			return nil
		})
	}

	return g.Wait()
}

func (s *Scheduler) loop(ctx context.Context, job Job) {
	if s.runOnStart {
		s.execute(ctx, job)
	}

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.execute(ctx, job)
		}
	}
}

// RunOnce executes the named job immediately.
func (s *Scheduler) RunOnce(ctx context.Context, name string) (int64, error) {
	for _, job := range s.jobs {
		if job.Name == name {
			return s.execute(ctx, job)
		}
	}
	return 0, fmt.Errorf("unknown job %q", name)
}

func (s *Scheduler) execute(ctx context.Context, job Job) (int64, error) {
	timeout := job.Timeout
	if timeout <= 0 {
		timeout = defaultRunTimeout
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	runCtx, span := core.StartSpan(runCtx, "job."+job.Name)
	defer span.End()

	start := time.Now()
	n, err := job.Run(runCtx)
	duration := time.Since(start)
	span.SetAttributes(attribute.Int64("job.affected", n))

	if err != nil {
		core.SetSpanError(runCtx, err)
		s.logger.Error("job failed",
			"job", job.Name,
			"duration", duration,
			"error", err,
		)
		return 0, err
	}

	s.logger.Info("job completed",
		"job", job.Name,
		"affected", n,
		"duration", duration,
	)
	return n, nil
}
