// AngelaMos | 2026
// background.go

package server

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Background runs long-lived workers that share one cancellation. Stop
// returns only after every worker has exited, so the resources they use
// can be closed afterwards.
type Background struct {
	ctx    context.Context
	cancel context.CancelFunc
	group  errgroup.Group
	logger *slog.Logger
}

func NewBackground(parent context.Context, logger *slog.Logger) *Background {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(parent)
	return &Background{ctx: ctx, cancel: cancel, logger: logger}
}

// Go starts fn. A failing worker is logged and does not stop the others.
func (b *Background) Go(name string, fn func(ctx context.Context) error) {
	b.group.Go(func() error {
		if err := fn(b.ctx); err != nil {
			b.logger.Error("background worker stopped", "worker", name, "error", err)
		}
		return nil
	})
}

// Stop cancels every worker and waits for them until ctx expires.
func (b *Background) Stop(ctx context.Context) error {
	b.cancel()

	done := make(chan struct{})
	go func() {
		_ = b.group.Wait() //nolint:errcheck // workers log their own errors
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
