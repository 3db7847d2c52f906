// AngelaMos | 2026
// broker.go

package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"

	"github.com/carterperez-dev/taskboard/internal/core"
)

const DefaultChannelPrefix = "realtime:project:"

// Broker publishes events through Redis so every API instance can deliver
// them to its own clients. Without Redis, or while the breaker is open,
// events reach local clients only.
type Broker struct {
	hub     *Hub
	rdb     *redis.Client
	prefix  string
	breaker *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

func NewBroker(
	hub *Hub,
	rdb *redis.Client,
	prefix string,
	breakerTimeout time.Duration,
	logger *slog.Logger,
) *Broker {
	if prefix == "" {
		prefix = DefaultChannelPrefix
	}

	return &Broker{
		hub:     hub,
		rdb:     rdb,
		prefix:  prefix,
		breaker: core.NewBreaker("realtime-publish", breakerTimeout, logger),
		logger:  logger,
	}
}

func (b *Broker) Channel(projectID string) string {
	return b.prefix + projectID
}

func (b *Broker) Publish(ctx context.Context, ev Event) {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		b.logger.ErrorContext(ctx, "encode realtime event", "error", err, "type", ev.Type)
		return
	}

	if b.rdb == nil {
		b.hub.Broadcast(ev.ProjectID, payload)
		return
	}

	_, err = b.breaker.Execute(func() (any, error) {
		return nil, b.rdb.Publish(ctx, b.Channel(ev.ProjectID), payload).Err()
	})
	if err != nil {
		if !errors.Is(err, gobreaker.ErrOpenState) && !errors.Is(err, gobreaker.ErrTooManyRequests) {
			b.logger.WarnContext(ctx, "realtime publish failed, delivering locally",
				"error", err,
				"project_id", ev.ProjectID,
			)
		}
		b.hub.Broadcast(ev.ProjectID, payload)
	}
}

// Run relays every project channel into the local hub until ctx ends.
func (b *Broker) Run(ctx context.Context) error {
	if b.rdb == nil {
		<-ctx.Done()
		return nil
	}

	sub := b.rdb.PSubscribe(ctx, b.prefix+"*")
	defer sub.Close() //nolint:errcheck // best-effort unsubscribe

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe realtime channels: %w", err)
	}

	b.logger.Info("realtime subscriber started", "pattern", b.prefix+"*")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			projectID := strings.TrimPrefix(msg.Channel, b.prefix)
			b.hub.Broadcast(projectID, []byte(msg.Payload))
		}
	}
}

var _ Publisher = (*Broker)(nil)
