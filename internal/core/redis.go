// AngelaMos | 2026
// redis.go

package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/taskboard/internal/config"
)

const pingTimeout = 5 * time.Second

// Redis is shared by rate limiting, the access-token blacklist, password
// reset tokens and real-time pub/sub.
type Redis struct {
	Client *redis.Client
}

func NewRedis(
	ctx context.Context,
	cfg config.RedisConfig,
	clientName string,
) (*Redis, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	applyRedisPool(opts, cfg)
	opts.ClientName = redisClientName(clientName)

	client := redis.NewClient(opts)
	r := &Redis{Client: client}

	if err := r.Ping(ctx); err != nil {
		_ = client.Close() //nolint:errcheck // cleanup on connection failure
		return nil, err
	}

	return r, nil
}

func applyRedisPool(opts *redis.Options, cfg config.RedisConfig) {
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	opts.MinIdleConns = cfg.MinIdleConns
	opts.ConnMaxIdleTime = 5 * time.Minute

	opts.DialTimeout = cfg.DialTimeout
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = pingTimeout
	}
	opts.PoolTimeout = cfg.PoolTimeout
	if opts.PoolTimeout <= 0 {
		opts.PoolTimeout = 30 * time.Second
	}
}

// redisClientName makes name acceptable to CLIENT SETNAME, which rejects
// spaces.
func redisClientName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}

func (r *Redis) Close() error {
	if r.Client == nil {
		return nil
	}
	return r.Client.Close()
}

func (r *Redis) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := r.Client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

func (r *Redis) PoolStats() *redis.PoolStats {
	return r.Client.PoolStats()
}
