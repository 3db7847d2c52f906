// AngelaMos | 2026
// redis_test.go

package core

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/taskboard/internal/config"
)

func TestApplyRedisPool(t *testing.T) {
	opts := &redis.Options{PoolSize: 99}
	applyRedisPool(opts, config.RedisConfig{MinIdleConns: 2})

	assert.Equal(t, 99, opts.PoolSize)
	assert.Equal(t, 2, opts.MinIdleConns)
	assert.Equal(t, pingTimeout, opts.DialTimeout)
	assert.Equal(t, 30*time.Second, opts.PoolTimeout)

	applyRedisPool(opts, config.RedisConfig{
		PoolSize:    7,
		DialTimeout: time.Second,
		PoolTimeout: 2 * time.Second,
	})
	assert.Equal(t, 7, opts.PoolSize)
	assert.Equal(t, time.Second, opts.DialTimeout)
	assert.Equal(t, 2*time.Second, opts.PoolTimeout)
}

func TestRedisClientName(t *testing.T) {
	assert.Equal(t, "taskboard", redisClientName("Taskboard"))
	assert.Equal(t, "board-test-api", redisClientName("  Board Test\tAPI "))
}

func TestNewRedis_Errors(t *testing.T) {
	_, err := NewRedis(context.Background(), config.RedisConfig{URL: "not a url"}, "test")
	assert.ErrorContains(t, err, "parse redis url")

	_, err = NewRedis(context.Background(), config.RedisConfig{
		URL:         "redis://127.0.0.1:1/0",
		DialTimeout: 50 * time.Millisecond,
	}, "test")
	require.Error(t, err)
	assert.ErrorContains(t, err, "ping redis")
}
