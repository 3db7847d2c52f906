// AngelaMos | 2026
// breaker.go

package core

import (
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

const breakerTripFailures = 5

// NewBreaker returns a circuit breaker that opens after consecutive
// failures and half-opens once timeout has elapsed.
func NewBreaker(
	name string,
	timeout time.Duration,
	logger *slog.Logger,
) *gobreaker.CircuitBreaker {
	if logger == nil {
		logger = slog.Default()
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerTripFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})
}
