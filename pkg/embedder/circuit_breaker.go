package embedder

import (
	"context"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/ragno-ai/ragno/pkg/types"
)

// BreakerSettings tunes the embedding circuit breaker.
type BreakerSettings struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	ReadyToTripRatio float64
}

// CircuitBreakerClient wraps a Client with circuit breaking so a flapping
// embedding service fails fast instead of holding up every query until its
// timeout.
type CircuitBreakerClient struct {
	inner Client
	cb    *gobreaker.CircuitBreaker
}

// NewCircuitBreakerClient wraps inner with a circuit breaker named name.
func NewCircuitBreakerClient(inner Client, settings BreakerSettings, name string, logger *slog.Logger) *CircuitBreakerClient {
	if logger == nil {
		logger = slog.Default()
	}
	if settings.ReadyToTripRatio <= 0 {
		settings.ReadyToTripRatio = 0.6
	}

	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= settings.ReadyToTripRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("embedding circuit breaker state change",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	}

	return &CircuitBreakerClient{inner: inner, cb: gobreaker.NewCircuitBreaker(st)}
}

func (c *CircuitBreakerClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	result, err := c.cb.Execute(func() (interface{}, error) {
		return c.inner.Embed(ctx, texts)
	})
	if err != nil {
		// An open breaker reads the same as an unreachable service to
		// the orchestrator: a degraded method, not a fatal error.
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, types.NewConnectivityError("embedding service", err)
		}
		return nil, err
	}
	return result.([][]float32), nil
}

func (c *CircuitBreakerClient) Dimensions() int { return c.inner.Dimensions() }

func (c *CircuitBreakerClient) Close() error { return c.inner.Close() }
