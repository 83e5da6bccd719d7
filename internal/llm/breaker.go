package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// ErrUnavailable is returned while the circuit breaker is rejecting calls.
var ErrUnavailable = errors.New("generation service temporarily unavailable")

// BreakerConfig holds configuration for the circuit breaker around a Client.
type BreakerConfig struct {
	Name                string
	MaxRequests         uint32
	Interval            time.Duration
	Timeout             time.Duration
	ConsecutiveFailures uint32
}

// DefaultBreakerConfig returns the breaker settings used by the CLI and server.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:                "gemini",
		MaxRequests:         1,
		Interval:            60 * time.Second,
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 3,
	}
}

// BreakerClient wraps a Client so repeated upstream failures fail fast.
type BreakerClient struct {
	next Client
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerClient wraps next with a circuit breaker.
func NewBreakerClient(next Client, cfg BreakerConfig, logger *zap.Logger) *BreakerClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	threshold := cfg.ConsecutiveFailures
	if threshold == 0 {
		threshold = 1
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		// A caller giving up is not an upstream failure.
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, context.Canceled) ||
				errors.Is(err, ErrEmptyPrompt)
		},
	})

	return &BreakerClient{next: next, cb: cb}
}

// Generate forwards to the wrapped client unless the breaker is open.
func (b *BreakerClient) Generate(ctx context.Context, prompt string, opts GenerateOptions) (*Result, error) {
	out, err := b.cb.Execute(func() (any, error) {
		return b.next.Generate(ctx, prompt, opts)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil, err
	}
	return out.(*Result), nil
}

// State reports the breaker state (closed, half-open, open).
func (b *BreakerClient) State() string {
	return b.cb.State().String()
}

// Close closes the wrapped client.
func (b *BreakerClient) Close() error {
	return b.next.Close()
}
