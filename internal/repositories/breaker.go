package repositories

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// BreakerSettings configures the circuit breaker around database calls.
type BreakerSettings struct {
	Name             string
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

func newBreaker(s BreakerSettings, log *zap.Logger) *gobreaker.CircuitBreaker[struct{}] {
	if s.Name == "" {
		s.Name = "mongo"
	}
	if s.FailureThreshold == 0 {
		s.FailureThreshold = 5
	}
	breakerState.WithLabelValues(s.Name).Set(float64(gobreaker.StateClosed))
	return gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:         s.Name,
		MaxRequests:  1,
		Timeout:      s.OpenTimeout,
		IsSuccessful: countsAsSuccess,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			breakerState.WithLabelValues(name).Set(float64(to))
			if log != nil {
				log.Warn("circuit breaker state changed",
					zap.String("name", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()),
				)
			}
		},
	})
}

// countsAsSuccess keeps client cancellations out of the failure count; they say
// nothing about the database. Query timeouts still count.
func countsAsSuccess(err error) bool {
	return err == nil || errors.Is(err, context.Canceled)
}
