// Package resilience wraps backend calls in a circuit breaker per backend
// kind, so a degraded document store or search index fails fast instead
// of stalling every reader that offloads to it.
package resilience

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerSet holds one gobreaker.CircuitBreaker per named backend
// (document store, search index, archive store, file store), each
// independently trippable.
type BreakerSet struct {
	breakers map[string]*gobreaker.CircuitBreaker
	logger   *zap.Logger
}

// NewBreakerSet builds a breaker for each name given, with the shared
// settings: trip after 5 consecutive failures, half-open after 10s.
func NewBreakerSet(logger *zap.Logger, names ...string) *BreakerSet {
	if logger == nil {
		logger = zap.NewNop()
	}
	set := &BreakerSet{breakers: make(map[string]*gobreaker.CircuitBreaker, len(names)), logger: logger}
	for _, name := range names {
		name := name
		set.breakers[name] = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     10 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			OnStateChange: func(_ string, from, to gobreaker.State) {
				logger.Warn("circuit breaker state change", zap.String("backend", name), zap.String("from", from.String()), zap.String("to", to.String()))
			},
		})
	}
	return set
}

// Do runs fn through the named breaker, returning gobreaker.ErrOpenState
// if the backend is currently tripped.
func (s *BreakerSet) Do(ctx context.Context, name string, fn func() (interface{}, error)) (interface{}, error) {
	breaker, ok := s.breakers[name]
	if !ok {
		return fn()
	}
	return breaker.Execute(fn)
}
