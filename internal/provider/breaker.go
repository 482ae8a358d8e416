// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/ctftracker/internal/logging"
	"github.com/tomtom215/ctftracker/internal/metrics"
	"github.com/tomtom215/ctftracker/internal/models"
)

// Breaker wraps a Provider with a circuit breaker so that a platform that is
// down or slow is skipped quickly instead of stalling every tick.
//
// Circuit breaker configuration:
// - Max 3 concurrent requests in half-open state
// - 1 minute measurement window
// - 2 minute timeout before attempting recovery
// - Opens after 60% failure rate with minimum 10 requests
type Breaker struct {
	inner Provider
	cb    *gobreaker.CircuitBreaker[interface{}]
	name  string
}

var _ Provider = (*Breaker)(nil)

// NewBreaker wraps p. name labels the breaker in logs and metrics,
// e.g. "ctfd-DUCTF" or "htb-api".
func NewBreaker(p Provider, name string) *Breaker {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6
			if shouldTrip {
				logging.Warn().Str("breaker", name).Uint32("failures", counts.TotalFailures).Float64("failure_rate", failureRatio*100).Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	return &Breaker{inner: p, cb: cb, name: name}
}

// Name returns the breaker label.
func (b *Breaker) Name() string {
	return b.name
}

// State returns the current breaker state.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

// Unwrap returns the wrapped provider.
func (b *Breaker) Unwrap() Provider {
	return b.inner
}

// execute runs one provider call through the breaker and records
// provider and breaker metrics for it.
func (b *Breaker) execute(operation string, fn func() (interface{}, error)) (interface{}, error) {
	start := time.Now()
	result, err := b.cb.Execute(fn)
	metrics.RecordProviderRequest(string(b.inner.Kind()), operation, time.Since(start), err)

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
			logging.Warn().Str("breaker", b.name).Str("operation", operation).Err(err).Msg("[CIRCUIT BREAKER] Request rejected")
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
			counts := b.cb.Counts()
			metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(float64(counts.ConsecutiveFailures))
		}
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(0)
	return result, nil
}

// castResult type-asserts a breaker result.
func castResult[T any](result interface{}, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

// Kind returns the wrapped provider's kind.
func (b *Breaker) Kind() Kind {
	return b.inner.Kind()
}

// FetchChallenges lists remote challenges with circuit breaker protection
func (b *Breaker) FetchChallenges(ctx context.Context) ([]models.RemoteChallenge, error) {
	return castResult[[]models.RemoteChallenge](b.execute("challenges", func() (interface{}, error) {
		return b.inner.FetchChallenges(ctx)
	}))
}

// FetchTeamSolves lists team solves with circuit breaker protection
func (b *Breaker) FetchTeamSolves(ctx context.Context) ([]models.RemoteSolve, error) {
	return castResult[[]models.RemoteSolve](b.execute("solves", func() (interface{}, error) {
		return b.inner.FetchTeamSolves(ctx)
	}))
}

// ResolveUser resolves a user profile with circuit breaker protection
func (b *Breaker) ResolveUser(ctx context.Context, id int64) (*models.RemoteUser, error) {
	return castResult[*models.RemoteUser](b.execute("user", func() (interface{}, error) {
		return b.inner.ResolveUser(ctx, id)
	}))
}

// TeamStats fetches team standing with circuit breaker protection
func (b *Breaker) TeamStats(ctx context.Context) (*models.TeamStats, error) {
	return castResult[*models.TeamStats](b.execute("team_stats", func() (interface{}, error) {
		return b.inner.TeamStats(ctx)
	}))
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
