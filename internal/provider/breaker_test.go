// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/ctftracker/internal/metrics"
	"github.com/tomtom215/ctftracker/internal/models"
)

// stubProvider is a minimal Provider for breaker and registry tests.
type stubProvider struct {
	kind  Kind
	err   error
	calls int
}

func (s *stubProvider) Kind() Kind { return s.kind }

func (s *stubProvider) FetchChallenges(context.Context) ([]models.RemoteChallenge, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return []models.RemoteChallenge{{Name: "Reverse a String", Category: "Programming", Points: 100}}, nil
}

func (s *stubProvider) FetchTeamSolves(context.Context) ([]models.RemoteSolve, error) {
	s.calls++
	return nil, s.err
}

func (s *stubProvider) ResolveUser(_ context.Context, id int64) (*models.RemoteUser, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &models.RemoteUser{ID: id, Name: "Craig"}, nil
}

func (s *stubProvider) TeamStats(context.Context) (*models.TeamStats, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &models.TeamStats{Place: "96th", Score: 1200}, nil
}

func TestBreakerPassesThroughResults(t *testing.T) {
	stub := &stubProvider{kind: KindCTFd}
	b := NewBreaker(stub, "ctfd-passthrough")

	challenges, err := b.FetchChallenges(context.Background())
	checkNoError(t, err)
	checkIntEqual(t, "challenges", len(challenges), 1)
	checkStringEqual(t, "name", challenges[0].Name, "Reverse a String")

	user, err := b.ResolveUser(context.Background(), 52)
	checkNoError(t, err)
	checkStringEqual(t, "user", user.Name, "Craig")

	stats, err := b.TeamStats(context.Background())
	checkNoError(t, err)
	checkStringEqual(t, "place", stats.Place, "96th")

	solves, err := b.FetchTeamSolves(context.Background())
	checkNoError(t, err)
	checkIntEqual(t, "solves", len(solves), 0)

	checkTrue(t, "kind forwarded", b.Kind() == KindCTFd)
	checkTrue(t, "unwrap", b.Unwrap() == Provider(stub))
	if v := testutil.ToFloat64(metrics.CircuitBreakerRequests.WithLabelValues("ctfd-passthrough", "success")); v != 4 {
		t.Errorf("success requests = %v, want 4", v)
	}
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	stub := &stubProvider{kind: KindHTB, err: errors.New("connection refused")}
	b := NewBreaker(stub, "htb-opens")

	// 10 requests at 100% failure reaches the trip threshold.
	for i := 0; i < 10; i++ {
		_, err := b.FetchChallenges(context.Background())
		if err == nil {
			t.Fatalf("request %d: expected error", i)
		}
	}
	if b.State() != gobreaker.StateOpen {
		t.Fatalf("expected open breaker, got %v", b.State())
	}

	_, err := b.TeamStats(context.Background())
	checkErrorIs(t, err, gobreaker.ErrOpenState)
	checkIntEqual(t, "inner calls", stub.calls, 10)

	if v := testutil.ToFloat64(metrics.CircuitBreakerState.WithLabelValues("htb-opens")); v != 2 {
		t.Errorf("state gauge = %v, want 2", v)
	}
	if v := testutil.ToFloat64(metrics.CircuitBreakerRequests.WithLabelValues("htb-opens", "rejected")); v != 1 {
		t.Errorf("rejected = %v, want 1", v)
	}
}

func TestBreakerStaysClosedBelowMinimumRequests(t *testing.T) {
	stub := &stubProvider{kind: KindCTFd, err: errors.New("timeout")}
	b := NewBreaker(stub, "ctfd-below-min")

	for i := 0; i < 9; i++ {
		_, _ = b.TeamStats(context.Background())
	}
	if b.State() != gobreaker.StateClosed {
		t.Errorf("expected closed breaker, got %v", b.State())
	}
	if v := testutil.ToFloat64(metrics.CircuitBreakerConsecutiveFailures.WithLabelValues("ctfd-below-min")); v != 9 {
		t.Errorf("consecutive failures = %v, want 9", v)
	}
}

func TestCastResult(t *testing.T) {
	t.Parallel()

	if _, err := castResult[*models.TeamStats]("wrong", nil); err == nil {
		t.Error("expected type mismatch error")
	}
	got, err := castResult[[]models.RemoteSolve]([]models.RemoteSolve(nil), nil)
	checkNoError(t, err)
	checkIntEqual(t, "nil slice len", len(got), 0)
}

func TestStateConversions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state gobreaker.State
		f     float64
		s     string
	}{
		{gobreaker.StateClosed, 0, "closed"},
		{gobreaker.StateHalfOpen, 1, "half-open"},
		{gobreaker.StateOpen, 2, "open"},
	}
	for _, tt := range tests {
		if got := stateToFloat(tt.state); got != tt.f {
			t.Errorf("stateToFloat(%v) = %v, want %v", tt.state, got, tt.f)
		}
		checkStringEqual(t, "state string", stateToString(tt.state), tt.s)
	}
}
