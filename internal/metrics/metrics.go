// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Number of API requests currently being processed",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
		[]string{"endpoint"},
	)

	// Provider Metrics
	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_requests_total",
			Help: "Total number of scoring platform API calls",
		},
		[]string{"provider", "operation", "result"}, // result: "success", "error"
	)

	ProviderRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "provider_request_duration_seconds",
			Help:    "Duration of scoring platform API calls in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"provider", "operation"},
	)

	CredentialRenewals = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_credential_renewals_total",
			Help: "Total number of provider re-authentications",
		},
		[]string{"provider", "result"},
	)

	CredentialCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credential_cache_lookups_total",
			Help: "Total number of persisted credential lookups",
		},
		[]string{"result"}, // "hit", "miss"
	)

	UserCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_user_cache_lookups_total",
			Help: "Total number of solver name lookups served from or missing the in-memory cache",
		},
		[]string{"provider", "result"}, // result: "hit", "miss"
	)

	// Reconciliation Metrics
	ChallengesReconciled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "challenges_reconciled_total",
			Help: "Total number of challenge rows inserted or updated by reconciliation",
		},
		[]string{"provider", "action"}, // action: "inserted", "updated"
	)

	SolvesDetected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "solves_detected_total",
			Help: "Total number of unannounced solves found",
		},
		[]string{"provider"},
	)

	SolvesUnmapped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "solves_unmapped_total",
			Help: "Total number of remote solves that matched no local challenge",
		},
		[]string{"provider"},
	)

	// Announcement Metrics
	Announcements = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "announcements_total",
			Help: "Total number of solve announcements",
		},
		[]string{"provider", "result"}, // result: "sent", "skipped", "failed"
	)

	DiscordRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discord_requests_total",
			Help: "Total number of Discord REST calls",
		},
		[]string{"operation", "status"},
	)

	// Scheduler Metrics
	SchedulerTickDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scheduler_tick_duration_seconds",
			Help:    "Duration of scheduler ticks in seconds",
			Buckets: []float64{.1, .5, 1, 5, 10, 30, 60},
		},
		[]string{"loop"},
	)

	SchedulerTargetErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_target_errors_total",
			Help: "Total number of per-target failures inside scheduler ticks",
		},
		[]string{"loop"},
	)

	SchedulerLastTick = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "scheduler_last_tick_timestamp",
			Help: "Unix timestamp of the last completed tick",
		},
		[]string{"loop"},
	)

	ActiveTargets = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_targets",
			Help: "Number of competitions currently tracked",
		},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordAPIRequest records API request metrics
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the active request gauge
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordProviderRequest records one scoring platform API call
func RecordProviderRequest(provider, operation string, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	ProviderRequests.WithLabelValues(provider, operation, result).Inc()
	ProviderRequestDuration.WithLabelValues(provider, operation).Observe(duration.Seconds())
}

// RecordReconcile records the outcome of one ReconcileChallenges run
func RecordReconcile(provider string, inserted, updated int) {
	ChallengesReconciled.WithLabelValues(provider, "inserted").Add(float64(inserted))
	ChallengesReconciled.WithLabelValues(provider, "updated").Add(float64(updated))
}

// RecordSchedulerTick records a finished tick and how many targets failed in it
func RecordSchedulerTick(loop string, duration time.Duration, failedTargets int) {
	SchedulerTickDuration.WithLabelValues(loop).Observe(duration.Seconds())
	if failedTargets > 0 {
		SchedulerTargetErrors.WithLabelValues(loop).Add(float64(failedTargets))
	}
	SchedulerLastTick.WithLabelValues(loop).Set(float64(time.Now().Unix()))
}
