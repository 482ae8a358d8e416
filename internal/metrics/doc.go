// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered on the default registry at package init through
promauto and exposed by the API server at /metrics:

	curl http://127.0.0.1:8010/metrics

# Available Metrics

API Metrics:
  - api_requests_total: Total API requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
  - api_active_requests: In-flight requests (gauge)
  - api_rate_limit_hits_total: Requests rejected by httprate (counter)

Provider Metrics:
  - provider_requests_total: CTFd/HTB API calls (counter)
    Labels: provider, operation, result
  - provider_request_duration_seconds: CTFd/HTB API latency (histogram)
  - provider_credential_renewals_total: HTB re-logins (counter)
  - credential_cache_lookups_total: persisted token hits and misses (counter)

Pipeline Metrics:
  - challenges_reconciled_total: rows inserted/updated by reconciliation
  - solves_detected_total: unannounced solves found per tick
  - solves_unmapped_total: remote solves with no local challenge
  - announcements_total: announcements sent, skipped (no channel) or failed
  - discord_requests_total: Discord REST calls by operation and status

Scheduler Metrics:
  - scheduler_tick_duration_seconds: tick latency per loop
  - scheduler_target_errors_total: per-competition failures inside ticks
  - scheduler_last_tick_timestamp: last completed tick per loop
  - active_targets: competitions currently tracked

Circuit Breaker Metrics:
  - circuit_breaker_state: 0=closed, 1=half-open, 2=open
  - circuit_breaker_requests_total: Labels: name, result (success, failure, rejected)
  - circuit_breaker_consecutive_failures
  - circuit_breaker_state_transitions_total

WebSocket Metrics:
  - websocket_connections, websocket_messages_sent_total, websocket_errors_total

# Example Alert

	- alert: SolvesNotAnnounced
	  expr: increase(announcements_total{result="failed"}[10m]) > 5
	  for: 5m
*/
package metrics
