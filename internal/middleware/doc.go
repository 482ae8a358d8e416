// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

/*
Package middleware provides HTTP middleware shared by the read-only API.

Key Components:

  - Request ID: UUID-based request tracking, mirrored into the logging context
  - Prometheus Metrics: request count, latency and in-flight gauge per route

Both are chi-compatible (func(http.Handler) http.Handler):

	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)

Metrics are labelled with the chi route pattern (for example
"/api/v1/{id}/challenges") rather than the raw path, so competition ids do
not create one series each.
*/
package middleware
