// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/ctftracker/internal/models"
)

// HealthLive handles liveness probe requests.
// Returns 200 OK if the process is alive, regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady handles readiness probe requests.
// Returns 200 OK only when the store answers, 503 otherwise.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	dbConnected := h.db != nil && h.db.Ping(r.Context()) == nil

	activeTargets := 0
	if h.targets != nil {
		activeTargets = h.targets.Len()
	}

	status := models.HealthStatus{
		Status:            "healthy",
		DatabaseConnected: dbConnected,
		ActiveTargets:     activeTargets,
		Uptime:            time.Since(h.startTime).Seconds(),
	}

	code := http.StatusOK
	if !dbConnected {
		status.Status = "degraded"
		code = http.StatusServiceUnavailable
	}
	NewResponseWriter(w, r).SuccessWithMeta(code, status, nil)
}
