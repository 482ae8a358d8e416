// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

/*
Package api provides the read-only HTTP REST API.

Routes (all GET):

	/api/v1/active                    active competitions with latest score
	/api/v1/{id}/stats                score history, oldest first
	/api/v1/{id}/challenges?search=   challenges with status and priority
	/api/v1/htb/challenges?search=    HackTheBox challenges
	/api/v1/htb/rank                  latest HackTheBox team rank
	/api/v1/health/live               liveness probe
	/api/v1/health/ready              readiness probe (503 when the store is down)
	/api/v1/ws                        live solve feed (WebSocket)
	/metrics                          Prometheus metrics

Responses use the APIResponse envelope:

	{"success": true, "data": [...], "meta": {"timestamp": "...", "count": 3}}

Errors carry a machine-readable code:

	{"success": false, "error": {"code": "NOT_FOUND", "message": "..."}}

A non-numeric {id} answers 400 and an unknown one 404.

Middleware:

  - Request ID and correlation ID (internal/middleware)
  - CORS restricted to the configured origins (go-chi/cors)
  - Per-IP rate limiting (go-chi/httprate); health has a separate, looser limit
  - Security headers
  - Prometheus request metrics labelled by route pattern

Status and priority are derived in internal/models, not stored.
*/
package api
