// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/ctftracker/internal/database"
	"github.com/tomtom215/ctftracker/internal/models"
	ws "github.com/tomtom215/ctftracker/internal/websocket"
)

// DBInterface is the read-only slice of the store the API serves from.
type DBInterface interface {
	Ping(ctx context.Context) error
	ListActiveCompetitions(ctx context.Context) ([]models.Competition, error)
	GetCompetition(ctx context.Context, id int64) (*models.Competition, error)
	LatestScore(ctx context.Context, competitionID int64) (*models.ScoreEntry, error)
	ScoreHistory(ctx context.Context, competitionID int64) ([]models.ScoreEntry, error)
	ListChallenges(ctx context.Context, competitionID int64) ([]models.Challenge, error)
	SearchChallenges(ctx context.Context, competitionID int64, term string) ([]models.Challenge, error)
	ListHTBChallenges(ctx context.Context) ([]models.HTBChallenge, error)
	SearchHTBChallenges(ctx context.Context, term string) ([]models.HTBChallenge, error)
	LatestRank(ctx context.Context) (*models.RankSnapshot, error)
}

// TargetCounter reports how many competitions the scheduler is polling.
type TargetCounter interface {
	Len() int
}

// maxSearchLength bounds the ?search= term.
const maxSearchLength = 100

// Handler serves every API endpoint.
type Handler struct {
	db          DBInterface
	targets     TargetCounter
	wsHub       *ws.Hub
	corsOrigins []string
	startTime   time.Time
	now         func() time.Time
}

// NewHandler creates a handler. hub and targets may be nil; the WebSocket
// endpoint then answers 503 and readiness reports zero targets.
func NewHandler(db DBInterface, targets TargetCounter, hub *ws.Hub, corsOrigins []string) *Handler {
	return &Handler{
		db:          db,
		targets:     targets,
		wsHub:       hub,
		corsOrigins: corsOrigins,
		startTime:   time.Now(),
		now:         time.Now,
	}
}

// competitionFromPath resolves the {id} URL parameter to a stored
// competition. It writes the error response and returns nil when the id is
// not numeric (400), unknown (404) or the lookup fails (500).
func (h *Handler) competitionFromPath(w http.ResponseWriter, r *http.Request) *models.Competition {
	rw := NewResponseWriter(w, r)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		rw.BadRequest("Competition id must be a positive integer")
		return nil
	}

	comp, err := h.db.GetCompetition(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		rw.NotFound("Competition not found")
		return nil
	}
	if err != nil {
		rw.DatabaseError(err)
		return nil
	}
	return comp
}

// searchTerm returns the trimmed ?search= parameter, or false after writing
// a 400 when it is too long.
func searchTerm(w http.ResponseWriter, r *http.Request) (string, bool) {
	term := r.URL.Query().Get("search")
	if len(term) > maxSearchLength {
		NewResponseWriter(w, r).BadRequest("search must be at most 100 characters")
		return "", false
	}
	return term, true
}
