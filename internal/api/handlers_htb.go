// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/tomtom215/ctftracker/internal/database"
	"github.com/tomtom215/ctftracker/internal/models"
)

// HTBChallenges lists the tracked HackTheBox challenges. ?search= filters by name.
func (h *Handler) HTBChallenges(w http.ResponseWriter, r *http.Request) {
	term, ok := searchTerm(w, r)
	if !ok {
		return
	}
	rw := NewResponseWriter(w, r)

	var (
		challenges []models.HTBChallenge
		err        error
	)
	if strings.TrimSpace(term) == "" {
		challenges, err = h.db.ListHTBChallenges(r.Context())
	} else {
		challenges, err = h.db.SearchHTBChallenges(r.Context(), term)
	}
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	out := make([]models.HTBChallengeView, 0, len(challenges))
	for _, c := range challenges {
		out = append(out, models.NewHTBChallengeView(c))
	}
	rw.List(out, len(out))
}

// HTBRank returns the most recent team rank snapshot, or 404 before the
// first one is recorded.
func (h *Handler) HTBRank(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	rank, err := h.db.LatestRank(r.Context())
	if errors.Is(err, database.ErrNotFound) {
		rw.NotFound("No team rank recorded yet")
		return
	}
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(rank)
}
