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

// Active lists the active competitions with their latest score.
// A competition without any score row gets position "0" and 0 points.
func (h *Handler) Active(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	comps, err := h.db.ListActiveCompetitions(r.Context())
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	out := make([]models.ActiveCompetitionView, 0, len(comps))
	for _, comp := range comps {
		stats := models.EmptyScoreView(h.now())
		score, err := h.db.LatestScore(r.Context(), comp.ID)
		switch {
		case err == nil:
			stats = models.NewScoreView(*score)
		case !errors.Is(err, database.ErrNotFound):
			rw.DatabaseError(err)
			return
		}
		out = append(out, models.ActiveCompetitionView{Name: comp.Name, ID: comp.ID, Stats: stats})
	}

	rw.List(out, len(out))
}

// Stats returns a competition's score history, oldest first.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	comp := h.competitionFromPath(w, r)
	if comp == nil {
		return
	}
	rw := NewResponseWriter(w, r)

	history, err := h.db.ScoreHistory(r.Context(), comp.ID)
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	out := make([]models.ScoreView, 0, len(history))
	for _, e := range history {
		out = append(out, models.NewScoreView(e))
	}
	rw.List(out, len(out))
}

// Challenges lists a competition's challenges with derived status and
// priority. ?search= filters by name.
func (h *Handler) Challenges(w http.ResponseWriter, r *http.Request) {
	comp := h.competitionFromPath(w, r)
	if comp == nil {
		return
	}
	term, ok := searchTerm(w, r)
	if !ok {
		return
	}
	rw := NewResponseWriter(w, r)

	var (
		challenges []models.Challenge
		err        error
	)
	if strings.TrimSpace(term) == "" {
		challenges, err = h.db.ListChallenges(r.Context(), comp.ID)
	} else {
		challenges, err = h.db.SearchChallenges(r.Context(), comp.ID, term)
	}
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	out := make([]models.ChallengeView, 0, len(challenges))
	for _, c := range challenges {
		out = append(out, models.NewChallengeView(c))
	}
	rw.List(out, len(out))
}
