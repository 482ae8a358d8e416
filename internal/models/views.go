// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

package models

import "time"

// DisplayTimeLayout formats timestamps in REST views.
const DisplayTimeLayout = "2006-01-02 15:04:05"

// ScoreView is the REST form of a ScoreEntry.
type ScoreView struct {
	Position  string `json:"position"`
	Points    int    `json:"points"`
	EntryTime string `json:"entry_time"`
}

// NewScoreView converts a score history row.
func NewScoreView(e ScoreEntry) ScoreView {
	return ScoreView{
		Position:  e.Position,
		Points:    e.Points,
		EntryTime: e.EntryTime.UTC().Format(DisplayTimeLayout),
	}
}

// EmptyScoreView is served for a competition without any score history.
func EmptyScoreView(now time.Time) ScoreView {
	return ScoreView{Position: "0", Points: 0, EntryTime: now.UTC().Format(DisplayTimeLayout)}
}

// ActiveCompetitionView is one entry of GET /api/v1/active.
type ActiveCompetitionView struct {
	Name  string    `json:"name"`
	ID    int64     `json:"id"`
	Stats ScoreView `json:"stats"`
}

// ChallengeView is one entry of GET /api/v1/{id}/challenges.
type ChallengeView struct {
	Title      string          `json:"title"`
	Category   string          `json:"category"`
	Status     ChallengeStatus `json:"status"`
	Priority   Priority        `json:"priority"`
	Working    *string         `json:"working"`
	Solver     *string         `json:"solver"`
	Solved     bool            `json:"solved"`
	Points     int             `json:"points"`
	SolvedTime *string         `json:"solved_time"`
}

// NewChallengeView derives status and priority for a CTFd challenge.
func NewChallengeView(c Challenge) ChallengeView {
	return ChallengeView{
		Title:      c.Name,
		Category:   c.Category,
		Status:     DeriveStatus(c.Solved, c.Working),
		Priority:   DerivePriority(c.Points),
		Working:    c.Working.Ptr(),
		Solver:     c.Solver,
		Solved:     c.Solved,
		Points:     c.Points,
		SolvedTime: solvedTimeString(c.Solved, c.SolvedTime),
	}
}

// HTBChallengeView is one entry of GET /api/v1/htb/challenges.
type HTBChallengeView struct {
	ChallengeView
	HTBID       int64  `json:"htb_id"`
	Difficulty  string `json:"difficulty"`
	ReleaseDate string `json:"release_date"`
}

// NewHTBChallengeView derives status and priority for an HTB challenge.
func NewHTBChallengeView(c HTBChallenge) HTBChallengeView {
	return HTBChallengeView{
		ChallengeView: ChallengeView{
			Title:      c.Name,
			Category:   c.Category,
			Status:     DeriveStatus(c.Solved, c.Working),
			Priority:   DerivePriority(c.Points),
			Working:    c.Working.Ptr(),
			Solver:     c.Solver,
			Solved:     c.Solved,
			Points:     c.Points,
			SolvedTime: solvedTimeString(c.Solved, c.SolvedTime),
		},
		HTBID:       c.HTBID,
		Difficulty:  c.Difficulty,
		ReleaseDate: c.ReleaseDate,
	}
}

func solvedTimeString(solved bool, t *time.Time) *string {
	if !solved || t == nil {
		return nil
	}
	s := t.UTC().Format(DisplayTimeLayout)
	return &s
}

// HealthStatus is served by the readiness probe.
type HealthStatus struct {
	Status            string  `json:"status"`
	DatabaseConnected bool    `json:"database_connected"`
	ActiveTargets     int     `json:"active_targets"`
	Uptime            float64 `json:"uptime"`
}
