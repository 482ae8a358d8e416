// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

package models

import "time"

// HTB solve kinds reported by the team activity feed.
const (
	SolveKindChallenge = "challenge"
	SolveKindUser      = "user"
	SolveKindRoot      = "root"
)

// RemoteChallenge is a challenge as reported by a provider, normalized across
// platforms. RemoteID is zero for platforms without stable ids (CTFd listing).
type RemoteChallenge struct {
	RemoteID    int64
	Name        string
	Category    string
	Points      int
	Difficulty  string
	ReleaseDate string
}

// RemoteSolve is a team solve as reported by a provider.
type RemoteSolve struct {
	RemoteChallengeID int64
	ChallengeName     string
	Category          string
	Points            int
	UserID            int64
	Username          string
	Kind              string
	SolvedAt          time.Time
}

// RemoteUser is a user profile resolved from a provider.
type RemoteUser struct {
	ID    int64
	Name  string
	Score int
}

// TeamStats is the team standing reported by a provider.
// Place is the display form ("12th" on CTFd, the numeric rank on HTB).
type TeamStats struct {
	Place      string
	Score      int
	Rank       int
	UserOwns   int
	SystemOwns int
}

// PendingSolve is a solve found by the reconciler that has not yet been
// announced. SolveID is set for per-user (HTB) solves only.
type PendingSolve struct {
	CompetitionID int64     `json:"competition_id,omitempty"`
	ChallengeID   int64     `json:"challenge_id"`
	SolveID       int64     `json:"solve_id,omitempty"`
	ChallengeName string    `json:"challenge"`
	Category      string    `json:"category"`
	Points        int       `json:"points"`
	SolverID      int64     `json:"solver_id"`
	Solver        string    `json:"solver"`
	Kind          string    `json:"kind,omitempty"`
	SolvedAt      time.Time `json:"solved_at"`
}

// PerUser reports whether the solve is tracked as a per-user solve row.
func (p PendingSolve) PerUser() bool {
	return p.SolveID != 0
}
