// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

package models

import "time"

// HTBMachineCategory is the category assigned to HackTheBox machines, which
// share the htb_challenges table with regular challenges.
const HTBMachineCategory = "Machine"

// Challenge is a CTFd challenge within a competition.
// (CompetitionID, Name, Category) identifies it uniquely.
type Challenge struct {
	ID            int64      `json:"id"`
	CompetitionID int64      `json:"competition_id"`
	Name          string     `json:"name"`
	Category      string     `json:"category"`
	Points        int        `json:"points"`
	Solved        bool       `json:"solved"`
	Solver        *string    `json:"solver,omitempty"`
	SolvedTime    *time.Time `json:"solved_time,omitempty"`
	Working       WorkingSet `json:"-"`
	Announced     bool       `json:"announced"`
}

// HTBChallenge is a HackTheBox challenge or machine.
// (HTBID, Name) identifies it uniquely.
type HTBChallenge struct {
	ID          int64      `json:"id"`
	HTBID       int64      `json:"htb_id"`
	Name        string     `json:"name"`
	Category    string     `json:"category"`
	Difficulty  string     `json:"difficulty"`
	Points      int        `json:"points"`
	ReleaseDate string     `json:"release_date"`
	Solved      bool       `json:"solved"`
	Solver      *string    `json:"solver,omitempty"`
	SolvedTime  *time.Time `json:"solved_time,omitempty"`
	Working     WorkingSet `json:"-"`
	Announced   bool       `json:"announced"`
}

// HTBSolve is one user's solve of an HTBChallenge.
// (UserID, ChallengeID, SolveType) identifies it uniquely.
type HTBSolve struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Username    string    `json:"username"`
	ChallengeID int64     `json:"challenge_id"`
	SolveType   string    `json:"solve_type"`
	Announced   bool      `json:"announced"`
	SolvedTime  time.Time `json:"solved_time"`
}

// UserSolve is an HTBSolve joined with its challenge.
type UserSolve struct {
	Solve     HTBSolve     `json:"solve"`
	Challenge HTBChallenge `json:"challenge"`
}
