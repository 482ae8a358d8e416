// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

package models

// ChallengeStatus is the derived progress state shown by the REST API.
type ChallengeStatus string

const (
	StatusDone       ChallengeStatus = "DONE"
	StatusInProgress ChallengeStatus = "INPROGRESS"
	StatusTodo       ChallengeStatus = "TODO"
)

// Priority is the derived importance of a challenge, based on its points.
type Priority string

const (
	PriorityLow     Priority = "LOW"
	PriorityMedium  Priority = "MEDIUM"
	PriorityHigh    Priority = "HIGH"
	PriorityHighest Priority = "HIGHEST"
)

// Priority thresholds (lower bounds, inclusive).
const (
	mediumPriorityPoints  = 50
	highPriorityPoints    = 100
	highestPriorityPoints = 250
)

// DeriveStatus returns DONE if solved, INPROGRESS if anyone is working on
// the challenge, TODO otherwise.
func DeriveStatus(solved bool, working WorkingSet) ChallengeStatus {
	switch {
	case solved:
		return StatusDone
	case !working.IsEmpty():
		return StatusInProgress
	default:
		return StatusTodo
	}
}

// DerivePriority maps a point value to a priority band:
// <50 LOW, 50-99 MEDIUM, 100-249 HIGH, >=250 HIGHEST.
func DerivePriority(points int) Priority {
	switch {
	case points < mediumPriorityPoints:
		return PriorityLow
	case points < highPriorityPoints:
		return PriorityMedium
	case points < highestPriorityPoints:
		return PriorityHigh
	default:
		return PriorityHighest
	}
}
