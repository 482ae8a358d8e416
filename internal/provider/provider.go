// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

package provider

import (
	"context"

	"github.com/tomtom215/ctftracker/internal/models"
)

// Kind identifies a scoring platform.
type Kind string

const (
	// KindCTFd is any CTFd-compatible competition platform.
	KindCTFd Kind = "ctfd"
	// KindHTB is the HackTheBox team platform.
	KindHTB Kind = "htb"
)

// HTBTargetID is the target id used for the single tracked HTB team.
// CTFd competitions always have positive ids.
const HTBTargetID int64 = 0

// Provider is the read-only view of one remote scoring platform.
// Every method performs at most one logical fetch and returns either a
// complete result or an error, never a partial result.
type Provider interface {
	Kind() Kind
	FetchChallenges(ctx context.Context) ([]models.RemoteChallenge, error)
	FetchTeamSolves(ctx context.Context) ([]models.RemoteSolve, error)
	ResolveUser(ctx context.Context, id int64) (*models.RemoteUser, error)
	TeamStats(ctx context.Context) (*models.TeamStats, error)
}

// Target pairs a competition with the provider that scores it.
// It is the unit of work for every scheduler tick.
type Target struct {
	ID        int64
	Name      string
	ChannelID int64
	Provider  Provider
}

// Kind returns the platform kind of the target's provider.
func (t Target) Kind() Kind {
	if t.Provider == nil {
		return ""
	}
	return t.Provider.Kind()
}

// IsHTB reports whether the target tracks the HTB team.
func (t Target) IsHTB() bool {
	return t.Kind() == KindHTB
}
