// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

package testinfra

import (
	"context"
	"fmt"
	"sync"

	"github.com/tomtom215/ctftracker/internal/models"
	"github.com/tomtom215/ctftracker/internal/provider"
)

// FakeProvider is a provider.Provider backed by in-memory fixtures.
type FakeProvider struct {
	mu sync.Mutex

	kind       provider.Kind
	challenges []models.RemoteChallenge
	solves     []models.RemoteSolve
	users      map[int64]models.RemoteUser
	stats      models.TeamStats

	challengesErr error
	solvesErr     error
	statsErr      error

	calls map[string]int
}

var _ provider.Provider = (*FakeProvider)(nil)

// NewFakeProvider creates an empty fake of the given kind.
func NewFakeProvider(kind provider.Kind) *FakeProvider {
	return &FakeProvider{
		kind:  kind,
		users: make(map[int64]models.RemoteUser),
		stats: models.TeamStats{Place: "1st"},
		calls: make(map[string]int),
	}
}

// SetChallenges replaces the remote challenge list.
func (f *FakeProvider) SetChallenges(c ...models.RemoteChallenge) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.challenges = c
}

// SetSolves replaces the remote solve list.
func (f *FakeProvider) SetSolves(s ...models.RemoteSolve) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.solves = s
}

// AddUser registers a user returned by ResolveUser.
func (f *FakeProvider) AddUser(u models.RemoteUser) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[u.ID] = u
}

// SetStats replaces the team stats.
func (f *FakeProvider) SetStats(s models.TeamStats) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stats = s
}

// SetChallengesErr makes FetchChallenges fail with err (nil clears it).
func (f *FakeProvider) SetChallengesErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.challengesErr = err
}

// SetSolvesErr makes FetchTeamSolves fail with err (nil clears it).
func (f *FakeProvider) SetSolvesErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.solvesErr = err
}

// SetStatsErr makes TeamStats fail with err (nil clears it).
func (f *FakeProvider) SetStatsErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statsErr = err
}

// Calls returns how many times the named method was called.
func (f *FakeProvider) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

// Kind implements provider.Provider.
func (f *FakeProvider) Kind() provider.Kind {
	return f.kind
}

// FetchChallenges implements provider.Provider.
func (f *FakeProvider) FetchChallenges(_ context.Context) ([]models.RemoteChallenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["FetchChallenges"]++
	if f.challengesErr != nil {
		return nil, f.challengesErr
	}
	return append([]models.RemoteChallenge(nil), f.challenges...), nil
}

// FetchTeamSolves implements provider.Provider.
func (f *FakeProvider) FetchTeamSolves(_ context.Context) ([]models.RemoteSolve, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["FetchTeamSolves"]++
	if f.solvesErr != nil {
		return nil, f.solvesErr
	}
	return append([]models.RemoteSolve(nil), f.solves...), nil
}

// ResolveUser implements provider.Provider.
func (f *FakeProvider) ResolveUser(_ context.Context, id int64) (*models.RemoteUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["ResolveUser"]++
	u, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d returned status 404", id)
	}
	return &u, nil
}

// TeamStats implements provider.Provider.
func (f *FakeProvider) TeamStats(_ context.Context) (*models.TeamStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["TeamStats"]++
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	s := f.stats
	return &s, nil
}
