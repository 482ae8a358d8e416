// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/ctftracker/internal/database"
	"github.com/tomtom215/ctftracker/internal/models"
	"github.com/tomtom215/ctftracker/internal/provider"
	"github.com/tomtom215/ctftracker/internal/testinfra"
)

var solvedAt = time.Date(2021, 5, 13, 11, 1, 54, 0, time.UTC)

func ctfdTarget(t *testing.T, db *database.DB) (provider.Target, *testinfra.FakeProvider) {
	t.Helper()
	comp := testinfra.CreateCompetition(t, db, "ductf", 1234)
	fake := testinfra.NewFakeProvider(provider.KindCTFd)
	return provider.Target{ID: comp.ID, Name: comp.Name, ChannelID: comp.ChannelID, Provider: fake}, fake
}

func htbTarget() (provider.Target, *testinfra.FakeProvider) {
	fake := testinfra.NewFakeProvider(provider.KindHTB)
	return provider.Target{ID: provider.HTBTargetID, Name: "htb", Provider: fake}, fake
}

func TestReconcileChallengesInsertsAndUpdates(t *testing.T) {
	db := testinfra.NewTestDB(t)
	ctx := context.Background()
	target, fake := ctfdTarget(t, db)
	r := New(db)

	fake.SetChallenges(
		models.RemoteChallenge{Name: "Reverse a String", Category: "Programming", Points: 100},
		models.RemoteChallenge{Name: "Baby Web", Category: "Web", Points: 500},
	)
	res, err := r.ReconcileChallenges(ctx, target)
	checkNoError(t, err)
	checkIntEqual(t, "inserted", res.Inserted, 2)
	checkIntEqual(t, "updated", res.Updated, 0)

	ch, err := db.GetChallenge(ctx, target.ID, "Reverse a String", "Programming")
	checkNoError(t, err)
	checkTrue(t, "new challenge unsolved", !ch.Solved && !ch.Announced)

	// Dynamic scoring lowers Baby Web; a rerun updates it and inserts nothing.
	fake.SetChallenges(
		models.RemoteChallenge{Name: "Reverse a String", Category: "Programming", Points: 100},
		models.RemoteChallenge{Name: "Baby Web", Category: "Web", Points: 420},
	)
	res, err = r.ReconcileChallenges(ctx, target)
	checkNoError(t, err)
	checkIntEqual(t, "inserted on rerun", res.Inserted, 0)
	checkIntEqual(t, "updated on rerun", res.Updated, 1)

	web, err := db.GetChallenge(ctx, target.ID, "Baby Web", "Web")
	checkNoError(t, err)
	checkIntEqual(t, "points", web.Points, 420)
}

func TestReconcileChallengesKeepsSolvedPoints(t *testing.T) {
	db := testinfra.NewTestDB(t)
	ctx := context.Background()
	target, fake := ctfdTarget(t, db)
	r := New(db)

	fake.SetChallenges(models.RemoteChallenge{Name: "Baby Web", Category: "Web", Points: 500})
	_, err := r.ReconcileChallenges(ctx, target)
	checkNoError(t, err)
	ch, err := db.GetChallenge(ctx, target.ID, "Baby Web", "Web")
	checkNoError(t, err)
	checkNoError(t, db.MarkChallengeSolved(ctx, ch.ID, "Craig", solvedAt))

	fake.SetChallenges(models.RemoteChallenge{Name: "Baby Web", Category: "Web", Points: 300})
	res, err := r.ReconcileChallenges(ctx, target)
	checkNoError(t, err)
	checkIntEqual(t, "updated", res.Updated, 0)

	ch, err = db.GetChallenge(ctx, target.ID, "Baby Web", "Web")
	checkNoError(t, err)
	checkIntEqual(t, "points frozen at solve", ch.Points, 500)
}

func TestReconcileChallengesFetchError(t *testing.T) {
	db := testinfra.NewTestDB(t)
	target, fake := ctfdTarget(t, db)
	fake.SetChallengesErr(errors.New("connection refused"))

	if _, err := New(db).ReconcileChallenges(context.Background(), target); err == nil {
		t.Fatal("expected fetch error")
	}
}

func TestFindNewSolvesCTFd(t *testing.T) {
	db := testinfra.NewTestDB(t)
	ctx := context.Background()
	target, fake := ctfdTarget(t, db)
	r := New(db)

	fake.SetChallenges(models.RemoteChallenge{Name: "Reverse a String", Category: "Programming", Points: 100})
	_, err := r.ReconcileChallenges(ctx, target)
	checkNoError(t, err)

	fake.AddUser(models.RemoteUser{ID: 52, Name: "Craig"})
	fake.SetSolves(
		models.RemoteSolve{ChallengeName: "Reverse a String", Category: "Programming", Points: 100, UserID: 52, SolvedAt: solvedAt},
		models.RemoteSolve{ChallengeName: "Deleted Challenge", Category: "Misc", Points: 10, UserID: 52, SolvedAt: solvedAt},
	)

	pending, err := r.FindNewSolves(ctx, target)
	checkNoError(t, err)
	checkIntEqual(t, "pending (unmapped skipped)", len(pending), 1)
	p := pending[0]
	checkStringEqual(t, "solver", p.Solver, "Craig")
	checkStringEqual(t, "challenge", p.ChallengeName, "Reverse a String")
	checkIntEqual(t, "points", p.Points, 100)
	checkTrue(t, "not per-user", !p.PerUser())

	// Until announced, the solve keeps coming back.
	pending, err = r.FindNewSolves(ctx, target)
	checkNoError(t, err)
	checkIntEqual(t, "still pending", len(pending), 1)

	checkNoError(t, db.MarkChallengeSolved(ctx, p.ChallengeID, p.Solver, p.SolvedAt))
	pending, err = r.FindNewSolves(ctx, target)
	checkNoError(t, err)
	checkIntEqual(t, "none after announce", len(pending), 0)
}

func TestFindNewSolvesSkipsUnresolvedSolver(t *testing.T) {
	db := testinfra.NewTestDB(t)
	ctx := context.Background()
	target, fake := ctfdTarget(t, db)
	r := New(db)

	fake.SetChallenges(
		models.RemoteChallenge{Name: "Baby Web", Category: "Web", Points: 500},
		models.RemoteChallenge{Name: "Reverse a String", Category: "Programming", Points: 100},
	)
	_, err := r.ReconcileChallenges(ctx, target)
	checkNoError(t, err)

	// User 7 is unknown to the platform; user 52 resolves.
	fake.AddUser(models.RemoteUser{ID: 52, Name: "Craig"})
	fake.SetSolves(
		models.RemoteSolve{ChallengeName: "Baby Web", Category: "Web", Points: 500, UserID: 7, SolvedAt: solvedAt},
		models.RemoteSolve{ChallengeName: "Reverse a String", Category: "Programming", Points: 100, UserID: 52, SolvedAt: solvedAt},
	)

	pending, err := r.FindNewSolves(ctx, target)
	checkNoError(t, err)
	checkIntEqual(t, "pending", len(pending), 1)
	checkStringEqual(t, "solver", pending[0].Solver, "Craig")

	// Once the user resolves, the skipped solve is picked up.
	fake.AddUser(models.RemoteUser{ID: 7, Name: "Zoe"})
	pending, err = r.FindNewSolves(ctx, target)
	checkNoError(t, err)
	checkIntEqual(t, "pending after resolve", len(pending), 2)
	checkStringEqual(t, "first solver", pending[0].Solver, "Zoe")
}

func TestFindNewSolvesFetchErrorChangesNothing(t *testing.T) {
	db := testinfra.NewTestDB(t)
	target, fake := htbTarget()
	fake.SetSolvesErr(errors.New("503"))

	pending, err := New(db).FindNewSolves(context.Background(), target)
	if err == nil || pending != nil {
		t.Fatalf("expected error and no solves, got %v, %v", pending, err)
	}
	n, err := db.CountHTBSolves(context.Background())
	checkNoError(t, err)
	checkIntEqual(t, "solve rows", n, 0)
}

func TestFindNewSolvesHTBNoDuplicateRows(t *testing.T) {
	db := testinfra.NewTestDB(t)
	ctx := context.Background()
	target, fake := htbTarget()
	r := New(db)

	fake.SetChallenges(
		models.RemoteChallenge{RemoteID: 100, Name: "Bombs Landed", Category: "Reversing", Points: 30},
		models.RemoteChallenge{RemoteID: 100, Name: "RopeTwo", Category: models.HTBMachineCategory, Points: 50},
	)
	res, err := r.ReconcileChallenges(ctx, target)
	checkNoError(t, err)
	checkIntEqual(t, "inserted", res.Inserted, 2)

	fake.SetSolves(
		models.RemoteSolve{RemoteChallengeID: 100, ChallengeName: "RopeTwo", UserID: 8, Username: "craig", Kind: models.SolveKindUser, SolvedAt: solvedAt},
		models.RemoteSolve{RemoteChallengeID: 100, ChallengeName: "RopeTwo", UserID: 8, Username: "craig", Kind: models.SolveKindRoot, SolvedAt: solvedAt},
		models.RemoteSolve{RemoteChallengeID: 100, ChallengeName: "Bombs Landed", UserID: 7, Username: "wulfgarpro", Kind: models.SolveKindChallenge, SolvedAt: solvedAt},
	)

	first, err := r.FindNewSolves(ctx, target)
	checkNoError(t, err)
	checkIntEqual(t, "first tick", len(first), 3)
	for _, p := range first {
		checkTrue(t, "per-user solve", p.PerUser())
	}
	checkStringEqual(t, "provider order kept", first[0].Kind, models.SolveKindUser)

	second, err := r.FindNewSolves(ctx, target)
	checkNoError(t, err)
	checkIntEqual(t, "second tick", len(second), 3)
	checkTrue(t, "same solve row", second[0].SolveID == first[0].SolveID)

	n, err := db.CountHTBSolves(ctx)
	checkNoError(t, err)
	checkIntEqual(t, "no duplicate rows", n, 3)

	checkNoError(t, db.MarkHTBSolveAnnounced(ctx, first[0].SolveID))
	third, err := r.FindNewSolves(ctx, target)
	checkNoError(t, err)
	checkIntEqual(t, "announced solve dropped", len(third), 2)
}
