// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

package commands

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/ctftracker/internal/config"
	"github.com/tomtom215/ctftracker/internal/database"
	"github.com/tomtom215/ctftracker/internal/models"
	"github.com/tomtom215/ctftracker/internal/provider"
	"github.com/tomtom215/ctftracker/internal/reconcile"
	"github.com/tomtom215/ctftracker/internal/testinfra"
	"github.com/tomtom215/ctftracker/internal/validation"
)

type fixture struct {
	db       *database.DB
	registry *provider.Registry
	svc      *Service
	fake     *testinfra.FakeProvider
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testinfra.NewTestDB(t)
	registry := provider.NewRegistry()
	fake := testinfra.NewFakeProvider(provider.KindCTFd)
	fake.SetChallenges(
		models.RemoteChallenge{RemoteID: 1, Name: "Reverse a String", Category: "Programming", Points: 100},
		models.RemoteChallenge{RemoteID: 2, Name: "Baby Web", Category: "Web", Points: 500},
	)
	factory := func(*models.Competition) provider.Provider { return fake }
	return &fixture{
		db:       db,
		registry: registry,
		svc:      New(db, registry, reconcile.New(db), factory),
		fake:     fake,
	}
}

func (f *fixture) start(t *testing.T, name string) *models.Competition {
	t.Helper()
	comp, err := f.svc.Start(context.Background(), StartRequest{
		Name:      name,
		BaseURL:   "https://play.duc.tf",
		APIKey:    "ctfd_key",
		ChannelID: 1234,
	})
	checkNoError(t, err)
	return comp
}

func TestStartRegistersAndReconciles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	comp := f.start(t, "DUCTF")
	checkStringEqual(t, "api url", comp.APIURL, "https://play.duc.tf/api/v1")

	target, ok := f.registry.Lookup(comp.ID)
	checkTrue(t, "registered", ok)
	checkIntEqual(t, "channel", int(target.ChannelID), 1234)

	challenges, err := f.svc.List(ctx, comp.ID)
	checkNoError(t, err)
	checkIntEqual(t, "challenges", len(challenges), 2)
}

func TestStartRejectsInvalidRequest(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Start(context.Background(), StartRequest{Name: "DUCTF", BaseURL: "not a url", APIKey: "k"})

	var verr *validation.RequestValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	checkTrue(t, "base_url named", verr.HasField("base_url"))
	checkIntEqual(t, "nothing registered", f.registry.Len(), 0)
}

func TestStartDuplicateName(t *testing.T) {
	f := newFixture(t)
	f.start(t, "DUCTF")
	_, err := f.svc.Start(context.Background(), StartRequest{Name: "DUCTF", BaseURL: "https://x.example", APIKey: "k"})
	checkErrorIs(t, err, database.ErrCompetitionExists)
}

func TestStartKeepsCompetitionWhenFirstReconcileFails(t *testing.T) {
	f := newFixture(t)
	f.fake.SetChallengesErr(errors.New("connection refused"))

	comp := f.start(t, "DUCTF")
	_, ok := f.registry.Lookup(comp.ID)
	checkTrue(t, "still registered", ok)
}

func TestEndDeactivatesAndUnregisters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	comp := f.start(t, "DUCTF")

	checkNoError(t, f.svc.End(ctx, comp.ID))
	_, ok := f.registry.Lookup(comp.ID)
	checkTrue(t, "unregistered", !ok)

	active, err := f.svc.Active(ctx)
	checkNoError(t, err)
	checkIntEqual(t, "active", len(active), 0)

	checkErrorIs(t, f.svc.End(ctx, 999), ErrCompetitionNotFound)
}

func TestSearchAndStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	comp := f.start(t, "DUCTF")

	found, err := f.svc.Search(ctx, comp.ID, "REVERSE")
	checkNoError(t, err)
	checkIntEqual(t, "matches", len(found), 1)
	checkStringEqual(t, "match", found[0].Name, "Reverse a String")

	_, err = f.svc.Stats(ctx, comp.ID)
	checkErrorIs(t, err, database.ErrNotFound)

	_, err = f.db.InsertScore(ctx, comp.ID, 100, "3rd")
	checkNoError(t, err)
	score, err := f.svc.Stats(ctx, comp.ID)
	checkNoError(t, err)
	checkStringEqual(t, "position", score.Position, "3rd")

	_, err = f.svc.Search(ctx, 999, "x")
	checkErrorIs(t, err, ErrCompetitionNotFound)
}

func TestMarkWorkingIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	comp := f.start(t, "DUCTF")

	ws, err := f.svc.MarkWorking(ctx, comp.ID, "Baby Web", "alice")
	checkNoError(t, err)
	checkIntEqual(t, "one member", ws.Len(), 1)

	ws, err = f.svc.MarkWorking(ctx, comp.ID, "Baby Web", "alice")
	checkNoError(t, err)
	checkIntEqual(t, "still one member", ws.Len(), 1)

	ws, err = f.svc.MarkWorking(ctx, comp.ID, "Baby Web", "bob")
	checkNoError(t, err)
	checkStringEqual(t, "joined", ws.String(), "alice, bob")

	ch, err := f.db.FindChallengeByName(ctx, comp.ID, "Baby Web")
	checkNoError(t, err)
	checkStringEqual(t, "stored", ch.Working.String(), "alice, bob")
	checkStringEqual(t, "status", string(models.DeriveStatus(ch.Solved, ch.Working)), string(models.StatusInProgress))
}

func TestClearWorkingNonMemberIsNoop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	comp := f.start(t, "DUCTF")

	ws, err := f.svc.ClearWorking(ctx, comp.ID, "Baby Web", "mallory")
	checkNoError(t, err)
	checkTrue(t, "empty", ws.IsEmpty())

	_, err = f.svc.MarkWorking(ctx, comp.ID, "Baby Web", "alice")
	checkNoError(t, err)
	ws, err = f.svc.ClearWorking(ctx, comp.ID, "Baby Web", "alice")
	checkNoError(t, err)
	checkTrue(t, "cleared", ws.IsEmpty())

	ch, err := f.db.FindChallengeByName(ctx, comp.ID, "Baby Web")
	checkNoError(t, err)
	checkStringEqual(t, "status", string(models.DeriveStatus(ch.Solved, ch.Working)), string(models.StatusTodo))
}

func TestWorkingUnknownChallenge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	comp := f.start(t, "DUCTF")

	_, err := f.svc.MarkWorking(ctx, comp.ID, "Nope", "alice")
	checkErrorIs(t, err, ErrChallengeNotFound)
	_, err = f.svc.ClearHTBWorking(ctx, "Nope", "alice")
	checkErrorIs(t, err, ErrChallengeNotFound)

	_, err = f.svc.MarkWorking(ctx, comp.ID, "Baby Web", " ")
	var verr *validation.RequestValidationError
	checkTrue(t, "blank user rejected", errors.As(err, &verr))
}

func TestWorkingRejectsUserWithSeparator(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	comp := f.start(t, "DUCTF")

	_, err := f.svc.MarkWorking(ctx, comp.ID, "Baby Web", "Smith, J")
	var verr *validation.RequestValidationError
	checkTrue(t, "comma user rejected", errors.As(err, &verr))
	checkTrue(t, "user field named", verr.HasField("user"))

	_, err = f.svc.MarkHTBWorking(ctx, "Baby Web", "Smith, J")
	checkTrue(t, "comma user rejected for htb", errors.As(err, &verr))

	ch, err := f.db.FindChallengeByName(ctx, comp.ID, "Baby Web")
	checkNoError(t, err)
	checkTrue(t, "nothing stored", ch.Working.IsEmpty())

	_, err = f.svc.MarkWorking(ctx, comp.ID, "Baby Web", "Smith J")
	checkNoError(t, err)
	ws, err := f.svc.ClearWorking(ctx, comp.ID, "Baby Web", "Smith J")
	checkNoError(t, err)
	checkTrue(t, "cleared after round trip", ws.IsEmpty())
}

func TestConcurrentMarkWorkingDoesNotFail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	comp := f.start(t, "DUCTF")

	var wg sync.WaitGroup
	for _, user := range []string{"alice", "bob", "carol", "dave"} {
		wg.Add(1)
		go func(user string) {
			defer wg.Done()
			if _, err := f.svc.MarkWorking(ctx, comp.ID, "Baby Web", user); err != nil {
				t.Errorf("mark %s: %v", user, err)
			}
		}(user)
	}
	wg.Wait()

	// Last write wins: at least one member survives, members may be lost.
	ch, err := f.db.FindChallengeByName(ctx, comp.ID, "Baby Web")
	checkNoError(t, err)
	checkTrue(t, "non-empty", !ch.Working.IsEmpty())
}

func TestHTBCommands(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	solvedAt := time.Date(2021, 5, 13, 11, 1, 54, 0, time.UTC)

	htb := testinfra.NewFakeProvider(provider.KindHTB)
	htb.SetChallenges(models.RemoteChallenge{RemoteID: 100, Name: "RopeTwo", Category: models.HTBMachineCategory, Points: 50})
	htb.SetSolves(models.RemoteSolve{RemoteChallengeID: 100, ChallengeName: "RopeTwo", UserID: 8, Username: "craig", Kind: models.SolveKindUser, SolvedAt: solvedAt})
	target := provider.Target{ID: provider.HTBTargetID, Name: "htb", Provider: htb}
	rec := reconcile.New(f.db)
	_, err := rec.ReconcileChallenges(ctx, target)
	checkNoError(t, err)
	_, err = rec.FindNewSolves(ctx, target)
	checkNoError(t, err)

	found, err := f.svc.SearchHTB(ctx, "rope")
	checkNoError(t, err)
	checkIntEqual(t, "search", len(found), 1)

	ws, err := f.svc.MarkHTBWorking(ctx, "RopeTwo", "alice")
	checkNoError(t, err)
	checkStringEqual(t, "working", ws.String(), "alice")

	solves, err := f.svc.Solves(ctx, "CRAIG")
	checkNoError(t, err)
	checkIntEqual(t, "solves", len(solves), 1)
	checkStringEqual(t, "solve challenge", solves[0].Challenge.Name, "RopeTwo")

	checkNoError(t, f.svc.MapUser(ctx, 8, 99887766))
	discordID, err := f.db.GetDiscordID(ctx, 8)
	checkNoError(t, err)
	checkIntEqual(t, "discord id", int(discordID), 99887766)

	var verr *validation.RequestValidationError
	checkTrue(t, "zero id rejected", errors.As(f.svc.MapUser(ctx, 0, 1), &verr))
}

func TestLoadActiveAndSeed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.start(t, "DUCTF")

	// A fresh registry, as after a restart.
	restarted := New(f.db, provider.NewRegistry(), reconcile.New(f.db), func(*models.Competition) provider.Provider { return f.fake })
	n, err := restarted.LoadActive(ctx)
	checkNoError(t, err)
	checkIntEqual(t, "loaded", n, 1)
	checkIntEqual(t, "registry", restarted.registry.Len(), 1)

	started := restarted.Seed(ctx, []config.CompetitionSeed{
		{Name: "DUCTF", BaseURL: "https://play.duc.tf", APIKey: "k"},
		{Name: "PicoCTF", BaseURL: "https://play.picoctf.org", APIKey: "k", ChannelID: 9},
		{Name: "Broken", BaseURL: "ftp://nope", APIKey: "k"},
	})
	checkIntEqual(t, "seeded", started, 1)
	checkIntEqual(t, "registry after seed", restarted.registry.Len(), 2)
}
