// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/ctftracker/internal/logging"
	"github.com/tomtom215/ctftracker/internal/provider"
)

// Loop names
const (
	LoopCTFdSolves  = "ctfd-solves"
	LoopCTFdRefresh = "ctfd-refresh"
	LoopHTBSolves   = "htb-solves"
	LoopHTBRefresh  = "htb-refresh"
)

// SolveStep finds new solves and announces each of them. Every solve is
// attempted even when an earlier one fails; the joined error is returned so
// the target is counted as failed.
func SolveStep(rec Reconciler, ann Announcer) StepFunc {
	return func(ctx context.Context, target provider.Target) error {
		pending, err := rec.FindNewSolves(ctx, target)
		if err != nil {
			return fmt.Errorf("find new solves: %w", err)
		}
		if len(pending) > 0 {
			logging.Ctx(ctx).Debug().Str("target", target.Name).Int("pending", len(pending)).Msg("New solves found")
		}

		var errs []error
		for _, p := range pending {
			if err := ann.Announce(ctx, target, p); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
}

// CTFdRefreshStep appends a scoreboard row from the team's standing and then
// reconciles the challenge catalogue.
func CTFdRefreshStep(rec Reconciler, scores ScoreRecorder) StepFunc {
	return func(ctx context.Context, target provider.Target) error {
		stats, err := target.Provider.TeamStats(ctx)
		if err != nil {
			return fmt.Errorf("team stats: %w", err)
		}
		if _, err := scores.InsertScore(ctx, target.ID, stats.Score, stats.Place); err != nil {
			return fmt.Errorf("record score: %w", err)
		}
		if _, err := rec.ReconcileChallenges(ctx, target); err != nil {
			return fmt.Errorf("reconcile challenges: %w", err)
		}
		return nil
	}
}

// HTBRefreshStep reconciles the HTB challenge and machine catalogue.
func HTBRefreshStep(rec Reconciler) StepFunc {
	return func(ctx context.Context, target provider.Target) error {
		if _, err := rec.ReconcileChallenges(ctx, target); err != nil {
			return fmt.Errorf("reconcile challenges: %w", err)
		}
		return nil
	}
}

// Deps holds what the four loops need.
type Deps struct {
	Reconciler Reconciler
	Announcer  Announcer
	Scores     ScoreRecorder
	Registry   TargetSource
	// HTB is nil when HTB tracking is disabled.
	HTB *provider.Target
}

// Intervals configures loop periods.
// Zero selects the default.
type Intervals struct {
	Solve   time.Duration
	Refresh time.Duration
}

// Loops builds the CTFd loops and, when an HTB target is configured, the HTB
// loops. Each loop is meant to be added to the supervisor as its own service.
func Loops(d Deps, iv Intervals) []*Loop {
	solve := iv.Solve
	if solve <= 0 {
		solve = DefaultSolveInterval
	}
	refresh := iv.Refresh
	if refresh <= 0 {
		refresh = DefaultRefreshInterval
	}

	loops := []*Loop{
		NewLoop(LoopCTFdSolves, solve, d.Registry, SolveStep(d.Reconciler, d.Announcer)),
		NewLoop(LoopCTFdRefresh, refresh, d.Registry, CTFdRefreshStep(d.Reconciler, d.Scores)),
	}
	if d.HTB != nil {
		htb := StaticTargets{*d.HTB}
		loops = append(loops,
			NewLoop(LoopHTBSolves, solve, htb, SolveStep(d.Reconciler, d.Announcer)),
			NewLoop(LoopHTBRefresh, refresh, htb, HTBRefreshStep(d.Reconciler)),
		)
	}
	return loops
}
