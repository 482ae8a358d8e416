// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/ctftracker/internal/logging"
	"github.com/tomtom215/ctftracker/internal/metrics"
	"github.com/tomtom215/ctftracker/internal/models"
	"github.com/tomtom215/ctftracker/internal/provider"
	"github.com/tomtom215/ctftracker/internal/reconcile"
)

// Default loop intervals
const (
	DefaultSolveInterval   = 15 * time.Second
	DefaultRefreshInterval = 60 * time.Second
)

// Reconciler finds catalogue changes and new solves for a target.
// Implemented by *reconcile.Reconciler.
type Reconciler interface {
	ReconcileChallenges(ctx context.Context, target provider.Target) (reconcile.Result, error)
	FindNewSolves(ctx context.Context, target provider.Target) ([]models.PendingSolve, error)
}

// Announcer announces a single solve.
// Implemented by *notify.Notifier.
type Announcer interface {
	Announce(ctx context.Context, target provider.Target, solve models.PendingSolve) error
}

// ScoreRecorder appends scoreboard rows.
// Implemented by *database.DB.
type ScoreRecorder interface {
	InsertScore(ctx context.Context, competitionID int64, points int, position string) (*models.ScoreEntry, error)
}

// TargetSource yields the targets a loop visits on each tick.
// Implemented by *provider.Registry and StaticTargets.
type TargetSource interface {
	Snapshot() []provider.Target
}

// StaticTargets is a fixed target list, used for the single HTB team.
type StaticTargets []provider.Target

// Snapshot implements TargetSource.
func (s StaticTargets) Snapshot() []provider.Target {
	return append([]provider.Target(nil), s...)
}

// StepFunc runs one loop's work for one target.
type StepFunc func(ctx context.Context, target provider.Target) error

// Loop runs a step for every target on a fixed interval.
// It implements suture.Service.
type Loop struct {
	name     string
	interval time.Duration
	source   TargetSource
	step     StepFunc
}

// NewLoop creates a loop. A non-positive interval falls back to the solve
// poll default.
func NewLoop(name string, interval time.Duration, source TargetSource, step StepFunc) *Loop {
	if interval <= 0 {
		interval = DefaultSolveInterval
	}
	return &Loop{name: name, interval: interval, source: source, step: step}
}

// Serve implements suture.Service. The first tick runs immediately.
// Ticks missed while a tick is still running are dropped by the ticker.
func (l *Loop) Serve(ctx context.Context) error {
	logging.Info().Str("loop", l.name).Dur("interval", l.interval).Msg("Scheduler loop started")

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			logging.Info().Str("loop", l.name).Msg("Scheduler loop stopped")
			return ctx.Err()
		case <-ticker.C:
			l.Tick(ctx)
		}
	}
}

// Tick visits every target once. A failing target is logged and counted and
// never stops the others. It returns the number of failed targets.
func (l *Loop) Tick(ctx context.Context) int {
	start := time.Now()
	failed := 0

	for _, target := range l.source.Snapshot() {
		if ctx.Err() != nil {
			break
		}
		if err := l.runStep(ctx, target); err != nil {
			failed++
			logging.Ctx(ctx).Error().Err(err).
				Str("loop", l.name).
				Int64("target_id", target.ID).
				Str("target", target.Name).
				Msg("Scheduler step failed")
		}
	}

	metrics.RecordSchedulerTick(l.name, time.Since(start), failed)
	return failed
}

// runStep isolates one target: a panic inside a provider or store call is
// turned into an error for that target only.
func (l *Loop) runStep(ctx context.Context, target provider.Target) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", l.name, r)
		}
	}()
	stepCtx := logging.ContextWithNewCorrelationID(ctx)
	return l.step(stepCtx, target)
}

// String implements fmt.Stringer for suture logging.
func (l *Loop) String() string {
	return l.name
}

// Name returns the loop name used in logs and metrics.
func (l *Loop) Name() string {
	return l.name
}
