// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

// Package reconcile diffs remote provider state against the store.
//
// ReconcileChallenges keeps the local challenge list in step with the
// platform. FindNewSolves turns the remote solve list into the solves that
// still need announcing. Neither function announces anything; that is the
// notifier's job.
package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/ctftracker/internal/database"
	"github.com/tomtom215/ctftracker/internal/logging"
	"github.com/tomtom215/ctftracker/internal/metrics"
	"github.com/tomtom215/ctftracker/internal/models"
	"github.com/tomtom215/ctftracker/internal/provider"
)

// ErrChallengeNotMapped is logged when a remote solve matches no local challenge.
var ErrChallengeNotMapped = errors.New("solve does not map to a known challenge")

// ErrSolverNotResolved is logged when the solver of a CTFd solve cannot be
// looked up. The solve stays unannounced and is retried on the next tick.
var ErrSolverNotResolved = errors.New("solver could not be resolved")

// DBInterface defines the store operations the reconciler needs.
// Implemented by *database.DB.
type DBInterface interface {
	GetChallenge(ctx context.Context, competitionID int64, name, category string) (*models.Challenge, error)
	InsertChallenge(ctx context.Context, ch *models.Challenge) error
	UpdateChallengePoints(ctx context.Context, id int64, points int) (bool, error)

	GetHTBChallenge(ctx context.Context, htbID int64, name string) (*models.HTBChallenge, error)
	InsertHTBChallenge(ctx context.Context, ch *models.HTBChallenge) error
	UpdateHTBChallengePoints(ctx context.Context, id int64, points int) (bool, error)
	RecordHTBSolve(ctx context.Context, solve *models.HTBSolve) (*models.HTBSolve, error)
}

// Result counts the rows a ReconcileChallenges run touched.
type Result struct {
	Inserted int
	Updated  int
}

// Reconciler applies remote state to the store.
type Reconciler struct {
	db DBInterface
}

// New creates a reconciler.
func New(db DBInterface) *Reconciler {
	return &Reconciler{db: db}
}

// ReconcileChallenges inserts challenges the store has not seen and refreshes
// the point value of known challenges while they are unsolved.
func (r *Reconciler) ReconcileChallenges(ctx context.Context, target provider.Target) (Result, error) {
	remote, err := target.Provider.FetchChallenges(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("fetch challenges for %s: %w", target.Name, err)
	}

	var res Result
	for i := range remote {
		var (
			inserted, updated bool
			err               error
		)
		if target.IsHTB() {
			inserted, updated, err = r.reconcileHTBChallenge(ctx, &remote[i])
		} else {
			inserted, updated, err = r.reconcileChallenge(ctx, target.ID, &remote[i])
		}
		if err != nil {
			return res, err
		}
		if inserted {
			res.Inserted++
		}
		if updated {
			res.Updated++
		}
	}

	metrics.RecordReconcile(string(target.Kind()), res.Inserted, res.Updated)
	if res.Inserted > 0 || res.Updated > 0 {
		logging.Ctx(ctx).Info().
			Str("target", target.Name).
			Int("inserted", res.Inserted).
			Int("updated", res.Updated).
			Msg("Challenges reconciled")
	}
	return res, nil
}

func (r *Reconciler) reconcileChallenge(ctx context.Context, competitionID int64, rc *models.RemoteChallenge) (inserted, updated bool, err error) {
	existing, err := r.db.GetChallenge(ctx, competitionID, rc.Name, rc.Category)
	if errors.Is(err, database.ErrNotFound) {
		ch := &models.Challenge{
			CompetitionID: competitionID,
			Name:          rc.Name,
			Category:      rc.Category,
			Points:        rc.Points,
		}
		if err := r.db.InsertChallenge(ctx, ch); err != nil {
			return false, false, err
		}
		return true, false, nil
	}
	if err != nil {
		return false, false, err
	}
	if existing.Solved || existing.Points == rc.Points {
		return false, false, nil
	}
	updated, err = r.db.UpdateChallengePoints(ctx, existing.ID, rc.Points)
	return false, updated, err
}

func (r *Reconciler) reconcileHTBChallenge(ctx context.Context, rc *models.RemoteChallenge) (inserted, updated bool, err error) {
	existing, err := r.db.GetHTBChallenge(ctx, rc.RemoteID, rc.Name)
	if errors.Is(err, database.ErrNotFound) {
		ch := &models.HTBChallenge{
			HTBID:       rc.RemoteID,
			Name:        rc.Name,
			Category:    rc.Category,
			Difficulty:  rc.Difficulty,
			Points:      rc.Points,
			ReleaseDate: rc.ReleaseDate,
		}
		if err := r.db.InsertHTBChallenge(ctx, ch); err != nil {
			return false, false, err
		}
		return true, false, nil
	}
	if err != nil {
		return false, false, err
	}
	if existing.Solved || existing.Points == rc.Points {
		return false, false, nil
	}
	updated, err = r.db.UpdateHTBChallengePoints(ctx, existing.ID, rc.Points)
	return false, updated, err
}

// FindNewSolves returns the target's remote solves that have not been
// announced, in provider order. A solve whose challenge is unknown locally is
// logged and skipped. A fetch failure aborts with no state change.
//
// For HTB every solve is first recorded as a per-user row keyed by
// (user, challenge, solve type), so polling twice before an announcement
// never produces a second row.
func (r *Reconciler) FindNewSolves(ctx context.Context, target provider.Target) ([]models.PendingSolve, error) {
	remote, err := target.Provider.FetchTeamSolves(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch solves for %s: %w", target.Name, err)
	}

	kind := string(target.Kind())
	var pending []models.PendingSolve
	for i := range remote {
		var (
			ps  *models.PendingSolve
			err error
		)
		if target.IsHTB() {
			ps, err = r.pendingHTBSolve(ctx, &remote[i])
		} else {
			ps, err = r.pendingSolve(ctx, target, &remote[i])
		}
		if errors.Is(err, ErrChallengeNotMapped) {
			metrics.SolvesUnmapped.WithLabelValues(kind).Inc()
			logging.Ctx(ctx).Warn().
				Err(err).
				Str("target", target.Name).
				Str("challenge", remote[i].ChallengeName).
				Str("category", remote[i].Category).
				Msg("Skipping unmapped solve")
			continue
		}
		if errors.Is(err, ErrSolverNotResolved) {
			logging.Ctx(ctx).Warn().
				Err(err).
				Str("target", target.Name).
				Str("challenge", remote[i].ChallengeName).
				Int64("user_id", remote[i].UserID).
				Msg("Skipping solve with unresolved solver")
			continue
		}
		if err != nil {
			return nil, err
		}
		if ps != nil {
			pending = append(pending, *ps)
		}
	}

	if len(pending) > 0 {
		metrics.SolvesDetected.WithLabelValues(kind).Add(float64(len(pending)))
	}
	return pending, nil
}

func (r *Reconciler) pendingSolve(ctx context.Context, target provider.Target, rs *models.RemoteSolve) (*models.PendingSolve, error) {
	ch, err := r.db.GetChallenge(ctx, target.ID, rs.ChallengeName, rs.Category)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%q/%q: %w", rs.ChallengeName, rs.Category, ErrChallengeNotMapped)
	}
	if err != nil {
		return nil, err
	}
	if ch.Announced {
		return nil, nil
	}

	solver := rs.Username
	if solver == "" {
		user, err := target.Provider.ResolveUser(ctx, rs.UserID)
		if err != nil {
			return nil, fmt.Errorf("%w: user %d: %w", ErrSolverNotResolved, rs.UserID, err)
		}
		solver = user.Name
	}

	return &models.PendingSolve{
		CompetitionID: target.ID,
		ChallengeID:   ch.ID,
		ChallengeName: ch.Name,
		Category:      ch.Category,
		Points:        ch.Points,
		SolverID:      rs.UserID,
		Solver:        solver,
		Kind:          rs.Kind,
		SolvedAt:      rs.SolvedAt,
	}, nil
}

func (r *Reconciler) pendingHTBSolve(ctx context.Context, rs *models.RemoteSolve) (*models.PendingSolve, error) {
	ch, err := r.db.GetHTBChallenge(ctx, rs.RemoteChallengeID, rs.ChallengeName)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("htb %d %q: %w", rs.RemoteChallengeID, rs.ChallengeName, ErrChallengeNotMapped)
	}
	if err != nil {
		return nil, err
	}

	stored, err := r.db.RecordHTBSolve(ctx, &models.HTBSolve{
		UserID:      rs.UserID,
		Username:    rs.Username,
		ChallengeID: ch.ID,
		SolveType:   rs.Kind,
		SolvedTime:  rs.SolvedAt,
	})
	if err != nil {
		return nil, err
	}
	if stored.Announced {
		return nil, nil
	}

	return &models.PendingSolve{
		CompetitionID: provider.HTBTargetID,
		ChallengeID:   ch.ID,
		SolveID:       stored.ID,
		ChallengeName: ch.Name,
		Category:      ch.Category,
		Points:        ch.Points,
		SolverID:      stored.UserID,
		Solver:        stored.Username,
		Kind:          stored.SolveType,
		SolvedAt:      stored.SolvedTime,
	}, nil
}
