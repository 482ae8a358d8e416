// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/ctftracker/internal/models"
)

const challengeColumns = `id, competition_id, name, category, points, solved, solver, solved_time, working, announced`

// InsertChallenge inserts a new unsolved, unannounced challenge and assigns its ID.
func (db *DB) InsertChallenge(ctx context.Context, ch *models.Challenge) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	id, err := db.nextIDLocked(ctx, "challenges")
	if err != nil {
		return err
	}
	ch.ID = id

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO challenges (`+challengeColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ch.ID, ch.CompetitionID, ch.Name, ch.Category, ch.Points,
		ch.Solved, nullString(ch.Solver), nullTime(ch.SolvedTime), workingValue(ch.Working), ch.Announced,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("challenge %q/%q already exists: %w", ch.Name, ch.Category, err)
		}
		return fmt.Errorf("failed to insert challenge: %w", err)
	}
	return nil
}

// GetChallenge looks a challenge up by its dedup key.
func (db *DB) GetChallenge(ctx context.Context, competitionID int64, name, category string) (*models.Challenge, error) {
	return db.queryChallenge(ctx,
		`SELECT `+challengeColumns+` FROM challenges WHERE competition_id = ? AND name = ? AND category = ?`,
		competitionID, name, category)
}

// GetChallengeByID retrieves a challenge by ID.
func (db *DB) GetChallengeByID(ctx context.Context, id int64) (*models.Challenge, error) {
	return db.queryChallenge(ctx, `SELECT `+challengeColumns+` FROM challenges WHERE id = ?`, id)
}

// FindChallengeByName returns the first challenge in a competition with the
// given name, in any category.
func (db *DB) FindChallengeByName(ctx context.Context, competitionID int64, name string) (*models.Challenge, error) {
	return db.queryChallenge(ctx,
		`SELECT `+challengeColumns+` FROM challenges WHERE competition_id = ? AND name = ? ORDER BY id LIMIT 1`,
		competitionID, name)
}

// ListChallenges returns every challenge of a competition.
func (db *DB) ListChallenges(ctx context.Context, competitionID int64) ([]models.Challenge, error) {
	return db.queryChallenges(ctx,
		`SELECT `+challengeColumns+` FROM challenges WHERE competition_id = ? ORDER BY category, name`,
		competitionID)
}

// SearchChallenges returns the challenges whose name contains term, case-insensitively.
func (db *DB) SearchChallenges(ctx context.Context, competitionID int64, term string) ([]models.Challenge, error) {
	return db.queryChallenges(ctx,
		`SELECT `+challengeColumns+` FROM challenges
		WHERE competition_id = ? AND contains(lower(name), lower(?))
		ORDER BY category, name`,
		competitionID, term)
}

// UpdateChallengePoints updates the point value of an unsolved challenge.
// Returns true if a row changed.
func (db *DB) UpdateChallengePoints(ctx context.Context, id int64, points int) (bool, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE challenges SET points = ? WHERE id = ? AND solved = false AND points <> ?`,
		points, id, points)
	if err != nil {
		return false, fmt.Errorf("failed to update challenge points: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}

// SetChallengeWorking overwrites the working set of a challenge.
// Callers do their own read-modify-write; concurrent writers race and the
// last write wins.
func (db *DB) SetChallengeWorking(ctx context.Context, id int64, working models.WorkingSet) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	result, err := db.conn.ExecContext(ctx, `UPDATE challenges SET working = ? WHERE id = ?`, workingValue(working), id)
	if err != nil {
		return fmt.Errorf("failed to update working set: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("challenge %d: %w", id, ErrNotFound)
	}
	return nil
}

// MarkChallengeSolved records solver and solve time, marks the challenge
// announced, and removes the solver from the working set.
func (db *DB) MarkChallengeSolved(ctx context.Context, id int64, solver string, solvedAt time.Time) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	var working models.WorkingSet
	err := db.conn.QueryRowContext(ctx, `SELECT working FROM challenges WHERE id = ?`, id).Scan(&working)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("challenge %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to read working set: %w", err)
	}
	working.Remove(solver)

	_, err = db.conn.ExecContext(ctx,
		`UPDATE challenges
		SET solved = true, solver = ?, solved_time = ?, announced = true, working = ?
		WHERE id = ?`,
		solver, solvedAt.UTC(), workingValue(working), id)
	if err != nil {
		return fmt.Errorf("failed to mark challenge solved: %w", err)
	}
	return nil
}

func (db *DB) queryChallenge(ctx context.Context, query string, args ...interface{}) (*models.Challenge, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	ch, err := scanChallenge(db.conn.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("challenge: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get challenge: %w", err)
	}
	return ch, nil
}

func (db *DB) queryChallenges(ctx context.Context, query string, args ...interface{}) ([]models.Challenge, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query challenges: %w", err)
	}
	defer closeWithLog(rows, "rows")

	challenges := make([]models.Challenge, 0)
	for rows.Next() {
		ch, err := scanChallenge(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan challenge: %w", err)
		}
		challenges = append(challenges, *ch)
	}
	return challenges, rows.Err()
}

func scanChallenge(row rowScanner) (*models.Challenge, error) {
	var (
		c          models.Challenge
		solver     sql.NullString
		solvedTime sql.NullTime
	)
	err := row.Scan(&c.ID, &c.CompetitionID, &c.Name, &c.Category, &c.Points,
		&c.Solved, &solver, &solvedTime, &c.Working, &c.Announced)
	if err != nil {
		return nil, err
	}
	if solver.Valid {
		c.Solver = &solver.String
	}
	if solvedTime.Valid {
		c.SolvedTime = &solvedTime.Time
	}
	return &c, nil
}
