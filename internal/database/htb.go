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

const htbChallengeColumns = `id, htb_id, name, category, difficulty, points, release_date, solved, solver, solved_time, working, announced`

const htbSolveColumns = `id, user_id, username, challenge_id, solve_type, announced, solved_time`

// InsertHTBChallenge inserts a new unsolved HTB challenge or machine and assigns its ID.
func (db *DB) InsertHTBChallenge(ctx context.Context, ch *models.HTBChallenge) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	id, err := db.nextIDLocked(ctx, "htb_challenges")
	if err != nil {
		return err
	}
	ch.ID = id

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO htb_challenges (`+htbChallengeColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ch.ID, ch.HTBID, ch.Name, ch.Category, ch.Difficulty, ch.Points, ch.ReleaseDate,
		ch.Solved, nullString(ch.Solver), nullTime(ch.SolvedTime), workingValue(ch.Working), ch.Announced,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("htb challenge %d/%q already exists: %w", ch.HTBID, ch.Name, err)
		}
		return fmt.Errorf("failed to insert htb challenge: %w", err)
	}
	return nil
}

// GetHTBChallenge looks an HTB challenge up by its dedup key.
func (db *DB) GetHTBChallenge(ctx context.Context, htbID int64, name string) (*models.HTBChallenge, error) {
	return db.queryHTBChallenge(ctx,
		`SELECT `+htbChallengeColumns+` FROM htb_challenges WHERE htb_id = ? AND name = ?`, htbID, name)
}

// GetHTBChallengeByID retrieves an HTB challenge by local ID.
func (db *DB) GetHTBChallengeByID(ctx context.Context, id int64) (*models.HTBChallenge, error) {
	return db.queryHTBChallenge(ctx, `SELECT `+htbChallengeColumns+` FROM htb_challenges WHERE id = ?`, id)
}

// FindHTBChallengeByName returns the first HTB challenge or machine with the given name.
func (db *DB) FindHTBChallengeByName(ctx context.Context, name string) (*models.HTBChallenge, error) {
	return db.queryHTBChallenge(ctx,
		`SELECT `+htbChallengeColumns+` FROM htb_challenges WHERE name = ? ORDER BY id LIMIT 1`, name)
}

// ListHTBChallenges returns every tracked HTB challenge and machine.
func (db *DB) ListHTBChallenges(ctx context.Context) ([]models.HTBChallenge, error) {
	return db.queryHTBChallenges(ctx,
		`SELECT `+htbChallengeColumns+` FROM htb_challenges ORDER BY category, name`)
}

// SearchHTBChallenges returns HTB entries whose name contains term, case-insensitively.
func (db *DB) SearchHTBChallenges(ctx context.Context, term string) ([]models.HTBChallenge, error) {
	return db.queryHTBChallenges(ctx,
		`SELECT `+htbChallengeColumns+` FROM htb_challenges
		WHERE contains(lower(name), lower(?))
		ORDER BY category, name`, term)
}

// UpdateHTBChallengePoints updates the point value of an unsolved HTB challenge.
// Returns true if a row changed.
func (db *DB) UpdateHTBChallengePoints(ctx context.Context, id int64, points int) (bool, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE htb_challenges SET points = ? WHERE id = ? AND solved = false AND points <> ?`,
		points, id, points)
	if err != nil {
		return false, fmt.Errorf("failed to update htb challenge points: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}

// SetHTBChallengeWorking overwrites the working set of an HTB challenge.
func (db *DB) SetHTBChallengeWorking(ctx context.Context, id int64, working models.WorkingSet) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	result, err := db.conn.ExecContext(ctx, `UPDATE htb_challenges SET working = ? WHERE id = ?`, workingValue(working), id)
	if err != nil {
		return fmt.Errorf("failed to update htb working set: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("htb challenge %d: %w", id, ErrNotFound)
	}
	return nil
}

// MarkHTBChallengeSolved marks an HTB challenge solved and announced.
// The first solver is kept: solver and solve time are only recorded, and the
// solver removed from the working set, when the challenge was unsolved.
func (db *DB) MarkHTBChallengeSolved(ctx context.Context, id int64, solver string, solvedAt time.Time) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	var (
		solved  bool
		working models.WorkingSet
	)
	err := db.conn.QueryRowContext(ctx, `SELECT solved, working FROM htb_challenges WHERE id = ?`, id).Scan(&solved, &working)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("htb challenge %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to read htb challenge: %w", err)
	}

	if solved {
		_, err = db.conn.ExecContext(ctx, `UPDATE htb_challenges SET announced = true WHERE id = ?`, id)
	} else {
		working.Remove(solver)
		_, err = db.conn.ExecContext(ctx,
			`UPDATE htb_challenges
			SET solved = true, solver = ?, solved_time = ?, announced = true, working = ?
			WHERE id = ?`,
			solver, solvedAt.UTC(), workingValue(working), id)
	}
	if err != nil {
		return fmt.Errorf("failed to mark htb challenge solved: %w", err)
	}
	return nil
}

// RecordHTBSolve inserts a per-user solve row unless one already exists for
// (user_id, challenge_id, solve_type), then returns the stored row.
// Existing rows keep their announced flag, so repeated polls never duplicate
// or re-arm a solve.
func (db *DB) RecordHTBSolve(ctx context.Context, solve *models.HTBSolve) (*models.HTBSolve, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	id, err := db.nextIDLocked(ctx, "htb_solves")
	if err != nil {
		return nil, err
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO htb_solves (`+htbSolveColumns+`) VALUES (?, ?, ?, ?, ?, false, ?)
		ON CONFLICT (user_id, challenge_id, solve_type) DO NOTHING`,
		id, solve.UserID, solve.Username, solve.ChallengeID, solve.SolveType, solve.SolvedTime.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record htb solve: %w", err)
	}

	stored, err := scanHTBSolve(db.conn.QueryRowContext(ctx,
		`SELECT `+htbSolveColumns+` FROM htb_solves WHERE user_id = ? AND challenge_id = ? AND solve_type = ?`,
		solve.UserID, solve.ChallengeID, solve.SolveType))
	if err != nil {
		return nil, fmt.Errorf("failed to read htb solve: %w", err)
	}
	return stored, nil
}

// MarkHTBSolveAnnounced flags a per-user solve row as announced.
func (db *DB) MarkHTBSolveAnnounced(ctx context.Context, solveID int64) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	result, err := db.conn.ExecContext(ctx, `UPDATE htb_solves SET announced = true WHERE id = ?`, solveID)
	if err != nil {
		return fmt.Errorf("failed to mark htb solve announced: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("htb solve %d: %w", solveID, ErrNotFound)
	}
	return nil
}

// CountHTBSolves returns the number of stored per-user solve rows.
func (db *DB) CountHTBSolves(ctx context.Context) (int, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM htb_solves`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count htb solves: %w", err)
	}
	return n, nil
}

// ListUserSolves returns a user's solves joined with their challenges, newest first.
func (db *DB) ListUserSolves(ctx context.Context, username string) ([]models.UserSolve, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT s.id, s.user_id, s.username, s.challenge_id, s.solve_type, s.announced, s.solved_time,
			c.id, c.htb_id, c.name, c.category, c.difficulty, c.points, c.release_date,
			c.solved, c.solver, c.solved_time, c.working, c.announced
		FROM htb_solves s
		JOIN htb_challenges c ON c.id = s.challenge_id
		WHERE lower(s.username) = lower(?)
		ORDER BY s.solved_time DESC`, username)
	if err != nil {
		return nil, fmt.Errorf("failed to list user solves: %w", err)
	}
	defer closeWithLog(rows, "rows")

	solves := make([]models.UserSolve, 0)
	for rows.Next() {
		var (
			us                             models.UserSolve
			difficulty, release, solverCol sql.NullString
			solvedTime                     sql.NullTime
		)
		s, c := &us.Solve, &us.Challenge
		err := rows.Scan(&s.ID, &s.UserID, &s.Username, &s.ChallengeID, &s.SolveType, &s.Announced, &s.SolvedTime,
			&c.ID, &c.HTBID, &c.Name, &c.Category, &difficulty, &c.Points, &release,
			&c.Solved, &solverCol, &solvedTime, &c.Working, &c.Announced)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user solve: %w", err)
		}
		c.Difficulty, c.ReleaseDate = difficulty.String, release.String
		if solverCol.Valid {
			c.Solver = &solverCol.String
		}
		if solvedTime.Valid {
			c.SolvedTime = &solvedTime.Time
		}
		solves = append(solves, us)
	}
	return solves, rows.Err()
}

func (db *DB) queryHTBChallenge(ctx context.Context, query string, args ...interface{}) (*models.HTBChallenge, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	ch, err := scanHTBChallenge(db.conn.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("htb challenge: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get htb challenge: %w", err)
	}
	return ch, nil
}

func (db *DB) queryHTBChallenges(ctx context.Context, query string, args ...interface{}) ([]models.HTBChallenge, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query htb challenges: %w", err)
	}
	defer closeWithLog(rows, "rows")

	challenges := make([]models.HTBChallenge, 0)
	for rows.Next() {
		ch, err := scanHTBChallenge(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan htb challenge: %w", err)
		}
		challenges = append(challenges, *ch)
	}
	return challenges, rows.Err()
}

func scanHTBChallenge(row rowScanner) (*models.HTBChallenge, error) {
	var (
		c                   models.HTBChallenge
		difficulty, release sql.NullString
		solver              sql.NullString
		solvedTime          sql.NullTime
	)
	err := row.Scan(&c.ID, &c.HTBID, &c.Name, &c.Category, &difficulty, &c.Points, &release,
		&c.Solved, &solver, &solvedTime, &c.Working, &c.Announced)
	if err != nil {
		return nil, err
	}
	c.Difficulty, c.ReleaseDate = difficulty.String, release.String
	if solver.Valid {
		c.Solver = &solver.String
	}
	if solvedTime.Valid {
		c.SolvedTime = &solvedTime.Time
	}
	return &c, nil
}

func scanHTBSolve(row rowScanner) (*models.HTBSolve, error) {
	var s models.HTBSolve
	if err := row.Scan(&s.ID, &s.UserID, &s.Username, &s.ChallengeID, &s.SolveType, &s.Announced, &s.SolvedTime); err != nil {
		return nil, err
	}
	return &s, nil
}
