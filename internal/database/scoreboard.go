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

// InsertScore appends a row to a competition's score history.
func (db *DB) InsertScore(ctx context.Context, competitionID int64, points int, position string) (*models.ScoreEntry, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	id, err := db.nextIDLocked(ctx, "scoreboard")
	if err != nil {
		return nil, err
	}

	entry := &models.ScoreEntry{
		ID:            id,
		CompetitionID: competitionID,
		Points:        points,
		Position:      position,
		EntryTime:     time.Now().UTC(),
	}
	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO scoreboard (id, competition_id, points, position, entry_time) VALUES (?, ?, ?, ?, ?)`,
		entry.ID, entry.CompetitionID, entry.Points, entry.Position, entry.EntryTime)
	if err != nil {
		return nil, fmt.Errorf("failed to insert score: %w", err)
	}
	return entry, nil
}

// LatestScore returns the newest score history row of a competition.
func (db *DB) LatestScore(ctx context.Context, competitionID int64) (*models.ScoreEntry, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var e models.ScoreEntry
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, competition_id, points, position, entry_time FROM scoreboard
		WHERE competition_id = ? ORDER BY entry_time DESC, id DESC LIMIT 1`, competitionID,
	).Scan(&e.ID, &e.CompetitionID, &e.Points, &e.Position, &e.EntryTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("score for competition %d: %w", competitionID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest score: %w", err)
	}
	return &e, nil
}

// ScoreHistory returns every score row of a competition, oldest first.
func (db *DB) ScoreHistory(ctx context.Context, competitionID int64) ([]models.ScoreEntry, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, competition_id, points, position, entry_time FROM scoreboard
		WHERE competition_id = ? ORDER BY entry_time, id`, competitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query score history: %w", err)
	}
	defer closeWithLog(rows, "rows")

	entries := make([]models.ScoreEntry, 0)
	for rows.Next() {
		var e models.ScoreEntry
		if err := rows.Scan(&e.ID, &e.CompetitionID, &e.Points, &e.Position, &e.EntryTime); err != nil {
			return nil, fmt.Errorf("failed to scan score: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
