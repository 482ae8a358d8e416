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

// LatestRank returns the most recent team rank snapshot.
func (db *DB) LatestRank(ctx context.Context) (*models.RankSnapshot, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var r models.RankSnapshot
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, rank, points, recorded_at FROM htb_team_rank ORDER BY id DESC LIMIT 1`,
	).Scan(&r.ID, &r.Rank, &r.Points, &r.RecordedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("team rank: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest rank: %w", err)
	}
	return &r, nil
}

// InsertRank appends a team rank snapshot.
func (db *DB) InsertRank(ctx context.Context, rank, points int) (*models.RankSnapshot, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	id, err := db.nextIDLocked(ctx, "htb_team_rank")
	if err != nil {
		return nil, err
	}

	snap := &models.RankSnapshot{ID: id, Rank: rank, Points: points, RecordedAt: time.Now().UTC()}
	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO htb_team_rank (id, rank, points, recorded_at) VALUES (?, ?, ?, ?)`,
		snap.ID, snap.Rank, snap.Points, snap.RecordedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert rank: %w", err)
	}
	return snap, nil
}

// UpsertUserMapping links an HTB user to a Discord user, replacing any previous link.
func (db *DB) UpsertUserMapping(ctx context.Context, m models.UserIdentityMapping) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO htb_user_mappings (htb_id, discord_id) VALUES (?, ?)
		ON CONFLICT (htb_id) DO UPDATE SET discord_id = excluded.discord_id`,
		m.HTBID, m.DiscordID)
	if err != nil {
		return fmt.Errorf("failed to upsert user mapping: %w", err)
	}
	return nil
}

// GetDiscordID returns the Discord user linked to an HTB user.
func (db *DB) GetDiscordID(ctx context.Context, htbID int64) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var discordID int64
	err := db.conn.QueryRowContext(ctx,
		`SELECT discord_id FROM htb_user_mappings WHERE htb_id = ?`, htbID).Scan(&discordID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("user mapping %d: %w", htbID, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get user mapping: %w", err)
	}
	return discordID, nil
}
