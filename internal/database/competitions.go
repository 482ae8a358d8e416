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

const competitionColumns = `id, name, base_url, api_url, api_key, channel_id, active, created_at`

// CreateCompetition inserts a new active competition and assigns its ID.
// APIURL is derived from BaseURL when empty.
// Returns ErrCompetitionExists if an active competition has the same name.
func (db *DB) CreateCompetition(ctx context.Context, comp *models.Competition) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	var existing int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM competitions WHERE name = ? AND active = true`, comp.Name,
	).Scan(&existing)
	if err != nil {
		return fmt.Errorf("failed to check existing competition: %w", err)
	}
	if existing > 0 {
		return fmt.Errorf("%w: %s", ErrCompetitionExists, comp.Name)
	}

	id, err := db.nextIDLocked(ctx, "competitions")
	if err != nil {
		return err
	}

	comp.ID = id
	comp.Active = true
	if comp.APIURL == "" {
		comp.APIURL = models.DeriveAPIURL(comp.BaseURL)
	}
	if comp.CreatedAt.IsZero() {
		comp.CreatedAt = time.Now().UTC()
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO competitions (`+competitionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		comp.ID, comp.Name, comp.BaseURL, comp.APIURL, comp.APIKey, comp.ChannelID, comp.Active, comp.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create competition: %w", err)
	}
	return nil
}

// GetCompetition retrieves a competition by ID, active or not.
func (db *DB) GetCompetition(ctx context.Context, id int64) (*models.Competition, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx, `SELECT `+competitionColumns+` FROM competitions WHERE id = ?`, id)
	comp, err := scanCompetition(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("competition %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get competition: %w", err)
	}
	return comp, nil
}

// GetActiveCompetitionByName retrieves the active competition with the given name.
func (db *DB) GetActiveCompetitionByName(ctx context.Context, name string) (*models.Competition, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx,
		`SELECT `+competitionColumns+` FROM competitions WHERE name = ? AND active = true`, name)
	comp, err := scanCompetition(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("competition %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get competition: %w", err)
	}
	return comp, nil
}

// ListActiveCompetitions returns all active competitions ordered by ID.
func (db *DB) ListActiveCompetitions(ctx context.Context) ([]models.Competition, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+competitionColumns+` FROM competitions WHERE active = true ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list active competitions: %w", err)
	}
	defer closeWithLog(rows, "rows")

	comps := make([]models.Competition, 0)
	for rows.Next() {
		comp, err := scanCompetition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan competition: %w", err)
		}
		comps = append(comps, *comp)
	}
	return comps, rows.Err()
}

// DeactivateCompetition soft-deletes a competition. Its history is kept.
func (db *DB) DeactivateCompetition(ctx context.Context, id int64) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	result, err := db.conn.ExecContext(ctx, `UPDATE competitions SET active = false WHERE id = ? AND active = true`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate competition: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("active competition %d: %w", id, ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCompetition(row rowScanner) (*models.Competition, error) {
	var c models.Competition
	if err := row.Scan(&c.ID, &c.Name, &c.BaseURL, &c.APIURL, &c.APIKey, &c.ChannelID, &c.Active, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}
