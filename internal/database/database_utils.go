// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/ctftracker/internal/models"
)

// defaultQueryTimeout bounds store calls made without a deadline.
const defaultQueryTimeout = 30 * time.Second

// ensureContext creates a context with 30-second timeout if none provided
func (db *DB) ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return context.WithTimeout(context.Background(), defaultQueryTimeout)
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		return context.WithTimeout(ctx, defaultQueryTimeout)
	}

	return ctx, func() {}
}

// Checkpoint forces a WAL checkpoint
func (db *DB) Checkpoint(ctx context.Context) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if _, err := db.conn.ExecContext(ctx, "CHECKPOINT"); err != nil {
		return fmt.Errorf("checkpoint failed: %w", err)
	}
	return nil
}

// nextIDLocked returns the next free id for table. Caller must hold writeMu.
// table is always one of the package's own table names.
func (db *DB) nextIDLocked(ctx context.Context, table string) (int64, error) {
	query := fmt.Sprintf("SELECT COALESCE(MAX(id), 0) + 1 FROM %s", table)

	var nextID int64
	if err := db.conn.QueryRowContext(ctx, query).Scan(&nextID); err != nil {
		return 0, fmt.Errorf("failed to get next %s id: %w", table, err)
	}
	return nextID, nil
}

// nullString converts an optional string to a driver value.
func nullString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

// nullTime converts an optional time to a driver value.
func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

// workingValue converts a working set to its stored form, NULL when empty.
func workingValue(ws models.WorkingSet) interface{} {
	if ws.IsEmpty() {
		return nil
	}
	return ws.String()
}
