// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

package services

import (
	"context"
	"time"

	"github.com/tomtom215/ctftracker/internal/logging"
)

// DefaultCheckpointInterval is how often the store WAL is folded into the
// database file.
const DefaultCheckpointInterval = 5 * time.Minute

// Checkpointer is satisfied by *database.DB.
type Checkpointer interface {
	Checkpoint(ctx context.Context) error
}

// CheckpointService periodically checkpoints the store so that an unclean
// exit loses as little of the WAL as possible. A failed checkpoint is logged
// and retried on the next interval. The store is checkpointed once more on
// shutdown.
type CheckpointService struct {
	store    Checkpointer
	interval time.Duration
	name     string
}

// NewCheckpointService wraps store. A non-positive interval selects
// DefaultCheckpointInterval.
func NewCheckpointService(store Checkpointer, interval time.Duration) *CheckpointService {
	if interval <= 0 {
		interval = DefaultCheckpointInterval
	}
	return &CheckpointService{
		store:    store,
		interval: interval,
		name:     "store-checkpoint",
	}
}

// Serve implements suture.Service.
func (c *CheckpointService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			finalCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			c.checkpoint(finalCtx)
			cancel()
			return ctx.Err()
		case <-ticker.C:
			c.checkpoint(ctx)
		}
	}
}

func (c *CheckpointService) checkpoint(ctx context.Context) {
	if err := c.store.Checkpoint(ctx); err != nil {
		logging.Warn().Err(err).Msg("Store checkpoint failed")
		return
	}
	logging.Debug().Msg("Store checkpoint completed")
}

// String implements fmt.Stringer for suture logging.
func (c *CheckpointService) String() string {
	return c.name
}
