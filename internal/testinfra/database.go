// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

package testinfra

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/ctftracker/internal/config"
	"github.com/tomtom215/ctftracker/internal/database"
	"github.com/tomtom215/ctftracker/internal/models"
)

// dbSemaphore limits concurrent DuckDB instances across parallel tests.
var dbSemaphore = make(chan struct{}, 2)

// dbMutex serializes database creation.
var dbMutex sync.Mutex

// NewTestDB opens an in-memory store that is closed when the test ends.
func NewTestDB(t *testing.T) *database.DB {
	t.Helper()

	dbSemaphore <- struct{}{}
	t.Cleanup(func() { <-dbSemaphore })

	type result struct {
		db  *database.DB
		err error
	}
	resultCh := make(chan result, 1)
	go func() {
		dbMutex.Lock()
		db, err := database.New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "512MB"})
		dbMutex.Unlock()
		resultCh <- result{db: db, err: err}
	}()

	select {
	case res := <-resultCh:
		if res.err != nil {
			t.Fatalf("Failed to create test database: %v", res.err)
		}
		t.Cleanup(func() { _ = res.db.Close() })
		return res.db
	case <-time.After(120 * time.Second):
		t.Fatalf("Timeout: database creation took longer than 120s")
		return nil
	}
}

// CreateCompetition inserts an active CTFd competition named name.
func CreateCompetition(t *testing.T, db *database.DB, name string, channelID int64) *models.Competition {
	t.Helper()
	comp := &models.Competition{
		Name:      name,
		BaseURL:   "https://" + name + ".example.com",
		APIKey:    "ctfd_test_key",
		ChannelID: channelID,
	}
	if err := db.CreateCompetition(context.Background(), comp); err != nil {
		t.Fatalf("Failed to create competition: %v", err)
	}
	return comp
}
