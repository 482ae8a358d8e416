// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

/*
database_schema.go - Database Schema Management

Tables:
  - competitions: tracked CTFd events and their API credentials
  - challenges: CTFd challenges, unique per (competition_id, name, category)
  - htb_challenges: HackTheBox challenges and machines, unique per (htb_id, name)
  - htb_solves: per-user HTB solves, unique per (user_id, challenge_id, solve_type)
  - htb_team_rank: append-only team rank snapshots
  - htb_user_mappings: HTB user id to Discord user id
  - scoreboard: append-only per-competition score history

The "working" columns hold a ", "-joined set of names, NULL when empty.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core database tables
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range getTableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

// getTableCreationQueries returns the table creation SQL statements
func getTableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS competitions (
			id BIGINT PRIMARY KEY,
			name TEXT NOT NULL,
			base_url TEXT NOT NULL,
			api_url TEXT NOT NULL,
			api_key TEXT NOT NULL,
			channel_id BIGINT NOT NULL DEFAULT 0,
			active BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS challenges (
			id BIGINT PRIMARY KEY,
			competition_id BIGINT NOT NULL,
			name TEXT NOT NULL,
			category TEXT NOT NULL,
			points INTEGER NOT NULL DEFAULT 0,
			solved BOOLEAN NOT NULL DEFAULT false,
			solver TEXT,
			solved_time TIMESTAMP,
			working TEXT,
			announced BOOLEAN NOT NULL DEFAULT false,
			UNIQUE (competition_id, name, category)
		)`,

		`CREATE TABLE IF NOT EXISTS htb_challenges (
			id BIGINT PRIMARY KEY,
			htb_id BIGINT NOT NULL,
			name TEXT NOT NULL,
			category TEXT NOT NULL,
			difficulty TEXT,
			points INTEGER NOT NULL DEFAULT 0,
			release_date TEXT,
			solved BOOLEAN NOT NULL DEFAULT false,
			solver TEXT,
			solved_time TIMESTAMP,
			working TEXT,
			announced BOOLEAN NOT NULL DEFAULT false,
			UNIQUE (htb_id, name)
		)`,

		`CREATE TABLE IF NOT EXISTS htb_solves (
			id BIGINT PRIMARY KEY,
			user_id BIGINT NOT NULL,
			username TEXT NOT NULL,
			challenge_id BIGINT NOT NULL,
			solve_type TEXT NOT NULL,
			announced BOOLEAN NOT NULL DEFAULT false,
			solved_time TIMESTAMP NOT NULL,
			UNIQUE (user_id, challenge_id, solve_type)
		)`,

		`CREATE TABLE IF NOT EXISTS htb_team_rank (
			id BIGINT PRIMARY KEY,
			rank INTEGER NOT NULL,
			points INTEGER NOT NULL,
			recorded_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS htb_user_mappings (
			htb_id BIGINT PRIMARY KEY,
			discord_id BIGINT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS scoreboard (
			id BIGINT PRIMARY KEY,
			competition_id BIGINT NOT NULL,
			points INTEGER NOT NULL,
			position TEXT NOT NULL,
			entry_time TIMESTAMP NOT NULL
		)`,
	}
}

// createIndexes creates lookup indexes for the hot read paths
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_competitions_active ON competitions(active)`,
		`CREATE INDEX IF NOT EXISTS idx_challenges_competition ON challenges(competition_id)`,
		`CREATE INDEX IF NOT EXISTS idx_htb_solves_username ON htb_solves(username)`,
		`CREATE INDEX IF NOT EXISTS idx_scoreboard_competition_time ON scoreboard(competition_id, entry_time)`,
	}

	for _, query := range indexes {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", query, err)
		}
	}
	return nil
}
