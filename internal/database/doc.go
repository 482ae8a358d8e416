// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

// Package database provides the DuckDB-backed state store for ctftracker.
//
// # Overview
//
// The store is the sole writer of competition, challenge, solve, score and
// rank state. Reconciliation, announcement and the "working on" commands all
// go through methods on *DB.
//
// Core Database Operations:
//   - database.go: lifecycle (open, initialize, close, ping)
//   - database_schema.go: table and index creation
//   - database_connection.go: connection pool configuration
//   - database_utils.go: context defaults, checkpoint, id allocation
//
// Domain Operations:
//   - competitions.go: CTFd competitions (create, lookup, deactivate)
//   - challenges.go: CTFd challenges, solve marking, working sets
//   - htb.go: HackTheBox challenges, per-user solves, working sets
//   - htb_team.go: team rank snapshots and user identity mappings
//   - scoreboard.go: per-competition score history
//
// # Identifiers
//
// DuckDB has no auto-increment for PRIMARY KEY columns, so ids are allocated
// as COALESCE(MAX(id), 0) + 1 while holding the store's write mutex. All
// inserts and multi-statement writes take the same mutex.
//
// # Errors
//
// Lookups that match no row return ErrNotFound (wrapped), so callers can use
// errors.Is regardless of which table was queried.
//
// # Usage Example
//
//	db, err := database.New(&cfg.Database)
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("Failed to open database")
//	}
//	defer db.Close()
//
//	challenges, err := db.ListChallenges(ctx, competitionID)
package database
