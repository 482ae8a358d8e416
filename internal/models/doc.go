// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

/*
Package models defines data structures for ctftracker.

This package holds the entity types persisted by the database layer, the
normalized records returned by provider clients, and the JSON views served by
the REST API. It is the single source of truth for data structure definitions
and has no dependencies on other internal packages.

Key Components:

  - Competition: a tracked CTFd-style event with its API credentials
  - Challenge / HTBChallenge: per-platform challenge records
  - HTBSolve: a per-user HackTheBox solve row (challenge, user or root own)
  - WorkingSet: the "working on" set, stored as a ", "-joined string
  - RemoteChallenge / RemoteSolve / TeamStats: provider-normalized data
  - PendingSolve: a solve found by the reconciler that is not yet announced

Derivations:

DeriveStatus and DerivePriority compute the REST "status" and "priority"
fields from stored state. They are pure and safe for concurrent use.

	status := models.DeriveStatus(ch.Solved, ch.Working)    // DONE, INPROGRESS, TODO
	priority := models.DerivePriority(ch.Points)             // LOW .. HIGHEST

Thread Safety:

Model values are plain data. WorkingSet methods with pointer receivers mutate
in place and must not be shared between goroutines without synchronization.
*/
package models
