// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

// Package scheduler runs the fixed-interval polling loops.
//
// There are four loops: solve polling and catalogue refresh, each for CTFd
// competitions (read from the registry on every tick) and for the HTB team.
// Every loop is a suture.Service, ticks once on start and then on a
// time.Ticker, and isolates failures per target.
package scheduler
