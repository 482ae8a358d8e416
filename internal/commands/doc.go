// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

// Package commands implements the operator commands of the tracker:
// starting and ending competitions, the "working on" tracker, HTB lookups
// and user identity mapping.
//
// Commands share the provider registry with the scheduler, so a started
// competition is polled from the next tick on and an ended one is dropped.
package commands
