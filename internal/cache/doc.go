// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

// Package cache provides a generic in-memory LRU cache with TTL expiry.
//
// It backs provider.UserCache, which keeps resolved solver names so a busy
// competition does not cost one user lookup per announced solve:
//
//	users := cache.NewLRU[int64, models.RemoteUser](cache.DefaultCapacity, 30*time.Minute)
//	if u, ok := users.Get(id); ok {
//	    return &u, nil
//	}
package cache
