// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

package provider

import (
	"context"
	"time"

	"github.com/tomtom215/ctftracker/internal/cache"
	"github.com/tomtom215/ctftracker/internal/metrics"
	"github.com/tomtom215/ctftracker/internal/models"
)

// DefaultUserCacheTTL bounds how stale a cached solver name may get.
const DefaultUserCacheTTL = 30 * time.Minute

// UserCache wraps a Provider and remembers ResolveUser results.
// Every other method passes straight through.
type UserCache struct {
	Provider
	users *cache.LRU[int64, models.RemoteUser]
}

var _ Provider = (*UserCache)(nil)

// WithUserCache wraps p. A non-positive ttl selects DefaultUserCacheTTL.
func WithUserCache(p Provider, capacity int, ttl time.Duration) *UserCache {
	if ttl <= 0 {
		ttl = DefaultUserCacheTTL
	}
	return &UserCache{
		Provider: p,
		users:    cache.NewLRU[int64, models.RemoteUser](capacity, ttl),
	}
}

// ResolveUser returns the cached profile or fetches and caches it.
// Failures are not cached.
func (u *UserCache) ResolveUser(ctx context.Context, id int64) (*models.RemoteUser, error) {
	kind := string(u.Kind())
	if user, ok := u.users.Get(id); ok {
		metrics.UserCacheLookups.WithLabelValues(kind, "hit").Inc()
		return &user, nil
	}
	metrics.UserCacheLookups.WithLabelValues(kind, "miss").Inc()

	user, err := u.Provider.ResolveUser(ctx, id)
	if err != nil {
		return nil, err
	}
	u.users.Add(id, *user)
	return user, nil
}
