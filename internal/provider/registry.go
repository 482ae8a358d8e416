// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

package provider

import (
	"sort"
	"sync"

	"github.com/tomtom215/ctftracker/internal/metrics"
)

// Registry holds the active CTFd targets keyed by competition id.
// It is populated at startup from the store and updated by the start and
// end commands. Scheduler loops read it through Snapshot on every tick.
type Registry struct {
	mu      sync.RWMutex
	targets map[int64]Target
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{targets: make(map[int64]Target)}
}

// Insert adds or replaces the target for t.ID.
func (r *Registry) Insert(t Target) {
	r.mu.Lock()
	r.targets[t.ID] = t
	n := len(r.targets)
	r.mu.Unlock()

	metrics.ActiveTargets.Set(float64(n))
}

// Remove drops the target with the given id and reports whether it existed.
func (r *Registry) Remove(id int64) bool {
	r.mu.Lock()
	_, ok := r.targets[id]
	delete(r.targets, id)
	n := len(r.targets)
	r.mu.Unlock()

	metrics.ActiveTargets.Set(float64(n))
	return ok
}

// Lookup returns the target for id.
func (r *Registry) Lookup(id int64) (Target, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.targets[id]
	return t, ok
}

// Snapshot returns a copy of all targets ordered by id.
// Callers may iterate it without holding the registry lock.
func (r *Registry) Snapshot() []Target {
	r.mu.RLock()
	out := make([]Target, 0, len(r.targets))
	for _, t := range r.targets {
		out = append(out, t)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of registered targets.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.targets)
}
