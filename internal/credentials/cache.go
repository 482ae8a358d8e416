// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

// Package credentials persists provider access tokens in BadgerDB so a
// restart can reuse a token that has not expired yet.
//
// Entries are written with a TTL equal to the token's remaining lifetime,
// so badger drops them on its own once they expire.
package credentials

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/ctftracker/internal/config"
	"github.com/tomtom215/ctftracker/internal/logging"
	"github.com/tomtom215/ctftracker/internal/metrics"
)

// keyPrefix namespaces credential keys in the badger keyspace
const keyPrefix = "credential:"

// entry is the stored value for one credential.
type entry struct {
	Token    string    `json:"token"`
	StoredAt time.Time `json:"stored_at"`
}

// Cache is a badger-backed token cache.
type Cache struct {
	db *badger.DB
}

// Open opens the cache described by cfg. In-memory mode keeps nothing on disk.
func Open(cfg *config.CredentialsConfig) (*Cache, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create credential cache directory: %w", err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open credential cache: %w", err)
	}
	return &Cache{db: db}, nil
}

// New wraps an already open badger database.
func New(db *badger.DB) *Cache {
	return &Cache{db: db}
}

// Get returns the token stored under key. ok is false when no unexpired
// token exists.
func (c *Cache) Get(key string) (token string, ok bool, err error) {
	var e entry
	err = c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &e)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		metrics.CredentialCacheLookups.WithLabelValues("miss").Inc()
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get credential: %w", err)
	}

	metrics.CredentialCacheLookups.WithLabelValues("hit").Inc()
	return e.Token, true, nil
}

// Set stores token under key for ttl. A non-positive ttl is ignored since
// the token is already unusable.
func (c *Cache) Set(key, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(entry{Token: token, StoredAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal credential: %w", err)
	}

	err = c.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(keyPrefix+key), data).WithTTL(ttl))
	})
	if err != nil {
		return fmt.Errorf("set credential: %w", err)
	}

	logging.Debug().Str("key", key).Dur("ttl", ttl).Msg("Credential cached")
	return nil
}

// Delete removes the token stored under key.
func (c *Cache) Delete(key string) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keyPrefix + key))
	})
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("delete credential: %w", err)
	}
	return nil
}

// Close closes the underlying badger database.
func (c *Cache) Close() error {
	return c.db.Close()
}
