/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package memory provides a volatile in-process Backend implementation,
// used for session-scoped storage and as the test double for everything
// built on top of the backend abstraction.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/suparena/storekit/backend"
	storerrors "github.com/suparena/storekit/errors"
)

// Store is a mutex-guarded map implementing backend.Backend. The zero
// MaxBytes means unlimited; a positive MaxBytes enforces a byte quota over
// the sum of key and value lengths, mirroring how origin quotas meter
// storage.
type Store struct {
	mu       sync.RWMutex
	data     map[string]string
	usage    uint64
	maxBytes uint64

	getErr error
	setErr error
}

// New creates an empty Store with no quota.
func New() *Store {
	return &Store{data: make(map[string]string)}
}

// WithMaxBytes sets the byte quota and returns the store.
func (s *Store) WithMaxBytes(n uint64) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxBytes = n
	return s
}

// WithGetError makes every read fail with err until reset with nil.
func (s *Store) WithGetError(err error) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getErr = err
	return s
}

// WithSetError makes every write fail with err until reset with nil.
func (s *Store) WithSetError(err error) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setErr = err
	return s
}

// GetItem returns the value stored under key.
func (s *Store) GetItem(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.getErr != nil {
		return "", false, s.getErr
	}
	v, ok := s.data[key]
	return v, ok, nil
}

// SetItem stores value under key, enforcing the quota when one is set.
func (s *Store) SetItem(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.setErr != nil {
		return s.setErr
	}

	next := s.usage + entrySize(key, value)
	if old, ok := s.data[key]; ok {
		next -= entrySize(key, old)
	}
	if s.maxBytes > 0 && next > s.maxBytes {
		return &storerrors.StorageError{
			Kind:    storerrors.KindQuotaExceeded,
			Message: fmt.Sprintf("write of %d bytes exceeds %d byte quota", entrySize(key, value), s.maxBytes),
		}
	}

	s.data[key] = value
	s.usage = next
	return nil
}

// RemoveItem deletes key; missing keys are ignored.
func (s *Store) RemoveItem(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.data[key]; ok {
		s.usage -= entrySize(key, old)
		delete(s.data, key)
	}
	return nil
}

// Clear removes every key.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[string]string)
	s.usage = 0
	return nil
}

// Keys returns all stored keys.
func (s *Store) Keys() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys, nil
}

// Estimate reports current usage against the quota (or the default assumed
// quota when none is set).
func (s *Store) Estimate(_ context.Context) (backend.Estimate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	quota := s.maxBytes
	if quota == 0 {
		quota = backend.DefaultQuota
	}
	return backend.Estimate{Usage: s.usage, Quota: quota}, nil
}

func entrySize(key, value string) uint64 {
	return uint64(len(key) + len(value))
}
