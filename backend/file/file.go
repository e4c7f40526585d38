/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package file provides a persistent Backend implementation backed by a
// single JSON file. It is the "local" scope analog: data written here
// survives process restarts.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/suparena/storekit/backend"
	storerrors "github.com/suparena/storekit/errors"
)

// Store persists a flat map[string]string to one JSON file. Writes go
// through a temp file and rename so a crash mid-write never corrupts the
// previous snapshot. The byte quota is metered over the sum of key and
// value lengths, which keeps usage accounting identical to what callers
// can compute from the entries themselves.
type Store struct {
	mu       sync.RWMutex
	path     string
	data     map[string]string
	usage    uint64
	maxBytes uint64
}

// Option configures a Store.
type Option func(*Store)

// WithMaxBytes sets the byte quota. Zero means the default 5 MiB quota.
func WithMaxBytes(n uint64) Option {
	return func(s *Store) { s.maxBytes = n }
}

// New opens (or creates) the store file at path. A missing file starts an
// empty store; an unreadable or undecodable file is an error so the caller
// can decide whether to discard it.
func New(path string, opts ...Option) (*Store, error) {
	s := &Store{
		path:     path,
		data:     make(map[string]string),
		maxBytes: backend.DefaultQuota,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.maxBytes == 0 {
		s.maxBytes = backend.DefaultQuota
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		if errors.Is(err, os.ErrPermission) {
			return nil, &storerrors.StorageError{
				Kind:    storerrors.KindPermissionDenied,
				Message: fmt.Sprintf("open %s: permission denied", path),
				Cause:   err,
			}
		}
		return nil, fmt.Errorf("failed to read store file %s: %w", path, err)
	}
	if len(raw) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, &storerrors.StorageError{
			Kind:    storerrors.KindParseError,
			Message: fmt.Sprintf("store file %s is not valid JSON", path),
			Cause:   err,
		}
	}
	for k, v := range s.data {
		s.usage += uint64(len(k) + len(v))
	}
	return s, nil
}

// Path returns the file the store persists to.
func (s *Store) Path() string {
	return s.path
}

// GetItem returns the value stored under key.
func (s *Store) GetItem(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	return v, ok, nil
}

// SetItem stores value under key and flushes the snapshot to disk.
func (s *Store) SetItem(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.usage + uint64(len(key)+len(value))
	old, existed := s.data[key]
	if existed {
		next -= uint64(len(key) + len(old))
	}
	if next > s.maxBytes {
		return &storerrors.StorageError{
			Kind:    storerrors.KindQuotaExceeded,
			Message: fmt.Sprintf("write of %d bytes exceeds %d byte quota", len(key)+len(value), s.maxBytes),
			Key:     key,
		}
	}

	s.data[key] = value
	if err := s.flush(); err != nil {
		// Roll back the in-memory state so memory and disk stay in step.
		if existed {
			s.data[key] = old
		} else {
			delete(s.data, key)
		}
		return err
	}
	s.usage = next
	return nil
}

// RemoveItem deletes key and flushes; missing keys are ignored.
func (s *Store) RemoveItem(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.data[key]
	if !ok {
		return nil
	}
	delete(s.data, key)
	if err := s.flush(); err != nil {
		s.data[key] = old
		return err
	}
	s.usage -= uint64(len(key) + len(old))
	return nil
}

// Clear removes every key and truncates the snapshot.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.data
	s.data = make(map[string]string)
	if err := s.flush(); err != nil {
		s.data = old
		return err
	}
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

// Estimate reports entry-byte usage against the quota.
func (s *Store) Estimate(_ context.Context) (backend.Estimate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return backend.Estimate{Usage: s.usage, Quota: s.maxBytes}, nil
}

// flush writes the snapshot via temp file + rename. Callers hold the lock.
func (s *Store) flush() error {
	raw, err := json.Marshal(s.data)
	if err != nil {
		return &storerrors.StorageError{
			Kind:    storerrors.KindSerializeError,
			Message: "failed to encode store snapshot",
			Cause:   err,
		}
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp*")
	if err != nil {
		return classifyOS(err, "failed to create temp snapshot")
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return classifyOS(err, "failed to write snapshot")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return classifyOS(err, "failed to close snapshot")
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return classifyOS(err, "failed to replace snapshot")
	}
	return nil
}

func classifyOS(err error, msg string) error {
	kind := storerrors.KindUnknown
	switch {
	case errors.Is(err, os.ErrPermission):
		kind = storerrors.KindPermissionDenied
	case errors.Is(err, syscall.ENOSPC):
		kind = storerrors.KindQuotaExceeded
	}
	return &storerrors.StorageError{Kind: kind, Message: fmt.Sprintf("%s: %v", msg, err), Cause: err}
}
