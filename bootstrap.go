/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storekit

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/suparena/storekit/backend"
	"github.com/suparena/storekit/backend/file"
	"github.com/suparena/storekit/backend/memory"
	"github.com/suparena/storekit/notify"
)

// Namespaces used by the standard stores. Tokens live apart from UI
// preferences so the two can never collide; the error log keeps its
// historic un-namespaced key.
const (
	AuthNamespace = "auth"
	UINamespace   = "ui"
)

// Engine names under which Bootstrap registers the standard engines.
const (
	AuthEngine     = "auth"
	UIEngine       = "ui"
	ErrorLogEngine = "errorlog"
)

// localStoreFile is the snapshot file backing the local scope.
const localStoreFile = "local.json"

// Stores bundles the singletons an application constructs once at startup
// and passes to its consumers. There is no teardown beyond Close: storage
// backends outlive the process.
type Stores struct {
	Manager *Manager
	Hub     *notify.Hub

	// Auth is the persistent, auth-namespaced engine (token storage).
	Auth *Engine
	// UI is the persistent, ui-namespaced engine (preferences).
	UI *Engine
	// ErrorLog is the volatile, un-namespaced engine (crash buffer).
	ErrorLog *Engine

	watcher *notify.Watcher
}

// Bootstrap builds the standard store set: a file-backed local scope under
// dir (shared by the auth and ui engines), an in-memory session scope for
// the error log, a notification hub, and a file watcher that surfaces
// external writes to the local scope.
func Bootstrap(dir string, logger *zap.Logger) (*Stores, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	path := filepath.Join(dir, localStoreFile)
	local, err := file.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	session := memory.New()
	hub := notify.NewHub()

	s := &Stores{
		Manager: NewManager(),
		Hub:     hub,
		Auth: New(local,
			WithScope(backend.Local),
			WithNamespace(AuthNamespace),
			WithLogger(logger),
			WithNotifier(hub)),
		UI: New(local,
			WithScope(backend.Local),
			WithNamespace(UINamespace),
			WithLogger(logger),
			WithNotifier(hub)),
		ErrorLog: New(session,
			WithScope(backend.Session),
			WithLogger(logger)),
	}

	for name, e := range map[string]*Engine{
		AuthEngine:     s.Auth,
		UIEngine:       s.UI,
		ErrorLogEngine: s.ErrorLog,
	} {
		if err := s.Manager.Register(name, e); err != nil {
			return nil, err
		}
	}

	w, err := notify.NewWatcher(path, hub, logger)
	if err != nil {
		// The watcher is an enrichment; storage still works without it.
		logger.Warn("external change watcher unavailable", zap.Error(err))
	} else {
		s.watcher = w
	}
	return s, nil
}

// Close stops the external change watcher, if one is running.
func (s *Stores) Close() error {
	if s.watcher == nil {
		return nil
	}
	return s.watcher.Close()
}
