/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storekit

import (
	"fmt"
	"sort"
	"sync"
)

// Manager is a thread-safe registry of named Engine instances. The
// diagnostics layer iterates registered engines; application code resolves
// its engine once at bootstrap and holds the reference.
type Manager struct {
	mu      sync.RWMutex
	engines map[string]*Engine
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{
		engines: make(map[string]*Engine),
	}
}

// Register stores the provided Engine under the given name.
func (m *Manager) Register(name string, e *Engine) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.engines[name]; exists {
		return fmt.Errorf("engine with name %q already registered", name)
	}
	m.engines[name] = e
	return nil
}

// Get retrieves the Engine registered under the given name.
func (m *Manager) Get(name string) (*Engine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, exists := m.engines[name]
	if !exists {
		return nil, fmt.Errorf("engine with name %q not found", name)
	}
	return e, nil
}

// Names returns all registered engine names, sorted.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.engines))
	for n := range m.engines {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Each calls fn for every registered engine, in name order.
func (m *Manager) Each(fn func(name string, e *Engine)) {
	m.mu.RLock()
	snapshot := make(map[string]*Engine, len(m.engines))
	for n, e := range m.engines {
		snapshot[n] = e
	}
	m.mu.RUnlock()

	names := make([]string, 0, len(snapshot))
	for n := range snapshot {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fn(n, snapshot[n])
	}
}
