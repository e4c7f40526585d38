/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storekit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/suparena/storekit/backend"
	storerrors "github.com/suparena/storekit/errors"
	"github.com/suparena/storekit/notify"
)

// probeKey is the disposable sentinel written at construction to decide
// whether the backend is usable at all.
const probeKey = "__storekit_probe__"

// nsSeparator joins a namespace and a logical key into a physical key.
const nsSeparator = "_"

// Engine wraps one Backend with key namespacing, JSON-aware serialization,
// availability probing and change notification. The namespace is fixed at
// construction. Availability is probed once, at construction; a backend
// that degrades later surfaces through per-operation failures, not a state
// transition.
type Engine struct {
	backend   backend.Backend
	scope     backend.Scope
	namespace string
	logger    *zap.Logger
	notifier  notify.Notifier
	available bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithNamespace partitions the engine's keys under the given prefix.
func WithNamespace(ns string) Option {
	return func(e *Engine) { e.namespace = ns }
}

// WithLogger sets the engine's logger. The default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithNotifier makes the engine dispatch a change event after every
// successful write or removal.
func WithNotifier(n notify.Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithScope records the engine's persistence scope, used for reporting
// only. The default is backend.Local.
func WithScope(s backend.Scope) Option {
	return func(e *Engine) { e.scope = s }
}

// New constructs an Engine over b and probes availability with a
// write-then-delete of a sentinel key.
func New(b backend.Backend, opts ...Option) *Engine {
	e := &Engine{
		backend: b,
		scope:   backend.Local,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.available = e.probe()
	if !e.available {
		e.logger.Warn("storage backend unavailable, reads degrade to defaults",
			zap.String("scope", string(e.scope)),
			zap.String("namespace", e.namespace))
	}
	return e
}

func (e *Engine) probe() bool {
	key := e.physicalKey(probeKey)
	if err := e.backend.SetItem(key, "1"); err != nil {
		return false
	}
	if err := e.backend.RemoveItem(key); err != nil {
		return false
	}
	return true
}

// Probe re-runs the sentinel write-then-delete and reports whether the
// backend currently accepts writes. It does not change Available, which is
// fixed at construction; the diagnostics layer uses Probe for point-in-time
// health checks.
func (e *Engine) Probe() bool {
	return e.probe()
}

// Available reports the result of the construction-time probe.
func (e *Engine) Available() bool {
	return e.available
}

// Namespace returns the engine's key prefix, or "" when un-namespaced.
func (e *Engine) Namespace() string {
	return e.namespace
}

// Scope returns the engine's persistence scope.
func (e *Engine) Scope() backend.Scope {
	return e.scope
}

// Backend exposes the underlying store, for read-only introspection by the
// diagnostics layer.
func (e *Engine) Backend() backend.Backend {
	return e.backend
}

func (e *Engine) physicalKey(key string) string {
	if e.namespace == "" {
		return key
	}
	return e.namespace + nsSeparator + key
}

// ownsKey reports whether a physical key belongs to this engine's
// namespace, and returns the logical key when it does.
func (e *Engine) ownsKey(physical string) (string, bool) {
	if e.namespace == "" {
		return physical, true
	}
	prefix := e.namespace + nsSeparator
	if !strings.HasPrefix(physical, prefix) {
		return "", false
	}
	return physical[len(prefix):], true
}

// GetRaw reads the stored string for key. It reports false for a missing
// key, an unavailable backend, a read failure, or the literal placeholder
// strings "undefined"/"null" (historic writers persisted those instead of
// removing the key). It never returns an error: read paths degrade.
func (e *Engine) GetRaw(key string) (string, bool) {
	if !e.available {
		return "", false
	}
	raw, ok, err := e.backend.GetItem(e.physicalKey(key))
	if err != nil {
		e.logger.Warn("storage read failed",
			zap.String("key", key),
			zap.String("kind", string(storerrors.KindOf(err))),
			zap.Error(err))
		return "", false
	}
	if !ok || raw == "undefined" || raw == "null" {
		return "", false
	}
	return raw, true
}

// SetRaw writes an already-serialized value. Unlike the read operations it
// is loud on failure: a silently dropped write would be undetectable data
// loss, so an unavailable backend yields a StorageDisabled error and any
// backend failure is classified and returned.
func (e *Engine) SetRaw(key, raw string) error {
	if !e.available {
		return &storerrors.StorageError{
			Kind:    storerrors.KindStorageDisabled,
			Message: "backend unavailable",
			Key:     key,
		}
	}
	if err := e.backend.SetItem(e.physicalKey(key), raw); err != nil {
		serr := storerrors.Wrap(err, key)
		if serr.Kind == storerrors.KindQuotaExceeded {
			e.logger.Warn("storage quota exceeded",
				zap.String("key", key),
				zap.Int("approx_value_bytes", len(raw)),
				zap.String("namespace", e.namespace))
		}
		return serr
	}
	e.dispatch(key, &raw)
	return nil
}

// Remove deletes key. Removal failures are not actionable by callers, so
// they are logged and swallowed.
func (e *Engine) Remove(key string) {
	if !e.available {
		return
	}
	if err := e.backend.RemoveItem(e.physicalKey(key)); err != nil {
		e.logger.Warn("storage remove failed",
			zap.String("key", key),
			zap.String("kind", string(storerrors.KindOf(err))),
			zap.Error(err))
		return
	}
	e.dispatch(key, nil)
}

// Clear removes the engine's keys. A namespaced engine deletes only keys
// carrying its prefix; unrelated namespaces in the same physical backend
// are untouched. An un-namespaced engine clears the whole backend.
func (e *Engine) Clear() error {
	if !e.available {
		return nil
	}
	if e.namespace == "" {
		if err := e.backend.Clear(); err != nil {
			return storerrors.Wrap(err, "")
		}
		return nil
	}
	keys, err := e.backend.Keys()
	if err != nil {
		return storerrors.Wrap(err, "")
	}
	for _, physical := range keys {
		if _, owned := e.ownsKey(physical); !owned {
			continue
		}
		if err := e.backend.RemoveItem(physical); err != nil {
			return storerrors.Wrap(err, physical)
		}
	}
	return nil
}

// Has reports whether key holds a usable value.
func (e *Engine) Has(key string) bool {
	_, ok := e.GetRaw(key)
	return ok
}

// Size returns the number of keys owned by the engine's namespace.
func (e *Engine) Size() int {
	return len(e.AllKeys())
}

// AllKeys returns the engine's logical (namespace-stripped) keys.
func (e *Engine) AllKeys() []string {
	if !e.available {
		return nil
	}
	physical, err := e.backend.Keys()
	if err != nil {
		e.logger.Warn("storage key enumeration failed", zap.Error(err))
		return nil
	}
	keys := make([]string, 0, len(physical))
	for _, p := range physical {
		if logical, owned := e.ownsKey(p); owned {
			keys = append(keys, logical)
		}
	}
	return keys
}

// PhysicalKeys returns the engine's owned keys in physical (namespaced)
// form, for introspection layers that meter stored bytes against the
// physical records.
func (e *Engine) PhysicalKeys() []string {
	if !e.available {
		return nil
	}
	physical, err := e.backend.Keys()
	if err != nil {
		e.logger.Warn("storage key enumeration failed", zap.Error(err))
		return nil
	}
	owned := make([]string, 0, len(physical))
	for _, p := range physical {
		if _, ok := e.ownsKey(p); ok {
			owned = append(owned, p)
		}
	}
	return owned
}

// Info is a synchronous storage usage snapshot. Usage sums physical key and
// value lengths over the engine's owned entries, which is a byte-size proxy
// rather than true on-disk accounting.
type Info struct {
	Available   bool    `json:"available"`
	Usage       uint64  `json:"usage"`
	Quota       uint64  `json:"quota"`
	PercentUsed float64 `json:"percentUsed"`
}

// estimateTimeout bounds the out-of-band estimator goroutine so it cannot
// leak when a backend hangs.
const estimateTimeout = 5 * time.Second

// StorageInfo returns the synchronous usage snapshot. When the backend can
// estimate its own usage/quota, the estimate is fetched in a goroutine and
// logged out-of-band; it is enrichment, never part of the return value.
func (e *Engine) StorageInfo() Info {
	info := Info{Available: e.available, Quota: backend.DefaultQuota}
	if !e.available {
		return info
	}

	physical, err := e.backend.Keys()
	if err != nil {
		e.logger.Warn("storage key enumeration failed", zap.Error(err))
		return info
	}
	for _, p := range physical {
		if _, owned := e.ownsKey(p); !owned {
			continue
		}
		if raw, ok, err := e.backend.GetItem(p); err == nil && ok {
			info.Usage += uint64(len(p) + len(raw))
		}
	}
	info.PercentUsed = float64(info.Usage) / float64(info.Quota) * 100

	if est, ok := e.backend.(backend.Estimator); ok {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), estimateTimeout)
			defer cancel()
			res, err := est.Estimate(ctx)
			if err != nil {
				e.logger.Debug("backend estimate failed", zap.Error(err))
				return
			}
			e.logger.Info("backend storage estimate",
				zap.Uint64("usage", res.Usage),
				zap.Uint64("quota", res.Quota),
				zap.String("namespace", e.namespace))
		}()
	}
	return info
}

func (e *Engine) dispatch(key string, newValue *string) {
	if e.notifier == nil {
		return
	}
	e.notifier.Dispatch(notify.Event{
		Key:      e.physicalKey(key),
		NewValue: newValue,
		Source:   e.source(),
	})
}

func (e *Engine) source() string {
	if e.namespace == "" {
		return string(e.scope)
	}
	return fmt.Sprintf("%s/%s", e.scope, e.namespace)
}
