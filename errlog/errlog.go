/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package errlog keeps a bounded buffer of serialized crash reports in
// session-scoped storage. The buffer holds the 10 most recent entries with
// FIFO eviction — error order is itself diagnostic value, so the oldest
// entry goes first, not the least recently read.
package errlog

import (
	"encoding/json"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/suparena/storekit"
	storerrors "github.com/suparena/storekit/errors"
)

// Key is the well-known, un-namespaced storage key holding the buffer.
const Key = "error_log"

// MaxEntries is the buffer capacity.
const MaxEntries = 10

// degradeKeep is how many entries survive the first quota-degrade retry.
const degradeKeep = 5

// Entry is one serialized crash report.
type Entry struct {
	ID             string          `json:"id,omitempty"`
	Message        string          `json:"message"`
	Name           string          `json:"name,omitempty"`
	Stack          string          `json:"stack,omitempty"`
	Timestamp      strfmt.DateTime `json:"timestamp"`
	UserAgent      string          `json:"userAgent,omitempty"`
	URL            string          `json:"url,omitempty"`
	ComponentStack string          `json:"componentStack,omitempty"`
	Metadata       map[string]any  `json:"metadata,omitempty"`
}

// slim strips an entry down to the facts worth keeping when storage is
// nearly full: fewer, smaller facts beat total data loss.
func (e Entry) slim() Entry {
	return Entry{
		Message:   e.Message,
		Timestamp: e.Timestamp,
		URL:       e.URL,
	}
}

// Store is the error-log store over a session-scoped engine.
type Store struct {
	engine *storekit.Engine
	logger *zap.Logger
}

// New creates a Store over the given engine, normally the error-log engine
// from storekit.Bootstrap.
func New(engine *storekit.Engine, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{engine: engine, logger: logger}
}

// Append adds entry to the buffer, evicting the oldest entries beyond
// MaxEntries. A quota-exceeded write degrades twice: first retrying with
// only the newest 5 entries, then with slimmed entries. Append fails only
// when all three attempts fail.
func (s *Store) Append(entry Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if time.Time(entry.Timestamp).IsZero() {
		entry.Timestamp = strfmt.DateTime(time.Now().UTC())
	}

	buf := append(s.All(), entry)
	if len(buf) > MaxEntries {
		buf = buf[len(buf)-MaxEntries:]
	}

	err := storekit.Set(s.engine, Key, buf)
	if err == nil {
		return nil
	}
	if storerrors.KindOf(err) != storerrors.KindQuotaExceeded {
		return err
	}
	s.logger.Warn("error log write rejected, retrying with reduced buffer",
		zap.Int("entries", len(buf)),
		zap.String("kind", string(storerrors.KindOf(err))))

	if len(buf) > degradeKeep {
		buf = buf[len(buf)-degradeKeep:]
	}
	err = storekit.Set(s.engine, Key, buf)
	if err == nil {
		s.logger.Info("error log stored after dropping older entries",
			zap.Int("entries", len(buf)))
		return nil
	}
	s.logger.Warn("reduced error log write rejected, retrying with slimmed entries",
		zap.String("kind", string(storerrors.KindOf(err))))

	slims := make([]Entry, len(buf))
	for i, e := range buf {
		slims[i] = e.slim()
	}
	err = storekit.Set(s.engine, Key, slims)
	if err == nil {
		s.logger.Info("error log stored with slimmed entries",
			zap.Int("entries", len(slims)))
		return nil
	}
	s.logger.Error("error log write failed after degrade sequence",
		zap.String("kind", string(storerrors.KindOf(err))),
		zap.Error(err))
	return err
}

// All returns the buffer, or an empty slice. A corrupt buffer is removed —
// stale or undecodable diagnostic data is worse than no data — and empty is
// returned.
func (s *Store) All() []Entry {
	raw, ok := s.engine.GetRaw(Key)
	if !ok {
		return nil
	}
	var buf []Entry
	if err := json.Unmarshal([]byte(raw), &buf); err != nil {
		s.logger.Warn("error log corrupted, discarding",
			zap.String("kind", string(storerrors.KindParseError)),
			zap.Error(err))
		s.engine.Remove(Key)
		return nil
	}
	return buf
}

// Clear removes the buffer.
func (s *Store) Clear() {
	s.engine.Remove(Key)
}
