/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errlog

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/storekit"
	"github.com/suparena/storekit/backend/memory"
	storerrors "github.com/suparena/storekit/errors"
)

func newStore(t *testing.T) (*Store, *memory.Store) {
	t.Helper()
	b := memory.New()
	e := storekit.New(b)
	return New(e, nil), b
}

func TestAppendAndAll(t *testing.T) {
	s, _ := newStore(t)

	require.NoError(t, s.Append(Entry{Message: "boom", Name: "TypeError", URL: "/settings"}))

	entries := s.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "boom", entries[0].Message)
	assert.Equal(t, "TypeError", entries[0].Name)
	assert.NotEmpty(t, entries[0].ID, "ID should be filled in")
	assert.False(t, time.Time(entries[0].Timestamp).IsZero(), "Timestamp should be filled in")
}

func TestEmptyBufferIsEmpty(t *testing.T) {
	s, _ := newStore(t)
	assert.Empty(t, s.All())
}

func TestFIFOEviction(t *testing.T) {
	s, _ := newStore(t)

	for i := 0; i < MaxEntries+1; i++ {
		require.NoError(t, s.Append(Entry{Message: fmt.Sprintf("error %d", i)}))
	}

	entries := s.All()
	require.Len(t, entries, MaxEntries, "an 11th append must retain exactly 10 entries")
	assert.Equal(t, "error 1", entries[0].Message, "the oldest entry is evicted first")
	assert.Equal(t, fmt.Sprintf("error %d", MaxEntries), entries[len(entries)-1].Message)
}

// quotaBackend rejects writes whose value exceeds maxValue bytes with a
// quota-classified error, so degrade behavior can be pinned exactly.
type quotaBackend struct {
	*memory.Store
	maxValue int
}

func (q *quotaBackend) SetItem(key, value string) error {
	if len(value) > q.maxValue {
		return &storerrors.StorageError{
			Kind:    storerrors.KindQuotaExceeded,
			Message: "quota exceeded",
		}
	}
	return q.Store.SetItem(key, value)
}

func TestQuotaDegradeToSlimEntries(t *testing.T) {
	// Room for the slimmed buffer but not for full entries.
	b := &quotaBackend{Store: memory.New(), maxValue: 2048}
	e := storekit.New(b)
	s := New(e, nil)

	stack := strings.Repeat("at frame\n", 400) // ~3.6 KB per full entry
	for i := 0; i < 6; i++ {
		err := s.Append(Entry{
			Message: fmt.Sprintf("crash %d", i),
			Stack:   stack,
			URL:     "/app",
		})
		require.NoError(t, err, "append %d should survive via the degrade sequence", i)
	}

	entries := s.All()
	require.NotEmpty(t, entries)
	assert.LessOrEqual(t, len(entries), degradeKeep)
	for _, entry := range entries {
		assert.Empty(t, entry.Stack, "slimmed entries keep only message, timestamp and url")
		assert.NotEmpty(t, entry.Message)
		assert.Equal(t, "/app", entry.URL)
	}
}

func TestQuotaDegradeAllAttemptsFail(t *testing.T) {
	b := &quotaBackend{Store: memory.New(), maxValue: 8} // probe fits, nothing else does
	e := storekit.New(b)
	s := New(e, nil)

	err := s.Append(Entry{Message: "crash", Stack: strings.Repeat("x", 100)})
	require.Error(t, err, "append must surface failure when all three attempts fail")
	assert.Equal(t, storerrors.KindQuotaExceeded, storerrors.KindOf(err))
}

func TestNonQuotaFailureDoesNotRetry(t *testing.T) {
	b := memory.New()
	e := storekit.New(b)
	s := New(e, nil)

	b.WithSetError(errors.New("backend fell over"))

	err := s.Append(Entry{Message: "crash"})
	require.Error(t, err)
	assert.Equal(t, storerrors.KindUnknown, storerrors.KindOf(err))
}

func TestSelfHealingOnCorruptBuffer(t *testing.T) {
	s, b := newStore(t)

	require.NoError(t, b.SetItem(Key, "{definitely not a json array"))

	assert.Empty(t, s.All(), "corrupt buffer reads as empty")
	_, ok, err := b.GetItem(Key)
	require.NoError(t, err)
	assert.False(t, ok, "corrupt buffer should be removed")

	// The store is usable again afterwards.
	require.NoError(t, s.Append(Entry{Message: "fresh"}))
	assert.Len(t, s.All(), 1)
}

func TestClear(t *testing.T) {
	s, b := newStore(t)

	require.NoError(t, s.Append(Entry{Message: "boom"}))
	s.Clear()

	assert.Empty(t, s.All())
	_, ok, err := b.GetItem(Key)
	require.NoError(t, err)
	assert.False(t, ok)
}
