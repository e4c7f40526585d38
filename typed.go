/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storekit

import (
	"encoding/json"

	"go.uber.org/zap"

	storerrors "github.com/suparena/storekit/errors"
)

// Get reads and decodes the value under key. The boolean reports whether a
// usable value was found; a missing key, unavailable backend or undecodable
// value all yield (zero, false) — reads never fail loudly.
//
// Strings are stored verbatim, so when T is string a value that does not
// decode as JSON is returned as-is. This keeps raw string round-trips
// byte-identical and tolerates values written by JSON-unaware code.
func Get[T any](e *Engine, key string) (T, bool) {
	var out T
	raw, ok := e.GetRaw(key)
	if !ok {
		return out, false
	}
	if err := json.Unmarshal([]byte(raw), &out); err == nil {
		return out, true
	}
	if s, isString := any(&out).(*string); isString {
		*s = raw
		return out, true
	}
	e.logger.Warn("stored value not decodable",
		zap.String("key", key),
		zap.String("kind", string(storerrors.KindParseError)))
	var zero T
	return zero, false
}

// GetOr reads the value under key, returning def when no usable value is
// found.
func GetOr[T any](e *Engine, key string, def T) T {
	if v, ok := Get[T](e, key); ok {
		return v
	}
	return def
}

// Set serializes value and writes it under key. Strings are stored verbatim
// (not JSON-quoted); nil serializes to the literal "null"; everything else
// is JSON-marshaled. Write failures are always returned, classified per the
// errors package.
func Set[T any](e *Engine, key string, value T) error {
	raw, err := encode(value)
	if err != nil {
		return err
	}
	return e.SetRaw(key, raw)
}

// Update applies fn to the current value under key (zero value when absent)
// and writes the result back. The read-modify-write is not atomic across
// writers; last write wins, matching the backend's semantics.
func Update[T any](e *Engine, key string, fn func(T) T) error {
	cur, _ := Get[T](e, key)
	return Set(e, key, fn(cur))
}

func encode[T any](value T) (string, error) {
	switch v := any(value).(type) {
	case nil:
		return "null", nil
	case string:
		return v, nil
	default:
		b, err := json.Marshal(value)
		if err != nil {
			return "", &storerrors.StorageError{
				Kind:    storerrors.KindSerializeError,
				Message: "value is not JSON-serializable",
				Cause:   err,
			}
		}
		return string(b), nil
	}
}
