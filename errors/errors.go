/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
)

// Kind identifies the category of a storage failure.
type Kind string

const (
	// KindQuotaExceeded indicates the backend rejected a write because the
	// origin's byte quota is exhausted.
	KindQuotaExceeded Kind = "QuotaExceeded"

	// KindStorageDisabled indicates the backend is unavailable (probed at
	// engine construction and found unusable).
	KindStorageDisabled Kind = "StorageDisabled"

	// KindParseError indicates a stored value could not be decoded.
	KindParseError Kind = "ParseError"

	// KindSerializeError indicates a value could not be encoded for storage.
	KindSerializeError Kind = "SerializeError"

	// KindPermissionDenied indicates the backend refused access.
	KindPermissionDenied Kind = "PermissionDenied"

	// KindUnknown is the fallback for unclassifiable failures.
	KindUnknown Kind = "Unknown"
)

// Sentinel errors, one per kind, for errors.Is checks.
var (
	ErrQuotaExceeded    = errors.New("storage quota exceeded")
	ErrStorageDisabled  = errors.New("storage disabled")
	ErrParse            = errors.New("storage parse error")
	ErrSerialize        = errors.New("storage serialize error")
	ErrPermissionDenied = errors.New("storage permission denied")
	ErrUnknown          = errors.New("storage error")
)

// sentinelFor maps each kind to its sentinel.
func sentinelFor(k Kind) error {
	switch k {
	case KindQuotaExceeded:
		return ErrQuotaExceeded
	case KindStorageDisabled:
		return ErrStorageDisabled
	case KindParseError:
		return ErrParse
	case KindSerializeError:
		return ErrSerialize
	case KindPermissionDenied:
		return ErrPermissionDenied
	default:
		return ErrUnknown
	}
}

// StorageError is the single error shape surfaced by every storekit
// component. Cause is retained for diagnostics and is never persisted.
type StorageError struct {
	Kind    Kind
	Message string
	Key     string
	Cause   error
}

func (e *StorageError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s: key %q: %s", e.Kind, e.Key, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause for errors.Unwrap() support.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// Is matches the per-kind sentinel, so callers can write
// errors.Is(err, ErrQuotaExceeded) without knowing the concrete type.
func (e *StorageError) Is(target error) bool {
	return target == sentinelFor(e.Kind)
}

// New creates a StorageError with the given kind and message.
func New(kind Kind, message string) *StorageError {
	return &StorageError{Kind: kind, Message: message}
}

// Wrap classifies cause and returns a StorageError carrying it. The key is
// the logical (un-namespaced) key the operation was addressing, or "".
// An existing StorageError passes through with its kind intact.
func Wrap(cause error, key string) *StorageError {
	if cause == nil {
		return nil
	}
	var se *StorageError
	if errors.As(cause, &se) {
		if se.Key == "" && key != "" {
			return &StorageError{Kind: se.Kind, Message: se.Message, Key: key, Cause: se.Cause}
		}
		return se
	}
	return &StorageError{
		Kind:    Classify(cause),
		Message: cause.Error(),
		Key:     key,
		Cause:   cause,
	}
}

// KindOf returns the kind of err, classifying it when err is not already a
// StorageError.
func KindOf(err error) Kind {
	var se *StorageError
	if errors.As(err, &se) {
		return se.Kind
	}
	return Classify(err)
}

// Helper functions for error checks

// IsQuotaExceeded checks if an error is a quota-exhaustion error.
func IsQuotaExceeded(err error) bool {
	return errors.Is(err, ErrQuotaExceeded)
}

// IsStorageDisabled checks if an error is an unavailable-backend error.
func IsStorageDisabled(err error) bool {
	return errors.Is(err, ErrStorageDisabled)
}

// IsParseError checks if an error is a decode failure.
func IsParseError(err error) bool {
	return errors.Is(err, ErrParse)
}

// IsSerializeError checks if an error is an encode failure.
func IsSerializeError(err error) bool {
	return errors.Is(err, ErrSerialize)
}

// IsPermissionDenied checks if an error is an access-refused error.
func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}
