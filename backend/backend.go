/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package backend

import "context"

// Scope identifies the persistence scope of a backend.
type Scope string

const (
	// Local backends persist across process runs.
	Local Scope = "local"

	// Session backends are volatile and live only as long as the process.
	Session Scope = "session"
)

// Backend is one underlying string key-value store. Implementations must be
// byte-for-byte transparent: GetItem must return exactly the string that was
// previously passed to SetItem for the same key, with no re-encoding or
// added metadata. Implementations must be safe for concurrent use.
type Backend interface {
	// GetItem returns the value stored under key. The boolean reports
	// whether the key exists; a missing key is not an error.
	GetItem(key string) (string, bool, error)

	// SetItem stores value under key, overwriting any existing value.
	SetItem(key, value string) error

	// RemoveItem deletes key. Removing a missing key is not an error.
	RemoveItem(key string) error

	// Clear removes every key in the backend.
	Clear() error

	// Keys returns all keys currently stored, in no particular order.
	Keys() ([]string, error)
}

// Estimate reports backend usage against its quota, both in bytes.
type Estimate struct {
	Usage uint64 `json:"usage"`
	Quota uint64 `json:"quota"`
}

// Estimator is implemented by backends that can report a usage/quota
// estimate. The call may be slow (it can touch the filesystem), so callers
// treat it as an asynchronous enrichment rather than part of any
// synchronous contract.
type Estimator interface {
	Estimate(ctx context.Context) (Estimate, error)
}

// DefaultQuota is the assumed per-backend byte ceiling used when a backend
// does not enforce or report its own quota. 5 MiB matches the ceiling
// browsers conventionally apply to an origin's local storage.
const DefaultQuota = 5 * 1024 * 1024
