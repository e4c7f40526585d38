/*
Package storekit provides a typed, failure-aware key-value storage
abstraction over scoped string key-value backends.

Every consumer — token caches, preference persistence, diagnostic error
buffers — gets one uniform interface, so backend unavailability, quota
exhaustion, or malformed data never crashes the application and is always
observable.

Key Features:
  - Type-safe reads and writes using Go generics
  - Key namespacing over a shared physical backend
  - Availability probing with degrade-to-default read semantics
  - A six-kind error taxonomy with heuristic classification
  - Usage and quota introspection, plus a diagnostics layer
  - Change notification across consumers and processes

Basic Usage:

	stores, _ := storekit.Bootstrap(dir, logger)

	// Typed round-trips
	_ = storekit.Set(stores.UI, "theme", "dark")
	theme, _ := storekit.Get[string](stores.UI, "theme")

	// Defaults instead of errors on the read path
	limit := storekit.GetOr(stores.UI, "pageSize", 25)

	// Writes are loud: failures come back classified
	if err := storekit.Set(stores.UI, "session", sess); err != nil {
	    if errors.IsQuotaExceeded(err) {
	        // evict, warn, retry...
	    }
	}

Reads degrade to defaults and never fail; writes always surface a
classified StorageError, because a silently dropped write is undetectable
data loss. See the errors package for the taxonomy.
*/
package storekit
