/*
Package errors provides the error taxonomy for the storekit library.

Every failure surfaced by storekit is a StorageError tagged with one of six
kinds:

	QuotaExceeded    — the backend's byte quota is exhausted
	StorageDisabled  — the backend is unavailable
	ParseError       — a stored value could not be decoded
	SerializeError   — a value could not be encoded
	PermissionDenied — the backend refused access
	Unknown          — anything else

Kinds are derived by heuristics over a small structured view of the caught
error (name, message, optional legacy numeric code), because storage backends
report quota and permission failures with inconsistent exception types.
Classification is deterministic and never fails.

Usage:

	if err := storekit.Set(engine, "theme", "dark"); err != nil {
	    if errors.IsQuotaExceeded(err) {
	        // surface a quota banner, evict, retry, ...
	    }
	}

The error types implement the error interface and support wrapping,
making them compatible with Go's standard error handling patterns.
*/
package errors
