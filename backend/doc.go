/*
Package backend defines the storage backend abstraction for storekit.

The main interface is Backend, a plain string key-value store with
enumerable keys:

	type Backend interface {
	    GetItem(key string) (string, bool, error)
	    SetItem(key, value string) error
	    RemoveItem(key string) error
	    Clear() error
	    Keys() ([]string, error)
	}

Implementations:
  - memory: volatile in-process implementation for session-scoped data and tests
  - file: JSON-file-backed implementation for local (persistent) data

Backends that can report usage against a byte quota additionally implement
Estimator. Both shipped implementations enforce a configurable MaxBytes
quota and surface exhaustion through the errors package taxonomy.
*/
package backend
