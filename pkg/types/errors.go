package types

import "errors"

// Store adapter errors. These are the only failures callers should branch
// on; everything else arrives wrapped around one of them.
var (
	// ErrItemNotFound means the requested item key has no row in the store.
	ErrItemNotFound = errors.New("item not found")

	// ErrCollectionNotFound means the requested collection key has no row.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrStoreUnavailable means the store file is missing or unopenable.
	ErrStoreUnavailable = errors.New("store database not available")

	// ErrStoreLocked means the owning application holds the write lock.
	// Point writes surface this as-is; the caller decides whether to retry.
	ErrStoreLocked = errors.New("store database is locked")

	// ErrConstraintViolation means an insert hit a uniqueness constraint,
	// most commonly a generated item key colliding with an existing row.
	ErrConstraintViolation = errors.New("store constraint violated")

	// ErrFieldUnknown means a field name is absent from the store's
	// controlled vocabulary. SetFields skips such fields with a warning;
	// the sentinel exists for callers that resolve fields directly.
	ErrFieldUnknown = errors.New("unknown field name")
)

// Connector and acquisition errors.
var (
	// ErrNotRunning means the owning desktop application did not answer
	// the local control-channel ping.
	ErrNotRunning = errors.New("desktop application is not running")

	// ErrNoExternalID means a stored record carries no identifier usable
	// to locate it in the authoritative external source.
	ErrNoExternalID = errors.New("no usable external identifier")

	// ErrProviderExhausted means every document provider was tried and
	// none produced an acceptable document. The fetch package wraps this
	// in a failure report carrying per-provider diagnostics.
	ErrProviderExhausted = errors.New("every document provider exhausted")
)
