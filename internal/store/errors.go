package store

import "errors"

// Typed sentinel errors checked with errors.Is at call sites.
var (
	// ErrTransient is returned when a write still fails with a lock/busy
	// error after the writer queue has used its whole retry schedule.
	ErrTransient = errors.New("store: transient lock error, retry budget exhausted")
	// ErrFatal wraps any other store failure (not a lock/busy error); such
	// errors are not retried.
	ErrFatal = errors.New("store: fatal error")
	// ErrInvalidVectorDimensions is a programmer error: the caller supplied
	// a vector whose length does not equal EmbeddingDimensions.
	ErrInvalidVectorDimensions = errors.New("store: vector has wrong number of dimensions")
)
