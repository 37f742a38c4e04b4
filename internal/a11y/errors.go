package a11y

import "errors"

// ErrUnavailable is the sentinel an OSBinding implementation should wrap
// (via fmt.Errorf("...: %w", ErrUnavailable)) when the platform denies
// accessibility permission or the requested handle no longer exists.
// SystemElement itself has no platform knowledge to detect this condition;
// it only propagates whatever the binding returns, so callers check for
// this with errors.Is against the wrapped error.
var ErrUnavailable = errors.New("a11y: accessibility unavailable")
