// Package a11y is a capability-based façade over an opaque platform
// accessibility element (C1). Every operation is fallible and
// latency-bounded; the façade never caches.
package a11y

import "context"

// ChildType selects which relation a traversal descends through.
type ChildType int

const (
	// ChildTypeChildren descends via the element's primary children relation.
	ChildTypeChildren ChildType = iota
	// ChildTypeContents descends via an alternate "contents" relation
	// exposed by some platform widgets (e.g. scroll areas).
	ChildTypeContents
)

// Rect is a position/size pair in screen coordinates.
type Rect struct {
	X, Y, W, H float64
}

// Element is the minimal capability set every accessibility node exposes.
// Implementations must never cache attribute reads: callers may observe a
// live, changing UI.
type Element interface {
	Role(ctx context.Context) (string, error)
	Subrole(ctx context.Context) (string, error)
	Title(ctx context.Context) (string, error)
	Value(ctx context.Context) (string, error)
	Description(ctx context.Context) (string, error)
	DOMIdentifier(ctx context.Context) (string, error)
	DOMClassList(ctx context.Context) ([]string, error)
	Attribute(ctx context.Context, name string) (string, bool, error)
	Position(ctx context.Context) (Rect, error)

	// Children returns the element's ordered children for the given
	// relation. A nil slice (with nil error) means "no children" or "not
	// supported", which the traversal engine treats identically.
	Children(ctx context.Context, childType ChildType) ([]Element, error)
}

// HasClass reports whether class is present in the element's DOM class list.
func HasClass(ctx context.Context, e Element, class string) bool {
	classes, err := e.DOMClassList(ctx)
	if err != nil {
		return false
	}
	for _, c := range classes {
		if c == class {
			return true
		}
	}
	return false
}
