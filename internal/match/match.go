// Package match implements the matcher/rule/collector DSL (C4): composable
// predicates over a11y.Element, rules pairing a matcher with a collector or
// handler, and small value-typed collectors.
package match

import (
	"context"
	"strings"

	"github.com/beeper/slunk-harvester/internal/a11y"
)

// Matcher is a pure async predicate over an element. Implementations must
// not mutate state visible outside the call.
type Matcher func(ctx context.Context, e a11y.Element) bool

// Always matches every element.
func Always(ctx context.Context, e a11y.Element) bool { return true }

// Not negates a matcher. Not(Not(m)) behaves identically to m for
// deterministic m.
func Not(m Matcher) Matcher {
	return func(ctx context.Context, e a11y.Element) bool {
		return !m(ctx, e)
	}
}

// All matches iff every matcher matches. All(nil) is vacuously true.
func All(matchers ...Matcher) Matcher {
	return func(ctx context.Context, e a11y.Element) bool {
		for _, m := range matchers {
			if !m(ctx, e) {
				return false
			}
		}
		return true
	}
}

// Any matches iff at least one matcher matches. Any(nil) is vacuously false.
func Any(matchers ...Matcher) Matcher {
	return func(ctx context.Context, e a11y.Element) bool {
		for _, m := range matchers {
			if m(ctx, e) {
				return true
			}
		}
		return false
	}
}

// HasRole matches elements whose Role equals role exactly.
func HasRole(role string) Matcher {
	return func(ctx context.Context, e a11y.Element) bool {
		r, err := e.Role(ctx)
		return err == nil && r == role
	}
}

// AttrComparison selects how HasAttribute compares the attribute value.
type AttrComparison int

const (
	AttrEquals AttrComparison = iota
	AttrSubstring
	AttrContainsAny
)

// HasAttribute matches elements whose named attribute compares to value (or
// any of values, for AttrContainsAny) per cmp.
func HasAttribute(name string, cmp AttrComparison, values ...string) Matcher {
	return func(ctx context.Context, e a11y.Element) bool {
		v, ok, err := e.Attribute(ctx, name)
		if err != nil || !ok {
			return false
		}
		switch cmp {
		case AttrEquals:
			return len(values) > 0 && v == values[0]
		case AttrSubstring:
			return len(values) > 0 && strings.Contains(v, values[0])
		case AttrContainsAny:
			for _, candidate := range values {
				if strings.Contains(v, candidate) {
					return true
				}
			}
			return false
		default:
			return false
		}
	}
}

// HasClass matches elements carrying class in their DOM class list.
func HasClass(class string) Matcher {
	return func(ctx context.Context, e a11y.Element) bool {
		return a11y.HasClass(ctx, e, class)
	}
}

// HasClassContaining matches elements with any DOM class containing substr.
func HasClassContaining(substr string) Matcher {
	return func(ctx context.Context, e a11y.Element) bool {
		classes, err := e.DOMClassList(ctx)
		if err != nil {
			return false
		}
		for _, c := range classes {
			if strings.Contains(c, substr) {
				return true
			}
		}
		return false
	}
}

// HasChild matches elements with at least one direct child satisfying m.
func HasChild(m Matcher) Matcher {
	return func(ctx context.Context, e a11y.Element) bool {
		children, err := e.Children(ctx, a11y.ChildTypeChildren)
		if err != nil {
			return false
		}
		for _, c := range children {
			if m(ctx, c) {
				return true
			}
		}
		return false
	}
}

// HasDescendant matches elements with a descendant (up to maxDepth levels,
// 0 = unbounded) satisfying m.
func HasDescendant(m Matcher, maxDepth int) Matcher {
	var walk func(ctx context.Context, e a11y.Element, depth int) bool
	walk = func(ctx context.Context, e a11y.Element, depth int) bool {
		if maxDepth > 0 && depth > maxDepth {
			return false
		}
		children, err := e.Children(ctx, a11y.ChildTypeChildren)
		if err != nil {
			return false
		}
		for _, c := range children {
			if m(ctx, c) {
				return true
			}
			if walk(ctx, c, depth+1) {
				return true
			}
		}
		return false
	}
	return func(ctx context.Context, e a11y.Element) bool {
		return walk(ctx, e, 1)
	}
}
