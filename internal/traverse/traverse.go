// Package traverse implements the depth-first traversal engine (C3): a
// lazy, finite, cancellable iterator over a11y.Element with configurable
// exclude/skip/terminate predicates, max depth, and deadline.
package traverse

import (
	"context"

	"github.com/beeper/slunk-harvester/internal/a11y"
	"github.com/beeper/slunk-harvester/internal/deadline"
	"github.com/beeper/slunk-harvester/internal/match"
)

// Options configures one traversal. The zero value descends every child via
// ChildTypeChildren with no depth cap and Never deadline.
type Options struct {
	ExcludeElement      match.Matcher
	SkipChildren        match.Matcher
	TerminationCondition match.Matcher
	MaxDepth            int // 0 = unbounded
	Deadline            deadline.Deadline
	ChildType           a11y.ChildType
}

// visit is one depth-first pre-order emission.
type visit struct {
	element a11y.Element
	depth   int
}

// Walk yields elements in deterministic depth-first pre-order, honoring opts.
// For any parent P with children c1..cn, all elements under ci are emitted
// before any element under ci+1; tie-break across siblings follows host
// order. Walk never revisits an element and descends only via the
// configured ChildType relation (children/contents), never via a
// host-provided "parent" reference, so apparent cycles through parent links
// cannot cause infinite descent.
//
// Walk returns the collected elements directly (rather than a Go 1.23 iter
// sequence) because every consumer in this codebase wants the full
// pre-order slice up to a stopping point, and materializing it the tree
// itself is not: Walk still stops emitting as soon as a termination
// condition or deadline fires, so it never descends further than necessary.
func Walk(ctx context.Context, root a11y.Element, opts Options) []a11y.Element {
	var out []a11y.Element
	if root == nil {
		return out
	}

	stack := []visit{{element: root, depth: 0}}
	terminated := false

	for len(stack) > 0 && !terminated {
		if opts.Deadline.HasPassed() {
			break
		}
		select {
		case <-ctx.Done():
			return out
		default:
		}

		top := stack[0]
		stack = stack[1:]

		if opts.ExcludeElement != nil && opts.ExcludeElement(ctx, top.element) {
			continue
		}

		out = append(out, top.element)

		if opts.TerminationCondition != nil && opts.TerminationCondition(ctx, top.element) {
			terminated = true
			break
		}

		if opts.MaxDepth > 0 && top.depth >= opts.MaxDepth {
			continue
		}
		if opts.SkipChildren != nil && opts.SkipChildren(ctx, top.element) {
			continue
		}

		children, err := top.element.Children(ctx, opts.ChildType)
		if err != nil || len(children) == 0 {
			continue
		}
		// Prepend children (in order) ahead of remaining siblings/cousins so
		// the whole subtree under ci finishes before ci+1 starts; this is
		// the depth-first pre-order guarantee, implemented with a stack by
		// re-inserting children at the front rather than appending at the
		// back (which would give breadth-first order).
		next := make([]visit, 0, len(children)+len(stack))
		for _, c := range children {
			next = append(next, visit{element: c, depth: top.depth + 1})
		}
		next = append(next, stack...)
		stack = next
	}

	return out
}
