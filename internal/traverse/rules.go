package traverse

import (
	"context"

	"github.com/beeper/slunk-harvester/internal/a11y"
	"github.com/beeper/slunk-harvester/internal/deadline"
	"github.com/beeper/slunk-harvester/internal/match"
)

// TraverseOptions configures the higher-level rule-offering traversal.
type TraverseOptions struct {
	Rules                 []*match.Rule
	ExcludeMatchers        []match.Matcher
	MaxDepth               int
	FindInOrder            bool
	TerminateAfterAnyRule  bool
	TerminateAfterAllRules bool
	Deadline               deadline.Deadline
	ChildType              a11y.ChildType
}

// Traverse walks root, offering every yielded element to rules in order.
//
// FindInOrder=true means rule k is only considered once rules 0..k-1 have
// all matched at least once; this lets a parser express "find the header,
// then look for messages after it" without separate passes.
//
// TerminateAfterAnyRule stops on the first rule match; TerminateAfterAllRules
// stops once every rule has matched at least once.
func Traverse(ctx context.Context, root a11y.Element, opts TraverseOptions) {
	exclude := match.Any(opts.ExcludeMatchers...)
	if len(opts.ExcludeMatchers) == 0 {
		exclude = nil
	}

	termination := func(ctx context.Context, e a11y.Element) bool {
		return false
	}
	if opts.TerminateAfterAnyRule || opts.TerminateAfterAllRules {
		termination = func(ctx context.Context, e a11y.Element) bool {
			anyMatched, allMatched := offerRules(ctx, e, opts.Rules, opts.FindInOrder)
			if opts.TerminateAfterAnyRule && anyMatched {
				return true
			}
			if opts.TerminateAfterAllRules && allMatched {
				return true
			}
			return false
		}
	}

	walkOpts := Options{
		ExcludeElement:       exclude,
		MaxDepth:             opts.MaxDepth,
		Deadline:             opts.Deadline,
		ChildType:            opts.ChildType,
		TerminationCondition: nil,
	}

	if opts.TerminateAfterAnyRule || opts.TerminateAfterAllRules {
		walkOpts.TerminationCondition = termination
		Walk(ctx, root, walkOpts)
		return
	}

	for _, e := range Walk(ctx, root, walkOpts) {
		offerRules(ctx, e, opts.Rules, opts.FindInOrder)
	}
}

// offerRules offers e to rules respecting findInOrder, returning whether any
// rule matched on this call and whether every rule has matched at least once
// across the traversal so far.
func offerRules(ctx context.Context, e a11y.Element, rules []*match.Rule, findInOrder bool) (anyMatched, allMatched bool) {
	allMatched = true
	for i, r := range rules {
		if findInOrder && i > 0 && !rules[i-1].HasMatched() {
			allMatched = false
			continue
		}
		if r.Apply(ctx, e) {
			anyMatched = true
		}
		if !r.HasMatched() {
			allMatched = false
		}
	}
	return anyMatched, allMatched
}

// FindElement is a shortcut for a single matcher with single-match
// termination.
func FindElement(ctx context.Context, root a11y.Element, m match.Matcher, opts Options) (a11y.Element, bool) {
	var collector match.ElementCollector
	rule := match.NewCollectorRule(m, &collector)
	Traverse(ctx, root, TraverseOptions{
		Rules:                 []*match.Rule{rule},
		MaxDepth:               opts.MaxDepth,
		Deadline:               opts.Deadline,
		ChildType:              opts.ChildType,
		TerminateAfterAnyRule:  true,
	})
	return collector.First()
}

// FindElements performs a full scan, returning every element satisfying m.
func FindElements(ctx context.Context, root a11y.Element, m match.Matcher, opts Options) []a11y.Element {
	var collector match.ElementCollector
	rule := match.NewCollectorRule(m, &collector)
	Traverse(ctx, root, TraverseOptions{
		Rules:      []*match.Rule{rule},
		MaxDepth:   opts.MaxDepth,
		Deadline:   opts.Deadline,
		ChildType:  opts.ChildType,
	})
	return collector.Items()
}

// CollectTreeValues concatenates the Value of every element matching m under
// root, in pre-order, joined by separator.
func CollectTreeValues(ctx context.Context, root a11y.Element, m match.Matcher, separator string, opts Options) string {
	var collector match.TextCollector
	rule := match.NewCollectorRule(m, &collector)
	Traverse(ctx, root, TraverseOptions{
		Rules:     []*match.Rule{rule},
		MaxDepth:  opts.MaxDepth,
		Deadline:  opts.Deadline,
		ChildType: opts.ChildType,
	})
	return collector.Join(separator)
}

// CollectTreeValuesOrDescriptions is like CollectTreeValues but falls back to
// Description when Value is empty.
func CollectTreeValuesOrDescriptions(ctx context.Context, root a11y.Element, m match.Matcher, separator string, opts Options) string {
	var collector match.ValueOrDescriptionCollector
	rule := match.NewCollectorRule(m, &collector)
	Traverse(ctx, root, TraverseOptions{
		Rules:     []*match.Rule{rule},
		MaxDepth:  opts.MaxDepth,
		Deadline:  opts.Deadline,
		ChildType: opts.ChildType,
	})
	return collector.Join(separator)
}
