package match

import (
	"context"

	"github.com/beeper/slunk-harvester/internal/a11y"
)

// Handler is an arbitrary effect run when a rule's matcher accepts an
// element. Rule(matcher, collector) is sugar for Rule(matcher,
// collector.Add).
type Handler func(ctx context.Context, e a11y.Element)

// Rule pairs a matcher with a handler. Applying a rule to an element invokes
// the handler iff the matcher accepts. A rule's matcher and handler are
// fixed once built; Apply only records whether the rule has matched.
type Rule struct {
	Matcher Matcher
	Handler Handler
	matched bool
}

// NewRule builds a rule that invokes handler on match.
func NewRule(m Matcher, h Handler) *Rule {
	return &Rule{Matcher: m, Handler: h}
}

// NewCollectorRule builds a rule that feeds matched elements to collector.
func NewCollectorRule(m Matcher, collector Collector) *Rule {
	return NewRule(m, collector.Add)
}

// Apply runs the rule against e, returning whether it matched.
func (r *Rule) Apply(ctx context.Context, e a11y.Element) bool {
	if !r.Matcher(ctx, e) {
		return false
	}
	r.matched = true
	if r.Handler != nil {
		r.Handler(ctx, e)
	}
	return true
}

// HasMatched reports whether this rule has matched at least once since
// construction.
func (r *Rule) HasMatched() bool { return r.matched }

// AttributeMapRule dispatches on the value of one attribute to one of many
// handlers, keyed by that value.
type AttributeMapRule struct {
	AttrName string
	Handlers map[string]Handler
	Default  Handler
}

// Apply reads AttrName off e and invokes the matching handler, or Default if
// no entry matches (or the attribute is absent). Returns whether any handler
// ran.
func (r *AttributeMapRule) Apply(ctx context.Context, e a11y.Element) bool {
	v, ok, err := e.Attribute(ctx, r.AttrName)
	if err == nil && ok {
		if h, found := r.Handlers[v]; found {
			h(ctx, e)
			return true
		}
	}
	if r.Default != nil {
		r.Default(ctx, e)
		return true
	}
	return false
}
