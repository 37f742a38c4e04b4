package match

import (
	"context"
	"strings"

	"github.com/beeper/slunk-harvester/internal/a11y"
)

// Collector accumulates elements of interest during one traversal
// invocation. Collectors are small, value-typed, and owned by a single
// traversal call, never shared across goroutines.
type Collector interface {
	Add(ctx context.Context, e a11y.Element)
}

// ElementCollector accumulates matched elements verbatim.
type ElementCollector struct {
	elements []a11y.Element
}

func (c *ElementCollector) Add(ctx context.Context, e a11y.Element) {
	c.elements = append(c.elements, e)
}
func (c *ElementCollector) Items() []a11y.Element { return c.elements }
func (c *ElementCollector) First() (a11y.Element, bool) {
	if len(c.elements) == 0 {
		return nil, false
	}
	return c.elements[0], true
}
func (c *ElementCollector) IsEmpty() bool { return len(c.elements) == 0 }
func (c *ElementCollector) Count() int    { return len(c.elements) }

// TextCollector accumulates an element's Value, skipping empty strings.
type TextCollector struct {
	texts []string
}

func (c *TextCollector) Add(ctx context.Context, e a11y.Element) {
	v, err := e.Value(ctx)
	if err != nil {
		return
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return
	}
	c.texts = append(c.texts, v)
}
func (c *TextCollector) Items() []string { return c.texts }
func (c *TextCollector) First() (string, bool) {
	if len(c.texts) == 0 {
		return "", false
	}
	return c.texts[0], true
}
func (c *TextCollector) IsEmpty() bool { return len(c.texts) == 0 }
func (c *TextCollector) Count() int    { return len(c.texts) }
func (c *TextCollector) Join(sep string) string {
	return strings.Join(c.texts, sep)
}

// ValueOrDescriptionCollector accumulates Value, falling back to
// Description when Value is empty.
type ValueOrDescriptionCollector struct {
	texts []string
}

func (c *ValueOrDescriptionCollector) Add(ctx context.Context, e a11y.Element) {
	v, err := e.Value(ctx)
	if err == nil {
		v = strings.TrimSpace(v)
	}
	if v == "" {
		d, err := e.Description(ctx)
		if err != nil {
			return
		}
		v = strings.TrimSpace(d)
	}
	if v == "" {
		return
	}
	c.texts = append(c.texts, v)
}
func (c *ValueOrDescriptionCollector) Items() []string { return c.texts }
func (c *ValueOrDescriptionCollector) Join(sep string) string {
	return strings.Join(c.texts, sep)
}
func (c *ValueOrDescriptionCollector) IsEmpty() bool { return len(c.texts) == 0 }

// AttributeCollector accumulates the value of one named attribute per
// matched element.
type AttributeCollector struct {
	name   string
	values []string
}

func NewAttributeCollector(name string) *AttributeCollector {
	return &AttributeCollector{name: name}
}

func (c *AttributeCollector) Add(ctx context.Context, e a11y.Element) {
	v, ok, err := e.Attribute(ctx, c.name)
	if err != nil || !ok {
		return
	}
	c.values = append(c.values, v)
}
func (c *AttributeCollector) Items() []string { return c.values }
func (c *AttributeCollector) First() (string, bool) {
	if len(c.values) == 0 {
		return "", false
	}
	return c.values[0], true
}

// FlagCollector is set true by the first matching element it sees.
type FlagCollector struct {
	set bool
}

func (c *FlagCollector) Add(ctx context.Context, e a11y.Element) {
	c.set = true
}
func (c *FlagCollector) IsSet() bool { return c.set }
