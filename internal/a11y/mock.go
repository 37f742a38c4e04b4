package a11y

import (
	"context"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// MockElement is an offline Element backed by a fixture document: a small
// HTML tree where role/subrole/title/value/description live as data
// attributes (data-role, data-subrole, ...) and domClassList is the normal
// HTML class attribute. Tests compose fixtures with ordinary HTML and query
// them with goquery/cascadia selectors, then wrap the selection in a
// MockElement to drive the same traversal/parser code the system variant
// drives.
type MockElement struct {
	sel *goquery.Selection
}

// NewMockTree parses html and returns the root MockElement (the document's
// single top-level element, conventionally <div data-role="window">...).
func NewMockTree(html string) (*MockElement, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	root := doc.Find("body").Children().First()
	if root.Length() == 0 {
		root = doc.Selection
	}
	return &MockElement{sel: root}, nil
}

func NewMockElement(sel *goquery.Selection) *MockElement {
	return &MockElement{sel: sel}
}

func (e *MockElement) data(name string) string {
	v, _ := e.sel.Attr("data-" + name)
	return v
}

func (e *MockElement) Role(ctx context.Context) (string, error)          { return e.data("role"), nil }
func (e *MockElement) Subrole(ctx context.Context) (string, error)       { return e.data("subrole"), nil }
func (e *MockElement) Title(ctx context.Context) (string, error)         { return e.data("title"), nil }
func (e *MockElement) Value(ctx context.Context) (string, error)         { return e.data("value"), nil }
func (e *MockElement) Description(ctx context.Context) (string, error)   { return e.data("description"), nil }
func (e *MockElement) DOMIdentifier(ctx context.Context) (string, error) { return e.data("id"), nil }

func (e *MockElement) DOMClassList(ctx context.Context) ([]string, error) {
	class, ok := e.sel.Attr("class")
	if !ok || strings.TrimSpace(class) == "" {
		return nil, nil
	}
	return strings.Fields(class), nil
}

func (e *MockElement) Attribute(ctx context.Context, name string) (string, bool, error) {
	v, ok := e.sel.Attr("data-" + name)
	return v, ok, nil
}

func (e *MockElement) Position(ctx context.Context) (Rect, error) {
	parse := func(name string) float64 {
		v, ok := e.sel.Attr("data-" + name)
		if !ok {
			return 0
		}
		f, _ := strconv.ParseFloat(v, 64)
		return f
	}
	return Rect{X: parse("x"), Y: parse("y"), W: parse("w"), H: parse("h")}, nil
}

func (e *MockElement) Children(ctx context.Context, childType ChildType) ([]Element, error) {
	selector := "> *"
	if childType == ChildTypeContents {
		selector = `> [data-contents-child="true"]`
	}
	children := e.sel.Find(selector)
	out := make([]Element, 0, children.Length())
	children.Each(func(_ int, s *goquery.Selection) {
		out = append(out, NewMockElement(s))
	})
	return out, nil
}
