package a11y

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"
)

// OSBinding is the minimal surface a platform accessibility binding must
// expose. It is declared as an interface, not a concrete import of any
// platform package, so this module stays buildable without CGO or
// platform-specific build tags; the real binding is an out-of-scope external
// collaborator: declare just enough of the real type's surface to use it
// without importing the package that defines it.
type OSBinding interface {
	// Attributes returns a JSON object blob of attribute name -> value for
	// the given opaque node handle. Platform bindings are free to return a
	// loosely-typed payload; SystemElement extracts fields with gjson
	// rather than requiring a fixed schema.
	Attributes(ctx context.Context, handle any) (json string, err error)
	// Children returns opaque child handles for the given relation name
	// ("children" or "contents").
	Children(ctx context.Context, handle any, relation string) ([]any, error)
}

// SystemElement is the production Element backed by a live OS accessibility
// handle. Ownership of handle is borrowed from the OS for the span of one
// traversal; SystemElement never keeps it beyond that.
type SystemElement struct {
	binding OSBinding
	handle  any
}

// NewSystemElement wraps an opaque OS handle.
func NewSystemElement(binding OSBinding, handle any) *SystemElement {
	return &SystemElement{binding: binding, handle: handle}
}

func (e *SystemElement) attr(ctx context.Context, name string) (gjson.Result, error) {
	blob, err := e.binding.Attributes(ctx, e.handle)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("accessibility attribute fetch: %w", err)
	}
	return gjson.Get(blob, name), nil
}

func (e *SystemElement) strAttr(ctx context.Context, name string) (string, error) {
	r, err := e.attr(ctx, name)
	if err != nil {
		return "", err
	}
	return r.String(), nil
}

func (e *SystemElement) Role(ctx context.Context) (string, error)        { return e.strAttr(ctx, "role") }
func (e *SystemElement) Subrole(ctx context.Context) (string, error)     { return e.strAttr(ctx, "subrole") }
func (e *SystemElement) Title(ctx context.Context) (string, error)       { return e.strAttr(ctx, "title") }
func (e *SystemElement) Value(ctx context.Context) (string, error)       { return e.strAttr(ctx, "value") }
func (e *SystemElement) Description(ctx context.Context) (string, error) { return e.strAttr(ctx, "description") }
func (e *SystemElement) DOMIdentifier(ctx context.Context) (string, error) {
	return e.strAttr(ctx, "domIdentifier")
}

func (e *SystemElement) DOMClassList(ctx context.Context) ([]string, error) {
	r, err := e.attr(ctx, "domClassList")
	if err != nil {
		return nil, err
	}
	var out []string
	r.ForEach(func(_, v gjson.Result) bool {
		out = append(out, v.String())
		return true
	})
	return out, nil
}

func (e *SystemElement) Attribute(ctx context.Context, name string) (string, bool, error) {
	r, err := e.attr(ctx, name)
	if err != nil {
		return "", false, err
	}
	if !r.Exists() {
		return "", false, nil
	}
	return r.String(), true, nil
}

func (e *SystemElement) Position(ctx context.Context) (Rect, error) {
	r, err := e.attr(ctx, "position")
	if err != nil {
		return Rect{}, err
	}
	return Rect{
		X: r.Get("x").Float(),
		Y: r.Get("y").Float(),
		W: r.Get("w").Float(),
		H: r.Get("h").Float(),
	}, nil
}

func (e *SystemElement) Children(ctx context.Context, childType ChildType) ([]Element, error) {
	relation := "children"
	if childType == ChildTypeContents {
		relation = "contents"
	}
	handles, err := e.binding.Children(ctx, e.handle, relation)
	if err != nil {
		return nil, fmt.Errorf("accessibility children fetch: %w", err)
	}
	out := make([]Element, 0, len(handles))
	for _, h := range handles {
		out = append(out, NewSystemElement(e.binding, h))
	}
	return out, nil
}
