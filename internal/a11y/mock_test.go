package a11y

import (
	"context"
	"testing"
)

const fixture = `
<div data-role="window" data-title="Slack">
  <div data-role="group" data-description="content-list" class="content-list">
    <div data-role="button" data-title="alice" data-description="message"></div>
    <div data-role="button" data-title="bob" data-description="message"></div>
  </div>
</div>
`

func TestMockElementAttributesAndChildren(t *testing.T) {
	ctx := context.Background()
	root, err := NewMockTree(fixture)
	if err != nil {
		t.Fatalf("NewMockTree: %v", err)
	}
	title, err := root.Title(ctx)
	if err != nil || title != "Slack" {
		t.Fatalf("Title() = %q, %v, want Slack", title, err)
	}
	children, err := root.Children(ctx, ChildTypeChildren)
	if err != nil {
		t.Fatalf("Children: %v", err)
	}
	if len(children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(children))
	}
	if !HasClass(ctx, children[0], "content-list") {
		t.Fatalf("expected content-list class")
	}
	grandchildren, err := children[0].Children(ctx, ChildTypeChildren)
	if err != nil {
		t.Fatalf("Children: %v", err)
	}
	if len(grandchildren) != 2 {
		t.Fatalf("expected 2 grandchildren, got %d", len(grandchildren))
	}
	title0, _ := grandchildren[0].Title(ctx)
	if title0 != "alice" {
		t.Fatalf("grandchildren[0].Title() = %q, want alice", title0)
	}
}
