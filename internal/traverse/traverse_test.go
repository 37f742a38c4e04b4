package traverse

import (
	"context"
	"testing"
	"time"

	"github.com/beeper/slunk-harvester/internal/a11y"
	"github.com/beeper/slunk-harvester/internal/deadline"
	"github.com/beeper/slunk-harvester/internal/match"
)

const treeFixture = `
<div data-role="root" data-title="root">
  <div data-role="a" data-title="a">
    <div data-role="a1" data-title="a1"></div>
    <div data-role="a2" data-title="a2"></div>
  </div>
  <div data-role="b" data-title="b">
    <div data-role="b1" data-title="b1"></div>
  </div>
</div>
`

func titles(ctx context.Context, elements []a11y.Element) []string {
	out := make([]string, 0, len(elements))
	for _, e := range elements {
		t, _ := e.Title(ctx)
		out = append(out, t)
	}
	return out
}

func TestWalkPreOrder(t *testing.T) {
	ctx := context.Background()
	root, err := a11y.NewMockTree(treeFixture)
	if err != nil {
		t.Fatalf("NewMockTree: %v", err)
	}
	got := titles(ctx, Walk(ctx, root, Options{}))
	want := []string{"root", "a", "a1", "a2", "b", "b1"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestWalkMaxDepth(t *testing.T) {
	ctx := context.Background()
	root, err := a11y.NewMockTree(treeFixture)
	if err != nil {
		t.Fatalf("NewMockTree: %v", err)
	}
	got := titles(ctx, Walk(ctx, root, Options{MaxDepth: 1}))
	for _, title := range got {
		if title == "a1" || title == "a2" || title == "b1" {
			t.Fatalf("depth cap leaked descendant %q into %v", title, got)
		}
	}
}

func TestWalkExcludeElement(t *testing.T) {
	ctx := context.Background()
	root, err := a11y.NewMockTree(treeFixture)
	if err != nil {
		t.Fatalf("NewMockTree: %v", err)
	}
	got := titles(ctx, Walk(ctx, root, Options{ExcludeElement: match.HasRole("a")}))
	for _, title := range got {
		if title == "a" || title == "a1" || title == "a2" {
			t.Fatalf("excluded subtree leaked %q into %v", title, got)
		}
	}
}

func TestWalkSkipChildren(t *testing.T) {
	ctx := context.Background()
	root, err := a11y.NewMockTree(treeFixture)
	if err != nil {
		t.Fatalf("NewMockTree: %v", err)
	}
	got := titles(ctx, Walk(ctx, root, Options{SkipChildren: match.HasRole("a")}))
	foundA, foundA1 := false, false
	for _, title := range got {
		if title == "a" {
			foundA = true
		}
		if title == "a1" {
			foundA1 = true
		}
	}
	if !foundA {
		t.Fatalf("expected skip-children element itself to still be yielded")
	}
	if foundA1 {
		t.Fatalf("expected skip-children descendants to be absent")
	}
}

func TestWalkDeadlineStopsIteration(t *testing.T) {
	ctx := context.Background()
	root, err := a11y.NewMockTree(treeFixture)
	if err != nil {
		t.Fatalf("NewMockTree: %v", err)
	}
	d := deadline.At(time.Now().Add(-time.Second))
	got := Walk(ctx, root, Options{Deadline: d})
	if len(got) != 0 {
		t.Fatalf("expected no elements once deadline has already passed, got %v", titles(ctx, got))
	}
}

func TestFindElementsFullScan(t *testing.T) {
	ctx := context.Background()
	root, err := a11y.NewMockTree(treeFixture)
	if err != nil {
		t.Fatalf("NewMockTree: %v", err)
	}
	results := FindElements(ctx, root, match.HasAttribute("title", match.AttrSubstring, "1"), Options{})
	if len(results) != 2 {
		t.Fatalf("expected 2 matches (a1,b1), got %d", len(results))
	}
}
