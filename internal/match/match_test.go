package match

import (
	"context"
	"testing"

	"github.com/beeper/slunk-harvester/internal/a11y"
)

func elementWithRole(t *testing.T, role string) a11y.Element {
	t.Helper()
	root, err := a11y.NewMockTree(`<div data-role="` + role + `"></div>`)
	if err != nil {
		t.Fatalf("NewMockTree: %v", err)
	}
	return root
}

func TestNotNotIsIdentity(t *testing.T) {
	ctx := context.Background()
	e := elementWithRole(t, "button")
	m := HasRole("button")
	if Not(Not(m))(ctx, e) != m(ctx, e) {
		t.Fatalf("Not(Not(m)) disagreed with m")
	}
}

func TestAllEmptyIsTrue(t *testing.T) {
	ctx := context.Background()
	e := elementWithRole(t, "button")
	if !All()(ctx, e) {
		t.Fatalf("All() with no matchers should be vacuously true")
	}
}

func TestAnyEmptyIsFalse(t *testing.T) {
	ctx := context.Background()
	e := elementWithRole(t, "button")
	if Any()(ctx, e) {
		t.Fatalf("Any() with no matchers should be vacuously false")
	}
}

func TestAllAnySingleMatcherAgreeWithIt(t *testing.T) {
	ctx := context.Background()
	e := elementWithRole(t, "button")
	m := HasRole("button")
	if All(m)(ctx, e) != m(ctx, e) || Any(m)(ctx, e) != m(ctx, e) {
		t.Fatalf("All([m]) / Any([m]) disagreed with m")
	}
}

func TestFlagCollectorSetsOnFirstMatch(t *testing.T) {
	ctx := context.Background()
	e := elementWithRole(t, "button")
	var flag FlagCollector
	if flag.IsSet() {
		t.Fatalf("flag should start unset")
	}
	flag.Add(ctx, e)
	if !flag.IsSet() {
		t.Fatalf("flag should be set after Add")
	}
}
