package dedup

import (
	"testing"
	"time"
)

var baseTime = time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)

func TestContentHashIdempotent(t *testing.T) {
	a := ContentHash("alice", "hi", baseTime)
	b := ContentHash("alice", "hi", baseTime)
	if a != b {
		t.Fatalf("expected identical hashes, got %q and %q", a, b)
	}
}

func TestContentHashStableUnderWhitespace(t *testing.T) {
	a := ContentHash("alice", "hi   there", baseTime)
	b := ContentHash("alice", "hi there", baseTime)
	if a != b {
		t.Fatalf("expected canonicalised whitespace to hash identically")
	}
}

func TestContentHashStripsInvisibles(t *testing.T) {
	withZeroWidth := "hi​there"
	plain := "hithere"
	if ContentHash("alice", withZeroWidth, baseTime) != ContentHash("alice", plain, baseTime) {
		t.Fatalf("expected zero-width space to be stripped before hashing")
	}
}

func TestClassifyNew(t *testing.T) {
	got := Classify(ExistingState{}, Incoming{})
	if got != New {
		t.Fatalf("got %v, want NEW", got)
	}
}

func TestClassifyDuplicateOnReingest(t *testing.T) {
	existing := ExistingState{ContentMatch: true, ExistingReactions: nil}
	got := Classify(existing, Incoming{})
	if got != Duplicate {
		t.Fatalf("got %v, want DUPLICATE", got)
	}
}

func TestClassifyReactionsUpdated(t *testing.T) {
	existing := ExistingState{ContentMatch: true, ExistingReactions: map[string]int{}}
	got := Classify(existing, Incoming{Reactions: map[string]int{"👍": 1}})
	if got != ReactionsUpdated {
		t.Fatalf("got %v, want REACTIONS_UPDATED", got)
	}
}

func TestClassifyUpdated(t *testing.T) {
	existing := ExistingState{IDMatch: true}
	got := Classify(existing, Incoming{})
	if got != Updated {
		t.Fatalf("got %v, want UPDATED", got)
	}
}
