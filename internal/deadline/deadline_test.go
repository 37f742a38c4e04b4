package deadline

import (
	"testing"
	"time"
)

func TestNeverNeverPasses(t *testing.T) {
	if Never.HasPassed() {
		t.Fatalf("Never deadline reported as passed")
	}
}

func TestFromNowPassesAfterDuration(t *testing.T) {
	d := FromNow(10 * time.Millisecond)
	if d.HasPassed() {
		t.Fatalf("deadline passed immediately")
	}
	time.Sleep(20 * time.Millisecond)
	if !d.HasPassed() {
		t.Fatalf("deadline did not pass after elapsed duration")
	}
}

func TestRemainingNegativeAfterExpiry(t *testing.T) {
	d := At(time.Now().Add(-time.Second))
	if d.Remaining() >= 0 {
		t.Fatalf("expected negative remaining time, got %v", d.Remaining())
	}
}
