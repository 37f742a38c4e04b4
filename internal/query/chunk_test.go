package query

import (
	"testing"
	"time"

	"github.com/beeper/slunk-harvester/internal/store"
)

func msgAt(id string, t time.Time) store.StoredMessage {
	return store.StoredMessage{ID: id, Timestamp: t}
}

func TestChunkGapWindow(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	messages := []store.StoredMessage{
		msgAt("0", base),
		msgAt("1", base.Add(100*time.Second)),
		msgAt("2", base.Add(700*time.Second)),
		msgAt("3", base.Add(701*time.Second)),
	}

	chunks := Chunk(messages, 600*time.Second)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if len(chunks[0]) != 2 || chunks[0][0].ID != "0" || chunks[0][1].ID != "1" {
		t.Fatalf("unexpected first chunk: %+v", chunks[0])
	}
	if len(chunks[1]) != 2 || chunks[1][0].ID != "2" || chunks[1][1].ID != "3" {
		t.Fatalf("unexpected second chunk: %+v", chunks[1])
	}
}

func TestChunkEmpty(t *testing.T) {
	if chunks := Chunk(nil, 0); chunks != nil {
		t.Fatalf("expected nil chunks for empty input, got %v", chunks)
	}
}

func TestChunkSingleRun(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	messages := []store.StoredMessage{
		msgAt("0", base),
		msgAt("1", base.Add(1*time.Second)),
		msgAt("2", base.Add(2*time.Second)),
	}
	chunks := Chunk(messages, DefaultChunkWindow)
	if len(chunks) != 1 || len(chunks[0]) != 3 {
		t.Fatalf("expected one chunk of 3, got %+v", chunks)
	}
}
