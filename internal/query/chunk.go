package query

import (
	"time"

	"github.com/beeper/slunk-harvester/internal/store"
)

// DefaultChunkWindow is the default adjacent-gap threshold for conversation
// chunking.
const DefaultChunkWindow = 600 * time.Second

// Chunk partitions an ordered sequence of messages into contiguous runs
// where every adjacent timestamp gap is less than window; a gap of window or
// more starts a new chunk. Messages must
// already be sorted by timestamp ascending; Chunk does not sort them. Pure
// and deterministic: same input, same partition, every time.
func Chunk(messages []store.StoredMessage, window time.Duration) [][]store.StoredMessage {
	if window <= 0 {
		window = DefaultChunkWindow
	}
	if len(messages) == 0 {
		return nil
	}

	chunks := [][]store.StoredMessage{{messages[0]}}
	for i := 1; i < len(messages); i++ {
		gap := messages[i].Timestamp.Sub(messages[i-1].Timestamp)
		last := len(chunks) - 1
		if gap < window {
			chunks[last] = append(chunks[last], messages[i])
		} else {
			chunks = append(chunks, []store.StoredMessage{messages[i]})
		}
	}
	return chunks
}
