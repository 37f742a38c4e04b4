// Package dedup implements per-message fingerprinting and the NEW/UPDATED/
// REACTIONS_UPDATED/DUPLICATE classification (C7).
package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"time"
)

// Decision is the classification of an incoming message against existing
// store state.
type Decision int

const (
	New Decision = iota
	Updated
	ReactionsUpdated
	Duplicate
)

func (d Decision) String() string {
	switch d {
	case New:
		return "NEW"
	case Updated:
		return "UPDATED"
	case ReactionsUpdated:
		return "REACTIONS_UPDATED"
	case Duplicate:
		return "DUPLICATE"
	default:
		return "UNKNOWN"
	}
}

var spaceRunRE = regexp.MustCompile(`[ \t]+`)

// invisibleReplacer strips zero-width space (U+200B), left-to-right mark
// (U+200E), and Slack's doubled non-breaking space padding (U+00A0 U+00A0,
// stripped as a pair; a lone leftover NBSP is folded to a plain space by
// spaceRunRE below).
var invisibleReplacer = strings.NewReplacer(
	"\u00a0\u00a0", "",
	"\u200b", "",
	"\u200e", "",
	"\u00a0", " ",
)

// Canonicalize collapses runs of spaces and strips invisible padding
// characters so that ContentHash is stable under cosmetic whitespace
// differences.
func Canonicalize(content string) string {
	s := invisibleReplacer.Replace(content)
	s = spaceRunRE.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// ContentHash computes the SHA-256 fingerprint of sender, canonicalised
// content, and the RFC3339 UTC timestamp, joined with U+0001 separators.
func ContentHash(sender, content string, timestamp time.Time) string {
	canon := Canonicalize(content)
	parts := sender + "" + canon + "" + timestamp.UTC().Format(time.RFC3339)
	sum := sha256.Sum256([]byte(parts))
	return hex.EncodeToString(sum[:])
}

// ExistingState is the subset of stored state needed to classify an
// incoming message, as read by the ingestion pipeline from the store.
type ExistingState struct {
	// ContentMatch is true if a row exists with the same (workspace,
	// channel, sender, content) identity (content-level identity,
	// independent of timestamp jitter).
	ContentMatch      bool
	ExistingReactions map[string]int

	// IDMatch is true if a row exists with the same (workspace, channel, id)
	// but a different content hash.
	IDMatch bool
}

// Incoming is the subset of an incoming message needed to classify it.
type Incoming struct {
	Reactions map[string]int
}

// Classify maps (existing, incoming) to exactly one Decision: NEW,
// UPDATED, REACTIONS_UPDATED, or DUPLICATE.
func Classify(existing ExistingState, incoming Incoming) Decision {
	if existing.ContentMatch {
		if reactionsDiffer(existing.ExistingReactions, incoming.Reactions) {
			return ReactionsUpdated
		}
		return Duplicate
	}
	if existing.IDMatch {
		return Updated
	}
	return New
}

func reactionsDiffer(a, b map[string]int) bool {
	if len(a) != len(b) {
		return true
	}
	for emoji, count := range a {
		if b[emoji] != count {
			return true
		}
	}
	return false
}
