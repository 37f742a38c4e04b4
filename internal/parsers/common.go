package parsers

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"strings"

	"github.com/rs/xid"

	"github.com/beeper/slunk-harvester/internal/a11y"
)

// invisibleStripper removes the zero-width space, left-to-right mark, and
// doubled non-breaking space Slack and friends pad message text with.
// Mirrors the canonicalisation dedup performs on stored content, but here
// it runs once at extraction time so parsers never hand raw padding to the
// pipeline.
var invisibleStripper = strings.NewReplacer(
	"​", "",
	"‎", "",
	"  ", "",
)

func cleanText(s string) string {
	return strings.TrimSpace(invisibleStripper.Replace(s))
}

// stableMessageID hashes the given parts into an identifier. Parsers that
// have a timestamp anchor (Slack, WhatsApp, Teams) pass sender plus the raw
// timestamp, parts that stay constant across an edit, so the ingestion
// pipeline's id-based UPDATED detection has something stable to match
// against. The Discord, Mail and Messages parsers pass the message content
// itself, so an edit there yields a new id.
func stableMessageID(parts ...string) string {
	h := sha1.New()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{0x01})
		}
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func freshID() string {
	return xid.New().String()
}

// children fetches e's children via the children relation, treating any
// error the same as "no children": parsers recover locally rather than
// aborting the branch.
func children(ctx context.Context, e a11y.Element) []a11y.Element {
	c, err := e.Children(ctx, a11y.ChildTypeChildren)
	if err != nil {
		return nil
	}
	return c
}

func role(ctx context.Context, e a11y.Element) string {
	r, err := e.Role(ctx)
	if err != nil {
		return ""
	}
	return r
}

func subrole(ctx context.Context, e a11y.Element) string {
	r, err := e.Subrole(ctx)
	if err != nil {
		return ""
	}
	return r
}

func title(ctx context.Context, e a11y.Element) string {
	t, err := e.Title(ctx)
	if err != nil {
		return ""
	}
	return t
}

func value(ctx context.Context, e a11y.Element) string {
	v, err := e.Value(ctx)
	if err != nil {
		return ""
	}
	return v
}

func description(ctx context.Context, e a11y.Element) string {
	d, err := e.Description(ctx)
	if err != nil {
		return ""
	}
	return d
}

func domID(ctx context.Context, e a11y.Element) string {
	id, err := e.DOMIdentifier(ctx)
	if err != nil {
		return ""
	}
	return id
}

// safeEach applies fn to every element of elems, recovering a panic from
// any single element so one malformed child never aborts the whole window;
// the failing element is simply skipped and iteration continues.
func safeEach(elems []a11y.Element, fn func(a11y.Element)) {
	for _, e := range elems {
		func() {
			defer func() { recover() }()
			fn(e)
		}()
	}
}
