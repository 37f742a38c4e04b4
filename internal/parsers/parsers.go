// Package parsers implements the per-app parsers (C6): one finite state
// machine per supported app, each polymorphic over a single capability,
// parse(window, deadline) -> ParseResult. Every parser is an actor: serial
// execution, shared-nothing, recovering locally from malformed structure
// rather than aborting the whole window.
package parsers

import (
	"context"
	"time"

	"github.com/beeper/slunk-harvester/internal/a11y"
	"github.com/beeper/slunk-harvester/internal/deadline"
	"github.com/beeper/slunk-harvester/internal/ingest"
)

// HitTester performs an OS-level hit test at a screen point, returning the
// element under it along with the owning process id. Declared as an
// interface rather than a concrete platform import, the same way
// a11y.OSBinding is: the real hit-test collaborator lives outside this
// module.
type HitTester interface {
	HitTest(ctx context.Context, x, y float64) (a11y.Element, int, error)
}

// Window is one OS window handed to a parser: its accessibility root plus
// the host metadata a parser needs to disambiguate main vs. child windows
// or to unlock a platform subtree (Teams' hit test is keyed by PID).
type Window struct {
	Root      a11y.Element
	Title     string
	PID       int
	HitTester HitTester
}

// CalendarEvent is one parsed calendar entry (Calendar, Outlook, Teams).
type CalendarEvent struct {
	Title     string
	Start     time.Time
	End       time.Time
	Location  string
	Organizer string
}

// Document is a single-document surface's extracted content (Notion,
// Obsidian).
type Document struct {
	Title   string
	Content string
}

// BrowserFrame is a flattened browser tab (Chrome).
type BrowserFrame struct {
	URL   string
	Title string
	Text  string
}

// MeetingParticipant is one attendee of an in-progress video call (Zoom).
type MeetingParticipant struct {
	Name       string
	IsSpeaking bool
}

// Meeting describes an in-progress video call (Zoom).
type Meeting struct {
	InProgress   bool
	MeetingID    string
	Participants []MeetingParticipant
}

// ParseResult is a tagged union: every field is optional, and a parser
// populates only the ones relevant to what it found in this window. The
// zero value is Empty, returned whenever a parser cannot locate its anchor
// structures.
type ParseResult struct {
	ConversationSummaries []string
	ActiveConversations   []ingest.ConversationRecord
	CalendarEvents        []CalendarEvent
	Document              *Document
	BrowserFrame          *BrowserFrame
	Meeting               *Meeting
}

// Empty reports whether every field of r is unset.
func (r ParseResult) Empty() bool {
	return len(r.ConversationSummaries) == 0 &&
		len(r.ActiveConversations) == 0 &&
		len(r.CalendarEvents) == 0 &&
		r.Document == nil &&
		r.BrowserFrame == nil &&
		r.Meeting == nil
}

// Parser is the single capability every per-app parser implements. A parser
// that cannot locate its anchor structures returns a zero ParseResult, nil;
// any panic recovered internally during traversal is swallowed at the
// branch so one malformed subtree never aborts the whole window.
type Parser interface {
	Parse(ctx context.Context, w Window, dl deadline.Deadline) (ParseResult, error)
}

// now is overridable by tests so date-normalization carries a fixed clock.
var now = time.Now
