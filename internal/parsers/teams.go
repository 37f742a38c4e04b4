package parsers

import (
	"context"
	"regexp"
	"sync"

	"github.com/beeper/slunk-harvester/internal/a11y"
	"github.com/beeper/slunk-harvester/internal/datetime"
	"github.com/beeper/slunk-harvester/internal/deadline"
	"github.com/beeper/slunk-harvester/internal/ingest"
	"github.com/beeper/slunk-harvester/internal/match"
	"github.com/beeper/slunk-harvester/internal/traverse"
)

// teamsMessageRE and teamsCalendarRE are the frozen regexes Teams
// descriptions are matched against to decide what a candidate element is.
var (
	teamsMessageRE  = regexp.MustCompile(`^(.+?)(?: Sent)? (.+?) (\w+ \d{1,2}, \d{4} \d{1,2}:\d{2} (?:AM|PM))\.$`)
	teamsCalendarRE = regexp.MustCompile(`^(.*?), ((?:\w+ \d{1,2}, \d{4} \d{1,2}:\d{2} (?:AM|PM)) to (\d{1,2}:\d{2} (?:AM|PM))), location: (.*?), organized by (.*?),.*$`)
)

// teamsUnlockedPIDs remembers which process ids have already passed the
// centre-point hit test. No entry is ever removed: per the source, Teams'
// "initialized" state is scoped to a PID for the process lifetime, with
// behaviour across a Teams restart (PID reuse) left undefined.
var (
	teamsUnlockedMu  sync.Mutex
	teamsUnlockedPID = map[int]a11y.Element{}
)

// TeamsParser unlocks the Teams accessibility subtree via a centre-point
// hit test keyed by PID, then classifies each candidate description as
// either a message or a calendar event.
type TeamsParser struct{}

func (TeamsParser) Parse(ctx context.Context, w Window, dl deadline.Deadline) (ParseResult, error) {
	root, ok := teamsUnlock(ctx, w)
	if !ok {
		return ParseResult{}, nil
	}

	var messages []ingest.MessageRecord
	var events []CalendarEvent
	safeEach(traverse.FindElements(ctx, root, match.Always, traverse.Options{Deadline: dl}), func(e a11y.Element) {
		d := description(ctx, e)
		if m := teamsMessageRE.FindStringSubmatch(d); m != nil {
			ts, _ := datetime.Parse(m[3], now())
			messages = append(messages, ingest.MessageRecord{
				ID:                 stableMessageID("teams", m[1], m[3]),
				Sender:             m[1],
				Content:            m[2],
				TimestampMonotonic: ts,
				MessageType:        ingest.MessageRegular,
				Metadata:           ingest.MessageMetadata{Version: 1},
			})
			return
		}
		if ev, ok := parseCalendarDescription(teamsCalendarRE, d); ok {
			events = append(events, ev)
		}
	})

	var result ParseResult
	if len(messages) > 0 {
		result.ActiveConversations = []ingest.ConversationRecord{{App: "teams", Messages: messages}}
	}
	if len(events) > 0 {
		result.CalendarEvents = events
	}
	return result, nil
}

func teamsUnlock(ctx context.Context, w Window) (a11y.Element, bool) {
	teamsUnlockedMu.Lock()
	defer teamsUnlockedMu.Unlock()
	if el, ok := teamsUnlockedPID[w.PID]; ok {
		return el, true
	}
	if w.HitTester == nil {
		teamsUnlockedPID[w.PID] = w.Root
		return w.Root, true
	}
	rect, err := w.Root.Position(ctx)
	if err != nil {
		return nil, false
	}
	el, pid, err := w.HitTester.HitTest(ctx, rect.X+rect.W/2, rect.Y+rect.H/2)
	if err != nil || pid != w.PID {
		return nil, false
	}
	teamsUnlockedPID[w.PID] = el
	return el, true
}

// parseCalendarDescription applies the Outlook/Teams calendar regex and
// resolves the shared date into absolute start/end instants.
func parseCalendarDescription(re *regexp.Regexp, d string) (CalendarEvent, bool) {
	m := re.FindStringSubmatch(d)
	if m == nil {
		return CalendarEvent{}, false
	}
	startRaw := m[2][:len(m[2])-len(" to "+m[3])]
	start, ok := datetime.Parse(startRaw, now())
	if !ok {
		return CalendarEvent{}, false
	}
	end, ok := datetime.Parse(m[3], start)
	if !ok {
		return CalendarEvent{}, false
	}
	return CalendarEvent{
		Title:     m[1],
		Start:     start,
		End:       end,
		Location:  m[4],
		Organizer: m[5],
	}, true
}
