package parsers

import (
	"context"
	"regexp"

	"github.com/beeper/slunk-harvester/internal/a11y"
	"github.com/beeper/slunk-harvester/internal/datetime"
	"github.com/beeper/slunk-harvester/internal/deadline"
	"github.com/beeper/slunk-harvester/internal/ingest"
	"github.com/beeper/slunk-harvester/internal/match"
	"github.com/beeper/slunk-harvester/internal/traverse"
)

// outlookEmailRE is the frozen email-cell description pattern.
var outlookEmailRE = regexp.MustCompile(`Sender:\s*(.*?),\s*Subject:\s*(.*?),\s*(\d{1,2}/\d{1,2}/\d{2,4}),\s*Message preview:\s*(.*)`)

// OutlookParser parses email list cells and calendar cells by applying
// two fixed regexes to every candidate's description, the same calendar
// pattern Teams uses.
type OutlookParser struct{}

func (OutlookParser) Parse(ctx context.Context, w Window, dl deadline.Deadline) (ParseResult, error) {
	var messages []ingest.MessageRecord
	var events []CalendarEvent

	safeEach(traverse.FindElements(ctx, w.Root, match.Always, traverse.Options{Deadline: dl}), func(e a11y.Element) {
		d := description(ctx, e)
		if m := outlookEmailRE.FindStringSubmatch(d); m != nil {
			ts, _ := datetime.Parse(m[3], now())
			messages = append(messages, ingest.MessageRecord{
				ID:                 stableMessageID("outlook", m[1], m[3], m[2]),
				Sender:             m[1],
				Content:            m[2] + ": " + m[4],
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
		result.ActiveConversations = []ingest.ConversationRecord{{App: "outlook", Channel: "mail", Messages: messages}}
	}
	if len(events) > 0 {
		result.CalendarEvents = events
	}
	return result, nil
}
