package parsers

import (
	"context"

	"github.com/beeper/slunk-harvester/internal/a11y"
	"github.com/beeper/slunk-harvester/internal/deadline"
	"github.com/beeper/slunk-harvester/internal/traverse"
)

// CalendarParser emits one CalendarEvent per role-description "Event"
// element, parsed with the same event grammar Outlook/Teams use.
type CalendarParser struct{}

func (CalendarParser) Parse(ctx context.Context, w Window, dl deadline.Deadline) (ParseResult, error) {
	candidates := traverse.FindElements(ctx, w.Root, func(ctx context.Context, e a11y.Element) bool {
		return description(ctx, e) == "Event" || role(ctx, e) == "Event"
	}, traverse.Options{Deadline: dl})
	events := make([]CalendarEvent, 0, len(candidates))
	safeEach(candidates, func(e a11y.Element) {
		d := value(ctx, e)
		if d == "" {
			d = title(ctx, e)
		}
		if ev, ok := parseCalendarDescription(teamsCalendarRE, d); ok {
			events = append(events, ev)
		}
	})
	if len(events) == 0 {
		return ParseResult{}, nil
	}
	return ParseResult{CalendarEvents: events}, nil
}
