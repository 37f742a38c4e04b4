package parsers

import (
	"context"
	"regexp"
	"strings"

	"github.com/beeper/slunk-harvester/internal/a11y"
	"github.com/beeper/slunk-harvester/internal/deadline"
	"github.com/beeper/slunk-harvester/internal/traverse"
)

// zoomMeetingIDRE is the frozen Google Meet-style meeting id pattern,
// occasionally surfaced in a Zoom window title when joined via a Meet link.
var zoomMeetingIDRE = regexp.MustCompile(`[a-z]{3}-[a-z]{4}-[a-z]{3}`)

// ZoomParser detects an in-progress meeting by window title and lists
// participants from "Video render" elements.
type ZoomParser struct{}

func (ZoomParser) Parse(ctx context.Context, w Window, dl deadline.Deadline) (ParseResult, error) {
	if !strings.Contains(w.Title, "Zoom Meeting") {
		return ParseResult{}, nil
	}

	candidates := traverse.FindElements(ctx, w.Root, func(ctx context.Context, e a11y.Element) bool {
		return strings.HasPrefix(description(ctx, e), "Video render")
	}, traverse.Options{Deadline: dl})

	participants := make([]MeetingParticipant, 0, len(candidates))
	safeEach(candidates, func(e a11y.Element) {
		name := cleanText(title(ctx, e))
		if name == "" {
			return
		}
		participants = append(participants, MeetingParticipant{
			Name:       name,
			IsSpeaking: strings.Contains(description(ctx, e), "unmuted"),
		})
	})

	return ParseResult{Meeting: &Meeting{
		InProgress:   true,
		MeetingID:    zoomMeetingIDRE.FindString(w.Title),
		Participants: participants,
	}}, nil
}
