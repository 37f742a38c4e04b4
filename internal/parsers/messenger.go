package parsers

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/beeper/slunk-harvester/internal/a11y"
	"github.com/beeper/slunk-harvester/internal/deadline"
	"github.com/beeper/slunk-harvester/internal/ingest"
	"github.com/beeper/slunk-harvester/internal/match"
	"github.com/beeper/slunk-harvester/internal/traverse"
)

const messengerRowYTolerance = 1.0

// messengerAdminDateRE are the four frozen admin date/time patterns a
// Messenger row can match instead of carrying an author side.
var messengerAdminDateRE = []*regexp.Regexp{
	regexp.MustCompile(`^\d{1,2}:\d{2} [AP]M$`),
	regexp.MustCompile(`^(MON|TUE|WED|THU|FRI|SAT|SUN) \d{1,2}:\d{2} [AP]M$`),
	regexp.MustCompile(`^\d{2}/\d{2}/\d{4}, \d{1,2}:\d{2} [AP]M$`),
	regexp.MustCompile(`^(JAN|FEB|MAR|APR|MAY|JUN|JUL|AUG|SEP|OCT|NOV|DEC) \d{2}, \d{1,2}:\d{2} [AP]M$`),
}

func isMessengerAdminDate(s string) bool {
	for _, re := range messengerAdminDateRE {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// MessengerParser groups message fragments by Y-coordinate into rows, then
// classifies each row by its DOM identifier/role/side.
type MessengerParser struct{}

func (MessengerParser) Parse(ctx context.Context, w Window, dl deadline.Deadline) (ParseResult, error) {
	frame, ok := traverse.FindElement(ctx, w.Root, func(ctx context.Context, e a11y.Element) bool {
		return role(ctx, e) == RoleList && strings.Contains(description(ctx, e), "Messages")
	}, traverse.Options{Deadline: dl})
	if !ok {
		return ParseResult{}, nil
	}
	frameRect, err := frame.Position(ctx)
	if err != nil {
		return ParseResult{}, nil
	}
	midX := frameRect.X + frameRect.W/2

	rows := groupMessengerRows(ctx, children(ctx, frame))
	var messages []ingest.MessageRecord
	for _, r := range rows {
		if msg, ok := classifyMessengerRow(ctx, r, midX); ok {
			messages = append(messages, msg)
		}
	}
	if len(messages) == 0 {
		return ParseResult{}, nil
	}
	return ParseResult{ActiveConversations: []ingest.ConversationRecord{{
		App:      "messenger",
		Messages: messages,
	}}}, nil
}

type messengerRow struct {
	fragments []a11y.Element
	avgY      float64
}

func groupMessengerRows(ctx context.Context, fragments []a11y.Element) []messengerRow {
	var rows []messengerRow
	for _, f := range fragments {
		rect, err := f.Position(ctx)
		if err != nil {
			continue
		}
		if len(rows) > 0 && math.Abs(rows[len(rows)-1].avgY-rect.Y) <= messengerRowYTolerance {
			rows[len(rows)-1].fragments = append(rows[len(rows)-1].fragments, f)
			continue
		}
		rows = append(rows, messengerRow{fragments: []a11y.Element{f}, avgY: rect.Y})
	}
	return rows
}

func classifyMessengerRow(ctx context.Context, r messengerRow, midX float64) (ingest.MessageRecord, bool) {
	if len(r.fragments) == 0 {
		return ingest.MessageRecord{}, false
	}

	for _, f := range r.fragments {
		if d := description(ctx, f); isMessengerAdminDate(d) {
			return ingest.MessageRecord{
				ID:          stableMessageID("messenger", "system", d),
				Sender:      "system",
				Content:     d,
				MessageType: ingest.MessageSystem,
				Metadata:    ingest.MessageMetadata{Version: 1},
			}, true
		}
	}

	isReply := false
	for _, f := range r.fragments {
		if strings.HasPrefix(domID(ctx, f), "reply_context_message") {
			isReply = true
		}
	}

	imageCount := 0
	for _, f := range r.fragments {
		if role(ctx, f) == "image" {
			imageCount++
		}
	}

	isLikeOnly := false
	for _, f := range r.fragments {
		if strings.Contains(domID(ctx, f), "hotlike_message") {
			isLikeOnly = true
		}
	}

	avgX := 0.0
	for _, f := range r.fragments {
		rect, _ := f.Position(ctx)
		avgX += rect.X
	}
	avgX /= float64(len(r.fragments))
	sender := "remote"
	if avgX >= midX {
		sender = "You"
	}

	var content string
	msgType := ingest.MessageRegular
	switch {
	case imageCount >= 2:
		content = fmt.Sprintf("Images (%d)", imageCount)
		msgType = ingest.MessageImage
	case isLikeOnly:
		content = "👍"
	default:
		var parts []string
		for _, f := range r.fragments {
			switch role(ctx, f) {
			case "text-message", "emoji-message":
				if v := cleanText(value(ctx, f)); v != "" {
					parts = append(parts, v)
				}
			}
		}
		content = strings.Join(parts, " ")
		if isReply {
			msgType = ingest.MessageReply
		}
	}
	if content == "" {
		return ingest.MessageRecord{}, false
	}

	return ingest.MessageRecord{
		ID:          stableMessageID("messenger", sender, fmt.Sprintf("%v", r.avgY)),
		Sender:      sender,
		Content:     content,
		MessageType: msgType,
		Metadata:    ingest.MessageMetadata{Version: 1},
	}, true
}
