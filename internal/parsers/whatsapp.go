package parsers

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/beeper/slunk-harvester/internal/a11y"
	"github.com/beeper/slunk-harvester/internal/datetime"
	"github.com/beeper/slunk-harvester/internal/deadline"
	"github.com/beeper/slunk-harvester/internal/ingest"
	"github.com/beeper/slunk-harvester/internal/match"
	"github.com/beeper/slunk-harvester/internal/traverse"
)

// whatsappStatusMarkers are the trailing status words WhatsApp appends to a
// message description. "Red" is not a typo we fix: it is the literal
// source string for a read receipt, and changing it would silently diverge
// from the app's actual (if misspelled) behaviour.
var whatsappStatusMarkers = map[string]bool{
	"Read": true, "Red": true, "Delivered": true, "Starred": true, "Edited": true, "Pinned": true,
}

type whatsappPrefix struct {
	prefix        string
	mediaLabel    string
	self          bool
	reply         bool
	hasInlineFrom bool
}

// whatsappPrefixes is the fixed, ordered prefix list frozen in the
// external interface. Order matches the source listing.
var whatsappPrefixes = []whatsappPrefix{
	{prefix: "message,"},
	{prefix: "Message from", hasInlineFrom: true},
	{prefix: "Replying to", hasInlineFrom: true, reply: true},
	{prefix: "Forwarded."},
	{prefix: "Video,", mediaLabel: "Video"},
	{prefix: "Video from", mediaLabel: "Video", hasInlineFrom: true},
	{prefix: "Photo,", mediaLabel: "Photo"},
	{prefix: "Photo from", mediaLabel: "Photo", hasInlineFrom: true},
	{prefix: "Your message,", self: true},
	{prefix: "Your video,", mediaLabel: "Video", self: true},
	{prefix: "Your photo,", mediaLabel: "Photo", self: true},
}

var (
	whatsappTimeRE = regexp.MustCompile(`(?i)^\d{1,2}:\d{2}\s*[AP]M$`)
	whatsappDateRE = regexp.MustCompile(`(?i)^(January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2}$`)
)

// WhatsAppParser implements the two-pass table detection and fixed-prefix
// description grammar described for WhatsApp.
type WhatsAppParser struct{}

func (WhatsAppParser) Parse(ctx context.Context, w Window, dl deadline.Deadline) (ParseResult, error) {
	tables := traverse.FindElements(ctx, w.Root, match.HasRole(RoleTable), traverse.Options{Deadline: dl})
	if len(tables) == 0 {
		return ParseResult{}, nil
	}
	chat := tables[0]
	if len(tables) > 1 {
		chat = tables[1]
	}

	candidates := traverse.FindElements(ctx, chat, whatsappDescriptionMatcher, traverse.Options{Deadline: dl})
	if len(candidates) == 0 {
		return ParseResult{}, nil
	}

	var conversationName string
	var messages []ingest.MessageRecord
	safeEach(candidates, func(e a11y.Element) {
		msg, name, ok := parseWhatsAppDescription(description(ctx, e), now())
		if !ok {
			return
		}
		if conversationName == "" {
			conversationName = name
		}
		messages = append(messages, msg)
	})
	if len(messages) == 0 {
		return ParseResult{}, nil
	}
	return ParseResult{ActiveConversations: []ingest.ConversationRecord{{
		App:      "whatsapp",
		Channel:  conversationName,
		Messages: messages,
	}}}, nil
}

func whatsappDescriptionMatcher(ctx context.Context, e a11y.Element) bool {
	d := description(ctx, e)
	for _, p := range whatsappPrefixes {
		if strings.HasPrefix(d, p.prefix) {
			return true
		}
	}
	return false
}

// parseWhatsAppDescription implements the fixed grammar: prefix, optional
// inline sender, content, optional date, time, recipient info, trailing
// status markers.
func parseWhatsAppDescription(desc string, now time.Time) (ingest.MessageRecord, string, bool) {
	var matched whatsappPrefix
	var rest string
	found := false
	for _, p := range whatsappPrefixes {
		if strings.HasPrefix(desc, p.prefix) {
			matched = p
			rest = strings.TrimSpace(strings.TrimPrefix(desc, p.prefix))
			found = true
			break
		}
	}
	if !found {
		return ingest.MessageRecord{}, "", false
	}

	for {
		trimmed := strings.TrimRight(rest, " ")
		idx := strings.LastIndex(trimmed, ", ")
		if idx < 0 {
			break
		}
		tail := trimmed[idx+2:]
		if !whatsappStatusMarkers[tail] {
			break
		}
		rest = trimmed[:idx]
	}

	segments := splitWhatsAppSegments(rest)

	var inlineSender string
	if matched.hasInlineFrom && len(segments) > 0 {
		inlineSender = segments[0]
		segments = segments[1:]
	}

	timeIdx := -1
	for i, seg := range segments {
		if whatsappTimeRE.MatchString(strings.TrimSpace(seg)) {
			timeIdx = i
			break
		}
	}
	if timeIdx < 0 {
		return ingest.MessageRecord{}, "", false
	}

	contentSegments := segments[:timeIdx]
	dateSegment := ""
	if len(contentSegments) > 0 && whatsappDateRE.MatchString(strings.TrimSpace(contentSegments[len(contentSegments)-1])) {
		dateSegment = strings.TrimSpace(contentSegments[len(contentSegments)-1])
		contentSegments = contentSegments[:len(contentSegments)-1]
	}
	content := strings.TrimSpace(strings.Join(contentSegments, ", "))
	if content == "" && matched.mediaLabel != "" {
		content = matched.mediaLabel
	}

	timeSeg := strings.TrimSpace(segments[timeIdx])
	tsInput := timeSeg
	if dateSegment != "" {
		tsInput = dateSegment + " " + timeSeg
	}
	ts, _ := datetime.Parse(tsInput, now)

	var recipientSeg string
	for _, seg := range segments[timeIdx+1:] {
		recipientSeg = strings.TrimSpace(seg)
		break
	}

	sender, conversationName := whatsappResolveSender(matched, inlineSender, recipientSeg)
	if sender == "" {
		return ingest.MessageRecord{}, "", false
	}

	msgType := ingest.MessageRegular
	switch {
	case matched.mediaLabel != "":
		msgType = ingest.MessageImage
	case matched.reply:
		msgType = ingest.MessageReply
	}

	return ingest.MessageRecord{
		ID:                 stableMessageID("whatsapp", sender, tsInput),
		Sender:             sender,
		Content:            content,
		TimestampMonotonic: ts,
		MessageType:        msgType,
		Metadata:           ingest.MessageMetadata{Version: 1},
	}, conversationName, true
}

func whatsappResolveSender(p whatsappPrefix, inlineSender, recipientSeg string) (sender, conversationName string) {
	switch {
	case strings.HasPrefix(recipientSeg, "Received from "):
		name := strings.TrimPrefix(recipientSeg, "Received from ")
		return name, name
	case strings.HasPrefix(recipientSeg, "Sent to "):
		name := strings.TrimPrefix(recipientSeg, "Sent to ")
		return "You", name
	}
	if p.self {
		return "You", inlineSender
	}
	if inlineSender != "" {
		return inlineSender, inlineSender
	}
	if recipientSeg != "" {
		return recipientSeg, recipientSeg
	}
	return "", ""
}

func splitWhatsAppSegments(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ", ")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}
