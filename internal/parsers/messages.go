package parsers

import (
	"context"

	"github.com/beeper/slunk-harvester/internal/a11y"
	"github.com/beeper/slunk-harvester/internal/datetime"
	"github.com/beeper/slunk-harvester/internal/deadline"
	"github.com/beeper/slunk-harvester/internal/ingest"
	"github.com/beeper/slunk-harvester/internal/traverse"
)

// MessagesParser covers Apple Messages: a "Conversations" list (used only
// to name the active conversation) and a "Messages" list whose rows
// inherit the most recently seen date heading.
type MessagesParser struct{}

func (MessagesParser) Parse(ctx context.Context, w Window, dl deadline.Deadline) (ParseResult, error) {
	conversations, _ := traverse.FindElement(ctx, w.Root, descriptionEquals("Conversations"), traverse.Options{Deadline: dl})
	channel := ""
	if conversations != nil {
		if sel, ok := findSelectedChild(ctx, conversations); ok {
			channel = cleanText(title(ctx, sel))
		}
	}

	messagesGroup, ok := traverse.FindElement(ctx, w.Root, descriptionEquals("Messages"), traverse.Options{Deadline: dl})
	if !ok {
		return ParseResult{}, nil
	}

	var messages []ingest.MessageRecord
	lastDate := ""
	safeEach(children(ctx, messagesGroup), func(child a11y.Element) {
		if kind, ok, _ := child.Attribute(ctx, "kind"); ok && kind == "date-heading" {
			lastDate = cleanText(value(ctx, child))
			return
		}
		sender, content, ok := extractSenderContentRow(ctx, child)
		if !ok {
			return
		}
		ts, _ := datetime.Parse(lastDate, now())
		messages = append(messages, ingest.MessageRecord{
			ID:                 stableMessageID("messages", sender, lastDate, content),
			Sender:             sender,
			Content:            content,
			TimestampMonotonic: ts,
			MessageType:        ingest.MessageRegular,
			Metadata:           ingest.MessageMetadata{Version: 1},
		})
	})
	if len(messages) == 0 {
		return ParseResult{}, nil
	}
	return ParseResult{ActiveConversations: []ingest.ConversationRecord{{
		App:      "messages",
		Channel:  channel,
		Messages: messages,
	}}}, nil
}

func descriptionEquals(d string) func(ctx context.Context, e a11y.Element) bool {
	return func(ctx context.Context, e a11y.Element) bool {
		return description(ctx, e) == d
	}
}

func findSelectedChild(ctx context.Context, e a11y.Element) (a11y.Element, bool) {
	for _, c := range children(ctx, e) {
		if v, ok, _ := c.Attribute(ctx, "selected"); ok && v == "true" {
			return c, true
		}
	}
	return nil, false
}

// extractSenderContentRow reads a group row built from one button (sender
// title) and one static text (content value), the row shape the Messages
// and Discord parsers share.
func extractSenderContentRow(ctx context.Context, row a11y.Element) (sender, content string, ok bool) {
	for _, part := range children(ctx, row) {
		switch role(ctx, part) {
		case RoleButton:
			if sender == "" {
				sender = cleanText(title(ctx, part))
			}
		case RoleStaticText:
			if v := cleanText(value(ctx, part)); v != "" {
				if content != "" {
					content += " "
				}
				content += v
			}
		}
	}
	return sender, content, content != ""
}
