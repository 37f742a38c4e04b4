package parsers

import (
	"context"
	"strings"

	"github.com/beeper/slunk-harvester/internal/a11y"
	"github.com/beeper/slunk-harvester/internal/deadline"
	"github.com/beeper/slunk-harvester/internal/ingest"
	"github.com/beeper/slunk-harvester/internal/traverse"
)

// MailParser covers Apple Mail: a "messages" region listing the mailbox
// (summarised, never turned into conversations) and a "message content"
// region holding the single open email.
type MailParser struct{}

func (MailParser) Parse(ctx context.Context, w Window, dl deadline.Deadline) (ParseResult, error) {
	var result ParseResult

	if list, ok := traverse.FindElement(ctx, w.Root, descriptionEquals("messages"), traverse.Options{Deadline: dl}); ok {
		safeEach(children(ctx, list), func(row a11y.Element) {
			if d := cleanText(description(ctx, row)); d != "" {
				result.ConversationSummaries = append(result.ConversationSummaries, d)
			}
		})
	}

	content, ok := traverse.FindElement(ctx, w.Root, descriptionEquals("message content"), traverse.Options{Deadline: dl})
	if !ok {
		if result.Empty() {
			return ParseResult{}, nil
		}
		return result, nil
	}

	sender, body := extractMailBody(ctx, content)
	if body == "" {
		if result.Empty() {
			return ParseResult{}, nil
		}
		return result, nil
	}
	result.ActiveConversations = []ingest.ConversationRecord{{
		App:     "mail",
		Channel: sender,
		Messages: []ingest.MessageRecord{{
			ID:          stableMessageID("mail", sender, body),
			Sender:      sender,
			Content:     body,
			MessageType: ingest.MessageRegular,
			Metadata:    ingest.MessageMetadata{Version: 1},
		}},
	}}
	return result, nil
}

func extractMailBody(ctx context.Context, content a11y.Element) (sender, body string) {
	var parts []string
	safeEach(children(ctx, content), func(part a11y.Element) {
		switch role(ctx, part) {
		case RoleStaticText:
			if v := cleanText(value(ctx, part)); v != "" {
				parts = append(parts, v)
			}
		case RoleLink, RoleButton:
			if sender == "" {
				sender = cleanText(title(ctx, part))
			}
		}
	})
	return sender, strings.Join(parts, "\n")
}
