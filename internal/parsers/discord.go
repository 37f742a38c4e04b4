package parsers

import (
	"context"
	"strings"

	"github.com/beeper/slunk-harvester/internal/a11y"
	"github.com/beeper/slunk-harvester/internal/deadline"
	"github.com/beeper/slunk-harvester/internal/ingest"
	"github.com/beeper/slunk-harvester/internal/traverse"
)

const discordChannelPrefix = "Messages in"

// DiscordParser finds the message list by its description ("Messages in
// <channel>") and extracts the channel name from that same description.
type DiscordParser struct{}

func (DiscordParser) Parse(ctx context.Context, w Window, dl deadline.Deadline) (ParseResult, error) {
	list, ok := traverse.FindElement(ctx, w.Root, func(ctx context.Context, e a11y.Element) bool {
		return role(ctx, e) == RoleList && strings.Contains(description(ctx, e), "Messages")
	}, traverse.Options{Deadline: dl})
	if !ok {
		return ParseResult{}, nil
	}
	channel := strings.TrimSpace(strings.TrimPrefix(description(ctx, list), discordChannelPrefix))

	var messages []ingest.MessageRecord
	lastSender := ""
	safeEach(children(ctx, list), func(row a11y.Element) {
		sender, content, ok := extractSenderContentRow(ctx, row)
		if !ok {
			return
		}
		if sender == "" {
			sender = lastSender
		} else {
			lastSender = sender
		}
		if sender == "" {
			return
		}
		messages = append(messages, ingest.MessageRecord{
			ID:          stableMessageID("discord", channel, sender, content),
			Sender:      sender,
			Content:     content,
			MessageType: ingest.MessageRegular,
			Metadata:    ingest.MessageMetadata{Version: 1},
		})
	})
	if len(messages) == 0 {
		return ParseResult{}, nil
	}
	return ParseResult{ActiveConversations: []ingest.ConversationRecord{{
		App:      "discord",
		Channel:  channel,
		Messages: messages,
	}}}, nil
}
