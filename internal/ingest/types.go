// Package ingest implements the parser-output-to-store pipeline (C9): dedup
// classification, single-writer-transaction persistence, synchronous
// embedding requests, and per-session counters.
package ingest

import "time"

// ChannelType enumerates the kinds of channel a ConversationRecord can
// describe.
type ChannelType string

const (
	ChannelPublic  ChannelType = "public"
	ChannelPrivate ChannelType = "private"
	ChannelDM      ChannelType = "dm"
	ChannelGroup   ChannelType = "group"
)

// MessageType enumerates the kinds of message a parser can emit.
type MessageType string

const (
	MessageRegular    MessageType = "regular"
	MessageThread     MessageType = "thread"
	MessageReply      MessageType = "reply"
	MessageSystem     MessageType = "system"
	MessageAttachment MessageType = "attachment"
	MessageDeleted    MessageType = "deleted"
	MessageImage      MessageType = "image"
)

// ConversationRecord is a parser's output unit: a channel plus its ordered
// messages. Its lifetime ends once ingestion consumes it.
type ConversationRecord struct {
	App         string
	Workspace   string
	Channel     string
	ChannelType ChannelType
	IsGroup     bool
	Messages    []MessageRecord
}

// MessageMetadata carries the mutable, per-revision facts about a message.
type MessageMetadata struct {
	Reactions       map[string]int
	Mentions        []string
	AttachmentNames []string
	EditedAt        *time.Time
	Version         int
	// ThreadSummary is the reply-count/last-reply text a parser found
	// alongside a thread-root message (e.g. "3 replies Last reply today at
	// 2:14 PM"), when that message's type is MessageThread.
	ThreadSummary string
}

// MessageRecord is one message as a parser extracted it from the UI.
type MessageRecord struct {
	ID                 string
	Sender             string
	Content            string
	TimestampMonotonic time.Time
	ThreadParentID     string
	MessageType        MessageType
	Metadata           MessageMetadata
}
