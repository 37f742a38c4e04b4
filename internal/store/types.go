package store

import "time"

// StoredMessage is the persisted form of a MessageRecord.
type StoredMessage struct {
	ID              string
	Workspace       string
	Channel         string
	Sender          string
	Content         string
	Timestamp       time.Time
	ThreadTS        string
	Mentions        []string
	AttachmentNames []string
	ContentHash     string
	Version         int
	EditedAt        *time.Time
	IngestedAt      time.Time
	UpdatedAt       time.Time
	DateOnly        string
	MonthYear       string
	DayOfWeek       string
}

// Reaction is one row of slack_reactions.
type Reaction struct {
	MessageID string
	Emoji     string
	Count     int
	UpdatedAt time.Time
}

// IngestionSession is one append-only row of ingestion_log.
type IngestionSession struct {
	SessionID               string
	Workspace               string
	Channel                 string
	LastMessageTimestamp    string
	IngestedAt              time.Time
	MessageCount            int
	NewMessages             int
	UpdatedMessages         int
	DuplicateMessages       int
	ReactionUpdatedMessages int
}
