package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/beeper/slunk-harvester/internal/dedup"
)

// Lookup returns the dedup.ExistingState for an incoming message identity,
// used by the ingestion pipeline to classify before writing.
func (s *Store) Lookup(ctx context.Context, workspace, channel, sender, content, id string) (dedup.ExistingState, error) {
	canon := dedup.Canonicalize(content)

	var state dedup.ExistingState
	var existingID string
	row := s.db.QueryRowContext(ctx,
		`SELECT id FROM slack_messages WHERE workspace = ? AND channel = ? AND sender = ? AND content = ? LIMIT 1`,
		workspace, channel, sender, canon)
	switch err := row.Scan(&existingID); {
	case err == nil:
		state.ContentMatch = true
		reactions, rerr := s.reactionsFor(ctx, existingID)
		if rerr != nil {
			return state, rerr
		}
		state.ExistingReactions = reactions
		return state, nil
	case !errors.Is(err, sql.ErrNoRows):
		return state, fmt.Errorf("%w: %v", ErrFatal, err)
	}

	var existingHash string
	row = s.db.QueryRowContext(ctx,
		`SELECT content_hash FROM slack_messages WHERE workspace = ? AND channel = ? AND id = ? LIMIT 1`,
		workspace, channel, id)
	switch err := row.Scan(&existingHash); {
	case err == nil:
		state.IDMatch = true
		return state, nil
	case errors.Is(err, sql.ErrNoRows):
		return state, nil
	default:
		return state, fmt.Errorf("%w: %v", ErrFatal, err)
	}
}

func (s *Store) reactionsFor(ctx context.Context, messageID string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT emoji, count FROM slack_reactions WHERE message_id = ?`, messageID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFatal, err)
	}
	defer rows.Close()
	out := map[string]int{}
	for rows.Next() {
		var emoji string
		var count int
		if err := rows.Scan(&emoji, &count); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFatal, err)
		}
		out[emoji] = count
	}
	return out, rows.Err()
}

// InsertMessage inserts a brand-new message row (version 1) inside the
// single-writer transaction.
func (s *Store) InsertMessage(ctx context.Context, msg StoredMessage) error {
	return s.withWriter(ctx, func(ctx context.Context, tx *sql.Tx) error {
		mentionsJSON, err := json.Marshal(msg.Mentions)
		if err != nil {
			return err
		}
		attachmentsJSON, err := json.Marshal(msg.AttachmentNames)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO slack_messages
				(id, workspace, channel, sender, content, timestamp, thread_ts,
				 mentions, attachment_names, content_hash, version, edited_at,
				 ingested_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, NULL, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		`, msg.ID, msg.Workspace, msg.Channel, msg.Sender, dedup.Canonicalize(msg.Content),
			msg.Timestamp.UTC(), nullableString(msg.ThreadTS), string(mentionsJSON),
			string(attachmentsJSON), msg.ContentHash)
		return err
	})
}

// UpdateMessage bumps version and rewrites content/hash for an UPDATED
// message.
func (s *Store) UpdateMessage(ctx context.Context, id, content, contentHash string, editedAt time.Time) error {
	return s.withWriter(ctx, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			UPDATE slack_messages
			SET content = ?, content_hash = ?, version = version + 1,
			    edited_at = ?, updated_at = CURRENT_TIMESTAMP
			WHERE id = ?
		`, dedup.Canonicalize(content), contentHash, editedAt.UTC(), id)
		return err
	})
}

// ReplaceReactions clears and reinserts reactions for messageID inside one
// transaction, preserving the reactions-cascade invariant.
func (s *Store) ReplaceReactions(ctx context.Context, messageID string, reactions map[string]int) error {
	return s.withWriter(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM slack_reactions WHERE message_id = ?`, messageID); err != nil {
			return err
		}
		for emoji, count := range reactions {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO slack_reactions (message_id, emoji, count, updated_at)
				VALUES (?, ?, ?, CURRENT_TIMESTAMP)
			`, messageID, emoji, count); err != nil {
				return err
			}
		}
		return nil
	})
}

// AppendIngestionSession appends one end-of-conversation session row.
func (s *Store) AppendIngestionSession(ctx context.Context, session IngestionSession) error {
	return s.withWriter(ctx, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO ingestion_log
				(session_id, workspace, channel, last_message_timestamp, ingested_at,
				 message_count, new_messages, updated_messages, duplicate_messages,
				 reaction_updated_messages)
			VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP, ?, ?, ?, ?, ?)
		`, session.SessionID, session.Workspace, session.Channel, session.LastMessageTimestamp,
			session.MessageCount, session.NewMessages, session.UpdatedMessages,
			session.DuplicateMessages, session.ReactionUpdatedMessages)
		return err
	})
}

// DeleteMessage removes a message and cascades to its reactions and
// embedding.
func (s *Store) DeleteMessage(ctx context.Context, id string) error {
	err := s.withWriter(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM slack_reactions WHERE message_id = ?`, id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM slack_messages WHERE id = ?`, id)
		return err
	})
	if err == nil {
		s.deleteEmbedding(ctx, id)
	}
	return err
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
