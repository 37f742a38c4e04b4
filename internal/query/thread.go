package query

import (
	"context"

	"github.com/beeper/slunk-harvester/internal/store"
)

// Thread returns up to limit messages whose thread_ts matches threadTS,
// ordered oldest first.
func (e *Engine) Thread(ctx context.Context, threadTS string, limit int) ([]store.StoredMessage, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := e.store.QueryContext(ctx, `
		SELECT id, workspace, channel, sender, content, timestamp, thread_ts,
		       mentions, attachment_names, content_hash, version, edited_at,
		       ingested_at, updated_at
		FROM slack_messages
		WHERE thread_ts = ?
		ORDER BY timestamp ASC
		LIMIT ?`, threadTS, limit)
	if err != nil {
		return nil, err
	}
	return scanMessages(rows)
}
