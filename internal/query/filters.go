// Package query implements the structured filter, keyword, vector, and
// hybrid search surface over internal/store (C10).
package query

import (
	"fmt"
	"strings"
	"time"
)

// Filter is the structured filter set shared by every search mode: channel
// and sender allow-lists, a timestamp range, a content LIKE pattern, and an
// optional reactions-exist constraint.
type Filter struct {
	Channels       []string
	Senders        []string
	Since          time.Time
	Until          time.Time
	ContentLike    string
	ReactionsExist bool
	Limit          int

	// idsOverride restricts the result set to exactly these message ids,
	// used internally by Hybrid to re-fetch full rows for a merged id set.
	idsOverride []string
}

// whereClause renders f as a SQL WHERE fragment (without the leading
// "WHERE") plus its positional args, in a fixed field order so query plans
// and tests stay deterministic.
func (f Filter) whereClause() (string, []any) {
	var clauses []string
	var args []any

	if len(f.idsOverride) > 0 {
		clauses = append(clauses, "id IN ("+placeholders(len(f.idsOverride))+")")
		for _, id := range f.idsOverride {
			args = append(args, id)
		}
	}
	if len(f.Channels) > 0 {
		clauses = append(clauses, "channel IN ("+placeholders(len(f.Channels))+")")
		for _, c := range f.Channels {
			args = append(args, c)
		}
	}
	if len(f.Senders) > 0 {
		clauses = append(clauses, "sender IN ("+placeholders(len(f.Senders))+")")
		for _, s := range f.Senders {
			args = append(args, s)
		}
	}
	if !f.Since.IsZero() {
		clauses = append(clauses, "timestamp >= ?")
		args = append(args, f.Since.UTC())
	}
	if !f.Until.IsZero() {
		clauses = append(clauses, "timestamp <= ?")
		args = append(args, f.Until.UTC())
	}
	if f.ContentLike != "" {
		clauses = append(clauses, "content LIKE ?")
		args = append(args, "%"+f.ContentLike+"%")
	}
	if f.ReactionsExist {
		clauses = append(clauses, "EXISTS (SELECT 1 FROM slack_reactions r WHERE r.message_id = slack_messages.id)")
	}

	if len(clauses) == 0 {
		return "1=1", args
	}
	return strings.Join(clauses, " AND "), args
}

func placeholders(n int) string {
	ps := make([]string, n)
	for i := range ps {
		ps[i] = "?"
	}
	return strings.Join(ps, ", ")
}

func (f Filter) limit() int {
	if f.Limit <= 0 {
		return 50
	}
	return f.Limit
}

func buildQuery(f Filter, extraWhere string, orderBy string) (string, []any) {
	where, args := f.whereClause()
	if extraWhere != "" {
		where = where + " AND " + extraWhere
	}
	q := fmt.Sprintf(`
		SELECT id, workspace, channel, sender, content, timestamp, thread_ts,
		       mentions, attachment_names, content_hash, version, edited_at,
		       ingested_at, updated_at
		FROM slack_messages
		WHERE %s
		ORDER BY %s
		LIMIT ?`, where, orderBy)
	args = append(args, f.limit())
	return q, args
}
