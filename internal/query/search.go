package query

import (
	"context"
	"database/sql"
	"encoding/json"
	"regexp"
	"sort"
	"strings"

	"github.com/beeper/slunk-harvester/internal/embedding"
	"github.com/beeper/slunk-harvester/internal/store"
)

// HybridConfig carries the weights a blended query exposes for combining
// vector and lexical scores, plus how deep the vector leg reaches relative
// to the final limit.
type HybridConfig struct {
	VectorWeight float64
	TextWeight   float64
	// VectorOverfetch multiplies Filter.Limit to decide how many vector
	// matches to pull before merging with keyword hits; defaults to 2.
	VectorOverfetch int
}

func DefaultHybridConfig() HybridConfig {
	return HybridConfig{VectorWeight: 0.5, TextWeight: 0.5, VectorOverfetch: 2}
}

// Engine is the query surface over one Store, optionally backed by an
// embedding.Provider for the vector and hybrid search modes.
type Engine struct {
	store  *store.Store
	embed  embedding.Provider
	hybrid HybridConfig
}

func NewEngine(st *store.Store, embed embedding.Provider, hybrid HybridConfig) *Engine {
	return &Engine{store: st, embed: embed, hybrid: hybrid}
}

func scanMessages(rows *sql.Rows) ([]store.StoredMessage, error) {
	defer rows.Close()
	var out []store.StoredMessage
	for rows.Next() {
		var m store.StoredMessage
		var threadTS sql.NullString
		var editedAt sql.NullTime
		var mentionsJSON, attachmentsJSON string
		if err := rows.Scan(&m.ID, &m.Workspace, &m.Channel, &m.Sender, &m.Content,
			&m.Timestamp, &threadTS, &mentionsJSON, &attachmentsJSON, &m.ContentHash,
			&m.Version, &editedAt, &m.IngestedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		m.ThreadTS = threadTS.String
		if editedAt.Valid {
			t := editedAt.Time
			m.EditedAt = &t
		}
		_ = json.Unmarshal([]byte(mentionsJSON), &m.Mentions)
		_ = json.Unmarshal([]byte(attachmentsJSON), &m.AttachmentNames)
		out = append(out, m)
	}
	return out, rows.Err()
}

// Structured runs filter-only search ordered by timestamp DESC, the base
// mode every other mode narrows from.
func (e *Engine) Structured(ctx context.Context, f Filter) ([]store.StoredMessage, error) {
	q, args := buildQuery(f, "", "timestamp DESC")
	rows, err := e.store.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return scanMessages(rows)
}

// Keyword runs an FTS5 MATCH search combined with f, ordered by timestamp
// DESC. If the query tokenizes to nothing usable it returns the filter-only
// Structured results instead.
func (e *Engine) Keyword(ctx context.Context, f Filter, queryText string) ([]store.StoredMessage, error) {
	ftsQuery := BuildFtsQuery(queryText)
	if ftsQuery == "" {
		return e.Structured(ctx, f)
	}

	where, whereArgs := f.whereClause()
	q := `
		SELECT m.id, m.workspace, m.channel, m.sender, m.content, m.timestamp, m.thread_ts,
		       m.mentions, m.attachment_names, m.content_hash, m.version, m.edited_at,
		       m.ingested_at, m.updated_at
		FROM slack_messages m
		JOIN slack_messages_fts fts ON fts.id = m.id
		WHERE fts.content MATCH ? AND ` + where + `
		ORDER BY m.timestamp DESC
		LIMIT ?`
	args := append([]any{ftsQuery}, whereArgs...)
	args = append(args, f.limit())

	rows, err := e.store.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return scanMessages(rows)
}

// keywordScored runs the same FTS5 match but also returns each hit's bm25
// rank, normalized to [0,1], for use by Hybrid.
func (e *Engine) keywordScored(ctx context.Context, f Filter, queryText string, limit int) ([]HybridKeywordResult, error) {
	ftsQuery := BuildFtsQuery(queryText)
	if ftsQuery == "" {
		return nil, nil
	}
	where, whereArgs := f.whereClause()
	q := `
		SELECT m.id, bm25(fts) AS rank
		FROM slack_messages m
		JOIN slack_messages_fts fts ON fts.id = m.id
		WHERE fts.content MATCH ? AND ` + where + `
		ORDER BY rank
		LIMIT ?`
	args := append([]any{ftsQuery}, whereArgs...)
	args = append(args, limit)

	rows, err := e.store.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HybridKeywordResult
	for rows.Next() {
		var id string
		var rank float64
		if err := rows.Scan(&id, &rank); err != nil {
			return nil, err
		}
		out = append(out, HybridKeywordResult{ID: id, TextScore: BM25RankToScore(rank)})
	}
	return out, rows.Err()
}

// Vector runs a pure k-NN search for queryText, ordered by ascending
// distance (1-cosine).
func (e *Engine) Vector(ctx context.Context, queryText string, k int) ([]store.VectorHit, error) {
	if e.embed == nil {
		return nil, nil
	}
	vec, err := e.embed.EmbedQuery(ctx, queryText)
	if err != nil {
		return nil, err
	}
	return e.store.VectorKNN(ctx, vec, k)
}

// Hybrid merges the top 2L vector matches with the keyword matches. Per the
// ranking invariant, the final ordering is (semanticMatch DESC, timestamp
// DESC): any message with a vector hit sorts ahead of any message without
// one, and ties break by recency. The blended score from HybridConfig is
// retained on HybridResult for display, but never overrides that ordering.
func (e *Engine) Hybrid(ctx context.Context, f Filter, queryText string) ([]HybridResult, error) {
	limit := f.limit()
	overfetch := e.hybrid.VectorOverfetch
	if overfetch <= 0 {
		overfetch = 2
	}

	var vectorHits []store.VectorHit
	if e.embed != nil {
		vh, err := e.Vector(ctx, queryText, limit*overfetch)
		if err == nil {
			vectorHits = vh
		}
	}
	keywordHits, err := e.keywordScored(ctx, f, queryText, limit*overfetch)
	if err != nil {
		return nil, err
	}

	byID := map[string]*HybridResult{}
	order := []string{}
	for _, v := range vectorHits {
		score := 1 - v.Distance
		if score < 0 {
			score = 0
		}
		byID[v.ID] = &HybridResult{ID: v.ID, VectorScore: score, SemanticMatch: true}
		order = append(order, v.ID)
	}
	for _, k := range keywordHits {
		if existing, ok := byID[k.ID]; ok {
			existing.TextScore = k.TextScore
			continue
		}
		byID[k.ID] = &HybridResult{ID: k.ID, TextScore: k.TextScore}
		order = append(order, k.ID)
	}

	ids := make([]string, 0, len(order))
	seen := map[string]bool{}
	for _, id := range order {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	messages, err := e.Structured(ctx, Filter{Limit: len(ids)}.withIDs(ids))
	if err != nil {
		return nil, err
	}
	msgByID := make(map[string]store.StoredMessage, len(messages))
	for _, m := range messages {
		msgByID[m.ID] = m
	}

	results := make([]HybridResult, 0, len(byID))
	for id, r := range byID {
		m, ok := msgByID[id]
		if !ok {
			continue
		}
		r.Message = m
		r.Score = e.hybrid.VectorWeight*r.VectorScore + e.hybrid.TextWeight*r.TextScore
		results = append(results, *r)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].SemanticMatch != results[j].SemanticMatch {
			return results[i].SemanticMatch
		}
		return results[i].Message.Timestamp.After(results[j].Message.Timestamp)
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// HybridResult pairs a merged score with the full message row and whether
// it was a semantic (vector) hit.
type HybridResult struct {
	ID            string
	Message       store.StoredMessage
	VectorScore   float64
	TextScore     float64
	Score         float64
	SemanticMatch bool
}

// HybridKeywordResult is one bm25-scored keyword hit, kept separate from
// store.StoredMessage so keywordScored stays a cheap id+score query.
type HybridKeywordResult struct {
	ID        string
	TextScore float64
}

var tokenRE = regexp.MustCompile(`[A-Za-z0-9_]+`)

// BuildFtsQuery builds an AND-of-quoted-tokens FTS5 MATCH expression from
// raw user input.
func BuildFtsQuery(raw string) string {
	tokens := tokenRE.FindAllString(raw, -1)
	if len(tokens) == 0 {
		return ""
	}
	parts := make([]string, 0, len(tokens))
	for _, token := range tokens {
		clean := strings.ReplaceAll(token, `"`, "")
		if clean == "" {
			continue
		}
		parts = append(parts, `"`+clean+`"`)
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, " AND ")
}

// BM25RankToScore normalizes an FTS5 bm25 rank (lower is better, can be
// negative) into a (0,1] score where higher is better.
func BM25RankToScore(rank float64) float64 {
	if rank < 0 {
		rank = 0
	}
	return 1 / (1 + rank)
}

func (f Filter) withIDs(ids []string) Filter {
	f.idsOverride = ids
	return f
}
