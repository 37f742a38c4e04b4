package ingest

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/beeper/slunk-harvester/internal/dedup"
	"github.com/beeper/slunk-harvester/internal/embedding"
	"github.com/beeper/slunk-harvester/internal/hashstore"
	"github.com/beeper/slunk-harvester/internal/store"
)

// Session is the per-conversation tally appended to ingestion_log once the
// conversation is fully processed.
type Session struct {
	SessionID            string
	Workspace            string
	Channel              string
	MessageCount         int
	NewCount             int
	UpdatedCount         int
	DuplicateCount       int
	ReactionUpdated      int
	LastMessageTimestamp string
}

// EmbeddingConcurrency bounds how many embedding requests a single
// conversation's NEW messages may have in flight at once.
const EmbeddingConcurrency = 4

// Pipeline orchestrates parser output into the store: dedup classification,
// per-message writer transactions, synchronous embedding requests, and
// session bookkeeping.
type Pipeline struct {
	store  *store.Store
	embed  embedding.Provider
	log    *zerolog.Logger
	hashes *hashstore.Store
}

func New(st *store.Store, embed embedding.Provider, log *zerolog.Logger) *Pipeline {
	return &Pipeline{store: st, embed: embed, log: log}
}

// WithHashStore attaches the process-wide hash-dedup store (C11). It never
// gates the per-message lookup (see ingestOne) — it only records the hash
// of every newly inserted message so other tools can consult "has this
// content hash been seen" without touching the relational store. Returns p
// for chaining.
func (p *Pipeline) WithHashStore(hs *hashstore.Store) *Pipeline {
	p.hashes = hs
	return p
}

// IngestConversation processes one ConversationRecord end to end: each
// message is classified and written inside its own writer transaction, in
// the order the parser emitted them, then one IngestionSession row is
// appended.
func (p *Pipeline) IngestConversation(ctx context.Context, rec ConversationRecord) (Session, error) {
	session := Session{
		SessionID: uuid.NewString(),
		Workspace: rec.Workspace,
		Channel:   rec.Channel,
	}

	newMessages := make([]MessageRecord, 0, len(rec.Messages))
	for _, msg := range rec.Messages {
		decision, err := p.ingestOne(ctx, rec, msg)
		if err != nil {
			if p.log != nil {
				p.log.Warn().Err(err).Str("message_id", msg.ID).Msg("message ingestion failed")
			}
			continue
		}
		session.MessageCount++
		session.LastMessageTimestamp = msg.TimestampMonotonic.UTC().Format("2006-01-02T15:04:05Z07:00")
		switch decision {
		case dedup.New:
			session.NewCount++
			newMessages = append(newMessages, msg)
		case dedup.Updated:
			session.UpdatedCount++
		case dedup.ReactionsUpdated:
			session.ReactionUpdated++
		case dedup.Duplicate:
			session.DuplicateCount++
		}
	}

	p.embedNew(ctx, newMessages)

	if err := p.store.AppendIngestionSession(ctx, store.IngestionSession{
		SessionID:               session.SessionID,
		Workspace:               session.Workspace,
		Channel:                 session.Channel,
		LastMessageTimestamp:    session.LastMessageTimestamp,
		MessageCount:            session.MessageCount,
		NewMessages:             session.NewCount,
		UpdatedMessages:         session.UpdatedCount,
		DuplicateMessages:       session.DuplicateCount,
		ReactionUpdatedMessages: session.ReactionUpdated,
	}); err != nil {
		return session, fmt.Errorf("append ingestion session: %w", err)
	}
	return session, nil
}

// ingestOne classifies and writes a single message, returning the decision
// that was taken.
//
// Lookup always runs in full: ContentMatch is keyed on the timestamp-
// independent (workspace, channel, sender, content) identity, but
// dedup.ContentHash folds the timestamp in, so a hash-store miss never
// proves ContentMatch is false (a message whose timestamp re-resolves on
// every poll — "7m", "Today at 3:02:40 PM" — would get a fresh hash each
// time and skip straight past a real content match). The hash store is
// process-wide bookkeeping only; it does not gate this lookup.
func (p *Pipeline) ingestOne(ctx context.Context, rec ConversationRecord, msg MessageRecord) (dedup.Decision, error) {
	hash := dedup.ContentHash(msg.Sender, msg.Content, msg.TimestampMonotonic)

	existing, err := p.store.Lookup(ctx, rec.Workspace, rec.Channel, msg.Sender, msg.Content, msg.ID)
	if err != nil {
		return 0, err
	}
	incoming := dedup.Incoming{Reactions: msg.Metadata.Reactions}
	decision := dedup.Classify(existing, incoming)

	switch decision {
	case dedup.New:
		err = p.store.InsertMessage(ctx, store.StoredMessage{
			ID:              msg.ID,
			Workspace:       rec.Workspace,
			Channel:         rec.Channel,
			Sender:          msg.Sender,
			Content:         msg.Content,
			Timestamp:       msg.TimestampMonotonic,
			ThreadTS:        msg.ThreadParentID,
			Mentions:        msg.Metadata.Mentions,
			AttachmentNames: msg.Metadata.AttachmentNames,
			ContentHash:     hash,
		})
		if err != nil {
			return decision, err
		}
		if p.hashes != nil {
			if herr := p.hashes.Insert(hash); herr != nil && p.log != nil {
				p.log.Warn().Err(herr).Str("message_id", msg.ID).Msg("hash store insert failed")
			}
		}
		if len(msg.Metadata.Reactions) > 0 {
			err = p.store.ReplaceReactions(ctx, msg.ID, msg.Metadata.Reactions)
		}
	case dedup.Updated:
		editedAt := msg.TimestampMonotonic
		if msg.Metadata.EditedAt != nil {
			editedAt = *msg.Metadata.EditedAt
		}
		err = p.store.UpdateMessage(ctx, msg.ID, msg.Content, hash, editedAt)
	case dedup.ReactionsUpdated:
		err = p.store.ReplaceReactions(ctx, msg.ID, msg.Metadata.Reactions)
	case dedup.Duplicate:
		// no-op
	}
	return decision, err
}

// embedNew synchronously requests embeddings for every NEW message's
// content, bounded to EmbeddingConcurrency in flight, and inserts
// successful results into the vector index. Per the ingestion contract,
// embedding failure is logged but never fails the conversation.
func (p *Pipeline) embedNew(ctx context.Context, messages []MessageRecord) {
	if p.embed == nil || len(messages) == 0 {
		return
	}
	tasks := make([]func() (struct{}, error), len(messages))
	for i, msg := range messages {
		msg := msg
		tasks[i] = func() (struct{}, error) {
			vec, err := p.embed.EmbedQuery(ctx, msg.Content)
			if err != nil {
				if p.log != nil {
					p.log.Warn().Err(err).Str("message_id", msg.ID).Msg("embedding request failed")
				}
				return struct{}{}, nil
			}
			if err := p.store.InsertEmbedding(ctx, msg.ID, vec); err != nil && p.log != nil {
				p.log.Warn().Err(err).Str("message_id", msg.ID).Msg("embedding insert failed")
			}
			return struct{}{}, nil
		}
	}
	_, _ = runWithConcurrency(tasks, EmbeddingConcurrency)
}

// runWithConcurrency runs tasks with at most limit in flight.
func runWithConcurrency[T any](tasks []func() (T, error), limit int) (map[int]T, error) {
	if len(tasks) == 0 {
		return map[int]T{}, nil
	}
	if limit <= 0 {
		limit = 1
	}
	if limit > len(tasks) {
		limit = len(tasks)
	}
	results := make(map[int]T, len(tasks))
	errCh := make(chan error, 1)
	var next int
	var mu sync.Mutex
	wg := sync.WaitGroup{}
	worker := func() {
		defer wg.Done()
		for {
			mu.Lock()
			index := next
			next++
			mu.Unlock()
			if index >= len(tasks) {
				return
			}
			res, err := tasks[index]()
			if err != nil {
				select {
				case errCh <- err:
				default:
				}
				return
			}
			mu.Lock()
			results[index] = res
			mu.Unlock()
		}
	}
	wg.Add(limit)
	for i := 0; i < limit; i++ {
		go worker()
	}
	wg.Wait()
	select {
	case err := <-errCh:
		return nil, err
	default:
	}
	return results, nil
}
