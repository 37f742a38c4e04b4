// Package store implements the relational + vector schema (C8): a single
// SQLite-backed store holding StoredMessage rows, reactions, the ingestion
// log, and a colocated fixed-dimension vector index, with WAL journaling.
// Message, reaction and ingestion-log writes run through a single writer
// queue with linear-backoff retry on transient lock errors; embedding writes
// go straight to the connection pool without that retry.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// BusyTimeout is the SQLite busy_timeout applied to every connection.
const BusyTimeout = 30 * time.Second

// retryBackoffs are the linear backoff steps applied to transient lock
// errors.
var retryBackoffs = []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 300 * time.Millisecond}

// Store wraps a single *sql.DB configured for one writer at a time: one
// *sql.DB with SetMaxOpenConns(1) plus app-level retry on transient lock
// errors.
type Store struct {
	db  *sql.DB
	log *zerolog.Logger

	vectorExtensionPath string
	vectorOK            *bool
	mu                  sync.Mutex

	writerMu sync.Mutex
}

// Open opens (creating if necessary) the SQLite store at path, applies the
// schema, and configures WAL + a single writer connection.
func Open(ctx context.Context, path string, vectorExtensionPath string, log *zerolog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout="+busyTimeoutMillis())
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	// A single write connection serializes all writers the way a single
	// writer actor would; reads run over the same pool and are never
	// blocked longer than BusyTimeout.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	s := &Store{db: db, log: log, vectorExtensionPath: vectorExtensionPath}
	if err := s.ensureVectorTable(ctx); err != nil && log != nil {
		log.Warn().Err(err).Msg("vector index unavailable, falling back to full-table scan")
	}
	return s, nil
}

func busyTimeoutMillis() string {
	return fmt.Sprintf("%d", BusyTimeout.Milliseconds())
}

func (s *Store) Close() error {
	return s.db.Close()
}

// withWriter serializes fn against every other writer, retrying transient
// lock errors with the linear backoff schedule.
func (s *Store) withWriter(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error {
	s.writerMu.Lock()
	defer s.writerMu.Unlock()

	var lastErr error
	for attempt := 0; attempt <= len(retryBackoffs); attempt++ {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			lastErr = err
		} else {
			err = fn(ctx, tx)
			if err == nil {
				if cerr := tx.Commit(); cerr != nil {
					lastErr = cerr
				} else {
					return nil
				}
			} else {
				_ = tx.Rollback()
				lastErr = err
			}
		}

		if !isTransientLockError(lastErr) || attempt == len(retryBackoffs) {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryBackoffs[attempt]):
		}
	}
	if isTransientLockError(lastErr) {
		return fmt.Errorf("%w: %v", ErrTransient, lastErr)
	}
	return fmt.Errorf("%w: %v", ErrFatal, lastErr)
}

func isTransientLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "locked") || strings.Contains(msg, "busy")
}

var errVectorDisabled = errors.New("store: vector extension not configured or unavailable")
