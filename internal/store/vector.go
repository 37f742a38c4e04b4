package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"
)

// loadExtensionEnabler matches github.com/mattn/go-sqlite3's
// (*SQLiteConn).EnableLoadExtension. Declared as an interface so this
// package never needs an import cycle through the driver's internal types.
type loadExtensionEnabler interface {
	EnableLoadExtension(enable bool) error
}

// ensureVectorTable creates the vec0 virtual table, loading the configured
// extension path first if one was given. If extension loading fails (or no
// path is configured and vec0 isn't compiled in), vector features degrade
// to the full-table cosine scan in query.go and vectorOK is recorded false.
func (s *Store) ensureVectorTable(ctx context.Context) error {
	ok := false
	err := s.withVectorConn(ctx, func(conn *sql.Conn) error {
		_, err := conn.ExecContext(ctx, vectorTableDDL(EmbeddingDimensions))
		return err
	})
	if err == nil {
		ok = true
	}
	s.mu.Lock()
	s.vectorOK = &ok
	s.mu.Unlock()
	return err
}

func (s *Store) withVectorConn(ctx context.Context, fn func(conn *sql.Conn) error) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("vector conn: %w", err)
	}
	defer conn.Close()

	if s.vectorExtensionPath != "" {
		if err := s.loadExtension(ctx, conn); err != nil {
			return err
		}
	}
	return fn(conn)
}

func (s *Store) loadExtension(ctx context.Context, conn *sql.Conn) error {
	_ = conn.Raw(func(driverConn any) error {
		if enabler, ok := driverConn.(loadExtensionEnabler); ok {
			return enabler.EnableLoadExtension(true)
		}
		return nil
	})
	if _, err := conn.ExecContext(ctx, "SELECT load_extension(?)", s.vectorExtensionPath); err != nil {
		return fmt.Errorf("vector extension load: %w", err)
	}
	_ = conn.Raw(func(driverConn any) error {
		if enabler, ok := driverConn.(loadExtensionEnabler); ok {
			return enabler.EnableLoadExtension(false)
		}
		return nil
	})
	return nil
}

// VectorAvailable reports whether the vec0 virtual table is usable.
func (s *Store) VectorAvailable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vectorOK != nil && *s.vectorOK
}

// vectorToBlob packs a []float64 into the little-endian float32 blob format
// sqlite-vec expects for a FLOAT[D] column.
func vectorToBlob(values []float64) []byte {
	buf := make([]byte, 0, len(values)*4)
	for _, v := range values {
		bits := math.Float32bits(float32(v))
		buf = append(buf, byte(bits), byte(bits>>8), byte(bits>>16), byte(bits>>24))
	}
	return buf
}

// blobToVector unpacks a little-endian float32 blob back into []float64.
func blobToVector(blob []byte) []float64 {
	out := make([]float64, len(blob)/4)
	for i := range out {
		bits := uint32(blob[i*4]) | uint32(blob[i*4+1])<<8 | uint32(blob[i*4+2])<<16 | uint32(blob[i*4+3])<<24
		out[i] = float64(math.Float32frombits(bits))
	}
	return out
}

// InsertEmbedding stores the embedding for messageID. A vector whose
// length is not EmbeddingDimensions is rejected outright. The vector is
// always written to the plain fallback table, and mirrored into the vec0
// index when the extension is loaded.
func (s *Store) InsertEmbedding(ctx context.Context, messageID string, vector []float64) error {
	if len(vector) != EmbeddingDimensions {
		return ErrInvalidVectorDimensions
	}
	blob := vectorToBlob(vector)
	if _, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO slack_message_embeddings_raw (id, embedding) VALUES (?, ?)",
		messageID, blob); err != nil {
		return fmt.Errorf("%w: %v", ErrFatal, err)
	}
	if !s.VectorAvailable() {
		return nil
	}
	return s.withVectorConn(ctx, func(conn *sql.Conn) error {
		_, err := conn.ExecContext(ctx,
			"INSERT OR REPLACE INTO slack_message_embeddings (id, embedding) VALUES (?, ?)",
			messageID, blob)
		return err
	})
}

func (s *Store) deleteEmbedding(ctx context.Context, messageID string) {
	_, _ = s.db.ExecContext(ctx, "DELETE FROM slack_message_embeddings_raw WHERE id = ?", messageID)
	if !s.VectorAvailable() {
		return
	}
	_ = s.withVectorConn(ctx, func(conn *sql.Conn) error {
		_, err := conn.ExecContext(ctx, "DELETE FROM slack_message_embeddings WHERE id = ?", messageID)
		return err
	})
}
