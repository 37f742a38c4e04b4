package store

import (
	"context"
	"database/sql"
	"sort"

	"github.com/beeper/slunk-harvester/internal/embedding"
)

// QueryContext exposes the underlying connection pool to internal/query so
// the search engine can compose structured-filter and FTS5 SQL without this
// package growing ranking logic of its own.
func (s *Store) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, query, args...)
}

// VectorHit is one nearest-neighbour result: a message id and its distance
// (1-cosine, ascending = closer).
type VectorHit struct {
	ID       string
	Distance float64
}

// VectorKNN returns the k nearest message ids to queryVec. When the vec0
// extension is loaded it uses `embedding MATCH ? AND k = ?`; otherwise it
// falls back to a full-table cosine scan over every stored embedding.
func (s *Store) VectorKNN(ctx context.Context, queryVec []float64, k int) ([]VectorHit, error) {
	if len(queryVec) != EmbeddingDimensions {
		return nil, ErrInvalidVectorDimensions
	}
	if k <= 0 {
		return nil, nil
	}

	if s.VectorAvailable() {
		var hits []VectorHit
		err := s.withVectorConn(ctx, func(conn *sql.Conn) error {
			rows, err := conn.QueryContext(ctx, `
				SELECT id, distance FROM slack_message_embeddings
				WHERE embedding MATCH ? AND k = ?
				ORDER BY distance
			`, vectorToBlob(queryVec), k)
			if err != nil {
				return err
			}
			defer rows.Close()
			for rows.Next() {
				var h VectorHit
				if err := rows.Scan(&h.ID, &h.Distance); err != nil {
					return err
				}
				hits = append(hits, h)
			}
			return rows.Err()
		})
		if err == nil {
			return hits, nil
		}
		// Extension loaded but MATCH failed for some other reason: fall
		// through to the full scan rather than fail the whole search.
	}
	return s.vectorFullScan(ctx, queryVec, k)
}

// vectorFullScan computes cosine distance against every row in
// slack_message_embeddings_raw, used when the vec0 extension cannot be
// loaded.
func (s *Store) vectorFullScan(ctx context.Context, queryVec []float64, k int) ([]VectorHit, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, embedding FROM slack_message_embeddings_raw")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []VectorHit
	for rows.Next() {
		var id string
		var blob []byte
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, err
		}
		sim := embedding.Cosine(queryVec, blobToVector(blob))
		hits = append(hits, VectorHit{ID: id, Distance: 1 - sim})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}
