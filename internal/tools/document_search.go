package tools

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"maestro/internal/vectorstore"
)

// DocumentSearcher is the narrow dependency document_search needs from
// the vector store, kept as an interface so tests can fake it without a
// real PostgreSQL connection.
type DocumentSearcher interface {
	Search(ctx context.Context, query string, opts vectorstore.SearchOptions) ([]vectorstore.Chunk, error)
}

// QueryTechnique is one of the strategist's chosen rewrite techniques.
type QueryTechnique string

const (
	TechniqueSubQuery  QueryTechnique = "sub_query"
	TechniqueStepBack  QueryTechnique = "step_back"
	TechniqueDirect    QueryTechnique = "direct"
)

// Reranker re-scores an aggregated result set against the original
// query; nil means no re-ranking is performed.
type Reranker interface {
	Rerank(ctx context.Context, originalQuery string, chunks []vectorstore.Chunk) ([]vectorstore.Chunk, error)
}

// DocumentSearchTool implements the document_search tool from spec §4.3:
// strategist -> preparer -> parallel retriever -> optional reranker.
type DocumentSearchTool struct {
	store    DocumentSearcher
	reranker Reranker
}

// NewDocumentSearchTool constructs the document_search tool.
func NewDocumentSearchTool(store DocumentSearcher, reranker Reranker) *DocumentSearchTool {
	return &DocumentSearchTool{store: store, reranker: reranker}
}

func (t *DocumentSearchTool) Name() string { return "document_search" }

func (t *DocumentSearchTool) Description() string {
	return `Hybrid dense+sparse search over the document store. Args: {"query": "...", "n_results": 10, "filter_doc_id": "...", "dense_weight": 0.7, "sparse_weight": 0.3, "use_reranker": true}`
}

func (t *DocumentSearchTool) ParametersSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query":          map[string]any{"type": "string"},
			"n_results":      map[string]any{"type": "integer"},
			"filter_doc_id":  map[string]any{"type": "string"},
			"filter_doc_ids": map[string]any{"type": "array"},
			"dense_weight":   map[string]any{"type": "number"},
			"sparse_weight":  map[string]any{"type": "number"},
			"use_reranker":   map[string]any{"type": "boolean"},
		},
		"required": []string{"query"},
	}
}

// chooseTechniques is the strategist step: a small, deterministic
// heuristic standing in for the LLM strategist call in the original
// implementation — callers that want an LLM-driven strategist wrap this
// tool and pass prepared queries via the research_context/agent_context
// fields instead.
func chooseTechniques(query string) []QueryTechnique {
	if len(query) > 80 {
		return []QueryTechnique{TechniqueSubQuery, TechniqueStepBack}
	}
	return []QueryTechnique{TechniqueDirect}
}

// prepareQueries is the preparer step: it rewrites the query once per
// chosen technique. sub_query narrows toward specifics, step_back
// broadens toward the governing concept; direct is the query unchanged.
func prepareQueries(query string, techniques []QueryTechnique) []string {
	seen := make(map[string]bool)
	var out []string
	for _, tech := range techniques {
		var prepared string
		switch tech {
		case TechniqueSubQuery:
			prepared = query + " (specific details)"
		case TechniqueStepBack:
			prepared = query + " (general background)"
		default:
			prepared = query
		}
		if !seen[prepared] {
			seen[prepared] = true
			out = append(out, prepared)
		}
	}
	return out
}

func (t *DocumentSearchTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	query, ok := args["query"].(string)
	if !ok || query == "" {
		return "", fmt.Errorf("document_search requires a 'query' argument")
	}

	opts := vectorstore.SearchOptions{NResults: 10, DenseWeight: 0.7, SparseWeight: 0.3}
	if n, ok := args["n_results"].(float64); ok && n > 0 {
		opts.NResults = int(n)
	}
	if id, ok := args["filter_doc_id"].(string); ok {
		opts.FilterDocID = id
	}
	if w, ok := args["dense_weight"].(float64); ok {
		opts.DenseWeight = w
	}
	if w, ok := args["sparse_weight"].(float64); ok {
		opts.SparseWeight = w
	}
	useReranker, _ := args["use_reranker"].(bool)

	techniques := chooseTechniques(query)
	prepared := prepareQueries(query, techniques)

	// Retrieval fans out per prepared query concurrently; aggregation
	// below deduplicates by chunk id once all results are in.
	type result struct {
		chunks []vectorstore.Chunk
		err    error
	}
	results := make([]result, len(prepared))
	done := make(chan int, len(prepared))
	for i, pq := range prepared {
		go func(i int, pq string) {
			chunks, err := t.store.Search(ctx, pq, opts)
			results[i] = result{chunks: chunks, err: err}
			done <- i
		}(i, pq)
	}
	for range prepared {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-done:
		}
	}

	seen := make(map[string]bool)
	var aggregated []vectorstore.Chunk
	for _, r := range results {
		if r.err != nil {
			continue
		}
		for _, c := range r.chunks {
			id := c.ChunkID
			if id == "" {
				id = fmt.Sprintf("no_id_%s", hashChunk(c))
			}
			if seen[id] {
				continue
			}
			seen[id] = true
			aggregated = append(aggregated, c)
		}
	}

	if useReranker && t.reranker != nil {
		reranked, err := t.reranker.Rerank(ctx, query, aggregated)
		if err == nil {
			aggregated = reranked
		}
	}

	sort.SliceStable(aggregated, func(i, j int) bool { return aggregated[i].Score > aggregated[j].Score })
	if opts.NResults > 0 && len(aggregated) > opts.NResults {
		aggregated = aggregated[:opts.NResults]
	}

	out := make([]map[string]any, 0, len(aggregated))
	for _, c := range aggregated {
		out = append(out, map[string]any{"text": c.Text, "metadata": c.Metadata, "doc_id": c.DocID, "chunk_id": c.ChunkID})
	}
	body, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("marshal document_search results: %w", err)
	}
	return string(body), nil
}

func hashChunk(c vectorstore.Chunk) string {
	sum := sha1.Sum([]byte(c.DocID + c.Text))
	return hex.EncodeToString(sum[:])[:8]
}
