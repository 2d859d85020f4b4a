package tools

import (
	"context"
	"strings"
	"testing"

	"maestro/internal/vectorstore"
)

type fakeSearcher struct {
	chunks []vectorstore.Chunk
}

func (f *fakeSearcher) Search(ctx context.Context, query string, opts vectorstore.SearchOptions) ([]vectorstore.Chunk, error) {
	return f.chunks, nil
}

func TestDocumentSearchTool_DedupesByChunkID(t *testing.T) {
	searcher := &fakeSearcher{chunks: []vectorstore.Chunk{
		{DocID: "doc1", ChunkID: "c1", Text: "alpha", Score: 0.9},
		{DocID: "doc1", ChunkID: "c1", Text: "alpha", Score: 0.9},
		{DocID: "doc2", ChunkID: "c2", Text: "beta", Score: 0.5},
	}}
	tool := NewDocumentSearchTool(searcher, nil)

	out, err := tool.Execute(context.Background(), map[string]interface{}{"query": "a short query"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Count(out, `"chunk_id":"c1"`) > 1 {
		t.Errorf("expected chunk c1 to be deduplicated, got %q", out)
	}
}

func TestDocumentSearchTool_RequiresQuery(t *testing.T) {
	tool := NewDocumentSearchTool(&fakeSearcher{}, nil)
	_, err := tool.Execute(context.Background(), map[string]interface{}{})
	if err == nil {
		t.Error("expected error for missing query")
	}
}

func TestPrepareQueriesDeduplicates(t *testing.T) {
	prepared := prepareQueries("short", []QueryTechnique{TechniqueDirect, TechniqueDirect})
	if len(prepared) != 1 {
		t.Errorf("expected prepareQueries to dedupe identical rewrites, got %v", prepared)
	}
}
