package searchpipeline

import (
	"context"
	"testing"
)

type fakeSearcher struct {
	byQuery map[string][]SearchResult
}

func (f *fakeSearcher) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	return f.byQuery[query], nil
}

type fakeFetcher struct{}

func (fakeFetcher) Fetch(ctx context.Context, key string) (string, error) {
	return "full text for " + key, nil
}

type alwaysRelevant struct{}

func (alwaysRelevant) IsRelevant(ctx context.Context, originalQuery string, result SearchResult) (bool, error) {
	return true, nil
}

type sufficientAfterFirst struct{}

func (sufficientAfterFirst) Assess(ctx context.Context, query string, content string) (QualityVerdict, error) {
	return QualityVerdict{Score: 8, IsSufficient: true}, nil
}

func TestPipelineRunDedupesAcrossFocusedQueries(t *testing.T) {
	searcher := &fakeSearcher{byQuery: map[string][]SearchResult{
		"coffee beans":  {{Key: "https://example.com/a", Title: "A"}, {Key: "https://example.com/shared", Title: "Shared"}},
		"coffee grinds": {{Key: "https://example.com/b", Title: "B"}, {Key: "https://example.com/shared", Title: "Shared"}},
	}}
	p := New(ModeWeb, searcher, fakeFetcher{}, alwaysRelevant{}, sufficientAfterFirst{}, Params{MaxAttempts: 1, MaxSearchResults: 10})

	_, sources, err := p.Run(context.Background(), "coffee beans and coffee grinds", []string{"coffee beans", "coffee grinds"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	keys := UniqueKeys(sources)
	if len(keys) != 3 {
		t.Fatalf("expected 3 unique sources, got %d: %v", len(keys), keys)
	}
}

func TestPipelineRunProducesStableRefIDs(t *testing.T) {
	searcher := &fakeSearcher{byQuery: map[string][]SearchResult{
		"coffee": {{Key: "https://example.com/a", Title: "A"}},
	}}
	p := New(ModeWeb, searcher, fakeFetcher{}, alwaysRelevant{}, sufficientAfterFirst{}, Params{MaxAttempts: 1, MaxSearchResults: 10})

	_, sources, err := p.Run(context.Background(), "coffee", []string{"coffee"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sources) != 1 || sources[0].RefID == "" {
		t.Fatalf("expected one source with a ref id, got %+v", sources)
	}
}

type failFirstThenSufficient struct {
	calls int
}

func (f *failFirstThenSufficient) Assess(ctx context.Context, query string, content string) (QualityVerdict, error) {
	f.calls++
	if f.calls == 1 {
		return QualityVerdict{Score: 3, IsSufficient: false, RefinedQuery: "coffee refined"}, nil
	}
	return QualityVerdict{Score: 8, IsSufficient: true}, nil
}

func TestPipelineRetriesWithRefinedQuery(t *testing.T) {
	searcher := &fakeSearcher{byQuery: map[string][]SearchResult{
		"coffee":         {{Key: "https://example.com/a", Title: "A"}},
		"coffee refined": {{Key: "https://example.com/c", Title: "C"}},
	}}
	quality := &failFirstThenSufficient{}
	p := New(ModeWeb, searcher, fakeFetcher{}, alwaysRelevant{}, quality, Params{MaxAttempts: 2, MaxSearchResults: 10})

	_, sources, err := p.Run(context.Background(), "coffee", []string{"coffee"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quality.calls != 2 {
		t.Fatalf("expected quality assessed twice, got %d", quality.calls)
	}
	keys := UniqueKeys(sources)
	if len(keys) != 2 {
		t.Fatalf("expected both attempts' sources accumulated, got %v", keys)
	}
}
