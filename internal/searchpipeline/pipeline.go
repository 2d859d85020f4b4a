package searchpipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"maestro/internal/domain"
)

// Pipeline runs decomposition, enrichment, and the inner search/assess/
// fetch loop described in spec §4.4.
type Pipeline struct {
	mode      Mode
	searcher  Searcher
	fetcher   Fetcher
	relevance RelevanceAssessor
	quality   QualityAssessor
	params    Params
}

// New constructs a Pipeline for the given mode and collaborators.
func New(mode Mode, searcher Searcher, fetcher Fetcher, relevance RelevanceAssessor, quality QualityAssessor, params Params) *Pipeline {
	return &Pipeline{mode: mode, searcher: searcher, fetcher: fetcher, relevance: relevance, quality: quality, params: params}
}

// Run decomposes the query, then runs one inner loop per focused query,
// sequentially (so the global-seen set enforces cross-query
// deduplication per spec §4.4's ordering guarantee), concatenating
// context and accumulating sources.
func (p *Pipeline) Run(ctx context.Context, query string, decomposed []string) (string, []domain.Source, error) {
	if len(decomposed) == 0 {
		decomposed = DecomposeFallback(query, 0)
	}

	globalSeen := make(map[string]bool)
	var contexts []string
	var sources []domain.Source

	for _, focused := range decomposed {
		select {
		case <-ctx.Done():
			return strings.Join(contexts, "\n\n"), sources, ctx.Err()
		default:
		}

		outcome, err := p.runFocusedQuery(ctx, query, focused, globalSeen)
		if err != nil {
			return strings.Join(contexts, "\n\n"), sources, err
		}
		if outcome.Context != "" {
			contexts = append(contexts, outcome.Context)
		}
		sources = append(sources, outcome.Sources...)
	}

	return strings.Join(contexts, "\n\n"), sources, nil
}

// runFocusedQuery executes the inner attempt loop for one focused query.
// Within an attempt, relevance assessment and full-content fetch are
// concurrent across results (fan-out + barrier); across attempts the
// loop is sequential since each attempt's refined query depends on the
// previous attempt's quality verdict.
func (p *Pipeline) runFocusedQuery(ctx context.Context, originalQuery, focusedQuery string, globalSeen map[string]bool) (Outcome, error) {
	localSeen := make(map[string]bool)
	currentQuery := focusedQuery
	limit := p.limitForMode()

	var accumulated strings.Builder
	var sources []domain.Source

	attempts := p.params.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		select {
		case <-ctx.Done():
			return Outcome{Query: focusedQuery, Context: accumulated.String(), Sources: sources}, ctx.Err()
		default:
		}

		results, err := p.searcher.Search(ctx, currentQuery, limit)
		if err != nil {
			return Outcome{Query: focusedQuery, Context: accumulated.String(), Sources: sources}, nil
		}

		fresh := make([]SearchResult, 0, len(results))
		for _, r := range results {
			if globalSeen[r.Key] || localSeen[r.Key] {
				continue
			}
			fresh = append(fresh, r)
		}

		relevant := p.assessRelevanceParallel(ctx, originalQuery, fresh)
		fetched := p.fetchFullContentParallel(ctx, relevant)

		for _, r := range fetched {
			localSeen[r.Key] = true
			globalSeen[r.Key] = true
			accumulated.WriteString(formatResult(r))
			accumulated.WriteString("\n\n")
			sources = append(sources, toSource(p.mode, r))
		}

		verdict, err := p.quality.Assess(ctx, originalQuery, accumulated.String())
		if err != nil {
			// ParseFailure fallback per spec §7: quality_score=5,
			// is_sufficient = len(content) > 500.
			verdict = QualityVerdict{Score: 5, IsSufficient: accumulated.Len() > 500}
		}

		if verdict.IsSufficient || attempt == attempts-1 {
			break
		}
		if verdict.RefinedQuery != "" {
			currentQuery = verdict.RefinedQuery
		}
	}

	return Outcome{Query: focusedQuery, Context: accumulated.String(), Sources: sources}, nil
}

func (p *Pipeline) limitForMode() int {
	if p.mode == ModeDocument {
		return p.params.MaxDocResults
	}
	return p.params.MaxSearchResults
}

func (p *Pipeline) assessRelevanceParallel(ctx context.Context, originalQuery string, results []SearchResult) []SearchResult {
	if p.relevance == nil {
		return results
	}
	type verdict struct {
		idx int
		ok  bool
	}
	out := make(chan verdict, len(results))
	for i, r := range results {
		go func(i int, r SearchResult) {
			ok, err := p.relevance.IsRelevant(ctx, originalQuery, r)
			out <- verdict{idx: i, ok: err == nil && ok}
		}(i, r)
	}
	keep := make([]bool, len(results))
	for range results {
		v := <-out
		keep[v.idx] = v.ok
	}
	var relevant []SearchResult
	for i, r := range results {
		if keep[i] {
			relevant = append(relevant, r)
		}
	}
	return relevant
}

func (p *Pipeline) fetchFullContentParallel(ctx context.Context, results []SearchResult) []SearchResult {
	if p.fetcher == nil {
		return results
	}
	var mu sync.Mutex
	var wg sync.WaitGroup
	out := make([]SearchResult, len(results))
	copy(out, results)
	for i := range out {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			text, err := p.fetcher.Fetch(ctx, out[i].Key)
			if err != nil {
				return
			}
			mu.Lock()
			out[i].FullText = text
			mu.Unlock()
		}(i)
	}
	wg.Wait()
	return out
}

func formatResult(r SearchResult) string {
	text := r.Snippet
	marker := ""
	if r.FullText != "" {
		text = r.FullText
		marker = " [FULL CONTENT]"
	}
	return fmt.Sprintf("### %s%s\n%s", r.Title, marker, text)
}

func toSource(mode Mode, r SearchResult) domain.Source {
	if mode == ModeWeb {
		return domain.Source{
			Type:     domain.SourceWeb,
			RefID:    domain.RefIDFor(domain.SourceWeb, r.Key),
			Title:    r.Title,
			URL:      r.Key,
			Provider: r.Provider,
		}
	}
	return domain.Source{
		Type:     domain.SourceDocument,
		RefID:    domain.RefIDFor(domain.SourceDocument, r.Key),
		Title:    r.Title,
		DocID:    r.Key,
		Provider: r.Provider,
	}
}

// UniqueKeys is a small helper used by tests/callers that need to verify
// the "no duplicates across focused queries" testable property (spec §8
// item 4).
func UniqueKeys(sources []domain.Source) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, s := range sources {
		key := s.URL
		if key == "" {
			key = s.DocID
		}
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}
