package llmagents

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"maestro/internal/llm"
	"maestro/internal/modeldispatch"
	"maestro/internal/searchpipeline"
	"maestro/internal/tools"
)

// ToolSearcher implements searchpipeline.Searcher over the built-in
// web_search tool, which returns its normalized results as a JSON array.
type ToolSearcher struct {
	Tool *tools.SearchTool
}

func (s ToolSearcher) Search(ctx context.Context, query string, limit int) ([]searchpipeline.SearchResult, error) {
	raw, err := s.Tool.Execute(ctx, map[string]interface{}{"query": query, "count": float64(limit)})
	if err != nil {
		return nil, err
	}
	var hits []tools.WebSearchResult
	if err := json.Unmarshal([]byte(raw), &hits); err != nil {
		return nil, fmt.Errorf("parse search results: %w", err)
	}
	out := make([]searchpipeline.SearchResult, len(hits))
	for i, h := range hits {
		out[i] = searchpipeline.SearchResult{Key: h.URL, Title: h.Title, Snippet: h.Snippet, Provider: "web_search"}
	}
	return out, nil
}

// ToolFetcher implements searchpipeline.Fetcher over the built-in fetch
// tool.
type ToolFetcher struct {
	Tool *tools.FetchTool
}

func (f ToolFetcher) Fetch(ctx context.Context, key string) (string, error) {
	return f.Tool.Execute(ctx, map[string]interface{}{"url": key})
}

// RelevanceAdapter implements searchpipeline.RelevanceAssessor with a
// fast-model yes/no call.
type RelevanceAdapter struct {
	Dispatcher *modeldispatch.Dispatcher
}

func (a RelevanceAdapter) IsRelevant(ctx context.Context, originalQuery string, result searchpipeline.SearchResult) (bool, error) {
	prompt := fmt.Sprintf("Query: %s\n\nResult title: %s\nSnippet: %s\n\nIs this result relevant? Answer yes or no.", originalQuery, result.Title, result.Snippet)
	raw, _, err := a.Dispatcher.Dispatch(ctx, []llm.Message{
		{Role: "user", Content: prompt},
	}, modeldispatch.RoleQueryStrategy, nil)
	if err != nil {
		return false, err
	}
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(raw)), "yes"), nil
}

// QualityAdapter implements searchpipeline.QualityAssessor. It mirrors
// the spec's "quality_score 1-10, is_sufficient, refined_query" verdict,
// falling back to the ParseFailure heuristic (score 5, sufficient iff
// content is over 500 chars) the pipeline itself applies when parsing
// fails.
type QualityAdapter struct {
	Dispatcher *modeldispatch.Dispatcher
}

func (a QualityAdapter) Assess(ctx context.Context, query string, content string) (searchpipeline.QualityVerdict, error) {
	prompt := fmt.Sprintf(
		"Query: %s\n\nAccumulated research content:\n%s\n\nRespond with exactly three lines:\nscore: <1-10>\nsufficient: <yes|no>\nrefined_query: <a refined query, or \"none\">",
		query, content)
	raw, _, err := a.Dispatcher.Dispatch(ctx, []llm.Message{
		{Role: "user", Content: prompt},
	}, modeldispatch.RoleQueryStrategy, nil)
	if err != nil {
		return searchpipeline.QualityVerdict{}, err
	}

	verdict, ok := parseQualityVerdict(raw)
	if !ok {
		return searchpipeline.QualityVerdict{Score: 5, IsSufficient: len(content) > 500}, nil
	}
	return verdict, nil
}

func parseQualityVerdict(raw string) (searchpipeline.QualityVerdict, bool) {
	var v searchpipeline.QualityVerdict
	found := false
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(strings.ToLower(line), "score:"):
			if n, err := strconv.Atoi(strings.TrimSpace(line[len("score:"):])); err == nil {
				v.Score = n
				found = true
			}
		case strings.HasPrefix(strings.ToLower(line), "sufficient:"):
			v.IsSufficient = strings.Contains(strings.ToLower(line), "yes")
			found = true
		case strings.HasPrefix(strings.ToLower(line), "refined_query:"):
			rq := strings.TrimSpace(line[len("refined_query:"):])
			if !strings.EqualFold(rq, "none") {
				v.RefinedQuery = rq
			}
		}
	}
	return v, found
}
