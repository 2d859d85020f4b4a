package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// WebSearchProvider is one of the normalized web search backends named in
// spec §6: Tavily, LinkUp, SearXNG.
type WebSearchProvider string

const (
	ProviderTavily  WebSearchProvider = "tavily"
	ProviderLinkUp  WebSearchProvider = "linkup"
	ProviderSearXNG WebSearchProvider = "searxng"
)

// WebSearchResult is the provider-agnostic normalized shape from spec §4.3.
type WebSearchResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
}

// SearchTool implements the provider-agnostic web_search tool. It
// normalizes whichever backend is configured into {title, snippet, url}
// and emits web_search_complete / web_search_error events through the
// bus handed to it, following the teacher's single-purpose tool-per-file
// layout (was a Brave-only client; generalized to the provider switch).
type SearchTool struct {
	provider    WebSearchProvider
	tavilyKey   string
	linkupKey   string
	searxngBase string
	httpClient  *http.Client
	events      EventSink
}

// EventSink is the narrow dependency the search tool uses to publish
// web_search_complete/web_search_error without importing the event bus
// package directly (kept decoupled the way the teacher's tools never
// import orchestrator packages).
type EventSink interface {
	Publish(kind string, payload map[string]any)
}

// NewSearchTool constructs a web_search tool for the given provider.
func NewSearchTool(provider WebSearchProvider, tavilyKey, linkupKey, searxngBase string, events EventSink) *SearchTool {
	return &SearchTool{
		provider:    provider,
		tavilyKey:   tavilyKey,
		linkupKey:   linkupKey,
		searxngBase: searxngBase,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		events:      events,
	}
}

func (t *SearchTool) Name() string { return "web_search" }

func (t *SearchTool) Description() string {
	return `Search the web. Args: {"query": "search terms", "count": 10}`
}

func (t *SearchTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	query, ok := args["query"].(string)
	if !ok || query == "" {
		return "", fmt.Errorf("web_search requires a 'query' argument")
	}
	count := 10
	if c, ok := args["count"].(float64); ok && c > 0 {
		count = int(c)
	}

	var results []WebSearchResult
	var err error
	switch t.provider {
	case ProviderTavily:
		results, err = t.searchTavily(ctx, query, count)
	case ProviderLinkUp:
		results, err = t.searchLinkUp(ctx, query, count)
	case ProviderSearXNG:
		results, err = t.searchSearXNG(ctx, query, count)
	default:
		err = fmt.Errorf("unknown web search provider %q", t.provider)
	}

	if err != nil {
		t.publish("web_search_error", map[string]any{"query": query, "error": err.Error()})
		return "", err
	}
	t.publish("web_search_complete", map[string]any{"query": query, "result_count": len(results)})

	body, err := json.Marshal(results)
	if err != nil {
		return "", fmt.Errorf("marshal results: %w", err)
	}
	return string(body), nil
}

func (t *SearchTool) publish(kind string, payload map[string]any) {
	if t.events != nil {
		t.events.Publish(kind, payload)
	}
}

func (t *SearchTool) searchTavily(ctx context.Context, query string, count int) ([]WebSearchResult, error) {
	reqBody, _ := json.Marshal(map[string]any{
		"api_key":     t.tavilyKey,
		"query":       query,
		"max_results": count,
	})
	req, err := http.NewRequestWithContext(ctx, "POST", "https://api.tavily.com/search", bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var parsed struct {
		Results []struct {
			Title   string `json:"title"`
			Content string `json:"content"`
			URL     string `json:"url"`
		} `json:"results"`
	}
	if err := t.doJSON(req, &parsed); err != nil {
		return nil, err
	}
	out := make([]WebSearchResult, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		out = append(out, WebSearchResult{Title: r.Title, Snippet: r.Content, URL: r.URL})
	}
	return out, nil
}

func (t *SearchTool) searchLinkUp(ctx context.Context, query string, count int) ([]WebSearchResult, error) {
	reqBody, _ := json.Marshal(map[string]any{
		"q":         query,
		"depth":     "standard",
		"outputType": "searchResults",
	})
	req, err := http.NewRequestWithContext(ctx, "POST", "https://api.linkup.so/v1/search", bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.linkupKey)

	var parsed struct {
		Results []struct {
			Name    string `json:"name"`
			Content string `json:"content"`
			URL     string `json:"url"`
		} `json:"results"`
	}
	if err := t.doJSON(req, &parsed); err != nil {
		return nil, err
	}
	out := make([]WebSearchResult, 0, len(parsed.Results))
	for i, r := range parsed.Results {
		if i >= count {
			break
		}
		out = append(out, WebSearchResult{Title: r.Name, Snippet: r.Content, URL: r.URL})
	}
	return out, nil
}

func (t *SearchTool) searchSearXNG(ctx context.Context, query string, count int) ([]WebSearchResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	req, err := http.NewRequestWithContext(ctx, "GET", t.searxngBase+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Results []struct {
			Title   string `json:"title"`
			Content string `json:"content"`
			URL     string `json:"url"`
		} `json:"results"`
	}
	if err := t.doJSON(req, &parsed); err != nil {
		return nil, err
	}
	out := make([]WebSearchResult, 0, len(parsed.Results))
	for i, r := range parsed.Results {
		if i >= count {
			break
		}
		out = append(out, WebSearchResult{Title: r.Title, Snippet: r.Content, URL: r.URL})
	}
	return out, nil
}

func (t *SearchTool) doJSON(req *http.Request, out any) error {
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("search request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("search API error %d: %s", resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
