package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"
)

// arxivIDPatterns matches the several URL/ID forms an arXiv reference can
// take, per spec §4.3.
var arxivIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`arxiv\.org/abs/([\w.\-/]+\d)`),
	regexp.MustCompile(`arxiv\.org/pdf/([\w.\-/]+\d)`),
	regexp.MustCompile(`ar5iv\.labs\.arxiv\.org/html/([\w.\-/]+\d)`),
	regexp.MustCompile(`^(\d{4}\.\d{4,5}(v\d+)?)$`),
}

type arxivCacheEntry struct {
	fetchedAt time.Time
	text      string
	title     string
	method    string
}

// ArxivTool fetches an arXiv paper's cleaned text, trying ar5iv HTML,
// then LaTeX source, then PDF, in that order, caching by id for the
// configured number of days (default 7, per spec §4.3).
type ArxivTool struct {
	httpClient  *http.Client
	cacheTTL    time.Duration
	mu          sync.Mutex
	cache       map[string]arxivCacheEntry
}

// NewArxivTool constructs the arxiv_fetcher tool. cacheDays <= 0 falls
// back to the spec's 7-day default.
func NewArxivTool(cacheDays int) *ArxivTool {
	if cacheDays <= 0 {
		cacheDays = 7
	}
	return &ArxivTool{
		httpClient: &http.Client{Timeout: 45 * time.Second},
		cacheTTL:   time.Duration(cacheDays) * 24 * time.Hour,
		cache:      make(map[string]arxivCacheEntry),
	}
}

func (t *ArxivTool) Name() string { return "arxiv_fetcher" }

func (t *ArxivTool) Description() string {
	return `Fetch and extract text from an arXiv paper by URL or id. Args: {"url": "https://arxiv.org/abs/2301.00001"}`
}

func (t *ArxivTool) ParametersSchema() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{"url": map[string]any{"type": "string"}},
		"required":   []string{"url"},
	}
}

func (t *ArxivTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	ref, ok := args["url"].(string)
	if !ok || ref == "" {
		return "", fmt.Errorf("arxiv_fetcher requires a 'url' argument")
	}

	id := extractArxivID(ref)
	if id == "" {
		return "", fmt.Errorf("could not detect an arXiv id in %q", ref)
	}

	t.mu.Lock()
	if entry, ok := t.cache[id]; ok && time.Since(entry.fetchedAt) < t.cacheTTL {
		t.mu.Unlock()
		return formatArxivResult(entry), nil
	}
	t.mu.Unlock()

	entry, err := t.fetchArxiv(ctx, id)
	if err != nil {
		return "", err
	}
	entry.fetchedAt = time.Now()

	t.mu.Lock()
	t.cache[id] = entry
	t.mu.Unlock()

	return formatArxivResult(entry), nil
}

func extractArxivID(ref string) string {
	for _, re := range arxivIDPatterns {
		if m := re.FindStringSubmatch(ref); len(m) > 1 {
			return m[1]
		}
	}
	return ""
}

// fetchArxiv tries ar5iv HTML, then LaTeX source, then the PDF, in order,
// returning the first that succeeds.
func (t *ArxivTool) fetchArxiv(ctx context.Context, id string) (arxivCacheEntry, error) {
	if text, title, err := t.fetchURL(ctx, "https://ar5iv.labs.arxiv.org/html/"+id, true); err == nil {
		return arxivCacheEntry{text: text, title: title, method: "ar5iv_html"}, nil
	}
	if text, _, err := t.fetchURL(ctx, "https://arxiv.org/e-print/"+id, false); err == nil {
		return arxivCacheEntry{text: text, title: "", method: "latex_source"}, nil
	}
	if text, _, err := t.fetchURL(ctx, "https://arxiv.org/pdf/"+id, false); err == nil {
		return arxivCacheEntry{text: text, title: "", method: "pdf"}, nil
	}
	return arxivCacheEntry{}, fmt.Errorf("all fetch methods failed for arXiv id %s", id)
}

func (t *ArxivTool) fetchURL(ctx context.Context, url string, isHTML bool) (text, title string, err error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; MaestroResearchBot/1.0)")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("fetch error %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", err
	}

	if isHTML {
		extracted := extractText(string(body))
		return extracted, firstLine(extracted), nil
	}
	return cleanWhitespace(string(body)), "", nil
}

func firstLine(s string) string {
	idx := strings.Index(s, "\n")
	if idx < 0 {
		if len(s) > 200 {
			return s[:200]
		}
		return s
	}
	line := s[:idx]
	if len(line) > 200 {
		line = line[:200]
	}
	return line
}

func formatArxivResult(e arxivCacheEntry) string {
	return fmt.Sprintf(`{"text": %q, "title": %q, "metadata": {"fetch_method": %q}}`, e.text, e.title, e.method)
}
