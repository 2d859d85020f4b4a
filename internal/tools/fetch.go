package tools

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/html"
)

type fetchCacheEntry struct {
	fetchedAt time.Time
	text      string
}

// FetchTool implements web page content fetching (web_page_fetcher),
// caching extracted text by URL hash bounded by an age limit per spec
// §4.3.
type FetchTool struct {
	httpClient *http.Client
	cacheTTL   time.Duration
	mu         sync.Mutex
	cache      map[string]fetchCacheEntry
}

// NewFetchTool creates a new fetch tool with the spec default 7-day cache.
func NewFetchTool() *FetchTool {
	return &FetchTool{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cacheTTL:   7 * 24 * time.Hour,
		cache:      make(map[string]fetchCacheEntry),
	}
}

// NewFetchToolWithCache lets callers override the cache age bound, e.g.
// from the resolved web_cache_expiration_days setting.
func NewFetchToolWithCache(expirationDays int) *FetchTool {
	t := NewFetchTool()
	if expirationDays > 0 {
		t.cacheTTL = time.Duration(expirationDays) * 24 * time.Hour
	}
	return t
}

func urlCacheKey(u string) string {
	sum := sha1.Sum([]byte(u))
	return hex.EncodeToString(sum[:])
}

func (t *FetchTool) Name() string {
	return "fetch"
}

func (t *FetchTool) Description() string {
	return `Fetch and extract text content from a web page. Args: {"url": "https://..."}`
}

func (t *FetchTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	urlStr, ok := args["url"].(string)
	if !ok || urlStr == "" {
		return "", fmt.Errorf("fetch requires a 'url' argument")
	}

	key := urlCacheKey(urlStr)
	t.mu.Lock()
	if entry, ok := t.cache[key]; ok && time.Since(entry.fetchedAt) < t.cacheTTL {
		t.mu.Unlock()
		return entry.text, nil
	}
	t.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, "GET", urlStr, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; GoResearchBot/1.0)")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch error %d for %s", resp.StatusCode, urlStr)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	// Extract text content from HTML
	text := extractText(string(body))

	// Truncate if too long
	if len(text) > 10000 {
		text = text[:10000] + "\n...[truncated]"
	}

	t.mu.Lock()
	t.cache[key] = fetchCacheEntry{fetchedAt: time.Now(), text: text}
	t.mu.Unlock()

	return text, nil
}

// extractText removes HTML tags and extracts readable text
func extractText(htmlContent string) string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		// Fallback: strip tags with regex
		re := regexp.MustCompile(`<[^>]*>`)
		return cleanWhitespace(re.ReplaceAllString(htmlContent, ""))
	}

	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
			text.WriteString(" ")
		}
		// Skip script and style tags
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style" || n.Data == "noscript") {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(doc)

	return cleanWhitespace(text.String())
}

// cleanWhitespace normalizes whitespace in extracted text
func cleanWhitespace(s string) string {
	re := regexp.MustCompile(`\s+`)
	result := re.ReplaceAllString(s, " ")
	return strings.TrimSpace(result)
}
