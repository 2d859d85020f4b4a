package searchpipeline

import (
	"fmt"
	"strings"
	"time"
)

// ConversationMessage is one turn of recent chat context used to enrich a
// focused query.
type ConversationMessage struct {
	Role    string
	Content string
}

// maxEnrichmentMessages bounds how much recent conversation is folded
// into the enrichment prompt (spec §4.4: "up-to-six conversation
// messages").
const maxEnrichmentMessages = 6

// EnrichmentPrompt builds the templated query-enrichment prompt for a
// focused query, varying by mode and injecting the current date/year
// (passed in rather than read from time.Now, so callers control
// determinism in tests).
func EnrichmentPrompt(mode Mode, focusedQuery string, recent []ConversationMessage, now time.Time) string {
	if len(recent) > maxEnrichmentMessages {
		recent = recent[len(recent)-maxEnrichmentMessages:]
	}

	var convo strings.Builder
	for _, m := range recent {
		fmt.Fprintf(&convo, "%s: %s\n", m.Role, m.Content)
	}

	var instruction string
	if mode == ModeWeb {
		instruction = "Rewrite the query below into an effective web search query. Consider the current date when resolving relative time references."
	} else {
		instruction = "Rewrite the query below into an effective query against the internal document collection. Preserve domain-specific terminology."
	}

	return fmt.Sprintf(
		"%s\n\nCurrent date: %s (year %d)\n\nRecent conversation:\n%s\nQuery to rewrite: %s",
		instruction, now.Format("2006-01-02"), now.Year(), convo.String(), focusedQuery,
	)
}
