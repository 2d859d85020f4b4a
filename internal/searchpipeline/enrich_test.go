package searchpipeline

import (
	"strings"
	"testing"
	"time"
)

func TestEnrichmentPromptIncludesDateAndYear(t *testing.T) {
	now := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)
	prompt := EnrichmentPrompt(ModeWeb, "espresso grind size", nil, now)
	if !strings.Contains(prompt, "2026-07-30") || !strings.Contains(prompt, "2026") {
		t.Errorf("expected date/year injected, got %q", prompt)
	}
}

func TestEnrichmentPromptTruncatesToLastSixMessages(t *testing.T) {
	var msgs []ConversationMessage
	for i := 0; i < 10; i++ {
		msgs = append(msgs, ConversationMessage{Role: "user", Content: string(rune('a' + i))})
	}
	prompt := EnrichmentPrompt(ModeDocument, "q", msgs, time.Now())
	for i := 0; i < 4; i++ {
		if strings.Contains(prompt, string(rune('a'+i))+"\n") {
			t.Errorf("expected earliest messages dropped, found %q in prompt", string(rune('a'+i)))
		}
	}
}

func TestEnrichmentPromptDiffersByMode(t *testing.T) {
	web := EnrichmentPrompt(ModeWeb, "q", nil, time.Now())
	doc := EnrichmentPrompt(ModeDocument, "q", nil, time.Now())
	if web == doc {
		t.Error("expected web and document prompts to differ")
	}
}
