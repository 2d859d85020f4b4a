// Package report implements the Report Generator (H1): title
// generation and citation resolution that assembles per-section drafts
// into the final numbered, referenced artifact.
package report

import (
	"context"
	"regexp"
	"strings"
)

const maxSnippetChars = 1500

// TitleGenerator produces a 5-15 word title from the writing role.
type TitleGenerator interface {
	GenerateTitle(ctx context.Context, prompt string) (string, error)
}

var titlePrefixRe = regexp.MustCompile(`(?i)^\s*(\*\*title:\*\*|title:|\*\*label:\*\*)\s*`)

// StripTitleArtifacts removes common prefix artifacts the writing model
// tends to prepend (spec §4.8).
func StripTitleArtifacts(title string) string {
	return strings.TrimSpace(titlePrefixRe.ReplaceAllString(title, ""))
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}

// BuildTitlePrompt assembles the title-generation prompt from the
// original user request, active goals, recent thoughts, and first/last
// section snippets (each capped at 1500 chars).
func BuildTitlePrompt(userRequest string, goals []string, thoughts []string, firstSectionText, lastSectionText string) string {
	var b strings.Builder
	b.WriteString("Generate a concise title (5-15 words) for a research report.\n\n")
	b.WriteString("Original request: ")
	b.WriteString(userRequest)
	b.WriteString("\n\n")
	if len(goals) > 0 {
		b.WriteString("Goals:\n")
		for _, g := range goals {
			b.WriteString("- ")
			b.WriteString(g)
			b.WriteString("\n")
		}
	}
	if len(thoughts) > 0 {
		b.WriteString("\nRecent thoughts:\n")
		for _, t := range thoughts {
			b.WriteString("- ")
			b.WriteString(t)
			b.WriteString("\n")
		}
	}
	b.WriteString("\nOpening section excerpt:\n")
	b.WriteString(truncate(firstSectionText, maxSnippetChars))
	b.WriteString("\n\nClosing section excerpt:\n")
	b.WriteString(truncate(lastSectionText, maxSnippetChars))
	return b.String()
}

// GenerateTitle calls the generator and strips known prefix artifacts.
func GenerateTitle(ctx context.Context, gen TitleGenerator, userRequest string, goals, thoughts []string, firstSectionText, lastSectionText string) (string, error) {
	prompt := BuildTitlePrompt(userRequest, goals, thoughts, firstSectionText, lastSectionText)
	raw, err := gen.GenerateTitle(ctx, prompt)
	if err != nil {
		return "", err
	}
	return StripTitleArtifacts(raw), nil
}
