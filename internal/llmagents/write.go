package llmagents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"maestro/internal/domain"
	"maestro/internal/llm"
	"maestro/internal/modeldispatch"
	"maestro/internal/writing"
)

// WriterAdapter implements writing.Writer against the Model Dispatcher.
type WriterAdapter struct {
	Dispatcher *modeldispatch.Dispatcher
}

func formatSectionContext(sc writing.SectionContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Section: %s\n", sc.Section.Title)
	if sc.ParentTitle != "" {
		fmt.Fprintf(&b, "Parent section: %s\n", sc.ParentTitle)
	}
	if sc.Section.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", sc.Section.Description)
	}
	if len(sc.Notes) > 0 {
		b.WriteString("\nResearch notes:\n")
		for _, n := range sc.Notes {
			fmt.Fprintf(&b, "- [%s] %s\n", n.RefID(), n.Content)
		}
	}
	if len(sc.ActiveGoals) > 0 {
		b.WriteString("\nActive goals:\n")
		for _, g := range sc.ActiveGoals {
			fmt.Fprintf(&b, "- %s\n", g.Text)
		}
	}
	if len(sc.RecentThoughts) > 0 {
		b.WriteString("\nRecent thoughts:\n")
		for _, t := range sc.RecentThoughts {
			fmt.Fprintf(&b, "- %s\n", t.Text)
		}
	}
	return b.String()
}

// Write drafts one section's content from research notes, citing sources
// by their ref_id in bracket form (spec §4.8's placeholder syntax).
func (a WriterAdapter) Write(ctx context.Context, sc writing.SectionContext) (string, error) {
	prompt := formatSectionContext(sc)
	raw, _, err := a.Dispatcher.Dispatch(ctx, []llm.Message{
		{Role: "system", Content: "Write one report section in markdown. Cite sources inline as [ref_id], never invent facts not present in the notes."},
		{Role: "user", Content: prompt},
	}, modeldispatch.RoleWriting, nil)
	return raw, err
}

// SynthesizerAdapter implements writing.Synthesizer: it produces a
// section's content from its already-written children rather than notes.
type SynthesizerAdapter struct {
	Dispatcher *modeldispatch.Dispatcher
}

func (a SynthesizerAdapter) Synthesize(ctx context.Context, sc writing.SectionContext) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Synthesize an introduction/summary for %q from its subsections:\n\n", sc.Section.Title)
	for _, child := range sc.Section.Subsections {
		fmt.Fprintf(&b, "## %s\n%s\n\n", child.Title, sc.WrittenSections[child.SectionID])
	}
	raw, _, err := a.Dispatcher.Dispatch(ctx, []llm.Message{
		{Role: "system", Content: "Synthesize a cohesive section from its subsections' already-written content. Do not introduce new citations."},
		{Role: "user", Content: b.String()},
	}, modeldispatch.RoleWriting, nil)
	return raw, err
}

// changeSuggestionDTO mirrors ChangeSuggestion's JSON shape (spec §3).
type changeSuggestionDTO struct {
	SectionID    string `json:"section_id"`
	EditKind     string `json:"edit_kind"`
	Rationale    string `json:"rationale"`
	ProposedEdit string `json:"proposed_edit"`
}

// ReflectorAdapter implements writing.Reflector against the reflection
// role, parsing a JSON array of change suggestions.
type ReflectorAdapter struct {
	Dispatcher *modeldispatch.Dispatcher
}

func (a ReflectorAdapter) Reflect(ctx context.Context, concatenatedDraft string) ([]domain.ChangeSuggestion, error) {
	raw, _, err := a.Dispatcher.Dispatch(ctx, []llm.Message{
		{Role: "system", Content: "Review this draft report and propose edits as a JSON array of {section_id, edit_kind, rationale, proposed_edit}. Respond with an empty array if nothing needs changing."},
		{Role: "user", Content: concatenatedDraft},
	}, modeldispatch.RoleReflection, nil)
	if err != nil {
		return nil, err
	}

	var dtos []changeSuggestionDTO
	if err := json.Unmarshal([]byte(extractJSON(raw)), &dtos); err != nil {
		return nil, fmt.Errorf("parse reflection response: %w", err)
	}
	out := make([]domain.ChangeSuggestion, len(dtos))
	for i, d := range dtos {
		out[i] = domain.ChangeSuggestion{
			SectionID:    d.SectionID,
			EditKind:     d.EditKind,
			Rationale:    d.Rationale,
			ProposedEdit: d.ProposedEdit,
		}
	}
	return out, nil
}
