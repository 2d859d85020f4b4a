// Package llmagents wires the Model Dispatcher (internal/modeldispatch)
// and the built-in tools (internal/tools) into the narrow interfaces the
// reflection, writing, search pipeline, and report packages depend on.
// Generalized from the teacher's internal/agent (single ReAct loop)
// split into one small adapter per pipeline role.
package llmagents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"maestro/internal/domain"
	"maestro/internal/llm"
	"maestro/internal/modeldispatch"
)

// sectionDTO mirrors the outline JSON shape named in spec §3:
// section_id/title/description/research_strategy/subsections/
// associated_note_ids.
type sectionDTO struct {
	SectionID         string       `json:"section_id"`
	Title             string       `json:"title"`
	Description       string       `json:"description"`
	ResearchStrategy  string       `json:"research_strategy"`
	Subsections       []sectionDTO `json:"subsections"`
	AssociatedNoteIDs []string     `json:"associated_note_ids"`
}

type planDTO struct {
	MissionGoal   string       `json:"mission_goal"`
	ReportOutline []sectionDTO `json:"report_outline"`
}

func (s sectionDTO) toDomain() *domain.ReportSection {
	out := &domain.ReportSection{
		SectionID:         s.SectionID,
		Title:             s.Title,
		Description:       s.Description,
		ResearchStrategy:  domain.Strategy(s.ResearchStrategy),
		AssociatedNoteIDs: s.AssociatedNoteIDs,
	}
	out.Subsections = make([]*domain.ReportSection, len(s.Subsections))
	for i, c := range s.Subsections {
		out.Subsections[i] = c.toDomain()
	}
	return out
}

func (p planDTO) toDomain() *domain.Plan {
	out := &domain.Plan{MissionGoal: p.MissionGoal}
	out.ReportOutline = make([]*domain.ReportSection, len(p.ReportOutline))
	for i, s := range p.ReportOutline {
		out.ReportOutline[i] = s.toDomain()
	}
	return out
}

// extractJSON pulls the first balanced {...} or [...] block out of a
// model response, tolerating a surrounding markdown fence — the same
// lenient-extraction behavior the error-handling design names as the
// fallback before a hard ParseFailure.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return s
	}
	open, close := s[start], byte('}')
	if open == '[' {
		close = ']'
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return s[start:]
}

// PlanAdapter implements reflection.Planner against the Model Dispatcher.
type PlanAdapter struct {
	Dispatcher *modeldispatch.Dispatcher
}

// Plan asks the planning role for a full outline and parses it.
func (a PlanAdapter) Plan(ctx context.Context, prompt string) (*domain.Plan, error) {
	raw, _, err := a.Dispatcher.Dispatch(ctx, []llm.Message{
		{Role: "system", Content: "You are a research planning assistant. Respond with JSON only, matching the outline schema."},
		{Role: "user", Content: prompt},
	}, modeldispatch.RolePlanning, nil)
	if err != nil {
		return nil, err
	}

	var dto planDTO
	if err := json.Unmarshal([]byte(extractJSON(raw)), &dto); err != nil {
		return nil, fmt.Errorf("parse plan response: %w", err)
	}
	return dto.toDomain(), nil
}

// YesNoAdapter implements reflection.YesNoChecker against a fast model.
type YesNoAdapter struct {
	Dispatcher *modeldispatch.Dispatcher
}

// Ask resolves a yes/no validation question; any non-"yes" prefix is no.
func (a YesNoAdapter) Ask(ctx context.Context, question string) (bool, error) {
	raw, _, err := a.Dispatcher.Dispatch(ctx, []llm.Message{
		{Role: "system", Content: "Answer strictly \"yes\" or \"no\"."},
		{Role: "user", Content: question},
	}, modeldispatch.RoleVerifier, nil)
	if err != nil {
		return false, err
	}
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(raw)), "yes"), nil
}
