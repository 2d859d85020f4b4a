package report

import (
	"context"

	"maestro/internal/domain"
)

// Artifact is the final, user-facing rendering of a mission: a titled,
// numbered report body followed by its references section.
type Artifact struct {
	Title      string
	Body       string
	References string
	Sources    []domain.Source
}

// Markdown concatenates the artifact into the single document the
// finalization phase persists and the CLI writes to disk.
func (a Artifact) Markdown() string {
	out := "# " + a.Title + "\n\n" + a.Body
	if a.References != "" {
		out += "\n" + a.References
	}
	return out
}

// Generate runs the three Report Generator steps against a finished
// mission plan and its per-section content: generate the title, resolve
// citation placeholders into sequential reference numbers, and render
// the references section for whatever sources actually got cited.
func Generate(ctx context.Context, gen TitleGenerator, mission *domain.Mission) (Artifact, error) {
	plan := mission.Plan
	content := mission.ReportContent

	var firstText, lastText string
	if sections := plan.AllSections(); len(sections) > 0 {
		firstText = content[sections[0].SectionID]
		lastText = content[sections[len(sections)-1].SectionID]
	}

	title, err := GenerateTitle(ctx, gen, mission.UserRequest, goalTexts(mission.Goals), thoughtTexts(mission.Thoughts), firstText, lastText)
	if err != nil {
		return Artifact{}, err
	}

	asm := NewAssembler(sourcesFromNotes(mission.Notes), mission.Notes)
	body, sources := asm.AssembleAndResolve(plan, content)
	refs := BuildReferencesSection(sources)

	return Artifact{Title: title, Body: body, References: refs, Sources: sources}, nil
}

func goalTexts(goals []domain.Goal) []string {
	out := make([]string, len(goals))
	for i, g := range goals {
		out[i] = g.Text
	}
	return out
}

func thoughtTexts(thoughts []domain.Thought) []string {
	out := make([]string, len(thoughts))
	for i, t := range thoughts {
		out[i] = t.Text
	}
	return out
}

// sourcesFromNotes derives the ref_id -> Source lookup an Assembler
// needs directly from a mission's notes, since the controller does not
// otherwise keep a separate Source registry once research has produced
// notes.
func sourcesFromNotes(notes map[string]*domain.Note) []domain.Source {
	seen := make(map[string]bool, len(notes))
	out := make([]domain.Source, 0, len(notes))
	for _, n := range notes {
		refID := n.RefID()
		if seen[refID] {
			continue
		}
		seen[refID] = true
		s := domain.Source{Type: n.SourceType, RefID: refID}
		if n.SourceType == domain.SourceWeb {
			s.URL = n.SourceID
		} else {
			s.DocID = n.SourceID
		}
		if title, ok := n.SourceMetadata["title"].(string); ok {
			s.Title = title
		}
		if authors, ok := n.SourceMetadata["authors"].(string); ok {
			s.Authors = authors
		}
		if year, ok := n.SourceMetadata["year"].(string); ok {
			s.Year = year
		}
		if journal, ok := n.SourceMetadata["journal"].(string); ok {
			s.Journal = journal
		}
		out = append(out, s)
	}
	return out
}
