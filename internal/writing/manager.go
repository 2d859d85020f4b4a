package writing

import (
	"context"
	"strings"
	"sync"

	"maestro/internal/domain"
)

// SectionContext is everything a writer/synthesizer call needs per
// section, per spec §4.7's context list (a)-(f).
type SectionContext struct {
	Section         *domain.ReportSection
	Notes           []*domain.Note
	WrittenSections map[string]string // section_id -> content, for synthesis
	ParentTitle     string
	FullOutline     *domain.Plan
	RecentThoughts  []domain.Thought
	ActiveGoals     []domain.Goal
}

// Writer produces one section's content from its context.
type Writer interface {
	Write(ctx context.Context, sc SectionContext) (string, error)
}

// Synthesizer produces a top-level section's content by summarizing its
// already-written children.
type Synthesizer interface {
	Synthesize(ctx context.Context, sc SectionContext) (string, error)
}

// Reflector proposes ChangeSuggestions against the current concatenated
// draft.
type Reflector interface {
	Reflect(ctx context.Context, concatenatedDraft string) ([]domain.ChangeSuggestion, error)
}

// Manager drives writing_passes passes over a plan.
type Manager struct {
	writer      Writer
	synthesizer Synthesizer
	reflector   Reflector
	passes      int
}

// New constructs a writing Manager.
func New(writer Writer, synthesizer Synthesizer, reflector Reflector, passes int) *Manager {
	if passes < 1 {
		passes = 1
	}
	return &Manager{writer: writer, synthesizer: synthesizer, reflector: reflector, passes: passes}
}

// Run executes all passes, returning the final section_id -> content map.
func (m *Manager) Run(ctx context.Context, plan *domain.Plan, notesBySection map[string][]*domain.Note, thoughts []domain.Thought, goals []domain.Goal) (map[string]string, error) {
	content := make(map[string]string)

	if err := m.passOne(ctx, plan, notesBySection, thoughts, goals, content); err != nil {
		return content, err
	}

	for pass := 2; pass <= m.passes; pass++ {
		suggestions, err := m.reflectOnDraft(ctx, content, plan)
		if err != nil {
			return content, err
		}
		if len(suggestions) == 0 {
			continue
		}
		if err := m.applyRevisions(ctx, plan, notesBySection, thoughts, goals, content, suggestions); err != nil {
			return content, err
		}
		m.regenerateSynthesizedIntros(ctx, plan, content)
	}

	m.postProcessMissingParents(ctx, plan, content)
	return content, nil
}

func (m *Manager) passOne(ctx context.Context, plan *domain.Plan, notesBySection map[string][]*domain.Note, thoughts []domain.Thought, goals []domain.Goal, content map[string]string) error {
	order := PassOneOrder(plan)
	for _, top := range order {
		for _, s := range DepthFirstSections(top) {
			if IsSynthesized(s) {
				// Synthesized intros are produced once subsections are
				// written, and are not re-run through the writing agent
				// in pass 1.
				continue
			}
			sc := SectionContext{
				Section:        s,
				Notes:          notesBySection[s.SectionID],
				ParentTitle:    top.Title,
				FullOutline:    plan,
				RecentThoughts: thoughts,
				ActiveGoals:    goals,
			}
			text, err := m.writer.Write(ctx, sc)
			if err != nil {
				return err
			}
			content[s.SectionID] = text
		}
		if IsSynthesized(top) {
			if err := m.synthesizeTop(ctx, plan, top, content); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Manager) synthesizeTop(ctx context.Context, plan *domain.Plan, top *domain.ReportSection, content map[string]string) error {
	written := make(map[string]string)
	for _, c := range top.Subsections {
		written[c.SectionID] = content[c.SectionID]
	}
	sc := SectionContext{Section: top, WrittenSections: written, FullOutline: plan}
	text, err := m.synthesizer.Synthesize(ctx, sc)
	if err != nil {
		return err
	}
	content[top.SectionID] = text
	return nil
}

func (m *Manager) reflectOnDraft(ctx context.Context, content map[string]string, plan *domain.Plan) ([]domain.ChangeSuggestion, error) {
	var b strings.Builder
	for _, s := range plan.AllSections() {
		b.WriteString(content[s.SectionID])
		b.WriteString("\n\n")
	}
	return m.reflector.Reflect(ctx, b.String())
}

// applyRevisions applies each suggestion's section concurrently; the
// dispatcher semaphore (outside this package) caps real concurrency per
// spec §4.7.
func (m *Manager) applyRevisions(ctx context.Context, plan *domain.Plan, notesBySection map[string][]*domain.Note, thoughts []domain.Thought, goals []domain.Goal, content map[string]string, suggestions []domain.ChangeSuggestion) error {
	var mu sync.Mutex
	var wg sync.WaitGroup
	errs := make([]error, len(suggestions))

	for i, sugg := range suggestions {
		section := plan.FindSection(sugg.SectionID)
		if section == nil || IsSynthesized(section) {
			continue
		}
		wg.Add(1)
		go func(i int, section *domain.ReportSection, sugg domain.ChangeSuggestion) {
			defer wg.Done()
			sc := SectionContext{
				Section:        section,
				Notes:          notesBySection[section.SectionID],
				FullOutline:    plan,
				RecentThoughts: thoughts,
				ActiveGoals:    goals,
			}
			text, err := m.writer.Write(ctx, sc)
			if err != nil {
				errs[i] = err
				return
			}
			mu.Lock()
			content[section.SectionID] = text
			mu.Unlock()
		}(i, section, sugg)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) regenerateSynthesizedIntros(ctx context.Context, plan *domain.Plan, content map[string]string) {
	for _, top := range plan.ReportOutline {
		if IsSynthesized(top) {
			_ = m.synthesizeTop(ctx, plan, top, content)
		}
	}
}

func (m *Manager) postProcessMissingParents(ctx context.Context, plan *domain.Plan, content map[string]string) {
	for _, top := range plan.ReportOutline {
		if len(top.Subsections) == 0 {
			continue
		}
		if !IsMissingOrErrorPlaceholder(content[top.SectionID]) {
			continue
		}
		allChildrenValid := true
		for _, c := range top.Subsections {
			if IsMissingOrErrorPlaceholder(content[c.SectionID]) {
				allChildrenValid = false
				break
			}
		}
		if allChildrenValid {
			_ = m.synthesizeTop(ctx, plan, top, content)
		}
	}
}
