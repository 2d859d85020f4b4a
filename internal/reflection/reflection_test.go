package reflection

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maestro/internal/domain"
)

type fakePlanner struct {
	plans []*domain.Plan
	calls int
}

func (f *fakePlanner) Plan(ctx context.Context, prompt string) (*domain.Plan, error) {
	if f.calls >= len(f.plans) {
		return f.plans[len(f.plans)-1], nil
	}
	p := f.plans[f.calls]
	f.calls++
	return p, nil
}

func samplePlan(titles ...string) *domain.Plan {
	p := &domain.Plan{MissionGoal: "goal"}
	for i, t := range titles {
		p.ReportOutline = append(p.ReportOutline, &domain.ReportSection{
			SectionID: t, Title: t, Description: "desc " + t, ResearchStrategy: domain.StrategyResearchBased,
		})
		_ = i
	}
	return p
}

func TestApplyReturnsOriginalWhenNoChanges(t *testing.T) {
	current := samplePlan("a", "b")
	planner := &fakePlanner{plans: []*domain.Plan{samplePlan("a", "b")}}
	m := New(planner, nil, 100000, -1)

	result, err := m.Apply(context.Background(), "request", current, nil, nil)
	require.NoError(t, err)
	assert.Same(t, current, result, "expected original plan pointer returned when nothing changed")
}

func TestApplyStructuralModificationsReplacesOutline(t *testing.T) {
	current := samplePlan("a", "b")
	revised := samplePlan("a", "b", "c")
	planner := &fakePlanner{plans: []*domain.Plan{revised}}
	m := New(planner, nil, 100000, -1)

	reflections := []SectionReflection{{SectionID: "a", ProposedModifications: "add a section about c"}}
	result, err := m.Apply(context.Background(), "request", current, reflections, nil)
	require.NoError(t, err)
	assert.Len(t, result.AllSections(), 3, "expected revised outline with 3 sections")
}

func TestApplyRetriesOnErrorPatternOutline(t *testing.T) {
	current := samplePlan("a", "b")
	errorPlan := samplePlan("Placeholder")
	goodPlan := samplePlan("a", "b", "c")
	planner := &fakePlanner{plans: []*domain.Plan{errorPlan, goodPlan}}
	m := New(planner, nil, 100000, -1)

	reflections := []SectionReflection{{SectionID: "a", ProposedModifications: "expand"}}
	result, err := m.Apply(context.Background(), "request", current, reflections, nil)
	require.NoError(t, err)
	assert.Len(t, result.AllSections(), 3, "expected retry to recover a good outline")
}

type alwaysYes struct{}

func (alwaysYes) Ask(ctx context.Context, question string) (bool, error) { return true, nil }

type alwaysNo struct{}

func (alwaysNo) Ask(ctx context.Context, question string) (bool, error) { return false, nil }

func TestApplyRejectsUnvalidatedCollapseToOneSection(t *testing.T) {
	current := samplePlan("a", "b", "c")
	collapsed := samplePlan("only")
	recovered := samplePlan("a", "b", "c", "d")
	planner := &fakePlanner{plans: []*domain.Plan{collapsed, recovered}}
	m := New(planner, alwaysNo{}, 100000, -1)

	reflections := []SectionReflection{{SectionID: "a", ProposedModifications: "simplify"}}
	result, err := m.Apply(context.Background(), "request", current, reflections, nil)
	require.NoError(t, err)
	assert.Len(t, result.AllSections(), 4, "expected unvalidated collapse rejected in favor of next attempt")
}

func TestApplyAcceptsValidatedCollapseToOneSection(t *testing.T) {
	current := samplePlan("a", "b", "c")
	collapsed := samplePlan("only")
	planner := &fakePlanner{plans: []*domain.Plan{collapsed}}
	m := New(planner, alwaysYes{}, 100000, -1)

	reflections := []SectionReflection{{SectionID: "a", ProposedModifications: "simplify"}}
	result, err := m.Apply(context.Background(), "request", current, reflections, nil)
	require.NoError(t, err)
	assert.Len(t, result.AllSections(), 1, "expected validated collapse accepted")
}

func TestOrphanNotesRedistributed(t *testing.T) {
	current := samplePlan("a")
	current.ReportOutline[0].AssociatedNoteIDs = []string{"n1"}
	revised := samplePlan("a", "b")
	planner := &fakePlanner{plans: []*domain.Plan{revised}}
	m := New(planner, nil, 100000, -1)

	notes := map[string]*domain.Note{
		"n1": {NoteID: "n1", Content: "assigned"},
		"n2": {NoteID: "n2", Content: "orphaned"},
	}
	result, err := m.Apply(context.Background(), "request", current, nil, notes)
	require.NoError(t, err)
	assert.Len(t, result.AllSections(), 2, "expected redistribution call to run and revise outline")
}

func TestBatchByCharBudgetNeverSplitsAnItem(t *testing.T) {
	items := []string{"aaaa", "bbbb", "cccc"}
	batches := batchByCharBudget(items, 6, func(s string) int { return len(s) })
	total := 0
	for _, b := range batches {
		total += len(b)
	}
	assert.Equal(t, len(items), total, "expected all items retained across batches, got %v", batches)
}
