package writing

import (
	"context"
	"testing"

	"maestro/internal/domain"
)

type recordingWriter struct {
	calls []string
}

func (w *recordingWriter) Write(ctx context.Context, sc SectionContext) (string, error) {
	w.calls = append(w.calls, sc.Section.SectionID)
	return "content for " + sc.Section.SectionID, nil
}

type recordingSynthesizer struct {
	calls []string
}

func (s *recordingSynthesizer) Synthesize(ctx context.Context, sc SectionContext) (string, error) {
	s.calls = append(s.calls, sc.Section.SectionID)
	return "synthesized " + sc.Section.SectionID, nil
}

type noopReflector struct{ suggestions []domain.ChangeSuggestion }

func (r noopReflector) Reflect(ctx context.Context, draft string) ([]domain.ChangeSuggestion, error) {
	return r.suggestions, nil
}

func buildTestPlan() *domain.Plan {
	return &domain.Plan{ReportOutline: []*domain.ReportSection{
		top("intro", domain.StrategyContentBased),
		top("findings", domain.StrategySynthesizeFromSubsections,
			top("findings.1", domain.StrategyResearchBased),
			top("findings.2", domain.StrategyResearchBased)),
		top("conclusion", domain.StrategyContentBased),
	}}
}

func TestRunWritesLeavesAndSynthesizesParent(t *testing.T) {
	plan := buildTestPlan()
	writer := &recordingWriter{}
	synth := &recordingSynthesizer{}
	m := New(writer, synth, noopReflector{}, 1)

	content, err := m.Run(context.Background(), plan, nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content["findings.1"] == "" || content["findings.2"] == "" {
		t.Fatal("expected leaf sections written")
	}
	if content["findings"] != "synthesized findings" {
		t.Errorf("expected parent synthesized, got %q", content["findings"])
	}
	// Writer must never be called on the synthesize_from_subsections parent.
	for _, id := range writer.calls {
		if id == "findings" {
			t.Error("writer should not be invoked on a synthesized section")
		}
	}
}

func TestRunOrderWritesMiddleThenLastThenFirst(t *testing.T) {
	plan := buildTestPlan()
	writer := &recordingWriter{}
	synth := &recordingSynthesizer{}
	m := New(writer, synth, noopReflector{}, 1)

	_, err := m.Run(context.Background(), plan, nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// "findings" subtree (middle) should be written before "intro" (first).
	idx := make(map[string]int)
	for i, id := range writer.calls {
		if _, ok := idx[id]; !ok {
			idx[id] = i
		}
	}
	if idx["findings.1"] > idx["intro"] {
		t.Errorf("expected middle section written before first section, calls: %v", writer.calls)
	}
	if idx["conclusion"] > idx["intro"] {
		t.Errorf("expected last section written before first section, calls: %v", writer.calls)
	}
}

type recordingReflector struct {
	suggestions [][]domain.ChangeSuggestion
	calls       int
}

func (r *recordingReflector) Reflect(ctx context.Context, draft string) ([]domain.ChangeSuggestion, error) {
	if r.calls >= len(r.suggestions) {
		return nil, nil
	}
	s := r.suggestions[r.calls]
	r.calls++
	return s, nil
}

func TestRunAppliesRevisionsFromReflection(t *testing.T) {
	plan := buildTestPlan()
	writer := &recordingWriter{}
	synth := &recordingSynthesizer{}
	reflector := &recordingReflector{suggestions: [][]domain.ChangeSuggestion{
		{{SectionID: "findings.1", EditKind: "expand", Rationale: "needs more detail"}},
	}}
	m := New(writer, synth, reflector, 2)

	content, err := m.Run(context.Background(), plan, nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reflector.calls != 1 {
		t.Fatalf("expected reflection invoked once for 2 passes, got %d", reflector.calls)
	}
	if content["findings.1"] == "" {
		t.Error("expected revised section still has content")
	}
}

func TestPostProcessSynthesizesMissingParentWhenChildrenValid(t *testing.T) {
	plan := &domain.Plan{ReportOutline: []*domain.ReportSection{
		top("parent", domain.StrategySynthesizeFromSubsections,
			top("child1", domain.StrategyResearchBased),
		),
	}}
	writer := &recordingWriter{}
	synth := &recordingSynthesizer{}
	m := New(writer, synth, noopReflector{}, 1)

	content, err := m.Run(context.Background(), plan, nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content["parent"] == "" {
		t.Fatal("expected parent synthesized via post-processing path")
	}
}
