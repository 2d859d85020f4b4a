package writing

import (
	"testing"

	"maestro/internal/domain"
)

func top(id string, strategy domain.Strategy, subs ...*domain.ReportSection) *domain.ReportSection {
	return &domain.ReportSection{SectionID: id, Title: id, ResearchStrategy: strategy, Subsections: subs}
}

func TestPassOneOrderMiddleLastFirst(t *testing.T) {
	plan := &domain.Plan{ReportOutline: []*domain.ReportSection{
		top("first", domain.StrategyContentBased),
		top("middle1", domain.StrategyResearchBased),
		top("middle2", domain.StrategyResearchBased),
		top("last", domain.StrategyContentBased),
	}}

	order := PassOneOrder(plan)
	ids := make([]string, len(order))
	for i, s := range order {
		ids[i] = s.SectionID
	}
	want := []string{"middle1", "middle2", "last", "first"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("got %v, want %v", ids, want)
		}
	}
}

func TestPassOneOrderSingleSection(t *testing.T) {
	plan := &domain.Plan{ReportOutline: []*domain.ReportSection{top("only", domain.StrategyResearchBased)}}
	order := PassOneOrder(plan)
	if len(order) != 1 || order[0].SectionID != "only" {
		t.Fatalf("expected single section order, got %v", order)
	}
}

func TestDepthFirstSectionsIncludesDescendants(t *testing.T) {
	root := top("root", domain.StrategySynthesizeFromSubsections,
		top("child1", domain.StrategyResearchBased),
		top("child2", domain.StrategyResearchBased, top("grandchild", domain.StrategyResearchBased)),
	)
	ids := []string{}
	for _, s := range DepthFirstSections(root) {
		ids = append(ids, s.SectionID)
	}
	want := []string{"root", "child1", "child2", "grandchild"}
	if len(ids) != len(want) {
		t.Fatalf("got %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("got %v, want %v", ids, want)
		}
	}
}
