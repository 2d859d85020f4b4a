package outline

import (
	"testing"

	"maestro/internal/domain"
)

func sec(id, title, desc string, strategy domain.Strategy, subs ...*domain.ReportSection) *domain.ReportSection {
	return &domain.ReportSection{SectionID: id, Title: title, Description: desc, ResearchStrategy: strategy, Subsections: subs}
}

func TestValidateDryRunReportsDepthIssue(t *testing.T) {
	plan := &domain.Plan{ReportOutline: []*domain.ReportSection{
		sec("s1", "Intro", "intro text", domain.StrategyContentBased,
			sec("s1.1", "Sub", "sub text", domain.StrategyResearchBased,
				sec("s1.1.1", "Deep", "deep text", domain.StrategyResearchBased))),
	}}
	v := New(2)
	report := v.Validate(plan, false)

	if report.Valid {
		t.Error("expected invalid report due to depth violation")
	}
	if len(report.Issues) == 0 {
		t.Error("expected at least one reported depth issue")
	}
	// Dry run must not mutate the outline.
	if plan.MaxDepth() != 3 {
		t.Errorf("dry run mutated the plan, max depth now %d", plan.MaxDepth())
	}
}

func TestValidateAutoCorrectFlattensDeepSections(t *testing.T) {
	plan := &domain.Plan{ReportOutline: []*domain.ReportSection{
		sec("s1", "Middle", "middle text", domain.StrategyResearchBased,
			sec("s1.1", "Sub", "sub text", domain.StrategyResearchBased,
				sec("s1.1.1", "Deep", "deep text", domain.StrategyResearchBased))),
	}}
	v := New(2)
	report := v.Validate(plan, true)

	if plan.MaxDepth() > 2 {
		t.Errorf("expected depth flattened to <= 2, got %d", plan.MaxDepth())
	}
	if len(report.Corrections) == 0 {
		t.Error("expected corrections to be recorded")
	}
}

func TestValidateMergesDuplicateTitles(t *testing.T) {
	plan := &domain.Plan{ReportOutline: []*domain.ReportSection{
		sec("s1", "Coffee Brewing Methods", "pour-over and espresso", domain.StrategyResearchBased),
		sec("s2", "Coffee Brewing Method", "french press and aeropress", domain.StrategyResearchBased),
	}}
	v := New(5)
	v.Validate(plan, true)

	if len(plan.ReportOutline) != 1 {
		t.Fatalf("expected duplicates merged into 1 section, got %d", len(plan.ReportOutline))
	}
	if plan.ReportOutline[0].Description == "" {
		t.Error("expected merged descriptions to be combined")
	}
}

func TestValidateRemovesEmptySections(t *testing.T) {
	plan := &domain.Plan{ReportOutline: []*domain.ReportSection{
		sec("s1", "Real Section", "has content", domain.StrategyResearchBased),
		sec("s2", "Empty Section", "", domain.StrategyResearchBased),
	}}
	v := New(5)
	v.Validate(plan, true)

	if len(plan.ReportOutline) != 1 {
		t.Fatalf("expected empty section removed, got %d sections", len(plan.ReportOutline))
	}
}

func TestValidateSuffixesDuplicateIDs(t *testing.T) {
	plan := &domain.Plan{ReportOutline: []*domain.ReportSection{
		sec("dup", "First", "a", domain.StrategyResearchBased),
		sec("dup", "Second", "b", domain.StrategyResearchBased),
	}}
	v := New(5)
	v.Validate(plan, true)

	if plan.ReportOutline[0].SectionID != "dup" {
		t.Errorf("expected first occurrence to keep id, got %q", plan.ReportOutline[0].SectionID)
	}
	if plan.ReportOutline[1].SectionID != "dup_v1" {
		t.Errorf("expected second occurrence suffixed, got %q", plan.ReportOutline[1].SectionID)
	}
}

func TestValidateForcesParentsWithSubsectionsToSynthesize(t *testing.T) {
	plan := &domain.Plan{ReportOutline: []*domain.ReportSection{
		sec("s1", "Parent", "parent text", domain.StrategyContentBased,
			sec("s1.1", "Child", "child text", domain.StrategyResearchBased)),
	}}
	v := New(5)
	v.Validate(plan, true)

	if plan.ReportOutline[0].ResearchStrategy != domain.StrategySynthesizeFromSubsections {
		t.Errorf("expected parent forced to synthesize_from_subsections, got %v", plan.ReportOutline[0].ResearchStrategy)
	}
}

func TestValidatePromotesResearchBasedWhenNoneExists(t *testing.T) {
	plan := &domain.Plan{ReportOutline: []*domain.ReportSection{
		sec("s1", "Introduction", "intro", domain.StrategyContentBased),
		sec("s2", "Middle", "middle", domain.StrategyContentBased),
		sec("s3", "Conclusion", "conclusion", domain.StrategyContentBased),
	}}
	v := New(5)
	report := v.Validate(plan, true)

	if !report.HasResearchBased {
		t.Error("expected at least one research_based section after promotion")
	}
}

func TestValidateRemovesReferencesSection(t *testing.T) {
	plan := &domain.Plan{ReportOutline: []*domain.ReportSection{
		sec("s1", "Body", "body text", domain.StrategyResearchBased),
		sec("s2", "References", "", domain.StrategyContentBased),
	}}
	v := New(5)
	v.Validate(plan, true)

	for _, s := range plan.ReportOutline {
		if domain.IsReferencesTitle(s.Title) {
			t.Errorf("expected references section removed, found %q", s.Title)
		}
	}
}

func TestTitleSimilarityIgnoresPunctuationAndCase(t *testing.T) {
	if titleSimilarity("Coffee, Brewing!", "coffee brewing") != 1.0 {
		t.Error("expected normalized titles to be identical")
	}
	if titleSimilarity("Coffee Brewing", "Quantum Computing") > 0.85 {
		t.Error("expected unrelated titles to not be similar")
	}
}
