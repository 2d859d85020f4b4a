package domain

import "testing"

func TestPlanMaxDepthAndWalk(t *testing.T) {
	p := &Plan{ReportOutline: []*ReportSection{
		{SectionID: "a", Title: "A", ResearchStrategy: StrategyResearchBased, Subsections: []*ReportSection{
			{SectionID: "a1", Title: "A1", ResearchStrategy: StrategySynthesizeFromSubsections, Subsections: []*ReportSection{
				{SectionID: "a1a", Title: "A1a", ResearchStrategy: StrategyResearchBased},
			}},
		}},
	}}

	if depth := p.MaxDepth(); depth != 3 {
		t.Errorf("expected depth 3, got %d", depth)
	}
	if !p.HasResearchBased() {
		t.Error("expected at least one research_based section")
	}
	if len(p.AllSections()) != 3 {
		t.Errorf("expected 3 sections, got %d", len(p.AllSections()))
	}
}

func TestPlanCloneIsDeep(t *testing.T) {
	p := &Plan{ReportOutline: []*ReportSection{
		{SectionID: "a", Title: "A", AssociatedNoteIDs: []string{"n1"}},
	}}
	clone := p.Clone()
	clone.ReportOutline[0].Title = "Changed"
	clone.ReportOutline[0].AssociatedNoteIDs[0] = "n2"

	if p.ReportOutline[0].Title == "Changed" {
		t.Error("mutating clone mutated original title")
	}
	if p.ReportOutline[0].AssociatedNoteIDs[0] == "n2" {
		t.Error("mutating clone mutated original note ids")
	}
}

func TestIsReferencesTitle(t *testing.T) {
	cases := map[string]bool{
		"References":         true,
		"Bibliography":       true,
		"Works Cited":        true,
		"Citations and More": true,
		"Introduction":        false,
		"Reference Architecture": true, // prefix match per spec §4.6 rule 6
	}
	for title, want := range cases {
		if got := IsReferencesTitle(title); got != want {
			t.Errorf("IsReferencesTitle(%q) = %v, want %v", title, got, want)
		}
	}
}

func TestRefIDFor(t *testing.T) {
	if got := RefIDFor(SourceInternal, "scratchpad-1"); got != "scratchpad-1" {
		t.Errorf("internal ref_id should equal source id, got %q", got)
	}
	if got := RefIDFor(SourceDocument, "doc_abcdef1234567890"); got != "doc_abcd" {
		t.Errorf("document ref_id should be first 8 chars, got %q", got)
	}
	web1 := RefIDFor(SourceWeb, "https://example.com/a")
	web2 := RefIDFor(SourceWeb, "https://example.com/a")
	web3 := RefIDFor(SourceWeb, "https://example.com/b")
	if len(web1) != 8 {
		t.Errorf("web ref_id should be 8 hex chars, got %q", web1)
	}
	if web1 != web2 {
		t.Error("web ref_id should be deterministic for the same url")
	}
	if web1 == web3 {
		t.Error("web ref_id should differ for different urls")
	}
}
