package domain

import "strings"

// Strategy controls how a ReportSection's content gets produced.
type Strategy string

const (
	StrategyResearchBased              Strategy = "research_based"
	StrategyContentBased               Strategy = "content_based"
	StrategySynthesizeFromSubsections  Strategy = "synthesize_from_subsections"
	StrategySynthesizeFromOtherSections Strategy = "synthesize_from_other_sections"
)

// Plan is a Mission's outline, replaced atomically when revised.
type Plan struct {
	MissionGoal   string
	ReportOutline []*ReportSection
}

// Clone deep-copies the plan so replacement is atomic for readers holding
// the previous value (I7: readers see old or new, never a partial merge).
func (p *Plan) Clone() *Plan {
	if p == nil {
		return nil
	}
	out := &Plan{MissionGoal: p.MissionGoal}
	out.ReportOutline = make([]*ReportSection, len(p.ReportOutline))
	for i, s := range p.ReportOutline {
		out.ReportOutline[i] = s.Clone()
	}
	return out
}

// ReportSection is a node in the outline tree (I1: the outline is a tree).
type ReportSection struct {
	SectionID          string
	Title              string
	Description        string
	ResearchStrategy   Strategy
	Subsections        []*ReportSection
	AssociatedNoteIDs  []string
}

// Clone deep-copies a section and its subtree.
func (s *ReportSection) Clone() *ReportSection {
	if s == nil {
		return nil
	}
	out := &ReportSection{
		SectionID:        s.SectionID,
		Title:            s.Title,
		Description:      s.Description,
		ResearchStrategy: s.ResearchStrategy,
	}
	out.AssociatedNoteIDs = append(out.AssociatedNoteIDs, s.AssociatedNoteIDs...)
	out.Subsections = make([]*ReportSection, len(s.Subsections))
	for i, c := range s.Subsections {
		out.Subsections[i] = c.Clone()
	}
	return out
}

// Walk visits every section in the tree depth-first, pre-order.
func (p *Plan) Walk(fn func(section *ReportSection, depth int, parent *ReportSection)) {
	var rec func(nodes []*ReportSection, depth int, parent *ReportSection)
	rec = func(nodes []*ReportSection, depth int, parent *ReportSection) {
		for _, n := range nodes {
			fn(n, depth, parent)
			rec(n.Subsections, depth+1, n)
		}
	}
	if p == nil {
		return
	}
	rec(p.ReportOutline, 1, nil)
}

// MaxDepth returns the deepest section level in the outline (top-level = 1).
func (p *Plan) MaxDepth() int {
	max := 0
	p.Walk(func(_ *ReportSection, depth int, _ *ReportSection) {
		if depth > max {
			max = depth
		}
	})
	return max
}

// HasResearchBased reports whether at least one section uses research_based
// (I2).
func (p *Plan) HasResearchBased() bool {
	found := false
	p.Walk(func(s *ReportSection, _ int, _ *ReportSection) {
		if s.ResearchStrategy == StrategyResearchBased {
			found = true
		}
	})
	return found
}

// referencesTitleRe matches section titles that the finalization step owns
// (I5): References / Bibliography / Citations / Works Cited.
var referencesTitleWords = []string{"references", "bibliography", "citations", "works cited"}

// IsReferencesTitle reports whether title matches the reserved names (I5).
func IsReferencesTitle(title string) bool {
	norm := strings.ToLower(strings.TrimSpace(title))
	for _, w := range referencesTitleWords {
		if strings.HasPrefix(norm, w) {
			return true
		}
	}
	return false
}

// AllSections flattens the outline into a single slice, pre-order.
func (p *Plan) AllSections() []*ReportSection {
	var out []*ReportSection
	p.Walk(func(s *ReportSection, _ int, _ *ReportSection) {
		out = append(out, s)
	})
	return out
}

// FindSection locates a section by id anywhere in the tree.
func (p *Plan) FindSection(id string) *ReportSection {
	var found *ReportSection
	p.Walk(func(s *ReportSection, _ int, _ *ReportSection) {
		if s.SectionID == id {
			found = s
		}
	})
	return found
}
