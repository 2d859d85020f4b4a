// Package outline implements the Outline Validator (M3): six ordered
// rules that repair a research Plan before it is used for writing,
// either reporting issues (dry run) or correcting the outline in place.
package outline

import (
	"fmt"
	"strings"

	"maestro/internal/domain"
)

// introKeywords/conclusionKeywords govern which top-level sections may
// stay content_based (rule 5).
var introKeywords = []string{"introduction", "intro", "overview", "background"}
var conclusionKeywords = []string{"conclusion", "summary", "closing", "final thoughts"}

// Report is the outcome of validating (and possibly correcting) a Plan.
type Report struct {
	Valid             bool
	Issues            []string
	Corrections       []string
	MaxDepthSetting   int
	ActualMaxDepth    int
	TotalSections     int
	HasResearchBased  bool
}

// Validator applies the six ordered outline rules.
type Validator struct {
	maxTotalDepth int
}

// New constructs a Validator bound to the configured max_total_depth.
func New(maxTotalDepth int) *Validator {
	return &Validator{maxTotalDepth: maxTotalDepth}
}

// Validate applies all six rules to plan. When autoCorrect is false, the
// plan is left untouched and every would-be correction is instead
// reported as an issue (dry run). When true, the plan is mutated in
// place and each applied fix is recorded as a correction.
func (v *Validator) Validate(plan *domain.Plan, autoCorrect bool) *Report {
	report := &Report{MaxDepthSetting: v.maxTotalDepth}

	record := func(issue string) {
		if autoCorrect {
			report.Corrections = append(report.Corrections, issue)
		} else {
			report.Issues = append(report.Issues, issue)
		}
	}

	if autoCorrect {
		v.applyDepth(plan, record)
		v.applyDuplicates(plan, record)
		v.applyEmptySections(plan, record)
		v.applyUniqueIDs(plan, record)
		v.applyStrategies(plan, record)
		v.applyReferencesRemoval(plan, record)
	} else {
		v.reportDepth(plan, record)
		v.reportDuplicates(plan, record)
		v.reportEmptySections(plan, record)
		v.reportUniqueIDs(plan, record)
		v.reportStrategies(plan, record)
		v.reportReferencesRemoval(plan, record)
	}

	report.ActualMaxDepth = plan.MaxDepth()
	report.TotalSections = len(plan.AllSections())
	report.HasResearchBased = plan.HasResearchBased()
	report.Valid = report.ActualMaxDepth <= v.maxTotalDepth && report.HasResearchBased && len(report.Issues) == 0

	return report
}

// --- Rule 1: depth ---

func (v *Validator) applyDepth(plan *domain.Plan, record func(string)) {
	var prune func(nodes []*domain.ReportSection, depth int, parentDesc *string) []*domain.ReportSection
	prune = func(nodes []*domain.ReportSection, depth int, parentDesc *string) []*domain.ReportSection {
		if depth > v.maxTotalDepth {
			for _, n := range nodes {
				*parentDesc += fmt.Sprintf("\n\n%s: %s", n.Title, n.Description)
				record(fmt.Sprintf("flattened %q at depth %d into parent description", n.Title, depth))
			}
			return nil
		}
		for _, n := range nodes {
			n.Subsections = prune(n.Subsections, depth+1, &n.Description)
		}
		return nodes
	}
	plan.ReportOutline = prune(plan.ReportOutline, 1, new(string))
}

func (v *Validator) reportDepth(plan *domain.Plan, record func(string)) {
	plan.Walk(func(s *domain.ReportSection, depth int, _ *domain.ReportSection) {
		if depth > v.maxTotalDepth {
			record(fmt.Sprintf("section %q at depth %d exceeds max_total_depth %d", s.Title, depth, v.maxTotalDepth))
		}
	})
}

// --- Rule 2: duplicates ---

func normalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == ' ' {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// titleSimilarity is a token-overlap ratio (Jaccard-like) standing in for
// the fuzzy similarity measure spec §4.6 calls for; it is deterministic
// and has no external dependency, which is adequate since only the
// > 0.85 threshold comparison matters here.
func titleSimilarity(a, b string) float64 {
	na, nb := normalizeTitle(a), normalizeTitle(b)
	if na == nb {
		return 1.0
	}
	ta := strings.Fields(na)
	tb := strings.Fields(nb)
	setA := make(map[string]bool, len(ta))
	for _, t := range ta {
		setA[t] = true
	}
	setB := make(map[string]bool, len(tb))
	for _, t := range tb {
		setB[t] = true
	}
	inter := 0
	for t := range setA {
		if setB[t] {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func mergeDuplicatesIn(nodes []*domain.ReportSection, record func(string)) []*domain.ReportSection {
	var kept []*domain.ReportSection
	for _, n := range nodes {
		merged := false
		for _, k := range kept {
			if titleSimilarity(k.Title, n.Title) > 0.85 {
				k.Description = strings.TrimSpace(k.Description + "\n\n" + n.Description)
				k.AssociatedNoteIDs = append(k.AssociatedNoteIDs, n.AssociatedNoteIDs...)
				record(fmt.Sprintf("merged duplicate section %q into %q", n.Title, k.Title))
				merged = true
				break
			}
		}
		if !merged {
			n.Subsections = mergeDuplicatesIn(n.Subsections, record)
			kept = append(kept, n)
		}
	}
	return kept
}

func (v *Validator) applyDuplicates(plan *domain.Plan, record func(string)) {
	plan.ReportOutline = mergeDuplicatesIn(plan.ReportOutline, record)
}

func reportDuplicatesIn(nodes []*domain.ReportSection, record func(string)) {
	for i, n := range nodes {
		for j := i + 1; j < len(nodes); j++ {
			if titleSimilarity(n.Title, nodes[j].Title) > 0.85 {
				record(fmt.Sprintf("duplicate sections %q and %q", n.Title, nodes[j].Title))
			}
		}
		reportDuplicatesIn(n.Subsections, record)
	}
}

func (v *Validator) reportDuplicates(plan *domain.Plan, record func(string)) {
	reportDuplicatesIn(plan.ReportOutline, record)
}

// --- Rule 3: empty sections ---

func removeEmptyIn(nodes []*domain.ReportSection, record func(string)) []*domain.ReportSection {
	var kept []*domain.ReportSection
	for _, n := range nodes {
		n.Subsections = removeEmptyIn(n.Subsections, record)
		if strings.TrimSpace(n.Description) == "" && len(n.Subsections) == 0 {
			record(fmt.Sprintf("removed empty section %q", n.Title))
			continue
		}
		kept = append(kept, n)
	}
	return kept
}

func (v *Validator) applyEmptySections(plan *domain.Plan, record func(string)) {
	plan.ReportOutline = removeEmptyIn(plan.ReportOutline, record)
}

func (v *Validator) reportEmptySections(plan *domain.Plan, record func(string)) {
	plan.Walk(func(s *domain.ReportSection, _ int, _ *domain.ReportSection) {
		if strings.TrimSpace(s.Description) == "" && len(s.Subsections) == 0 {
			record(fmt.Sprintf("section %q has neither description nor subsections", s.Title))
		}
	})
}

// --- Rule 4: unique ids ---

func (v *Validator) applyUniqueIDs(plan *domain.Plan, record func(string)) {
	seen := make(map[string]int)
	plan.Walk(func(s *domain.ReportSection, _ int, _ *domain.ReportSection) {
		count := seen[s.SectionID]
		seen[s.SectionID] = count + 1
		if count > 0 {
			original := s.SectionID
			s.SectionID = fmt.Sprintf("%s_v%d", original, count)
			record(fmt.Sprintf("renamed duplicate section id %q to %q", original, s.SectionID))
		}
	})
}

func (v *Validator) reportUniqueIDs(plan *domain.Plan, record func(string)) {
	seen := make(map[string]bool)
	plan.Walk(func(s *domain.ReportSection, _ int, _ *domain.ReportSection) {
		if seen[s.SectionID] {
			record(fmt.Sprintf("duplicate section id %q", s.SectionID))
		}
		seen[s.SectionID] = true
	})
}

// --- Rule 5: strategies ---

func matchesAnyKeyword(s *domain.ReportSection, keywords []string) bool {
	title := strings.ToLower(s.Title)
	id := strings.ToLower(s.SectionID)
	for _, kw := range keywords {
		if strings.Contains(title, kw) || strings.Contains(id, kw) {
			return true
		}
	}
	return false
}

func (v *Validator) applyStrategies(plan *domain.Plan, record func(string)) {
	plan.Walk(func(s *domain.ReportSection, depth int, parent *domain.ReportSection) {
		if len(s.Subsections) > 0 {
			if s.ResearchStrategy != domain.StrategySynthesizeFromSubsections {
				record(fmt.Sprintf("section %q with subsections forced to synthesize_from_subsections", s.Title))
				s.ResearchStrategy = domain.StrategySynthesizeFromSubsections
			}
			return
		}
		if depth > 1 && s.ResearchStrategy == domain.StrategyContentBased {
			record(fmt.Sprintf("subsection %q cannot be content_based, forced to research_based", s.Title))
			s.ResearchStrategy = domain.StrategyResearchBased
		}
	})

	top := plan.ReportOutline
	for i, s := range top {
		if len(s.Subsections) > 0 || s.ResearchStrategy != domain.StrategyContentBased {
			continue
		}
		isFirst := i == 0
		isLast := i == len(top)-1
		allowed := (isFirst && matchesAnyKeyword(s, introKeywords)) || (isLast && matchesAnyKeyword(s, conclusionKeywords))
		if !allowed {
			record(fmt.Sprintf("top-level section %q is content_based without matching intro/conclusion keywords, forced to research_based", s.Title))
			s.ResearchStrategy = domain.StrategyResearchBased
		}
	}

	if !plan.HasResearchBased() {
		promoted := promoteMiddleLeaf(plan)
		if promoted != nil {
			record(fmt.Sprintf("promoted %q to research_based since no section had that strategy", promoted.Title))
		}
	}
}

// promoteMiddleLeaf finds a leaf section roughly in the middle of the
// flattened section list and forces it to research_based.
func promoteMiddleLeaf(plan *domain.Plan) *domain.ReportSection {
	var leaves []*domain.ReportSection
	plan.Walk(func(s *domain.ReportSection, _ int, _ *domain.ReportSection) {
		if len(s.Subsections) == 0 {
			leaves = append(leaves, s)
		}
	})
	if len(leaves) == 0 {
		return nil
	}
	mid := leaves[len(leaves)/2]
	mid.ResearchStrategy = domain.StrategyResearchBased
	return mid
}

func (v *Validator) reportStrategies(plan *domain.Plan, record func(string)) {
	plan.Walk(func(s *domain.ReportSection, depth int, _ *domain.ReportSection) {
		if depth > 1 && s.ResearchStrategy == domain.StrategyContentBased {
			record(fmt.Sprintf("subsection %q is content_based", s.Title))
		}
		if len(s.Subsections) > 0 && s.ResearchStrategy != domain.StrategySynthesizeFromSubsections {
			record(fmt.Sprintf("section %q has subsections but strategy %q", s.Title, s.ResearchStrategy))
		}
	})
	if !plan.HasResearchBased() {
		record("no section has strategy research_based")
	}
}

// --- Rule 6: references sections ---

func removeReferencesIn(nodes []*domain.ReportSection, record func(string)) []*domain.ReportSection {
	var kept []*domain.ReportSection
	for _, n := range nodes {
		if domain.IsReferencesTitle(n.Title) {
			record(fmt.Sprintf("removed reserved references section %q", n.Title))
			continue
		}
		n.Subsections = removeReferencesIn(n.Subsections, record)
		kept = append(kept, n)
	}
	return kept
}

func (v *Validator) applyReferencesRemoval(plan *domain.Plan, record func(string)) {
	plan.ReportOutline = removeReferencesIn(plan.ReportOutline, record)
}

func (v *Validator) reportReferencesRemoval(plan *domain.Plan, record func(string)) {
	plan.Walk(func(s *domain.ReportSection, _ int, _ *domain.ReportSection) {
		if domain.IsReferencesTitle(s.Title) {
			record(fmt.Sprintf("reserved references section %q should be removed", s.Title))
		}
	})
}
