// Package writing implements the Writing Manager (M4): multi-pass
// section writing in a specific traversal order, with inter-pass
// reflection and post-processing synthesis for parent sections.
package writing

import "maestro/internal/domain"

// errorPlaceholder is the known error placeholder writing falls back to
// when a section's draft could not be produced; post-processing looks
// for this literal marker.
const errorPlaceholder = "[content unavailable]"

// PassOneOrder returns top-level sections (each carrying its full
// subtree) ordered middle(s) -> last -> first, per spec §4.7's pass-1
// writing order. "Middle" is every top-level section strictly between
// the first and last.
func PassOneOrder(plan *domain.Plan) []*domain.ReportSection {
	top := plan.ReportOutline
	if len(top) == 0 {
		return nil
	}
	if len(top) == 1 {
		return []*domain.ReportSection{top[0]}
	}

	first := top[0]
	last := top[len(top)-1]
	middle := top[1 : len(top)-1]

	out := make([]*domain.ReportSection, 0, len(top))
	out = append(out, middle...)
	out = append(out, last, first)
	return out
}

// DepthFirstSections flattens one top-level section's subtree in
// depth-first order, section itself first.
func DepthFirstSections(section *domain.ReportSection) []*domain.ReportSection {
	var out []*domain.ReportSection
	var rec func(s *domain.ReportSection)
	rec = func(s *domain.ReportSection) {
		out = append(out, s)
		for _, c := range s.Subsections {
			rec(c)
		}
	}
	rec(section)
	return out
}

// IsSynthesized reports whether a section's content should come from the
// dedicated synthesis call rather than the writing agent.
func IsSynthesized(s *domain.ReportSection) bool {
	return s.ResearchStrategy == domain.StrategySynthesizeFromSubsections || s.ResearchStrategy == domain.StrategySynthesizeFromOtherSections
}

// IsMissingOrErrorPlaceholder reports whether content represents a
// section that still needs synthesis (spec §4.7 post-processing).
func IsMissingOrErrorPlaceholder(content string) bool {
	return content == "" || content == errorPlaceholder
}
