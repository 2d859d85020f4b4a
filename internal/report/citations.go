package report

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"maestro/internal/domain"
)

// idToken matches one citation id: an 8-hex doc/web ref id, or a
// "note_<8-hex>" note reference.
const idToken = `(?:[0-9a-f]{8}|note_[0-9a-f]{8})`

var placeholderRe = regexp.MustCompile(`\[\s*(` + idToken + `(?:\s*,\s*` + idToken + `)*)\s*\]`)

// resolveID maps a placeholder id token to a Source ref_id. note_<id>
// tokens are resolved by looking up the Note and recomputing its stable
// ref_id from its source_id (spec §4.8); bare 8-hex tokens are already a
// ref_id.
func resolveID(token string, notes map[string]*domain.Note) (string, bool) {
	if strings.HasPrefix(token, "note_") {
		noteID := token
		note, ok := notes[noteID]
		if !ok {
			return "", false
		}
		return note.RefID(), true
	}
	return token, true
}

// Assembler builds the final numbered report from per-section content.
type Assembler struct {
	sources map[string]domain.Source // keyed by RefID
	notes   map[string]*domain.Note  // keyed by NoteID
}

// NewAssembler constructs an Assembler from the mission's known sources
// and notes.
func NewAssembler(sources []domain.Source, notes map[string]*domain.Note) *Assembler {
	a := &Assembler{sources: make(map[string]domain.Source, len(sources)), notes: notes}
	for _, s := range sources {
		a.sources[s.RefID] = s
	}
	return a
}

// sectionBody is one section rendered with its heading and numbering
// prefix, in depth-first order.
type sectionBody struct {
	heading string
	text    string
}

func renderSections(plan *domain.Plan, contentBySection map[string]string) []sectionBody {
	var out []sectionBody
	counters := make([]int, 0, plan.MaxDepth())

	plan.Walk(func(s *domain.ReportSection, depth int, _ *domain.ReportSection) {
		for len(counters) < depth {
			counters = append(counters, 0)
		}
		counters = counters[:depth]
		counters[depth-1]++

		parts := make([]string, depth)
		for i, c := range counters {
			parts[i] = strconv.Itoa(c)
		}
		number := strings.Join(parts, ".") + "."
		heading := strings.Repeat("#", depth) + " " + number + " " + s.Title
		out = append(out, sectionBody{heading: heading, text: contentBySection[s.SectionID]})
	})
	return out
}

// AssembleAndResolve builds the numbered report body with citation
// placeholders replaced by sequential reference numbers, and returns the
// ordered list of sources actually cited (index 0 = reference 1).
func (a *Assembler) AssembleAndResolve(plan *domain.Plan, contentBySection map[string]string) (string, []domain.Source) {
	sections := renderSections(plan, contentBySection)

	var raw strings.Builder
	for _, s := range sections {
		raw.WriteString(s.heading)
		raw.WriteString("\n\n")
		raw.WriteString(s.text)
		raw.WriteString("\n\n")
	}
	fullText := raw.String()

	numbering := a.assignNumbering(fullText)

	resolved := make([]domain.Source, len(numbering.order))
	for refID, n := range numbering.byRef {
		resolved[n-1] = a.sources[refID]
	}

	final := placeholderRe.ReplaceAllStringFunc(fullText, func(match string) string {
		return a.renderReplacement(match, numbering)
	})

	return final, resolved
}

type numberingTable struct {
	byRef map[string]int // ref_id -> reference number (1-indexed)
	order []string
}

// assignNumbering scans fullText for placeholders in textual order and
// assigns each newly-seen resolvable ref_id the next sequential number
// (spec §4.8: "order of first appearance in the text").
func (a *Assembler) assignNumbering(fullText string) numberingTable {
	table := numberingTable{byRef: make(map[string]int)}
	matches := placeholderRe.FindAllString(fullText, -1)
	for _, m := range matches {
		inner := strings.Trim(m, "[]")
		tokens := strings.Split(inner, ",")
		for _, tok := range tokens {
			tok = strings.TrimSpace(tok)
			refID, ok := resolveID(tok, a.notes)
			if !ok {
				continue
			}
			if _, known := a.sources[refID]; !known {
				continue
			}
			if _, already := table.byRef[refID]; already {
				continue
			}
			table.byRef[refID] = len(table.order) + 1
			table.order = append(table.order, refID)
		}
	}
	return table
}

func (a *Assembler) renderReplacement(match string, numbering numberingTable) string {
	inner := strings.Trim(match, "[]")
	tokens := strings.Split(inner, ",")

	var numbers []int
	allResolved := true
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		refID, ok := resolveID(tok, a.notes)
		if !ok {
			allResolved = false
			break
		}
		n, known := numbering.byRef[refID]
		if !known {
			allResolved = false
			break
		}
		numbers = append(numbers, n)
	}

	if !allResolved {
		// Unknown ids are left intact per spec §4.8.
		return match
	}

	sort.Ints(numbers)
	strs := make([]string, len(numbers))
	for i, n := range numbers {
		strs[i] = strconv.Itoa(n)
	}
	return "[" + strings.Join(strs, ",") + "]"
}

// BuildReferencesSection renders the "## References" block in numeric
// order, APA-like per source type.
func BuildReferencesSection(sources []domain.Source) string {
	if len(sources) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("## References\n\n")
	for i, s := range sources {
		b.WriteString(fmt.Sprintf("%d. %s\n", i+1, formatReference(s)))
	}
	return b.String()
}

func formatReference(s domain.Source) string {
	authors := s.Authors
	if authors == "" {
		authors = "Unknown author"
	}
	year := s.Year
	if year == "" {
		year = "n.d."
	}
	title := s.Title
	if title == "" {
		title = "Untitled"
	}

	switch s.Type {
	case domain.SourceWeb:
		journal := ""
		if s.URL != "" {
			journal = fmt.Sprintf(" Retrieved from source. Available at: %s (Accessed: n.d.).", s.URL)
		}
		return fmt.Sprintf("%s. (%s). %s.%s", authors, year, title, journal)
	default: // document/internal
		journal := s.Journal
		if journal == "" {
			return fmt.Sprintf("%s. (%s). %s.", authors, year, title)
		}
		return fmt.Sprintf("%s. (%s). %s. *%s*.", authors, year, title, journal)
	}
}
