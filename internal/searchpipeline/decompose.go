// Package searchpipeline implements the Iterative Search Pipeline (M1):
// query decomposition, per-query enrichment, and the inner
// assess-fetch-score loop shared by document_search and web_search when
// invoked from the writing assistant.
package searchpipeline

import "strings"

// DecomposeFallback implements the rule-based fallback for when LLM
// decomposition fails or returns malformed JSON (spec §4.4, §8
// "Decomposition fallback on a query with no 'and'/',' yields [query]").
// It recognizes three patterns, tried in order:
//  1. "activities in X and in Y"
//  2. "X and Y" when both halves are substantive
//  3. two comma-separated substantive halves
//
// Anything else returns the original query as the sole element.
func DecomposeFallback(query string, maxQueries int) []string {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil
	}

	if parts, ok := splitActivitiesInXAndInY(trimmed); ok {
		return capQueries(parts, maxQueries)
	}
	if parts, ok := splitSubstantiveAnd(trimmed); ok {
		return capQueries(parts, maxQueries)
	}
	if parts, ok := splitSubstantiveComma(trimmed); ok {
		return capQueries(parts, maxQueries)
	}
	return []string{trimmed}
}

func capQueries(parts []string, maxQueries int) []string {
	if maxQueries > 0 && len(parts) > maxQueries {
		return parts[:maxQueries]
	}
	return parts
}

func isSubstantive(s string) bool {
	s = strings.TrimSpace(s)
	return len(strings.Fields(s)) >= 2
}

// splitActivitiesInXAndInY matches "... activities in X and in Y ..." and
// yields "... activities in X" and "... activities in Y".
func splitActivitiesInXAndInY(q string) ([]string, bool) {
	lower := strings.ToLower(q)
	idx := strings.Index(lower, " in ")
	if idx < 0 {
		return nil, false
	}
	rest := q[idx+4:]
	lowerRest := strings.ToLower(rest)
	andIdx := strings.Index(lowerRest, " and in ")
	if andIdx < 0 {
		return nil, false
	}
	prefix := q[:idx+4]
	first := rest[:andIdx]
	second := rest[andIdx+len(" and in "):]
	if !isSubstantive(first) || !isSubstantive(second) {
		return nil, false
	}
	return []string{prefix + strings.TrimSpace(first), prefix + strings.TrimSpace(second)}, true
}

// splitSubstantiveAnd matches "X and Y" when both halves have >= 2 words.
func splitSubstantiveAnd(q string) ([]string, bool) {
	lower := strings.ToLower(q)
	idx := strings.Index(lower, " and ")
	if idx < 0 {
		return nil, false
	}
	left := q[:idx]
	right := q[idx+len(" and "):]
	if !isSubstantive(left) || !isSubstantive(right) {
		return nil, false
	}
	return []string{strings.TrimSpace(left), strings.TrimSpace(right)}, true
}

// splitSubstantiveComma matches two comma-separated substantive halves.
func splitSubstantiveComma(q string) ([]string, bool) {
	parts := strings.SplitN(q, ",", 2)
	if len(parts) != 2 {
		return nil, false
	}
	left, right := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if !isSubstantive(left) || !isSubstantive(right) {
		return nil, false
	}
	return []string{left, right}, true
}
