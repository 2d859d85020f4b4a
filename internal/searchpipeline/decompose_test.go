package searchpipeline

import (
	"reflect"
	"testing"
)

func TestDecomposeFallbackNoConnectorYieldsOriginal(t *testing.T) {
	got := DecomposeFallback("espresso grind size", 0)
	want := []string{"espresso grind size"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestDecomposeFallbackSubstantiveAnd(t *testing.T) {
	got := DecomposeFallback("espresso machines and pour-over kettles", 0)
	want := []string{"espresso machines", "pour-over kettles"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestDecomposeFallbackActivitiesInXAndInY(t *testing.T) {
	got := DecomposeFallback("outdoor activities in Portland and in Seattle", 0)
	if len(got) != 2 {
		t.Fatalf("expected 2 queries, got %v", got)
	}
	if got[0] != "outdoor activities in Portland" || got[1] != "outdoor activities in Seattle" {
		t.Errorf("unexpected split: %v", got)
	}
}

func TestDecomposeFallbackComma(t *testing.T) {
	got := DecomposeFallback("best hiking trails nearby, scenic overlook spots", 0)
	want := []string{"best hiking trails nearby", "scenic overlook spots"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestDecomposeFallbackRespectsMaxQueries(t *testing.T) {
	got := DecomposeFallback("espresso machines and pour-over kettles", 1)
	if len(got) != 1 {
		t.Fatalf("expected cap to 1 query, got %v", got)
	}
}

func TestDecomposeFallbackShortAndIsNotSubstantive(t *testing.T) {
	// "rock and roll" -- halves are single words, not substantive (< 2 words).
	got := DecomposeFallback("rock and roll", 0)
	want := []string{"rock and roll"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
