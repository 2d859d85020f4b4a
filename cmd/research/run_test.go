package main

import "testing"

func TestSanitizeFilenameLowercasesAndHyphenates(t *testing.T) {
	got := sanitizeFilename("The Future of Solid-State Batteries!")
	want := "the-future-of-solid-state-batteries"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSanitizeFilenameFallsBackWhenEmpty(t *testing.T) {
	if got := sanitizeFilename("!!!"); got != "report" {
		t.Fatalf("got %q, want report", got)
	}
}

func TestSanitizeFilenameTruncatesLongTitles(t *testing.T) {
	long := ""
	for i := 0; i < 200; i++ {
		long += "a"
	}
	got := sanitizeFilename(long)
	if len(got) != 80 {
		t.Fatalf("got length %d, want 80", len(got))
	}
}

func TestChunkByParagraphSplitsOnBlankLines(t *testing.T) {
	text := "first paragraph\n\nsecond paragraph\n\n\nthird"
	chunks := chunkByParagraph(text)
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3: %v", len(chunks), chunks)
	}
	if chunks[0] != "first paragraph" || chunks[2] != "third" {
		t.Fatalf("unexpected chunks: %v", chunks)
	}
}

func TestChunkByParagraphDropsBlankEntries(t *testing.T) {
	chunks := chunkByParagraph("\n\n   \n\nonly")
	if len(chunks) != 1 || chunks[0] != "only" {
		t.Fatalf("got %v", chunks)
	}
}
