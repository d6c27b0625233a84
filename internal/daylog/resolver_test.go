package daylog

import (
	"testing"
	"time"
)

var (
	day1 = time.Date(2024, time.December, 30, 0, 0, 0, 0, time.UTC)
	day2 = time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)
	day3 = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
)

func TestResolvePositionAppendsToExistingGroup(t *testing.T) {
	t.Parallel()

	body := "Work Log\n" +
		"\n" +
		HeadingLine(day1) + "\n" +
		"- wrote tests\n" +
		"- reviewed PR\n" +
		"\n" +
		HeadingLine(day2) + "\n" +
		"- planned sprint\n"
	paragraphs := splitParagraphs(body)

	pos := ResolvePosition(paragraphs, "Work Log", HeadingText(day1))
	if pos.NeedsHeading {
		t.Fatalf("NeedsHeading = true, want false")
	}
	// The day1 group ends with the blank separator before the day2 heading.
	want := paragraphs[5].EndIndex
	if pos.InsertAt != want {
		t.Fatalf("InsertAt = %d, want %d", pos.InsertAt, want)
	}
}

func TestResolvePositionStopsAtNextHeading(t *testing.T) {
	t.Parallel()

	body := HeadingLine(day1) + "\n" +
		"- first\n" +
		HeadingLine(day2) + "\n" +
		"- second\n"
	paragraphs := splitParagraphs(body)

	pos := ResolvePosition(paragraphs, "", HeadingText(day1))
	if pos.NeedsHeading {
		t.Fatalf("NeedsHeading = true, want false")
	}
	want := paragraphs[1].EndIndex
	if pos.InsertAt != want {
		t.Fatalf("InsertAt = %d, want %d (end of day1 group)", pos.InsertAt, want)
	}
}

func TestResolvePositionMatchesExactHeadingOnly(t *testing.T) {
	t.Parallel()

	// Two headings share the generic pattern; only the exact rendering of
	// the target day may match.
	body := HeadingLine(day1) + "\n" +
		"- old entry\n" +
		HeadingLine(day2) + "\n" +
		"- newer entry\n"
	paragraphs := splitParagraphs(body)

	pos := ResolvePosition(paragraphs, "", HeadingText(day2))
	if pos.NeedsHeading {
		t.Fatalf("NeedsHeading = true, want false")
	}
	want := paragraphs[3].EndIndex
	if pos.InsertAt != want {
		t.Fatalf("InsertAt = %d, want %d (end of day2 group)", pos.InsertAt, want)
	}
}

func TestResolvePositionNewDayTrailsExistingGroups(t *testing.T) {
	t.Parallel()

	body := "Work Log\n" +
		HeadingLine(day1) + "\n" +
		"- wrote tests\n"
	paragraphs := splitParagraphs(body)

	pos := ResolvePosition(paragraphs, "Work Log", HeadingText(day3))
	if !pos.NeedsHeading {
		t.Fatalf("NeedsHeading = false, want true")
	}
	want := paragraphs[2].EndIndex
	if pos.InsertAt != want {
		t.Fatalf("InsertAt = %d, want %d (end of body)", pos.InsertAt, want)
	}
}

func TestResolvePositionEmptyBodyFallsBackToTitle(t *testing.T) {
	t.Parallel()

	body := "Work Log\n"
	paragraphs := splitParagraphs(body)

	pos := ResolvePosition(paragraphs, "Work Log", HeadingText(day1))
	if !pos.NeedsHeading {
		t.Fatalf("NeedsHeading = false, want true")
	}
	if pos.InsertAt != paragraphs[0].EndIndex {
		t.Fatalf("InsertAt = %d, want %d (after title)", pos.InsertAt, paragraphs[0].EndIndex)
	}
}

func TestResolvePositionMalformedDocumentUsesMinimalOffset(t *testing.T) {
	t.Parallel()

	pos := ResolvePosition(nil, "", HeadingText(day1))
	if !pos.NeedsHeading {
		t.Fatalf("NeedsHeading = false, want true")
	}
	if pos.InsertAt != minimalInsertIndex {
		t.Fatalf("InsertAt = %d, want %d", pos.InsertAt, minimalInsertIndex)
	}

	pos = ResolvePosition(splitParagraphs("\n"), "Work Log", HeadingText(day1))
	if pos.InsertAt != minimalInsertIndex {
		t.Fatalf("InsertAt = %d, want %d for blank-only body", pos.InsertAt, minimalInsertIndex)
	}
}
