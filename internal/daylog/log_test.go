package daylog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/kavisanghavi/logline/internal/docstore"
)

func TestAppendCreatesGroupThenAppendsThenUndoes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newFakeStore("Work Log", "Work Log\n")
	log := mustLog(t, store)

	res, err := log.Append(ctx, "doc1", day2, "Fixed bug")
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if !res.NewGroup {
		t.Fatalf("first append NewGroup = false, want true")
	}
	records := Extract(splitParagraphs(store.body))
	if len(records) != 1 || records[0].Text != "Fixed bug" || !records[0].Day.Equal(day2) {
		t.Fatalf("after first append records = %#v", records)
	}

	res, err = log.Append(ctx, "doc1", day2, "Reviewed PR")
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if res.NewGroup {
		t.Fatalf("second append NewGroup = true, want false")
	}
	records = Extract(splitParagraphs(store.body))
	if len(records) != 2 {
		t.Fatalf("after second append got %d records: %#v", len(records), records)
	}
	if records[0].Text != "Fixed bug" || records[1].Text != "Reviewed PR" {
		t.Fatalf("insertion order not preserved: %#v", records)
	}
	if strings.Count(store.body, HeadingText(day2)) != 1 {
		t.Fatalf("expected exactly one heading for the day, body:\n%s", store.body)
	}

	removed, ok, err := log.Undo(ctx, "doc1")
	if err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if !ok {
		t.Fatalf("Undo() ok = false, want true")
	}
	if removed.Text != "Reviewed PR" {
		t.Fatalf("Undo() removed %q, want %q", removed.Text, "Reviewed PR")
	}
	records = Extract(splitParagraphs(store.body))
	if len(records) != 1 || records[0].Text != "Fixed bug" {
		t.Fatalf("after undo records = %#v", records)
	}
	// The emptied state keeps the heading; undo never compacts sections.
	if !strings.Contains(store.body, HeadingText(day2)) {
		t.Fatalf("day heading removed by undo, body:\n%s", store.body)
	}
}

func TestAppendManyEntriesPreservesPriorGroups(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newFakeStore("Work Log", "Work Log\n")
	log := mustLog(t, store)

	if _, err := log.Append(ctx, "doc1", day1, "old work"); err != nil {
		t.Fatalf("Append(day1) error = %v", err)
	}
	before := store.body

	for i := 1; i <= 5; i++ {
		if _, err := log.Append(ctx, "doc1", day2, fmt.Sprintf("task %d", i)); err != nil {
			t.Fatalf("Append(day2 #%d) error = %v", i, err)
		}
	}

	if !strings.HasPrefix(store.body, before) {
		t.Fatalf("earlier group was disturbed:\nbefore:\n%s\nafter:\n%s", before, store.body)
	}
	records := Extract(splitParagraphs(store.body))
	var day2Texts []string
	for _, r := range records {
		if r.Day.Equal(day2) {
			day2Texts = append(day2Texts, r.Text)
		}
	}
	if len(day2Texts) != 5 {
		t.Fatalf("expected 5 entries for day2, got %d: %#v", len(day2Texts), day2Texts)
	}
	for i, text := range day2Texts {
		if want := fmt.Sprintf("task %d", i+1); text != want {
			t.Fatalf("entry %d = %q, want %q", i, text, want)
		}
	}
}

func TestAppendMultiLineBecomesSeparateBullets(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newFakeStore("Work Log", "Work Log\n")
	log := mustLog(t, store)

	res, err := log.Append(ctx, "doc1", day2, "fixed auth; reviewed PR")
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if len(res.Lines) != 2 {
		t.Fatalf("Lines = %#v, want 2 entries", res.Lines)
	}
	records := Extract(splitParagraphs(store.body))
	if len(records) != 2 || records[0].Text != "fixed auth" || records[1].Text != "reviewed PR" {
		t.Fatalf("records = %#v", records)
	}
}

func TestAppendRoundTripSearch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newFakeStore("Work Log", "Work Log\n")
	log := mustLog(t, store)

	const entry = "Migrated billing cron to the new queue"
	if _, err := log.Append(ctx, "doc1", day2, entry); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	found, err := log.Search(ctx, "doc1", "BILLING CRON")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(found) != 1 || found[0].Text != entry {
		t.Fatalf("Search() = %#v, want the appended entry", found)
	}
}

func TestRangeExcludesDaysOutsideWindow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newFakeStore("Work Log", "Work Log\n")
	log := mustLog(t, store)

	if _, err := log.Append(ctx, "doc1", day1, "first"); err != nil {
		t.Fatalf("Append(day1) error = %v", err)
	}
	if _, err := log.Append(ctx, "doc1", day2, "second"); err != nil {
		t.Fatalf("Append(day2) error = %v", err)
	}
	if _, err := log.Append(ctx, "doc1", day3, "third"); err != nil {
		t.Fatalf("Append(day3) error = %v", err)
	}

	got, err := log.Range(ctx, "doc1", day1, day2)
	if err != nil {
		t.Fatalf("Range() error = %v", err)
	}
	if len(got) != 2 || got[0].Text != "first" || got[1].Text != "second" {
		t.Fatalf("Range() = %#v, want first+second only", got)
	}
}

func TestUndoOnEmptyDocumentIsNotAnError(t *testing.T) {
	t.Parallel()

	store := newFakeStore("Work Log", "Work Log\n")
	log := mustLog(t, store)

	_, ok, err := log.Undo(context.Background(), "doc1")
	if err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if ok {
		t.Fatalf("Undo() ok = true on empty document, want false")
	}
	if len(store.batches) != 0 {
		t.Fatalf("Undo() issued %d batches on empty document, want 0", len(store.batches))
	}
}

func TestUndoRemovesLastEntryAcrossGroups(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newFakeStore("Work Log", "Work Log\n")
	log := mustLog(t, store)

	if _, err := log.Append(ctx, "doc1", day1, "old work"); err != nil {
		t.Fatalf("Append(day1) error = %v", err)
	}
	if _, err := log.Append(ctx, "doc1", day2, "new work"); err != nil {
		t.Fatalf("Append(day2) error = %v", err)
	}

	removed, ok, err := log.Undo(ctx, "doc1")
	if err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if !ok || removed.Text != "new work" || !removed.Day.Equal(day2) {
		t.Fatalf("Undo() = (%#v, %v), want the day2 entry", removed, ok)
	}
}

func TestStoreFailurePropagatesWithCause(t *testing.T) {
	t.Parallel()

	store := newFakeStore("Work Log", "Work Log\n")
	store.updateErr = fmt.Errorf("document batch update: %w", docstore.ErrCredentialExpired)
	log := mustLog(t, store)

	_, err := log.Append(context.Background(), "doc1", day2, "Fixed bug")
	if err == nil {
		t.Fatalf("Append() error = nil, want credential failure")
	}
	if !errors.Is(err, docstore.ErrCredentialExpired) {
		t.Fatalf("Append() error = %v, want ErrCredentialExpired cause preserved", err)
	}
	if len(store.batches) != 0 {
		t.Fatalf("rejected update recorded %d batches, want 0", len(store.batches))
	}
}
