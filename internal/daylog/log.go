// Package daylog implements the day-grouped append log: locating the
// insertion point for a new entry inside a growing document, writing it
// under today's heading, and parsing the document back into structured
// records for undo, search and date-ranged retrieval.
//
// The document is the single source of truth. Nothing is cached between
// calls; every operation starts from a fresh snapshot.
package daylog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kavisanghavi/logline/internal/docstore"
)

// Store is the document access the log needs. *docstore.Client satisfies it.
type Store interface {
	Get(ctx context.Context, documentID string) (*docstore.Document, error)
	BatchUpdate(ctx context.Context, documentID string, requests []docstore.Request) error
}

type LogOptions struct {
	Store Store
}

// Log performs read-resolve-write cycles against one externally stored
// document. It holds no per-document state.
type Log struct {
	store Store
}

func NewLog(opts LogOptions) (*Log, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	return &Log{store: opts.Store}, nil
}

// AppendResult reports what an append did.
type AppendResult struct {
	Day      time.Time
	NewGroup bool
	Lines    []string
}

// Append logs entry text under the heading for the given day, creating the
// day's section when it does not exist yet. The write is a single atomic
// batch; store failures propagate with their cause preserved and are never
// retried here.
func (l *Log) Append(ctx context.Context, documentID string, day time.Time, text string) (AppendResult, error) {
	lines := SplitEntryLines(text)
	if len(lines) == 0 {
		return AppendResult{}, fmt.Errorf("entry text is required")
	}
	doc, err := l.store.Get(ctx, documentID)
	if err != nil {
		return AppendResult{}, err
	}
	pos := ResolvePosition(doc.Paragraphs, doc.Title, HeadingText(day))
	if pos.InsertAt <= 0 {
		return AppendResult{}, fmt.Errorf("insert position not resolvable for document %s", documentID)
	}
	requests := BuildAppendRequests(pos, day, lines)
	if err := l.store.BatchUpdate(ctx, documentID, requests); err != nil {
		return AppendResult{}, err
	}
	return AppendResult{Day: truncateToDay(day), NewGroup: pos.NeedsHeading, Lines: lines}, nil
}

// Undo removes the most recently appended entry across the whole document
// and returns its record. ok is false when the document holds no entries;
// that is a defined empty state, not an error. An emptied day heading is
// left in place.
func (l *Log) Undo(ctx context.Context, documentID string) (Record, bool, error) {
	doc, err := l.store.Get(ctx, documentID)
	if err != nil {
		return Record{}, false, err
	}
	var (
		last      docstore.Paragraph
		lastBlock Block
		lastDay   time.Time
		found     bool
		day       time.Time
	)
	// Forward scan remembering the last bullet; the paragraph stream has no
	// reverse random access.
	for _, p := range doc.Paragraphs {
		switch b := ParseBlock(p.Text); b.Kind {
		case KindHeading:
			day = b.Day
		case KindBullet:
			last = p
			lastBlock = b
			lastDay = day
			found = true
		}
	}
	if !found {
		return Record{}, false, nil
	}
	requests := []docstore.Request{docstore.DeleteRange(last.StartIndex, last.EndIndex)}
	if err := l.store.BatchUpdate(ctx, documentID, requests); err != nil {
		return Record{}, false, err
	}
	return Record{Day: lastDay, Text: lastBlock.Text}, true, nil
}

// Search returns all records whose text contains the keyword,
// case-insensitive, in document order.
func (l *Log) Search(ctx context.Context, documentID, keyword string) ([]Record, error) {
	if strings.TrimSpace(keyword) == "" {
		return nil, fmt.Errorf("keyword is required")
	}
	doc, err := l.store.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return FilterKeyword(Extract(doc.Paragraphs), keyword), nil
}

// Range returns all records whose day falls within [start, end] inclusive,
// in document order.
func (l *Log) Range(ctx context.Context, documentID string, start, end time.Time) ([]Record, error) {
	doc, err := l.store.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return FilterRange(Extract(doc.Paragraphs), start, end), nil
}
