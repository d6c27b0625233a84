package daylog

import (
	"context"
	"strings"
	"testing"

	"github.com/kavisanghavi/logline/internal/docstore"
)

// fakeStore holds the document body as a flat string and really applies
// batches, so read-resolve-write cycles behave like the external store.
// Character offsets are 1-based: index 1 addresses the first body byte.
type fakeStore struct {
	title     string
	body      string
	getErr    error
	updateErr error
	batches   [][]docstore.Request
}

func newFakeStore(title, body string) *fakeStore {
	return &fakeStore{title: title, body: body}
}

func (s *fakeStore) Get(ctx context.Context, documentID string) (*docstore.Document, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return &docstore.Document{
		DocumentID: documentID,
		Title:      s.title,
		Paragraphs: splitParagraphs(s.body),
	}, nil
}

func (s *fakeStore) BatchUpdate(ctx context.Context, documentID string, requests []docstore.Request) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.batches = append(s.batches, requests)
	for _, req := range requests {
		switch {
		case req.InsertText != nil:
			i := int(req.InsertText.Location.Index) - 1
			s.body = s.body[:i] + req.InsertText.Text + s.body[i:]
		case req.DeleteContentRange != nil:
			start := int(req.DeleteContentRange.Range.StartIndex) - 1
			end := int(req.DeleteContentRange.Range.EndIndex) - 1
			s.body = s.body[:start] + s.body[end:]
		}
	}
	return nil
}

func splitParagraphs(body string) []docstore.Paragraph {
	var out []docstore.Paragraph
	offset := int64(1)
	for len(body) > 0 {
		n := strings.IndexByte(body, '\n')
		var chunk string
		if n < 0 {
			chunk = body
			body = ""
		} else {
			chunk = body[:n+1]
			body = body[n+1:]
		}
		out = append(out, docstore.Paragraph{
			Text:       chunk,
			StartIndex: offset,
			EndIndex:   offset + int64(len(chunk)),
		})
		offset += int64(len(chunk))
	}
	return out
}

func mustLog(t *testing.T, store Store) *Log {
	t.Helper()
	log, err := NewLog(LogOptions{Store: store})
	if err != nil {
		t.Fatalf("NewLog() error = %v", err)
	}
	return log
}
