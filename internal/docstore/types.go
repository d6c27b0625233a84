package docstore

// Paragraph is one structural block of a document. Offsets are character
// indices into the document body; EndIndex points just past the paragraph's
// trailing newline.
type Paragraph struct {
	Text       string
	StartIndex int64
	EndIndex   int64
}

// Document is a read snapshot of an externally stored document. Mutation
// happens only through BatchUpdate; the snapshot is never patched locally.
type Document struct {
	DocumentID string
	Title      string
	Paragraphs []Paragraph
}

// EndOfBody returns the offset just past the last paragraph, or 0 when the
// body is empty.
func (d *Document) EndOfBody() int64 {
	if d == nil || len(d.Paragraphs) == 0 {
		return 0
	}
	return d.Paragraphs[len(d.Paragraphs)-1].EndIndex
}

// Request is one mutation in a batch. Exactly one field is set.
type Request struct {
	InsertText         *InsertTextRequest         `json:"insertText,omitempty"`
	DeleteContentRange *DeleteContentRangeRequest `json:"deleteContentRange,omitempty"`
}

type InsertTextRequest struct {
	Location Location `json:"location"`
	Text     string   `json:"text"`
}

type DeleteContentRangeRequest struct {
	Range Range `json:"range"`
}

type Location struct {
	Index int64 `json:"index"`
}

// Range is a half-open character range [StartIndex, EndIndex).
type Range struct {
	StartIndex int64 `json:"startIndex"`
	EndIndex   int64 `json:"endIndex"`
}

// InsertText builds an insert request at the given offset.
func InsertText(index int64, text string) Request {
	return Request{InsertText: &InsertTextRequest{Location: Location{Index: index}, Text: text}}
}

// DeleteRange builds a delete request for [start, end).
func DeleteRange(start, end int64) Request {
	return Request{DeleteContentRange: &DeleteContentRangeRequest{Range: Range{StartIndex: start, EndIndex: end}}}
}
