package daylog

import (
	"strings"
	"time"
)

const (
	headingMarker = "##"
	bulletMarker  = "-"

	// Insertion offset of last resort for documents with no title and no
	// recognizable content. Offset 0 could corrupt a title the snapshot
	// failed to surface, so the body's first writable index is used.
	minimalInsertIndex = 1
)

// BlockKind classifies one document paragraph.
type BlockKind int

const (
	// KindOther is any paragraph that is neither a day heading nor a bullet:
	// the title, blank separators, or free-form text the user typed in.
	KindOther BlockKind = iota
	KindHeading
	KindBullet
)

// Block is the parsed form of one paragraph.
type Block struct {
	Kind BlockKind
	Day  time.Time // set for KindHeading
	Text string    // set for KindBullet, bullet marker stripped and trimmed
}

// ParseBlock classifies a paragraph's text. Classification is structural
// (marker plus vocabulary), not a bare substring probe, so a bullet whose
// text happens to mention a date never reads as a heading.
func ParseBlock(text string) Block {
	line := strings.TrimRight(text, "\n")
	trimmed := strings.TrimSpace(line)
	if rest, ok := strings.CutPrefix(trimmed, headingMarker+" "); ok {
		if day, ok := ParseHeadingDate(rest); ok {
			return Block{Kind: KindHeading, Day: day}
		}
		return Block{Kind: KindOther}
	}
	if rest, ok := strings.CutPrefix(trimmed, bulletMarker+" "); ok {
		return Block{Kind: KindBullet, Text: strings.TrimSpace(rest)}
	}
	return Block{Kind: KindOther}
}

// HeadingLine renders the full heading paragraph for a calendar day.
func HeadingLine(day time.Time) string {
	return headingMarker + " " + HeadingText(day)
}

func bulletLine(text string) string {
	return bulletMarker + " " + strings.TrimSpace(text) + "\n"
}
