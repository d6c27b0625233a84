package daylog

import (
	"strings"

	"github.com/kavisanghavi/logline/internal/docstore"
)

// Position is the resolver's verdict: where the next entry goes and whether
// a new day heading must be written first.
type Position struct {
	InsertAt     int64
	NeedsHeading bool
}

// ResolvePosition computes where an entry for the day rendered as
// headingText belongs inside the given document snapshot.
//
// The target heading is matched by exact substring against each paragraph,
// case-sensitive, in the canonical rendering. The generic day-heading
// pattern is used only to detect the end of the matched group. When no
// group for the day exists, the new section trails the whole body so prior
// days are never disturbed; a body with nothing in it degrades to the slot
// just after the title paragraph, then to a constant fallback.
//
// Pure function over the snapshot; no side effects.
func ResolvePosition(paragraphs []docstore.Paragraph, title, headingText string) Position {
	title = strings.TrimSpace(title)

	var (
		inGroup  bool
		groupEnd int64
		titleEnd int64
		lastEnd  int64
	)
	for _, p := range paragraphs {
		if inGroup {
			if b := ParseBlock(p.Text); b.Kind == KindHeading {
				return Position{InsertAt: groupEnd, NeedsHeading: false}
			}
			groupEnd = p.EndIndex
			continue
		}
		if strings.Contains(p.Text, headingText) {
			inGroup = true
			groupEnd = p.EndIndex
			continue
		}
		if titleEnd == 0 && title != "" && strings.Contains(p.Text, title) {
			titleEnd = p.EndIndex
		}
		if strings.TrimSpace(p.Text) != "" {
			lastEnd = p.EndIndex
		}
	}
	if inGroup {
		return Position{InsertAt: groupEnd, NeedsHeading: false}
	}
	if lastEnd > 0 {
		return Position{InsertAt: lastEnd, NeedsHeading: true}
	}
	if titleEnd > 0 {
		return Position{InsertAt: titleEnd, NeedsHeading: true}
	}
	return Position{InsertAt: minimalInsertIndex, NeedsHeading: true}
}
