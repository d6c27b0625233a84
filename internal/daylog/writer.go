package daylog

import (
	"strings"
	"time"

	"github.com/kavisanghavi/logline/internal/docstore"
)

// SplitEntryLines breaks raw entry text into individual bullet lines.
// Newlines always split; a single line also splits on semicolons so a
// message like "fixed auth; reviewed PR" becomes two entries.
func SplitEntryLines(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	parts := strings.Split(text, "\n")
	if len(parts) == 1 {
		parts = strings.Split(text, ";")
	}
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		line := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(part), bulletMarker+" "))
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

// BuildAppendRequests renders the batch that writes the given lines at the
// resolved position. With NeedsHeading the inserted text opens a new day
// section; otherwise the bullets land as the last lines of the existing
// group. Everything goes into a single insert so the update applies whole
// or not at all.
func BuildAppendRequests(pos Position, day time.Time, lines []string) []docstore.Request {
	if len(lines) == 0 {
		return nil
	}
	var sb strings.Builder
	if pos.NeedsHeading {
		sb.WriteString("\n")
		sb.WriteString(HeadingLine(day))
		sb.WriteString("\n")
	}
	for _, line := range lines {
		sb.WriteString(bulletLine(line))
	}
	return []docstore.Request{docstore.InsertText(pos.InsertAt, sb.String())}
}
