package refine

import (
	"context"
	"fmt"
	"strings"
)

// LocalCleanup is the deterministic fallback transform: whitespace
// normalization, bullet-marker stripping, and comma/semicolon line
// splitting. It never calls out and never fails on non-empty input.
type LocalCleanup struct{}

func (LocalCleanup) Refine(_ context.Context, text string) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("text is required")
	}
	var parts []string
	for _, line := range strings.Split(text, "\n") {
		line = stripBulletMarker(line)
		if line == "" {
			continue
		}
		if pieces := splitListSeparators(line); len(pieces) > 1 {
			parts = append(parts, pieces...)
			continue
		}
		parts = append(parts, line)
	}
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = collapseWhitespace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("text is required")
	}
	return out, nil
}

func stripBulletMarker(line string) string {
	line = strings.TrimSpace(line)
	for _, marker := range []string{"- ", "* ", "• "} {
		if rest, ok := strings.CutPrefix(line, marker); ok {
			return strings.TrimSpace(rest)
		}
	}
	return line
}

// splitListSeparators breaks "a; b, c" style enumerations into items.
// A comma only splits when every resulting item reads like a standalone
// clause (three or more words stay whole less often than short lists), so
// splitting is limited to semicolons plus commas with short items.
func splitListSeparators(line string) []string {
	items := splitAndTrim(line, ";")
	if len(items) > 1 {
		return items
	}
	items = splitAndTrim(line, ",")
	if len(items) <= 1 {
		return items
	}
	for _, item := range items {
		if len(strings.Fields(item)) > 4 {
			return []string{line}
		}
	}
	return items
}

func splitAndTrim(line, sep string) []string {
	var out []string
	for _, part := range strings.Split(line, sep) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
