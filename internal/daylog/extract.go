package daylog

import (
	"strings"
	"time"

	"github.com/kavisanghavi/logline/internal/docstore"
)

// Record is one logged entry recovered from the document.
type Record struct {
	Day  time.Time
	Text string
}

// Extract walks the paragraphs in order and rebuilds the entry sequence.
// A heading updates the current-day context; a bullet emits a record under
// it. Bullets seen before any heading have no owning day and are skipped.
// Extraction reads a snapshot and is idempotent.
func Extract(paragraphs []docstore.Paragraph) []Record {
	var (
		out        []Record
		currentDay time.Time
		haveDay    bool
	)
	for _, p := range paragraphs {
		switch b := ParseBlock(p.Text); b.Kind {
		case KindHeading:
			currentDay = b.Day
			haveDay = true
		case KindBullet:
			if !haveDay {
				continue
			}
			out = append(out, Record{Day: currentDay, Text: b.Text})
		}
	}
	return out
}

// FilterRange keeps records whose day falls within [start, end], inclusive,
// compared at calendar-day granularity.
func FilterRange(records []Record, start, end time.Time) []Record {
	startDay := truncateToDay(start)
	endDay := truncateToDay(end)
	var out []Record
	for _, r := range records {
		day := truncateToDay(r.Day)
		if day.Before(startDay) || day.After(endDay) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// FilterKeyword keeps records whose text contains the keyword,
// case-insensitive.
func FilterKeyword(records []Record, keyword string) []Record {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return nil
	}
	var out []Record
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Text), keyword) {
			out = append(out, r)
		}
	}
	return out
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
