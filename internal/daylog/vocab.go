package daylog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// The day-name and month-name vocabulary lives in one place so the heading
// formatter and the heading parser can never drift apart.

var monthByName = map[string]time.Month{
	"January":   time.January,
	"February":  time.February,
	"March":     time.March,
	"April":     time.April,
	"May":       time.May,
	"June":      time.June,
	"July":      time.July,
	"August":    time.August,
	"September": time.September,
	"October":   time.October,
	"November":  time.November,
	"December":  time.December,
}

var dayNames = map[string]bool{
	"Monday":    true,
	"Tuesday":   true,
	"Wednesday": true,
	"Thursday":  true,
	"Friday":    true,
	"Saturday":  true,
	"Sunday":    true,
}

var headingDatePattern = regexp.MustCompile(`^([A-Z][a-z]+), ([A-Z][a-z]+) (\d{1,2})(st|nd|rd|th), (\d{4})$`)

// HeadingText renders a calendar day in the canonical heading form,
// e.g. "Tuesday, December 31st, 2024".
func HeadingText(day time.Time) string {
	return fmt.Sprintf("%s, %s %d%s, %d",
		day.Weekday().String(),
		day.Month().String(),
		day.Day(),
		ordinalSuffix(day.Day()),
		day.Year(),
	)
}

// ParseHeadingDate parses the canonical heading form back into a calendar
// date (midnight UTC). The day name is not cross-checked against the date:
// documents are user-edited and a stale weekday should not hide entries.
func ParseHeadingDate(text string) (time.Time, bool) {
	m := headingDatePattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return time.Time{}, false
	}
	if !dayNames[m[1]] {
		return time.Time{}, false
	}
	month, ok := monthByName[m[2]]
	if !ok {
		return time.Time{}, false
	}
	dayOfMonth, err := strconv.Atoi(m[3])
	if err != nil || dayOfMonth < 1 || dayOfMonth > 31 {
		return time.Time{}, false
	}
	if ordinalSuffix(dayOfMonth) != m[4] {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(m[5])
	if err != nil {
		return time.Time{}, false
	}
	date := time.Date(year, month, dayOfMonth, 0, 0, 0, 0, time.UTC)
	if date.Day() != dayOfMonth || date.Month() != month {
		return time.Time{}, false
	}
	return date, true
}

func ordinalSuffix(n int) string {
	if n%100 >= 11 && n%100 <= 13 {
		return "th"
	}
	switch n % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}
