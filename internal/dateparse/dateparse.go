// ABOUTME: Lenient date/datetime parsing for answer validation.
// ABOUTME: Built on time.Parse plus a small relative-date resolver; no third-party date library appears anywhere in the retrieved corpus.
package dateparse

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout and DatetimeLayout are the normalized output formats a valid
// parse is stored under in Session.Answers.
const (
	DateLayout     = "2006-01-02"
	DatetimeLayout = "2006-01-02T15:04:05"
)

// dateLayouts are tried in order for a date-typed field.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	"January 2 2006",
	"2006-1-2",
}

// datetimeLayouts are tried in order for a datetime-typed field, before
// falling back to a bare date layout at midnight.
var datetimeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	time.RFC3339,
}

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday,
	"friday": time.Friday, "saturday": time.Saturday,
}

// Date parses text as a date, relative to now, and returns the normalized
// YYYY-MM-DD string. An unparseable value returns an error whose message is
// safe to fold into a guard's corrective text.
func Date(text string, now time.Time) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("dateparse: empty date")
	}
	if rel, ok := resolveRelative(text, now); ok {
		return rel.Format(DateLayout), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t.Format(DateLayout), nil
		}
	}
	return "", fmt.Errorf("dateparse: %q is not a recognizable date", text)
}

// Datetime parses text as a date+time, relative to now, and returns the
// normalized YYYY-MM-DDTHH:MM:SS string.
func Datetime(text string, now time.Time) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("dateparse: empty datetime")
	}
	if rel, ok := resolveRelative(text, now); ok {
		return rel.Format(DatetimeLayout), nil
	}
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t.Format(DatetimeLayout), nil
		}
	}
	if d, err := Date(text, now); err == nil {
		t, _ := time.Parse(DateLayout, d)
		return t.Format(DatetimeLayout), nil
	}
	return "", fmt.Errorf("dateparse: %q is not a recognizable datetime", text)
}

// resolveRelative handles "today", "tomorrow", "next <weekday>", and
// "in N days", each relative to now (truncated to midnight).
func resolveRelative(text string, now time.Time) (time.Time, bool) {
	lower := strings.ToLower(strings.TrimSpace(text))
	base := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch lower {
	case "today":
		return base, true
	case "tomorrow":
		return base.AddDate(0, 0, 1), true
	}

	if rest, ok := strings.CutPrefix(lower, "next "); ok {
		if wd, ok := weekdays[rest]; ok {
			return nextWeekday(base, wd), true
		}
	}

	if rest, ok := strings.CutPrefix(lower, "in "); ok {
		if days, ok := strings.CutSuffix(rest, " days"); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(days)); err == nil {
				return base.AddDate(0, 0, n), true
			}
		}
		if day, ok := strings.CutSuffix(rest, " day"); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(day)); err == nil {
				return base.AddDate(0, 0, n), true
			}
		}
	}

	return time.Time{}, false
}

func nextWeekday(from time.Time, target time.Weekday) time.Time {
	days := (int(target) - int(from.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return from.AddDate(0, 0, days)
}
