package normalize

import (
	"fmt"
	"time"
)

// Clock12 renders a 24-hour clock time as "h:MM AM/PM", the format used for
// sunrise/sunset strings across adapters.
func Clock12(hour, minute int) string {
	ampm := "AM"
	if hour >= 12 {
		ampm = "PM"
	}
	h := hour % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:%02d %s", h, minute, ampm)
}

// ClockFromTime formats a time.Time via Clock12.
func ClockFromTime(t time.Time) string {
	return Clock12(t.Hour(), t.Minute())
}

// ClockFromISO parses an ISO-8601 local datetime such as "2024-01-15T06:45"
// and formats it via Clock12. Unparseable input yields an empty string, the
// documented sentinel for a missing astronomy field.
func ClockFromISO(s string) string {
	if s == "" {
		return ""
	}
	for _, layout := range []string{"2006-01-02T15:04", time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return ClockFromTime(t)
		}
	}
	return ""
}
