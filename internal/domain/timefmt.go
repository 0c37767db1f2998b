package domain

import (
	"strings"
	"time"
)

// Persisted layouts. Both sort lexically in chronological order as long as
// every timestamp is rendered in the same zone, which FormatTimestamp does.
const (
	TimestampLayout = "2006-01-02 15:04:05"
	DateLayout      = "2006-01-02"
)

// FormatTimestamp renders the instant t as local wall-clock time in the
// normalized timestamp form.
func FormatTimestamp(t time.Time) string {
	return t.In(time.Local).Format(TimestampLayout)
}

// FormatDate renders the calendar date of t as written by the caller; a date
// carries no instant to convert.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseTimestamp accepts the normalized timestamp form, a bare date, or
// RFC 3339 (what postgres drivers hand back for text columns written by
// other tools).
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(TimestampLayout, s, time.Local); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(DateLayout, s, time.Local); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// ParseDate accepts a bare date or anything ParseTimestamp accepts and
// truncates it to midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := ParseTimestamp(s)
	if err != nil {
		return time.Time{}, err
	}
	return StartOfDay(t), nil
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
