package utils

import "time"

// FormatTimestamp renders t in UTC as RFC3339 with milliseconds
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

// ParseTimestamp parses a time written by FormatTimestamp or any RFC3339 value
func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
