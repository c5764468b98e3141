package utils

import "time"

// FormatTimestamp renders t in UTC for report headers.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04 MST")
}
