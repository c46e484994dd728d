package filter

import "time"

// DateFormatter renders an instant as a SQL literal body (without quotes).
type DateFormatter func(time.Time) string

// FormatDate renders the calendar date of t in t's location.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// FormatTimestamp renders t in UTC as YYYY-MM-DD HH:mm:ss.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05")
}
