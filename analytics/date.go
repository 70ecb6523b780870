package analytics

import "time"

// FormatDate renders a timestamp in the wire format the analytics API expects
// for start_date/end_date parameters (YYYY-MM-DD, UTC).
func FormatDate(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}
