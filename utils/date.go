package utils

import "time"

// FormatTimestamp renders an optional instant as RFC 3339 in UTC, or "" when unset.
func FormatTimestamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
