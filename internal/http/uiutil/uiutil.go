package uiutil

import (
	"strings"
	"time"
)

const (
	FriendlyDateTimeLayout = "Jan 2, 2006 3:04 PM"
	FriendlyDateLayout     = "Jan 2, 2006"
)

// timestampLayouts lists the formats the check-in API uses for date strings.
var timestampLayouts = []string{ //nolint:gochecknoglobals // read-only
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// ParseTimestamp parses an API date string. ok is false for empty or unknown formats.
func ParseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatFriendlyDateTime returns a consistent, user-friendly local timestamp representation.
func FormatFriendlyDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(FriendlyDateTimeLayout)
}

// FriendlyDate formats an API date string for display, falling back to the raw value.
// Date-only values are shown without a time of day.
func FriendlyDate(raw string) string {
	t, ok := ParseTimestamp(raw)
	if !ok {
		return strings.TrimSpace(raw)
	}
	if len(strings.TrimSpace(raw)) == len(time.DateOnly) {
		return t.Format(FriendlyDateLayout)
	}
	return FormatFriendlyDateTime(t)
}
