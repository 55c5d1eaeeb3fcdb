package commerce

import (
	"strings"
	"time"
)

// DateLayout is the calendar key used by every daily bucket.
const DateLayout = "2006-01-02"

var zonedLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04Z07:00"}

var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	DateLayout,
}

// ParseTimestamp resolves an ISO-8601 timestamp into loc. Timestamps without
// an offset are read as wall time in loc. The second result is false when the
// value cannot be parsed; such orders drop out of every date filter.
func ParseTimestamp(raw string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.In(loc), true
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DateKey returns the YYYY-MM-DD prefix of a raw timestamp, or "" when the
// value is too short to carry one.
func DateKey(raw string) string {
	if len(raw) < len(DateLayout) {
		return ""
	}
	return raw[:len(DateLayout)]
}
