package history

import (
	"regexp"
	"strings"
	"time"
)

// The upstream's most common timestamp shape: date and time joined by a
// space or a T, seconds optional, no zone. Interpreted as UTC, never as
// local time.
var plainStampRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[ T]\d{2}:\d{2}(:\d{2})?$`)

// Layouts tried for anything else before giving up.
var fallbackLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05 -0700",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
	time.UnixDate,
}

// ParseTime resolves a raw timestamp value to an instant. Numbers are
// epoch milliseconds. Failure is explicit: ok is false and callers must
// not use the zero time (rows without a valid instant are dropped, never
// defaulted to "now").
func ParseTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case float64:
		return time.UnixMilli(int64(t)).UTC(), true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		if plainStampRe.MatchString(s) {
			s = strings.Replace(s, "T", " ", 1)
			layout := "2006-01-02 15:04"
			if strings.Count(s, ":") == 2 {
				layout = "2006-01-02 15:04:05"
			}
			parsed, err := time.Parse(layout, s)
			if err != nil {
				return time.Time{}, false
			}
			return parsed.UTC(), true
		}
		for _, layout := range fallbackLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed.UTC(), true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}
