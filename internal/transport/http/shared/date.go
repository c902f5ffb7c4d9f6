package shared

import (
	"net/http"
	"strings"
	"time"
)

// ParseDate accepts RFC3339 or YYYY-MM-DD.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	return time.Parse("2006-01-02", value)
}

// QueryDate reads a date query parameter, returning fallback when it is absent.
// ok is false only when the parameter is present and malformed.
func QueryDate(r *http.Request, name string, fallback time.Time) (time.Time, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback, true
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}
