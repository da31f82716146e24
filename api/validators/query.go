package validators

import (
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/salonpos/salonpos-backend/pkg/errors"
)

// DateLayout is the calendar date format accepted on the wire.
const DateLayout = "2006-01-02"

// ParseDate parses a calendar date into midnight UTC.
func ParseDate(field, raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, pkgerrors.NewFieldError(field, "is required")
	}
	parsed, err := time.ParseInLocation(DateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, pkgerrors.WrapFieldError(field, err, "must be a date in YYYY-MM-DD format")
	}
	return parsed, nil
}

// ParseQueryDate reads a date query parameter, falling back to today's UTC date when absent.
func ParseQueryDate(r *http.Request, key string, now time.Time) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		y, m, d := now.UTC().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	return ParseDate(key, raw)
}
