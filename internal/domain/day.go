package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DayLayout is the canonical calendar-day key format.
const DayLayout = "2006-01-02"

// ErrInvalidTimestamp wraps every ParseTimestamp failure.
var ErrInvalidTimestamp = errors.New("invalid timestamp")

// epochRx matches epoch seconds or milliseconds with an optional fraction.
var epochRx = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// maxEpoch bounds epoch input so the millisecond conversion cannot overflow.
const maxEpoch = 1e16

// Zoned layouts first; the rest are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	StoredTimeLayout,
	"2006-01-02 15:04",
	DayLayout,
}

// FormatDay returns the UTC calendar day of t as YYYY-MM-DD.
func FormatDay(t time.Time) string {
	return t.UTC().Format(DayLayout)
}

// DayOfMillis is FormatDay for a millisecond epoch timestamp.
func DayOfMillis(ms int64) string {
	return FormatDay(time.UnixMilli(ms))
}

// ParseTimestamp accepts the timestamp forms the trends API and its clients
// produce: RFC3339, RFC1123, zone-less ISO or SQL datetimes (UTC), bare dates,
// and epoch seconds or milliseconds.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidTimestamp)
	}

	if epochRx.MatchString(s) {
		n, err := strconv.ParseFloat(s, 64)
		if err != nil || n >= maxEpoch {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
		}
		if n > 1e12 {
			return time.UnixMilli(int64(n)).UTC(), nil
		}
		sec := int64(n)
		nsec := int64((n - float64(sec)) * 1e9)
		return time.Unix(sec, nsec).UTC(), nil
	}

	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
}
