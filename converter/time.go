package converter

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// timeLayouts are tried in order by ParseTime.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func ToUnixTime(t ...time.Time) int64 {
	if len(t) == 0 {
		return time.Now().Unix()
	}
	return t[0].Unix()
}

func FromUnixTime(unixTimestamp int64) (time.Time, error) {
	if unixTimestamp < 0 {
		return time.Time{}, errors.New("invalid Unix timestamp, must be non-negative")
	}
	return time.Unix(unixTimestamp, 0), nil
}

// ParseTime accepts RFC 3339 timestamps, "YYYY-MM-DD hh:mm:ss" and plain dates.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time format: %s", s)
}

// FormatTime renders midnight values as a date and anything else as RFC 3339.
func FormatTime(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format(time.RFC3339Nano)
}
