package utils

import (
	"fmt"
	"strconv"
	"time"
)

// IsValidInterval reports whether interval names a ClickHouse toStartOf*
// bucket function.
func IsValidInterval(interval string) bool {
	switch interval {
	case "Minute", "Hour", "Day", "Week", "Month", "Quarter", "Year":
		return true
	default:
		return false
	}
}

// DefaultLookback is the time range used when a query has no start.
const DefaultLookback = 7 * 24 * time.Hour

// ParseTimeRange parses optional RFC3339 start/end values. A missing end is
// now; a missing start is DefaultLookback before end.
func ParseTimeRange(startParam, endParam string, now time.Time) (start, end time.Time, err error) {
	end = now.UTC()
	if endParam != "" {
		end, err = time.Parse(time.RFC3339, endParam)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid 'end' timestamp format. Use RFC3339 (e.g., 2006-01-02T15:04:05Z)")
		}
	}

	start = end.Add(-DefaultLookback)
	if startParam != "" {
		start, err = time.Parse(time.RFC3339, startParam)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid 'start' timestamp format. Use RFC3339 (e.g., 2006-01-02T15:04:05Z)")
		}
	}

	if start.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("'start' must not be after 'end'")
	}
	return start, end, nil
}

// ParsePositiveInt parses an optional positive integer, returning def when
// the value is empty.
func ParsePositiveInt(value string, def int) (int, error) {
	if value == "" {
		return def, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("must be a positive integer, got %q", value)
	}
	return n, nil
}
