// Package period converts SDMX time-period strings into calendar dates.
// Providers report observation times as reporting periods (annual, semester,
// quarter, month, or week); each is resolved to a concrete date so results
// can be compared and sorted across frequencies.
package period

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Period-end suffixes for semester and quarter reporting periods.
var periodEnd = map[string]string{
	"S1": "-06-30",
	"S2": "-12-31",
	"Q1": "-03-31",
	"Q2": "-06-30",
	"Q3": "-09-30",
	"Q4": "-12-31",
}

// Parse resolves an SDMX time period to a date. Annual, semester, and quarter
// periods resolve to the period's last day; weekly periods to the week's
// Monday; monthly periods to the month's last day. Full ISO dates pass
// through unchanged.
func Parse(s string) (time.Time, error) {
	parts := strings.Split(s, "-")
	switch len(parts) {
	case 1:
		year, err := strconv.Atoi(parts[0])
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid time period %q", s)
		}
		return time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC), nil
	case 2:
		return parseTwoPart(s, parts[0], parts[1])
	default:
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid time period %q", s)
		}
		return t, nil
	}
}

func parseTwoPart(s, yearPart, tail string) (time.Time, error) {
	year, err := strconv.Atoi(yearPart)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time period %q", s)
	}

	if suffix, ok := periodEnd[tail]; ok {
		t, err := time.Parse("2006-01-02", yearPart+suffix)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid time period %q", s)
		}
		return t, nil
	}

	if strings.HasPrefix(tail, "W") {
		week, err := strconv.Atoi(strings.TrimPrefix(tail, "W"))
		if err != nil || week < 1 || week > 53 {
			return time.Time{}, fmt.Errorf("invalid time period %q", s)
		}
		return weekMonday(year, week), nil
	}

	month, err := strconv.Atoi(tail)
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("invalid time period %q", s)
	}
	// Last day of the month: day zero of the following month.
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC), nil
}

// weekMonday returns the Monday of the given week, counting week 1 from the
// year's first Monday.
func weekMonday(year, week int) time.Time {
	jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	offset := (8 - int(jan1.Weekday())) % 7
	firstMonday := jan1.AddDate(0, 0, offset)
	return firstMonday.AddDate(0, 0, (week-1)*7)
}
