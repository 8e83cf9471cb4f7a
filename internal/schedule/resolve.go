package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	datePattern  = regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4})$`)
	countPattern = regexp.MustCompile(`^\d{1,4}$`)
)

// weekdayIndex maps accepted weekday spellings to their offset from Monday.
var weekdayIndex = func() map[string]int {
	names := []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	m := make(map[string]int, len(names)*4)
	for i, name := range names {
		short := name[:3]
		m[name] = i
		m[strings.ToLower(name)] = i
		m[short] = i
		m[strings.ToLower(short)] = i
	}
	return m
}()

// Resolve turns a date expression such as "tomorrow", "in 5 days",
// "next Friday" or "13/12/2018" into a coarse interval relative to now.
// Weeks start on Monday. Every boundary is snapped to working hours.
func Resolve(expression string, now time.Time) (Interval, error) {
	phrase := strings.TrimSpace(expression)
	now = truncate(now)

	switch phrase {
	case "tomorrow", "tmr":
		return Day(addDays(now, 1)), nil
	case "the day after tomorrow", "the day after tmr":
		return Day(addDays(now, 2)), nil
	case "recently", "soon", "in a few days":
		return Days(addDays(now, 1), addDays(now, 7)), nil
	}

	tokens := strings.Split(phrase, " ")
	switch len(tokens) {
	case 1:
		if day, err := parseDate(tokens[0], now.Location()); err == nil {
			return Day(day), nil
		}
	case 2:
		if iv, ok := resolveRelative(tokens[0], tokens[1], now); ok {
			return iv, nil
		}
	case 3:
		if iv, ok := resolveCount(tokens[0], tokens[1], tokens[2], now); ok {
			return iv, nil
		}
	}
	return Interval{}, fmt.Errorf("%w: %q", ErrInvalidFormat, expression)
}

// resolveRelative handles "this|next week|month|<weekday>".
func resolveRelative(which, unit string, now time.Time) (Interval, bool) {
	var offset int
	switch which {
	case "this":
	case "next":
		offset = 1
	default:
		return Interval{}, false
	}

	switch unit {
	case "week":
		return weekOf(addDays(now, 7*offset)), true
	case "month":
		return monthOf(now, offset), true
	}
	idx, ok := weekdayIndex[unit]
	if !ok {
		return Interval{}, false
	}
	monday := addDays(now, 7*offset-mondayOffset(now))
	return Day(addDays(monday, idx)), true
}

// resolveCount handles "in <N> day(s)|week(s)|month(s)".
func resolveCount(in, count, unit string, now time.Time) (Interval, bool) {
	if in != "in" || !countPattern.MatchString(count) {
		return Interval{}, false
	}
	n, err := strconv.Atoi(count)
	if err != nil {
		return Interval{}, false
	}

	switch unit {
	case "day", "days":
		return Day(addDays(now, n)), true
	case "week", "weeks":
		return weekOf(addDays(now, 7*n)), true
	case "month", "months":
		return monthOf(now, n), true
	}
	return Interval{}, false
}

func weekOf(t time.Time) Interval {
	monday := addDays(t, -mondayOffset(t))
	return Days(monday, addDays(monday, 6))
}

func monthOf(now time.Time, offset int) Interval {
	first := time.Date(now.Year(), now.Month()+time.Month(offset), 1, 0, 0, 0, 0, now.Location())
	last := time.Date(first.Year(), first.Month()+1, 0, 0, 0, 0, 0, now.Location())
	return Days(first, last)
}

func mondayOffset(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// ParseDate parses a zero-padded DD/MM/YYYY date in the local zone.
func ParseDate(s string) (time.Time, error) {
	day, err := parseDate(s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrBadDate, err)
	}
	return day, nil
}

func parseDate(s string, loc *time.Location) (time.Time, error) {
	m := datePattern.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, fmt.Errorf("%q is not DD/MM/YYYY", s)
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])

	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("month %d out of range in %q", month, s)
	}
	if day < 1 || day > daysIn(year, time.Month(month)) {
		return time.Time{}, fmt.Errorf("day %d out of range in %q", day, s)
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc), nil
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
