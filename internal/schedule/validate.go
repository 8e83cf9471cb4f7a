package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var clockPattern = regexp.MustCompile(`^(\d{2}):(\d{2})$`)

// Validate parses a "DD/MM/YYYY hh:mm - hh:mm" slot and checks it against
// the existing bookings.
func Validate(input string, booked []Interval) (Interval, error) {
	slot, err := ParseSlot(input)
	if err != nil {
		return Interval{}, err
	}
	if err := CheckClash(slot, booked); err != nil {
		return Interval{}, err
	}
	return slot, nil
}

// ParseSlot parses a precise slot and enforces working hours and ordering.
// It does not look at other bookings.
func ParseSlot(input string) (Interval, error) {
	tokens := strings.Fields(input)
	if len(tokens) != 4 || tokens[2] != "-" {
		return Interval{}, fmt.Errorf("%w: got %q", ErrSlotFormat, input)
	}

	day, err := ParseDate(tokens[0])
	if err != nil {
		return Interval{}, err
	}
	startHour, startMinute, err := parseClock(tokens[1])
	if err != nil {
		return Interval{}, err
	}
	endHour, endMinute, err := parseClock(tokens[3])
	if err != nil {
		return Interval{}, err
	}

	slot := Interval{
		Start: At(day, startHour, startMinute),
		End:   At(day, endHour, endMinute),
	}
	if !slot.Valid() {
		return Interval{}, fmt.Errorf("%w: %s to %s", ErrInverted, tokens[1], tokens[3])
	}
	return slot, nil
}

// parseClock accepts zero-padded HH:MM inside working hours; the closing
// hour is only valid on the hour.
func parseClock(s string) (hour, minute int, err error) {
	m := clockPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, fmt.Errorf("%w: %q is not HH:MM", ErrBadTime, s)
	}
	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])

	switch {
	case hour < WorkdayStart || hour > WorkdayEnd:
		return 0, 0, fmt.Errorf("%w: hour %02d", ErrBadTime, hour)
	case minute > 59:
		return 0, 0, fmt.Errorf("%w: minute %02d", ErrBadTime, minute)
	case hour == WorkdayEnd && minute != 0:
		return 0, 0, fmt.Errorf("%w: %s is after closing", ErrBadTime, s)
	}
	return hour, minute, nil
}

// CheckClash reports ErrClash when slot starts together with a booking or
// when either start falls strictly inside the other span.
func CheckClash(slot Interval, booked []Interval) error {
	for _, b := range booked {
		if clashes(slot, b) {
			return fmt.Errorf("%w: %s overlaps %s", ErrClash, slot, b)
		}
	}
	return nil
}

func clashes(a, b Interval) bool {
	return a.Start.Equal(b.Start) || strictlyInside(a.Start, b) || strictlyInside(b.Start, a)
}

func strictlyInside(t time.Time, iv Interval) bool {
	return t.After(iv.Start) && t.Before(iv.End)
}
