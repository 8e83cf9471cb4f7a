package schedule

import (
	"fmt"
	"time"
)

// Bookable window of every calendar day, in hours.
const (
	WorkdayStart = 9
	WorkdayEnd   = 18
)

const (
	dateLayout  = "02/01/2006"
	clockLayout = "15:04"
)

// Interval is a span between two instants with minute resolution.
// Coarse intervals cover whole days snapped to working hours, precise
// intervals are single appointment slots.
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval truncates both ends to the minute and rejects empty or
// inverted spans.
func NewInterval(start, end time.Time) (Interval, error) {
	iv := Interval{Start: truncate(start), End: truncate(end)}
	if !iv.Valid() {
		return Interval{}, fmt.Errorf("%w: %s", ErrInverted, iv)
	}
	return iv, nil
}

// Day returns the working-hours window of the calendar day containing t.
func Day(t time.Time) Interval {
	return Interval{Start: At(t, WorkdayStart, 0), End: At(t, WorkdayEnd, 0)}
}

// Days spans from the opening of first to the close of last.
func Days(first, last time.Time) Interval {
	return Interval{Start: At(first, WorkdayStart, 0), End: At(last, WorkdayEnd, 0)}
}

// At returns hour:minute on the calendar day of t, in t's location.
func At(t time.Time, hour, minute int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), hour, minute, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func FormatDate(t time.Time) string  { return t.Format(dateLayout) }
func FormatClock(t time.Time) string { return t.Format(clockLayout) }

func (iv Interval) Valid() bool { return iv.Start.Before(iv.End) }

func (iv Interval) Duration() time.Duration { return iv.End.Sub(iv.Start) }

// Contains reports whether t lies in [Start, End).
func (iv Interval) Contains(t time.Time) bool {
	return !t.Before(iv.Start) && t.Before(iv.End)
}

// ContainsInterval reports whether o lies entirely within iv.
func (iv Interval) ContainsInterval(o Interval) bool {
	return !o.Start.Before(iv.Start) && !o.End.After(iv.End)
}

// Overlaps treats both intervals as half-open, so back-to-back spans do
// not overlap.
func (iv Interval) Overlaps(o Interval) bool {
	return iv.Start.Before(o.End) && o.Start.Before(iv.End)
}

func (iv Interval) Equal(o Interval) bool {
	return iv.Start.Equal(o.Start) && iv.End.Equal(o.End)
}

// Intersect returns the common part of iv and o, if any.
func (iv Interval) Intersect(o Interval) (Interval, bool) {
	out := iv
	if o.Start.After(out.Start) {
		out.Start = o.Start
	}
	if o.End.Before(out.End) {
		out.End = o.End
	}
	return out, out.Valid()
}

func (iv Interval) String() string {
	if SameDay(iv.Start, iv.End) {
		return fmt.Sprintf("%s %s - %s", FormatDate(iv.Start), FormatClock(iv.Start), FormatClock(iv.End))
	}
	return fmt.Sprintf("%s %s - %s %s",
		FormatDate(iv.Start), FormatClock(iv.Start), FormatDate(iv.End), FormatClock(iv.End))
}

func truncate(t time.Time) time.Time {
	return At(t, t.Hour(), t.Minute())
}

func addDays(t time.Time, n int) time.Time { return t.AddDate(0, 0, n) }

func startOfDay(t time.Time) time.Time { return At(t, 0, 0) }
