package schedule

import (
	"sort"
	"time"
)

// FreeSlots returns the working-hours gaps of rng not taken by booked, in
// chronological order. Only bookings lying entirely inside rng are
// considered. A day of rng without any booking yields one full-day slot.
func FreeSlots(rng Interval, booked []Interval) []Interval {
	var inside []Interval
	for _, b := range booked {
		if b.Valid() && rng.ContainsInterval(b) {
			inside = append(inside, b)
		}
	}
	sort.Slice(inside, func(i, j int) bool {
		return inside[i].Start.Before(inside[j].Start)
	})

	var free []Interval
	emit := func(start, end time.Time) {
		if gap, ok := rng.Intersect(Interval{Start: start, End: end}); ok {
			free = append(free, gap)
		}
	}

	// cursor is the latest booking end seen on the current day.
	var cursor time.Time
	for i, b := range inside {
		switch {
		case i == 0:
			emit(At(b.Start, WorkdayStart, 0), b.Start)
			cursor = b.End
			continue
		case SameDay(cursor, b.Start):
			emit(cursor, b.Start)
		default:
			emit(cursor, At(cursor, WorkdayEnd, 0))
			emit(At(b.Start, WorkdayStart, 0), b.Start)
			cursor = b.End
			continue
		}
		if b.End.After(cursor) {
			cursor = b.End
		}
	}
	if len(inside) > 0 {
		emit(cursor, At(cursor, WorkdayEnd, 0))
	}

	busy := make(map[int]bool, len(inside))
	for _, b := range inside {
		busy[dayKey(b.Start)] = true
	}
	for day := startOfDay(rng.Start); day.Before(rng.End); day = addDays(day, 1) {
		if busy[dayKey(day)] {
			continue
		}
		if window, ok := rng.Intersect(Day(day)); ok {
			free = append(free, window)
		}
	}

	sort.Slice(free, func(i, j int) bool {
		return free[i].Start.Before(free[j].Start)
	})
	return free
}

func dayKey(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}
