package schedule

import (
	"fmt"
	"strings"
)

const NoSlotsMessage = "No free slots in this period."

// Render lists slots as "HH:MM - HH:MM" lines under a "DD/MM/YYYY:" header
// that is repeated whenever the date changes. Slots are written in the
// order given; FreeSlots already returns them sorted.
func Render(slots []Interval) string {
	if len(slots) == 0 {
		return NoSlotsMessage
	}

	var b strings.Builder
	var lastDate string
	for i, s := range slots {
		if date := FormatDate(s.Start); date != lastDate {
			if i > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(date)
			b.WriteByte(':')
			lastDate = date
		}
		fmt.Fprintf(&b, "\n%s - %s", FormatClock(s.Start), FormatClock(s.End))
	}
	return b.String()
}
