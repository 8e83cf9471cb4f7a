package schedule

import "testing"

func TestRender_Empty(t *testing.T) {
	if got := Render(nil); got != NoSlotsMessage {
		t.Fatalf("got %q, want %q", got, NoSlotsMessage)
	}
}

func TestRender_GroupsByDate(t *testing.T) {
	slots := []Interval{
		span(2018, 11, 13, 9, 0, 2018, 11, 13, 10, 0),
		span(2018, 11, 13, 11, 0, 2018, 11, 13, 18, 0),
		day(2018, 11, 14),
	}
	want := "13/11/2018:\n" +
		"09:00 - 10:00\n" +
		"11:00 - 18:00\n" +
		"14/11/2018:\n" +
		"09:00 - 18:00"
	if got := Render(slots); got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

// Render keeps the order it is given; an unsorted list repeats headers.
// FreeSlots sorts, so this only matters for callers building their own list.
func TestRender_KeepsInputOrder(t *testing.T) {
	slots := []Interval{
		span(2018, 11, 13, 9, 0, 2018, 11, 13, 10, 0),
		day(2018, 11, 14),
		span(2018, 11, 13, 11, 0, 2018, 11, 13, 18, 0),
	}
	want := "13/11/2018:\n09:00 - 10:00\n" +
		"14/11/2018:\n09:00 - 18:00\n" +
		"13/11/2018:\n11:00 - 18:00"
	if got := Render(slots); got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestRender_FreeSlotsOutput(t *testing.T) {
	rng, err := Resolve("in 5 days", refNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	booked := []Interval{span(2018, 11, 13, 12, 30, 2018, 11, 13, 13, 15)}
	want := "13/11/2018:\n09:00 - 12:30\n13:15 - 18:00"
	if got := Render(FreeSlots(rng, booked)); got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}
