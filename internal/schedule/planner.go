package schedule

import (
	"context"
	"fmt"
	"time"
)

// SlotPrompt follows the rendered free slots when asking for a choice.
const SlotPrompt = "Enter a slot as DD/MM/YYYY hh:mm - hh:mm"

// Prompter asks the user a question and blocks until it is answered.
// A cancellable question may come back with ErrCancelled.
type Prompter interface {
	Ask(ctx context.Context, prompt string, cancellable bool) (string, error)
}

// Calendar is the read side of the appointment store. Implementations
// must return a consistent snapshot for the duration of one call.
type Calendar interface {
	ListOverlapping(ctx context.Context, rng Interval) ([]Interval, error)
}

// Planner walks a user from a date expression to a validated slot.
type Planner struct {
	calendar Calendar
	prompter Prompter
	now      func() time.Time
}

func NewPlanner(calendar Calendar, prompter Prompter, now func() time.Time) *Planner {
	if now == nil {
		now = time.Now
	}
	return &Planner{
		calendar: calendar,
		prompter: prompter,
		now:      now,
	}
}

// Choose resolves expression, shows the free slots in that period and
// validates the slot the user picks. Nothing is retried: any invalid answer
// or a cancellation ends the attempt.
func (p *Planner) Choose(ctx context.Context, expression string) (Interval, error) {
	rng, err := Resolve(expression, p.now())
	if err != nil {
		return Interval{}, err
	}

	booked, err := p.calendar.ListOverlapping(ctx, rng)
	if err != nil {
		return Interval{}, fmt.Errorf("list bookings: %w", err)
	}
	slots := FreeSlots(rng, booked)
	if len(slots) == 0 {
		return Interval{}, fmt.Errorf("%w: %s", ErrNoFreeSlots, rng)
	}

	answer, err := p.prompter.Ask(ctx, Render(slots)+"\n"+SlotPrompt, true)
	if err != nil {
		return Interval{}, err
	}

	slot, err := ParseSlot(answer)
	if err != nil {
		return Interval{}, err
	}

	// The chosen slot may lie outside rng, so check against its own day.
	sameDay, err := p.calendar.ListOverlapping(ctx, Day(slot.Start))
	if err != nil {
		return Interval{}, fmt.Errorf("list bookings: %w", err)
	}
	if err := CheckClash(slot, sameDay); err != nil {
		return Interval{}, err
	}
	return slot, nil
}
