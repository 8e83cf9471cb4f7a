package schedule

import "errors"

var (
	// ErrInvalidFormat is returned when a date expression matches none of the
	// recognised phrases or names an impossible calendar date.
	ErrInvalidFormat = errors.New("invalid date expression")

	ErrSlotFormat = errors.New("slot must look like DD/MM/YYYY hh:mm - hh:mm")
	ErrBadDate    = errors.New("invalid slot date")
	ErrBadTime    = errors.New("slot time must be between 09:00 and 18:00")
	ErrInverted   = errors.New("slot must end after it starts")
	ErrClash      = errors.New("slot clashes with an existing appointment")

	// ErrCancelled is returned by a Prompter when the user aborts a question.
	ErrCancelled = errors.New("selection cancelled")

	ErrNoFreeSlots = errors.New("no free slots in the requested period")
)
