package appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-scheduling/internal/schedule"
)

type Patient struct {
	ID        uuid.UUID
	Name      string
	Email     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Appointment is a booked slot on the single clinic calendar.
type Appointment struct {
	ID        uuid.UUID
	PatientID uuid.UUID
	StartTime time.Time
	EndTime   time.Time
	Details   string
	Tags      []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (a Appointment) Interval() schedule.Interval {
	return schedule.Interval{Start: a.StartTime, End: a.EndTime}
}

type EventLog struct {
	ID            int64
	EventType     string
	AppointmentID *uuid.UUID
	Payload       []byte
	CreatedAt     time.Time
}

type AppointmentDetail struct {
	Appointment
	Patient *Patient
}

// Availability is the answer to a free-slot query.
type Availability struct {
	Range schedule.Interval
	Slots []schedule.Interval
	Text  string
}

// BookRequest carries a precise slot in "DD/MM/YYYY hh:mm - hh:mm" form.
type BookRequest struct {
	PatientID uuid.UUID
	Slot      string
	Details   string
	Tags      []string
}
