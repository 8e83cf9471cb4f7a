package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	redisclient "github.com/hackgods/clinic-scheduling/internal/redis"
	"github.com/hackgods/clinic-scheduling/internal/schedule"
)

const (
	EventAppointmentBooked    = "APPOINTMENT_BOOKED"
	EventAppointmentCancelled = "APPOINTMENT_CANCELLED"
)

const (
	TagsPrompt    = "Tags for this appointment (comma separated, blank for none)"
	DetailsPrompt = "Notes for this appointment (blank for none)"
)

var (
	ErrCalendarBusy = errors.New("calendar day is being booked, please retry")
	ErrInvalidName  = errors.New("patient name is required")
)

type Service struct {
	repo     Repository
	calendar *Calendar
	locker   redisclient.Locker
	ids      IDAllocator
	log      zerolog.Logger
	now      func() time.Time
}

func NewService(repo Repository, locker redisclient.Locker, ids IDAllocator, logger zerolog.Logger) *Service {
	if ids == nil {
		ids = UUIDAllocator{}
	}
	return &Service{
		repo:     repo,
		calendar: NewCalendar(repo),
		locker:   locker,
		ids:      ids,
		log:      logger.With().Str("component", "appointment").Logger(),
		now:      time.Now,
	}
}

// WithClock replaces the reference time used to resolve date expressions.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// FindFreeSlots resolves expression against now and lists the open slots in
// the resulting period.
func (s *Service) FindFreeSlots(ctx context.Context, expression string, now time.Time) (*Availability, error) {
	rng, err := schedule.Resolve(expression, now)
	if err != nil {
		return nil, err
	}

	booked, err := s.calendar.ListOverlapping(ctx, rng)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	slots := schedule.FreeSlots(rng, booked)
	return &Availability{
		Range: rng,
		Slots: slots,
		Text:  schedule.Render(slots),
	}, nil
}

// BookAppointment validates a precise slot and books it for the patient.
func (s *Service) BookAppointment(ctx context.Context, req BookRequest) (*Appointment, error) {
	if err := s.requirePatient(ctx, req.PatientID); err != nil {
		return nil, err
	}

	slot, err := schedule.ParseSlot(req.Slot)
	if err != nil {
		return nil, err
	}

	tags, err := normalizeTags(req.Tags)
	if err != nil {
		return nil, err
	}

	return s.book(ctx, req.PatientID, slot, strings.TrimSpace(req.Details), tags)
}

// BookInteractive runs the whole conversation through prompter: free slots
// for expression, the slot choice, then tags and notes. A cancelled
// question aborts without creating anything.
func (s *Service) BookInteractive(ctx context.Context, patientID uuid.UUID, expression string, prompter schedule.Prompter) (*Appointment, error) {
	if err := s.requirePatient(ctx, patientID); err != nil {
		return nil, err
	}

	slot, err := schedule.NewPlanner(s.calendar, prompter, s.now).Choose(ctx, expression)
	if err != nil {
		return nil, err
	}

	rawTags, err := prompter.Ask(ctx, TagsPrompt, true)
	if err != nil {
		return nil, err
	}
	tags, err := ParseTags(rawTags)
	if err != nil {
		return nil, err
	}

	details, err := prompter.Ask(ctx, DetailsPrompt, true)
	if err != nil {
		return nil, err
	}

	return s.book(ctx, patientID, slot, strings.TrimSpace(details), tags)
}

// book re-reads the slot's day under the calendar lock so that two
// concurrent bookings cannot both pass the clash check.
func (s *Service) book(ctx context.Context, patientID uuid.UUID, slot schedule.Interval, details string, tags []string) (*Appointment, error) {
	var created *Appointment

	err := s.locker.WithDayLock(ctx, slot.Start, func(lockCtx context.Context) error {
		sameDay, err := s.calendar.ListOverlapping(lockCtx, schedule.Day(slot.Start))
		if err != nil {
			return fmt.Errorf("list appointments: %w", err)
		}
		if err := schedule.CheckClash(slot, sameDay); err != nil {
			return err
		}

		appt, err := s.repo.CreateAppointment(lockCtx, Appointment{
			ID:        s.ids.NextID(),
			PatientID: patientID,
			StartTime: slot.Start,
			EndTime:   slot.End,
			Details:   details,
			Tags:      tags,
		})
		if err != nil {
			return fmt.Errorf("create appointment: %w", err)
		}

		created = appt

		s.logEvent(lockCtx, appt.ID, EventAppointmentBooked, map[string]any{
			"patient_id": patientID.String(),
			"slot":       slot.String(),
			"tags":       tags,
		})

		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			s.log.Warn().Str("slot", slot.String()).Msg("calendar day locked by another booking")
			return nil, ErrCalendarBusy
		}
		return nil, err
	}

	return created, nil
}

// RegisterPatient adds a patient record so appointments can reference it.
func (s *Service) RegisterPatient(ctx context.Context, name string, email *string) (*Patient, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}

	p, err := s.repo.CreatePatient(ctx, Patient{ID: s.ids.NextID(), Name: name, Email: email})
	if err != nil {
		return nil, fmt.Errorf("create patient: %w", err)
	}
	return p, nil
}

// GetAppointment retrieves an appointment together with its patient
func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*AppointmentDetail, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}

	patient, err := s.repo.GetPatientByID(ctx, appt.PatientID)
	if err != nil && !errors.Is(err, ErrPatientNotFound) {
		return nil, fmt.Errorf("load patient: %w", err)
	}

	return &AppointmentDetail{Appointment: *appt, Patient: patient}, nil
}

// ListAppointmentsByPatient retrieves appointments for a specific patient
func (s *Service) ListAppointmentsByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]Appointment, error) {
	if limit <= 0 {
		limit = 20 // default
	}
	if limit > 100 {
		limit = 100 // max
	}
	if offset < 0 {
		offset = 0
	}

	appointments, err := s.repo.ListAppointmentsByPatient(ctx, patientID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list appointments by patient: %w", err)
	}
	return appointments, nil
}

// CancelAppointment removes an appointment, freeing its slot.
func (s *Service) CancelAppointment(ctx context.Context, id uuid.UUID) error {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load appointment: %w", err)
	}

	if err := s.repo.DeleteAppointment(ctx, id); err != nil {
		return fmt.Errorf("cancel appointment: %w", err)
	}

	s.logEvent(ctx, id, EventAppointmentCancelled, map[string]any{
		"patient_id": appt.PatientID.String(),
		"slot":       appt.Interval().String(),
	})
	return nil
}

func (s *Service) requirePatient(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetPatientByID(ctx, id); err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return err
		}
		return fmt.Errorf("load patient: %w", err)
	}
	return nil
}

func (s *Service) logEvent(ctx context.Context, appointmentID uuid.UUID, eventType string, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.log.Error().Err(err).Str("event", eventType).Msg("failed to marshal event payload")
		data = nil
	}

	apptID := appointmentID

	ev := EventLog{
		EventType:     eventType,
		AppointmentID: &apptID,
		Payload:       data,
		CreatedAt:     time.Now(),
	}

	if err := s.repo.InsertEvent(ctx, ev); err != nil {
		s.log.Error().Err(err).
			Str("event", eventType).
			Str("appointment_id", appointmentID.String()).
			Msg("failed to insert event log")
	}
}
