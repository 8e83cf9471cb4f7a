package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-scheduling/internal/appointment"
	"github.com/hackgods/clinic-scheduling/internal/schedule"
)

// ---------- Stub service ----------

type stubService struct {
	expression  string
	bookReq     appointment.BookRequest
	interactive bool
	answers     []string
	cancelled   uuid.UUID
	err         error
}

func (s *stubService) FindFreeSlots(_ context.Context, expression string, _ time.Time) (*appointment.Availability, error) {
	s.expression = expression
	if s.err != nil {
		return nil, s.err
	}
	day := schedule.Day(time.Date(2018, time.November, 9, 0, 0, 0, 0, time.Local))
	return &appointment.Availability{Range: day, Slots: []schedule.Interval{day}, Text: schedule.Render([]schedule.Interval{day})}, nil
}

func (s *stubService) BookAppointment(_ context.Context, req appointment.BookRequest) (*appointment.Appointment, error) {
	s.bookReq = req
	if s.err != nil {
		return nil, s.err
	}
	slot, err := schedule.ParseSlot(req.Slot)
	if err != nil {
		return nil, err
	}
	return &appointment.Appointment{ID: uuid.New(), PatientID: req.PatientID, StartTime: slot.Start, EndTime: slot.End}, nil
}

func (s *stubService) BookInteractive(ctx context.Context, patientID uuid.UUID, expression string, p schedule.Prompter) (*appointment.Appointment, error) {
	s.interactive = true
	s.expression = expression
	for _, q := range []string{schedule.SlotPrompt, appointment.TagsPrompt, appointment.DetailsPrompt} {
		answer, err := p.Ask(ctx, q, true)
		if err != nil {
			return nil, err
		}
		s.answers = append(s.answers, answer)
	}
	slot, err := schedule.ParseSlot(s.answers[0])
	if err != nil {
		return nil, err
	}
	return &appointment.Appointment{ID: uuid.New(), PatientID: patientID, StartTime: slot.Start, EndTime: slot.End}, nil
}

func (s *stubService) GetAppointment(_ context.Context, id uuid.UUID) (*appointment.AppointmentDetail, error) {
	if s.err != nil {
		return nil, s.err
	}
	start := time.Date(2018, time.December, 13, 10, 0, 0, 0, time.Local)
	return &appointment.AppointmentDetail{
		Appointment: appointment.Appointment{ID: id, StartTime: start, EndTime: start.Add(time.Hour), Tags: []string{"checkup"}},
		Patient:     &appointment.Patient{Name: "Ada Lovelace"},
	}, nil
}

func (s *stubService) ListAppointmentsByPatient(context.Context, uuid.UUID, int, int) ([]appointment.Appointment, error) {
	return nil, s.err
}

func (s *stubService) CancelAppointment(_ context.Context, id uuid.UUID) error {
	s.cancelled = id
	return s.err
}

func (s *stubService) RegisterPatient(_ context.Context, name string, email *string) (*appointment.Patient, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &appointment.Patient{ID: uuid.New(), Name: name, Email: email}, nil
}

// ---------- Helpers ----------

const patientID = "00000000-0000-0000-0000-000000000001"

func run(t *testing.T, svc *stubService, stdin string, args ...string) (string, error) {
	t.Helper()
	closed := false
	open := func(context.Context) (*session, error) {
		return &session{
			svc:     svc,
			migrate: func(context.Context) error { return nil },
			close:   func() { closed = true },
		}, nil
	}

	var out bytes.Buffer
	cmd := newRootCmd(open)
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&out)

	err := cmd.Execute()
	if err == nil && !closed {
		t.Fatalf("expected session to be closed")
	}
	return out.String(), err
}

// ---------- Commands ----------

func TestSlots_JoinsExpression(t *testing.T) {
	svc := &stubService{}
	out, err := run(t, svc, "", "slots", "in", "5", "days")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.expression != "in 5 days" {
		t.Fatalf("expected joined expression, got %q", svc.expression)
	}
	if !strings.Contains(out, "09/11/2018:\n09:00 - 18:00") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestSlots_InvalidExpression(t *testing.T) {
	svc := &stubService{err: schedule.ErrInvalidFormat}
	if _, err := run(t, svc, "", "slots", "whenever"); !errors.Is(err, schedule.ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}
}

func TestBook_Interactive(t *testing.T) {
	svc := &stubService{}
	stdin := "09/11/2018 14:00 - 14:45\ncheckup\nfasting\n"

	out, err := run(t, svc, stdin, "book", "--patient", patientID, "tomorrow")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !svc.interactive || svc.expression != "tomorrow" {
		t.Fatalf("expected interactive booking for tomorrow, got %+v", svc)
	}
	if !strings.Contains(out, "Booked 09/11/2018 14:00 - 14:45") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestBook_InteractiveCancel(t *testing.T) {
	svc := &stubService{}
	out, err := run(t, svc, "cancel\n", "book", "--patient", patientID, "tomorrow")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Booking cancelled.") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestBook_WithSlotFlag(t *testing.T) {
	svc := &stubService{}
	_, err := run(t, svc, "", "book", "--patient", patientID,
		"--slot", "13/12/2018 10:00 - 11:00", "--tags", "checkup,urgent", "--details", "x-rays")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.interactive {
		t.Fatal("expected non-interactive booking")
	}
	if len(svc.bookReq.Tags) != 2 || svc.bookReq.Details != "x-rays" {
		t.Fatalf("unexpected book request %+v", svc.bookReq)
	}
}

func TestBook_RequiresValidPatient(t *testing.T) {
	if _, err := run(t, &stubService{}, "", "book", "--patient", "nope", "tomorrow"); err == nil {
		t.Fatal("expected error for invalid patient id")
	}
	if _, err := run(t, &stubService{}, "", "book", "tomorrow"); err == nil {
		t.Fatal("expected error for missing patient flag")
	}
}

func TestShowAndCancel(t *testing.T) {
	svc := &stubService{}
	id := uuid.New()

	out, err := run(t, svc, "", "show", id.String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "13/12/2018 10:00 - 11:00") || !strings.Contains(out, "Ada Lovelace") {
		t.Fatalf("unexpected output %q", out)
	}

	if _, err := run(t, svc, "", "cancel", id.String()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.cancelled != id {
		t.Fatalf("expected %s cancelled, got %s", id, svc.cancelled)
	}
}

func TestList_Empty(t *testing.T) {
	out, err := run(t, &stubService{}, "", "list", "--patient", patientID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "No appointments.") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestPatientAdd(t *testing.T) {
	out, err := run(t, &stubService{}, "", "patient", "add", "--name", "Grace Hopper", "--email", "grace@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out, "Registered Grace Hopper") {
		t.Fatalf("unexpected output %q", out)
	}
}
