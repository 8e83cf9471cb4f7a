package appointment

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	redisclient "github.com/hackgods/clinic-scheduling/internal/redis"
	"github.com/hackgods/clinic-scheduling/internal/schedule"
)

// ---------- Fakes ----------

type memoryRepo struct {
	mu           sync.Mutex
	patients     map[uuid.UUID]Patient
	appointments map[uuid.UUID]Appointment
	events       []EventLog
	eventErr     error
	lastLimit    int
	lastOffset   int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		patients:     make(map[uuid.UUID]Patient),
		appointments: make(map[uuid.UUID]Appointment),
	}
}

func (r *memoryRepo) GetPatientByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.patients[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	return &p, nil
}

func (r *memoryRepo) CreatePatient(_ context.Context, p Patient) (*Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patients[p.ID] = p
	return &p, nil
}

func (r *memoryRepo) GetAppointmentByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	return &a, nil
}

func (r *memoryRepo) ListAppointmentsByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastLimit, r.lastOffset = limit, offset
	var out []Appointment
	for _, a := range r.sorted() {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memoryRepo) ListOverlapping(_ context.Context, start, end time.Time) ([]Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Appointment
	for _, a := range r.sorted() {
		if a.StartTime.Before(end) && a.EndTime.After(start) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memoryRepo) CreateAppointment(_ context.Context, a Appointment) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	r.appointments[a.ID] = a
	return &a, nil
}

func (r *memoryRepo) DeleteAppointment(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.appointments[id]; !ok {
		return ErrAppointmentNotFound
	}
	delete(r.appointments, id)
	return nil
}

func (r *memoryRepo) InsertEvent(_ context.Context, ev EventLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.eventErr != nil {
		return r.eventErr
	}
	r.events = append(r.events, ev)
	return nil
}

func (r *memoryRepo) sorted() []Appointment {
	out := make([]Appointment, 0, len(r.appointments))
	for _, a := range r.appointments {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out
}

type sequentialIDs struct{ n byte }

func (s *sequentialIDs) NextID() uuid.UUID {
	s.n++
	var id uuid.UUID
	id[15] = s.n
	return id
}

type busyLocker struct{}

func (busyLocker) WithDayLock(context.Context, time.Time, func(context.Context) error) error {
	return redisclient.ErrLockNotAcquired
}

type scriptedPrompter struct {
	answers []string
	cancel  int // 1-based question to cancel at, 0 for never
	asked   int
}

func (p *scriptedPrompter) Ask(_ context.Context, _ string, cancellable bool) (string, error) {
	p.asked++
	if cancellable && p.asked == p.cancel {
		return "", schedule.ErrCancelled
	}
	if len(p.answers) == 0 {
		return "", errors.New("no scripted answer")
	}
	a := p.answers[0]
	p.answers = p.answers[1:]
	return a, nil
}

// ---------- Helpers ----------

// Thursday 8 November 2018, 12:13.
var refNow = time.Date(2018, time.November, 8, 12, 13, 0, 0, time.Local)

func newTestService(t *testing.T) (*Service, *memoryRepo, uuid.UUID) {
	t.Helper()
	repo := newMemoryRepo()
	svc := NewService(repo, redisclient.NewLocalLocker(), &sequentialIDs{}, zerolog.Nop()).
		WithClock(func() time.Time { return refNow })

	p, err := svc.RegisterPatient(context.Background(), "Ada Lovelace", nil)
	if err != nil {
		t.Fatalf("register patient: %v", err)
	}
	return svc, repo, p.ID
}

func mustBook(t *testing.T, svc *Service, patientID uuid.UUID, slot string) *Appointment {
	t.Helper()
	appt, err := svc.BookAppointment(context.Background(), BookRequest{PatientID: patientID, Slot: slot})
	if err != nil {
		t.Fatalf("book %q: %v", slot, err)
	}
	return appt
}

// ---------- Service ----------

func TestService_FindFreeSlots_EmptyDay(t *testing.T) {
	svc, _, _ := newTestService(t)

	got, err := svc.FindFreeSlots(context.Background(), "tomorrow", refNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Slots) != 1 {
		t.Fatalf("expected 1 slot, got %d", len(got.Slots))
	}
	want := schedule.Day(time.Date(2018, time.November, 9, 0, 0, 0, 0, time.Local))
	if !got.Slots[0].Equal(want) || !got.Range.Equal(want) {
		t.Fatalf("expected %s, got slot %s in range %s", want, got.Slots[0], got.Range)
	}
	if got.Text != "09/11/2018:\n09:00 - 18:00" {
		t.Fatalf("unexpected text %q", got.Text)
	}
}

func TestService_FindFreeSlots_AroundBookings(t *testing.T) {
	svc, _, patientID := newTestService(t)
	mustBook(t, svc, patientID, "13/11/2018 10:00 - 11:00")

	got, err := svc.FindFreeSlots(context.Background(), "in 5 days", refNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Text != "13/11/2018:\n09:00 - 10:00\n11:00 - 18:00" {
		t.Fatalf("unexpected text %q", got.Text)
	}
}

func TestService_FindFreeSlots_InvalidExpression(t *testing.T) {
	svc, _, _ := newTestService(t)
	if _, err := svc.FindFreeSlots(context.Background(), "whenever", refNow); !errors.Is(err, schedule.ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}
}

func TestService_BookAppointment(t *testing.T) {
	svc, repo, patientID := newTestService(t)

	appt, err := svc.BookAppointment(context.Background(), BookRequest{
		PatientID: patientID,
		Slot:      "13/12/2018 10:00 - 11:00",
		Details:   "  follow-up  ",
		Tags:      []string{"checkup", "checkup", "urgent"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The patient took id 1, so the appointment gets id 2.
	if appt.ID[15] != 2 {
		t.Fatalf("expected allocator id 2, got %s", appt.ID)
	}
	if appt.Details != "follow-up" {
		t.Fatalf("expected trimmed details, got %q", appt.Details)
	}
	if len(appt.Tags) != 2 || appt.Tags[0] != "checkup" || appt.Tags[1] != "urgent" {
		t.Fatalf("unexpected tags %v", appt.Tags)
	}
	if appt.EndTime.Minute() != 0 || appt.EndTime.Hour() != 11 {
		t.Fatalf("unexpected end %s", appt.EndTime)
	}
	if len(repo.events) != 1 || repo.events[0].EventType != EventAppointmentBooked {
		t.Fatalf("expected one booked event, got %+v", repo.events)
	}
}

func TestService_BookAppointment_ClashAndBackToBack(t *testing.T) {
	svc, repo, patientID := newTestService(t)
	mustBook(t, svc, patientID, "13/12/2018 10:00 - 11:00")

	_, err := svc.BookAppointment(context.Background(), BookRequest{PatientID: patientID, Slot: "13/12/2018 10:30 - 11:30"})
	if !errors.Is(err, schedule.ErrClash) {
		t.Fatalf("expected ErrClash, got %v", err)
	}
	if len(repo.appointments) != 1 {
		t.Fatalf("expected clash to store nothing, have %d appointments", len(repo.appointments))
	}

	mustBook(t, svc, patientID, "13/12/2018 11:00 - 12:00")
	if len(repo.appointments) != 2 {
		t.Fatalf("expected back-to-back booking to succeed, have %d appointments", len(repo.appointments))
	}
}

func TestService_BookAppointment_Errors(t *testing.T) {
	svc, _, patientID := newTestService(t)

	tests := []struct {
		name string
		req  BookRequest
		want error
	}{
		{"unknown patient", BookRequest{PatientID: uuid.New(), Slot: "13/12/2018 10:00 - 11:00"}, ErrPatientNotFound},
		{"bad date", BookRequest{PatientID: patientID, Slot: "32/01/2020 09:00 - 10:00"}, schedule.ErrBadDate},
		{"bad time", BookRequest{PatientID: patientID, Slot: "13/12/2018 18:30 - 19:00"}, schedule.ErrBadTime},
		{"inverted", BookRequest{PatientID: patientID, Slot: "13/12/2018 10:30 - 09:30"}, schedule.ErrInverted},
		{"format", BookRequest{PatientID: patientID, Slot: "tomorrow"}, schedule.ErrSlotFormat},
		{"tag", BookRequest{PatientID: patientID, Slot: "13/12/2018 10:00 - 11:00", Tags: []string{"x-ray"}}, ErrInvalidTag},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.BookAppointment(context.Background(), tt.req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestService_BookAppointment_CalendarBusy(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, busyLocker{}, nil, zerolog.Nop())
	p, err := svc.RegisterPatient(context.Background(), "Grace Hopper", nil)
	if err != nil {
		t.Fatalf("register patient: %v", err)
	}

	_, err = svc.BookAppointment(context.Background(), BookRequest{PatientID: p.ID, Slot: "13/12/2018 10:00 - 11:00"})
	if !errors.Is(err, ErrCalendarBusy) {
		t.Fatalf("expected ErrCalendarBusy, got %v", err)
	}
}

func TestService_BookAppointment_EventFailureIsNotFatal(t *testing.T) {
	svc, repo, patientID := newTestService(t)
	repo.eventErr = errors.New("event table missing")

	mustBook(t, svc, patientID, "13/12/2018 10:00 - 11:00")
	if len(repo.appointments) != 1 {
		t.Fatalf("expected booking to be stored, have %d", len(repo.appointments))
	}
}

func TestService_BookInteractive(t *testing.T) {
	svc, repo, patientID := newTestService(t)
	prompter := &scriptedPrompter{answers: []string{
		"09/11/2018 14:00 - 14:45",
		"checkup, bloodwork",
		"fasting since midnight",
	}}

	appt, err := svc.BookInteractive(context.Background(), patientID, "tomorrow", prompter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if appt.Interval().String() != "09/11/2018 14:00 - 14:45" {
		t.Fatalf("unexpected slot %s", appt.Interval())
	}
	if len(appt.Tags) != 2 || appt.Tags[1] != "bloodwork" {
		t.Fatalf("unexpected tags %v", appt.Tags)
	}
	if appt.Details != "fasting since midnight" {
		t.Fatalf("unexpected details %q", appt.Details)
	}
	if prompter.asked != 3 {
		t.Fatalf("expected 3 questions, got %d", prompter.asked)
	}
	if len(repo.appointments) != 1 {
		t.Fatalf("expected one stored appointment, got %d", len(repo.appointments))
	}
}

func TestService_BookInteractive_CancelLeavesNoAppointment(t *testing.T) {
	for question := 1; question <= 3; question++ {
		svc, repo, patientID := newTestService(t)
		prompter := &scriptedPrompter{
			answers: []string{"09/11/2018 14:00 - 14:45", "checkup", "notes"},
			cancel:  question,
		}

		_, err := svc.BookInteractive(context.Background(), patientID, "tomorrow", prompter)
		if !errors.Is(err, schedule.ErrCancelled) {
			t.Fatalf("question %d: expected ErrCancelled, got %v", question, err)
		}
		if len(repo.appointments) != 0 {
			t.Fatalf("question %d: expected no appointment, got %d", question, len(repo.appointments))
		}
	}
}

func TestService_CancelAppointment(t *testing.T) {
	svc, repo, patientID := newTestService(t)
	appt := mustBook(t, svc, patientID, "13/12/2018 10:00 - 11:00")

	if err := svc.CancelAppointment(context.Background(), appt.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.appointments) != 0 {
		t.Fatalf("expected appointment removed")
	}
	if last := repo.events[len(repo.events)-1]; last.EventType != EventAppointmentCancelled {
		t.Fatalf("expected cancelled event, got %s", last.EventType)
	}

	// The freed slot can be booked again.
	mustBook(t, svc, patientID, "13/12/2018 10:00 - 11:00")

	if err := svc.CancelAppointment(context.Background(), uuid.New()); !errors.Is(err, ErrAppointmentNotFound) {
		t.Fatalf("expected ErrAppointmentNotFound, got %v", err)
	}
}

func TestService_GetAppointment(t *testing.T) {
	svc, _, patientID := newTestService(t)
	appt := mustBook(t, svc, patientID, "13/12/2018 10:00 - 11:00")

	detail, err := svc.GetAppointment(context.Background(), appt.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.Patient == nil || detail.Patient.Name != "Ada Lovelace" {
		t.Fatalf("expected hydrated patient, got %+v", detail.Patient)
	}
	if _, err := svc.GetAppointment(context.Background(), uuid.New()); !errors.Is(err, ErrAppointmentNotFound) {
		t.Fatalf("expected ErrAppointmentNotFound, got %v", err)
	}
}

func TestService_ListAppointmentsByPatient_ClampsPaging(t *testing.T) {
	svc, repo, patientID := newTestService(t)
	mustBook(t, svc, patientID, "13/12/2018 10:00 - 11:00")
	mustBook(t, svc, patientID, "12/12/2018 10:00 - 11:00")

	got, err := svc.ListAppointmentsByPatient(context.Background(), patientID, 0, -5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastLimit != 20 || repo.lastOffset != 0 {
		t.Fatalf("expected limit 20 offset 0, got %d %d", repo.lastLimit, repo.lastOffset)
	}
	if len(got) != 2 || got[0].StartTime.Day() != 12 {
		t.Fatalf("expected two appointments ordered by start, got %+v", got)
	}

	if _, err := svc.ListAppointmentsByPatient(context.Background(), patientID, 1000, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastLimit != 100 {
		t.Fatalf("expected limit capped at 100, got %d", repo.lastLimit)
	}
}

func TestService_RegisterPatient_RequiresName(t *testing.T) {
	svc, _, _ := newTestService(t)
	if _, err := svc.RegisterPatient(context.Background(), "   ", nil); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
}
