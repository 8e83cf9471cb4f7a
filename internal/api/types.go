package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-scheduling/internal/appointment"
	"github.com/hackgods/clinic-scheduling/internal/schedule"
)

type CreateAppointmentRequest struct {
	PatientID string   `json:"patient_id"`
	Slot      string   `json:"slot"`
	Details   string   `json:"details"`
	Tags      []string `json:"tags"`
}

type IntervalResponse struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Text  string    `json:"text"`
}

type AvailabilityResponse struct {
	Range IntervalResponse   `json:"range"`
	Slots []IntervalResponse `json:"slots"`
	Text  string             `json:"text"`
}

type PatientResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email *string   `json:"email,omitempty"`
}

type AppointmentResponse struct {
	ID        uuid.UUID        `json:"id"`
	PatientID uuid.UUID        `json:"patient_id"`
	StartTime time.Time        `json:"start_time"`
	EndTime   time.Time        `json:"end_time"`
	Slot      string           `json:"slot"`
	Details   string           `json:"details,omitempty"`
	Tags      []string         `json:"tags"`
	CreatedAt time.Time        `json:"created_at"`
	Patient   *PatientResponse `json:"patient,omitempty"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
}

func toIntervalResponse(iv schedule.Interval) IntervalResponse {
	return IntervalResponse{Start: iv.Start, End: iv.End, Text: iv.String()}
}

func toAvailabilityResponse(a *appointment.Availability) AvailabilityResponse {
	slots := make([]IntervalResponse, 0, len(a.Slots))
	for _, s := range a.Slots {
		slots = append(slots, toIntervalResponse(s))
	}
	return AvailabilityResponse{
		Range: toIntervalResponse(a.Range),
		Slots: slots,
		Text:  a.Text,
	}
}

func toAppointmentResponse(a appointment.Appointment) AppointmentResponse {
	tags := a.Tags
	if tags == nil {
		tags = []string{}
	}
	return AppointmentResponse{
		ID:        a.ID,
		PatientID: a.PatientID,
		StartTime: a.StartTime,
		EndTime:   a.EndTime,
		Slot:      a.Interval().String(),
		Details:   a.Details,
		Tags:      tags,
		CreatedAt: a.CreatedAt,
	}
}

func toDetailResponse(d *appointment.AppointmentDetail) AppointmentResponse {
	resp := toAppointmentResponse(d.Appointment)
	if d.Patient != nil {
		resp.Patient = &PatientResponse{ID: d.Patient.ID, Name: d.Patient.Name, Email: d.Patient.Email}
	}
	return resp
}
