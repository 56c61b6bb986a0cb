package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/practitioner-scheduling/internal/appointment"
	"github.com/hackgods/practitioner-scheduling/internal/availability"
	"github.com/hackgods/practitioner-scheduling/internal/calendar"
	"github.com/hackgods/practitioner-scheduling/internal/messaging"
)

type SetAvailabilityRequest struct {
	StartTime   string   `json:"start_time" validate:"required"`
	EndTime     string   `json:"end_time" validate:"required"`
	WorkingDays []string `json:"working_days" validate:"required,min=1,max=7,dive,required"`
}

type AvailabilityResponse struct {
	PractitionerID uuid.UUID `json:"practitioner_id"`
	StartTime      string    `json:"start_time"`
	EndTime        string    `json:"end_time"`
	WorkingDays    []string  `json:"working_days"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type SlotsResponse struct {
	PractitionerID uuid.UUID `json:"practitioner_id"`
	Date           string    `json:"date"`
	Slots          []string  `json:"slots"`
}

type BookAppointmentRequest struct {
	PractitionerID string `json:"practitioner_id" validate:"required,uuid"`
	PatientID      string `json:"patient_id" validate:"required,uuid"`
	Date           string `json:"date" validate:"required"`
	TimeSlot       string `json:"time_slot" validate:"required"`
}

type CancelAppointmentRequest struct {
	RequesterID string `json:"requester_id" validate:"required,uuid"`
}

type AppointmentResponse struct {
	ID               uuid.UUID  `json:"id"`
	PractitionerID   uuid.UUID  `json:"practitioner_id"`
	PatientID        uuid.UUID  `json:"patient_id"`
	PractitionerName string     `json:"practitioner_name,omitempty"`
	PatientName      string     `json:"patient_name,omitempty"`
	Date             string     `json:"date"`
	TimeSlot         string     `json:"time_slot"`
	Status           string     `json:"status"`
	CancelledBy      *uuid.UUID `json:"cancelled_by,omitempty"`
	CancelledAt      *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type AppointmentListResponse struct {
	Upcoming []AppointmentResponse `json:"upcoming"`
	Past     []AppointmentResponse `json:"past"`
}

type SendMessageRequest struct {
	SenderID    string `json:"sender_id" validate:"required,uuid"`
	RecipientID string `json:"recipient_id" validate:"required,uuid,nefield=SenderID"`
	Body        string `json:"body" validate:"required,max=4000"`
}

type MessageResponse struct {
	ID          uuid.UUID  `json:"id"`
	SenderID    uuid.UUID  `json:"sender_id"`
	RecipientID uuid.UUID  `json:"recipient_id"`
	Body        string     `json:"body"`
	SentAt      time.Time  `json:"sent_at"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
}

type ConversationResponse struct {
	CounterpartID uuid.UUID       `json:"counterpart_id"`
	LastMessage   MessageResponse `json:"last_message"`
	UnreadCount   int             `json:"unread_count"`
}

type MarkReadResponse struct {
	Marked int64 `json:"marked"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func toAvailabilityResponse(a *availability.Availability) AvailabilityResponse {
	days := make([]string, 0, len(a.WorkingDays))
	for _, d := range a.WorkingDays {
		days = append(days, calendar.WeekdayLabel(d))
	}
	return AvailabilityResponse{
		PractitionerID: a.PractitionerID,
		StartTime:      a.Start.String(),
		EndTime:        a.End.String(),
		WorkingDays:    days,
		UpdatedAt:      a.UpdatedAt,
	}
}

func toAppointmentResponse(a *appointment.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:             a.ID,
		PractitionerID: a.PractitionerID,
		PatientID:      a.PatientID,
		Date:           a.Date.String(),
		TimeSlot:       a.TimeSlot,
		Status:         string(a.Status),
		CancelledBy:    a.CancelledBy,
		CancelledAt:    a.CancelledAt,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

func toAppointmentDetailResponse(d *appointment.AppointmentDetail) AppointmentResponse {
	resp := toAppointmentResponse(&d.Appointment)
	resp.PractitionerName = d.PractitionerName
	resp.PatientName = d.PatientName
	return resp
}

func toAppointmentList(items []appointment.AppointmentDetail) []AppointmentResponse {
	out := make([]AppointmentResponse, 0, len(items))
	for i := range items {
		out = append(out, toAppointmentDetailResponse(&items[i]))
	}
	return out
}

func toMessageResponse(m messaging.Message) MessageResponse {
	return MessageResponse{
		ID:          m.ID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		Body:        m.Body,
		SentAt:      m.SentAt,
		ReadAt:      m.ReadAt,
	}
}
