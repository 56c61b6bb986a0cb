package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hackgods/practitioner-scheduling/internal/appointment"
	"github.com/hackgods/practitioner-scheduling/internal/availability"
	"github.com/hackgods/practitioner-scheduling/internal/calendar"
)

type AvailabilityService interface {
	Set(ctx context.Context, practitionerID uuid.UUID, in availability.SetInput) (*availability.Availability, error)
	Get(ctx context.Context, practitionerID uuid.UUID) (*availability.Availability, error)
}

type AppointmentService interface {
	AvailableSlots(ctx context.Context, practitionerID uuid.UUID, date calendar.Date) ([]availability.Slot, error)
	Book(ctx context.Context, req appointment.BookRequest) (*appointment.Appointment, error)
	Cancel(ctx context.Context, id, requesterID uuid.UUID) (*appointment.Appointment, error)
	Complete(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error)
	GetAppointment(ctx context.Context, id uuid.UUID) (*appointment.AppointmentDetail, error)
	ListForParty(ctx context.Context, partyID uuid.UUID, role appointment.Role) (appointment.Buckets, error)
}

func getAvailabilityHandler(svc AvailabilityService, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uuidParam(w, r, "id")
		if !ok {
			return
		}

		a, err := svc.Get(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, log, err)
			return
		}

		writeJSON(w, http.StatusOK, toAvailabilityResponse(a))
	}
}

func setAvailabilityHandler(svc AvailabilityService, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uuidParam(w, r, "id")
		if !ok {
			return
		}

		var req SetAvailabilityRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		a, err := svc.Set(r.Context(), id, availability.SetInput{
			Start:       req.StartTime,
			End:         req.EndTime,
			WorkingDays: req.WorkingDays,
		})
		if err != nil {
			writeServiceError(w, r, log, err)
			return
		}

		writeJSON(w, http.StatusOK, toAvailabilityResponse(a))
	}
}

func listSlotsHandler(svc AppointmentService, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uuidParam(w, r, "id")
		if !ok {
			return
		}

		date, err := calendar.ParseDate(r.URL.Query().Get("date"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}

		slots, err := svc.AvailableSlots(r.Context(), id, date)
		if err != nil {
			writeServiceError(w, r, log, err)
			return
		}

		labels := make([]string, 0, len(slots))
		for _, s := range slots {
			labels = append(labels, s.Label())
		}

		writeJSON(w, http.StatusOK, SlotsResponse{
			PractitionerID: id,
			Date:           date.String(),
			Slots:          labels,
		})
	}
}

func bookAppointmentHandler(svc AppointmentService, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BookAppointmentRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		date, err := calendar.ParseDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}

		appt, err := svc.Book(r.Context(), appointment.BookRequest{
			PractitionerID: uuid.MustParse(req.PractitionerID),
			PatientID:      uuid.MustParse(req.PatientID),
			Date:           date,
			TimeSlot:       req.TimeSlot,
		})
		if err != nil {
			writeServiceError(w, r, log, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAppointmentResponse(appt))
	}
}

func getAppointmentHandler(svc AppointmentService, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uuidParam(w, r, "id")
		if !ok {
			return
		}

		detail, err := svc.GetAppointment(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, log, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentDetailResponse(detail))
	}
}

func cancelAppointmentHandler(svc AppointmentService, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uuidParam(w, r, "id")
		if !ok {
			return
		}

		var req CancelAppointmentRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		appt, err := svc.Cancel(r.Context(), id, uuid.MustParse(req.RequesterID))
		if err != nil {
			writeServiceError(w, r, log, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func completeAppointmentHandler(svc AppointmentService, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uuidParam(w, r, "id")
		if !ok {
			return
		}

		appt, err := svc.Complete(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, log, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func listAppointmentsHandler(svc AppointmentService, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partyID, ok := uuidQuery(w, r, "party_id")
		if !ok {
			return
		}

		role, err := appointment.ParseRole(r.URL.Query().Get("role"))
		if err != nil {
			writeServiceError(w, r, log, err)
			return
		}

		buckets, err := svc.ListForParty(r.Context(), partyID, role)
		if err != nil {
			writeServiceError(w, r, log, err)
			return
		}

		writeJSON(w, http.StatusOK, AppointmentListResponse{
			Upcoming: toAppointmentList(buckets.Upcoming),
			Past:     toAppointmentList(buckets.Past),
		})
	}
}
