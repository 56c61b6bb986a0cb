package appointment

import (
	"github.com/hackgods/practitioner-scheduling/internal/apperr"
	"github.com/hackgods/practitioner-scheduling/internal/availability"
)

var (
	ErrPatientNotFound      = apperr.New(apperr.KindNotFound, "patient_not_found", "patient not found")
	ErrPractitionerNotFound = availability.ErrPractitionerNotFound
	ErrAppointmentNotFound  = apperr.New(apperr.KindNotFound, "appointment_not_found", "appointment not found")

	ErrSlotAlreadyBooked      = apperr.New(apperr.KindConflict, "slot_already_booked", "slot already booked, please pick another time")
	ErrCancellationInProgress = apperr.New(apperr.KindConflict, "cancellation_in_progress", "appointment is being updated by another request, retry the cancellation shortly")

	ErrSlotOutOfAvailability = apperr.New(apperr.KindValidation, "slot_out_of_availability", "slot is outside the practitioner's availability")
	ErrPastDateRejected      = apperr.New(apperr.KindValidation, "past_date_rejected", "cannot book a date in the past")
	ErrInvalidSlot           = apperr.New(apperr.KindValidation, "invalid_slot", "invalid time slot")
	ErrInvalidDate           = apperr.New(apperr.KindValidation, "invalid_date", "invalid date")
	ErrInvalidRole           = apperr.New(apperr.KindValidation, "invalid_role", "role must be patient or practitioner")
	ErrAppointmentInPast     = apperr.New(apperr.KindValidation, "appointment_in_past", "appointment date has already passed")

	ErrNotAParty = apperr.New(apperr.KindAuthorization, "not_a_party", "requester is neither the patient nor the practitioner")

	ErrInvalidStatusTransition = apperr.New(apperr.KindConflict, "invalid_status_transition", "invalid status transition")
)
