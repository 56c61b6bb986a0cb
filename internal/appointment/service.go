package appointment

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/hackgods/practitioner-scheduling/internal/apperr"
	"github.com/hackgods/practitioner-scheduling/internal/availability"
	"github.com/hackgods/practitioner-scheduling/internal/calendar"
	"github.com/hackgods/practitioner-scheduling/internal/metrics"
	redisclient "github.com/hackgods/practitioner-scheduling/internal/redis"
)

const (
	EventAppointmentBooked    = "APPOINTMENT_BOOKED"
	EventAppointmentCancelled = "APPOINTMENT_CANCELLED"
	EventAppointmentCompleted = "APPOINTMENT_COMPLETED"
)

var tracer = otel.Tracer("scheduling.internal.appointment")

// AvailabilityReader is the slice of the availability store booking needs.
type AvailabilityReader interface {
	GetAvailability(ctx context.Context, practitionerID uuid.UUID) (*availability.Availability, error)
}

type BookRequest struct {
	PractitionerID uuid.UUID
	PatientID      uuid.UUID
	Date           calendar.Date
	TimeSlot       string
}

type Service struct {
	repo    Repository
	avail   AvailabilityReader
	locker  redisclient.Locker
	log     *zap.Logger
	metrics *metrics.BookingMetrics
	now     func() time.Time
}

type Option func(*Service)

func WithMetrics(m *metrics.BookingMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides the wall clock used to decide what "today" is.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, avail AvailabilityReader, locker redisclient.Locker, log *zap.Logger, opts ...Option) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		repo:   repo,
		avail:  avail,
		locker: locker,
		log:    log,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) today() calendar.Date {
	return calendar.Today(s.now())
}

// IsAvailable reports whether no scheduled appointment holds the slot.
// Cancelled and completed appointments never block.
func (s *Service) IsAvailable(ctx context.Context, practitionerID uuid.UUID, date calendar.Date, timeSlot string) (bool, error) {
	start, err := calendar.ParseClock(timeSlot)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidSlot, err)
	}
	taken, err := s.repo.ListScheduledTimeSlots(ctx, practitionerID, date)
	if err != nil {
		return false, fmt.Errorf("list scheduled slots: %w", err)
	}
	return !slices.Contains(taken, start.String()), nil
}

// AvailableSlots lists the free slots for a practitioner on a day. Past days,
// non-working days and practitioners without availability yield an empty list.
func (s *Service) AvailableSlots(ctx context.Context, practitionerID uuid.UUID, date calendar.Date) ([]availability.Slot, error) {
	if date.IsZero() {
		return nil, ErrInvalidDate
	}
	if _, err := s.repo.GetPractitionerByID(ctx, practitionerID); err != nil {
		return nil, err
	}

	free := []availability.Slot{}
	if date.Before(s.today()) {
		return free, nil
	}

	avail, err := s.avail.GetAvailability(ctx, practitionerID)
	if err != nil {
		if errors.Is(err, availability.ErrAvailabilityNotSet) {
			return free, nil
		}
		return nil, fmt.Errorf("load availability: %w", err)
	}

	slots := availability.GenerateSlots(*avail, date)
	if len(slots) == 0 {
		return free, nil
	}

	taken, err := s.repo.ListScheduledTimeSlots(ctx, practitionerID, date)
	if err != nil {
		return nil, fmt.Errorf("list scheduled slots: %w", err)
	}
	for _, slot := range slots {
		if !slices.Contains(taken, slot.Label()) {
			free = append(free, slot)
		}
	}
	return free, nil
}

// Book reserves a slot for a patient. The conflict check and the insert run
// under a per-slot lock, with the active-slot unique index behind it, so at
// most one concurrent request for the same practitioner, day and slot
// succeeds and every other one gets ErrSlotAlreadyBooked.
func (s *Service) Book(ctx context.Context, req BookRequest) (*Appointment, error) {
	ctx, span := tracer.Start(ctx, "appointment.book")
	defer span.End()
	span.SetAttributes(
		attribute.String("practitioner_id", req.PractitionerID.String()),
		attribute.String("date", req.Date.String()),
		attribute.String("time_slot", req.TimeSlot),
	)

	started := time.Now()
	appt, err := s.book(ctx, req)
	outcome := "booked"
	if err != nil {
		outcome = apperr.CodeOf(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		s.logFailure("booking rejected", err,
			zap.String("practitioner_id", req.PractitionerID.String()),
			zap.String("patient_id", req.PatientID.String()),
			zap.String("date", req.Date.String()),
			zap.String("time_slot", req.TimeSlot),
		)
	}
	s.metrics.ObserveBooking(outcome, time.Since(started))
	return appt, err
}

func (s *Service) book(ctx context.Context, req BookRequest) (*Appointment, error) {
	if req.Date.IsZero() {
		return nil, ErrInvalidDate
	}
	if req.Date.Before(s.today()) {
		return nil, ErrPastDateRejected
	}

	if _, err := s.repo.GetPractitionerByID(ctx, req.PractitionerID); err != nil {
		if errors.Is(err, ErrPractitionerNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load practitioner: %w", err)
	}
	if _, err := s.repo.GetPatientByID(ctx, req.PatientID); err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load patient: %w", err)
	}

	start, err := calendar.ParseClock(req.TimeSlot)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSlot, err)
	}

	avail, err := s.avail.GetAvailability(ctx, req.PractitionerID)
	if err != nil {
		if errors.Is(err, availability.ErrAvailabilityNotSet) {
			return nil, fmt.Errorf("%w: practitioner has not set availability", ErrSlotOutOfAvailability)
		}
		return nil, fmt.Errorf("load availability: %w", err)
	}
	if !avail.WorksOn(req.Date.Weekday()) {
		return nil, fmt.Errorf("%w: %s is not a working day", ErrSlotOutOfAvailability, calendar.WeekdayLabel(req.Date.Weekday()))
	}
	slot, ok := availability.FindSlot(availability.GenerateSlots(*avail, req.Date), start)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSlotOutOfAvailability, start)
	}
	label := slot.Label()

	var created *Appointment

	err = s.locker.WithSlotLock(ctx, SlotKey(req.PractitionerID, req.Date, label), func(lockCtx context.Context) error {
		appt, err := s.reserve(lockCtx, req, label)
		created = appt
		return err
	})
	if errors.Is(err, redisclient.ErrLockNotAcquired) {
		// The holder is still on this slot. The active-slot index picks the
		// single winner and the rest see ErrSlotAlreadyBooked.
		s.log.Warn("slot lock wait expired, falling back to index-guarded insert",
			zap.String("practitioner_id", req.PractitionerID.String()),
			zap.String("date", req.Date.String()),
			zap.String("time_slot", label),
		)
		created, err = s.reserve(ctx, req, label)
	}
	if err != nil {
		return nil, err
	}

	s.log.Info("appointment booked",
		zap.String("appointment_id", created.ID.String()),
		zap.String("practitioner_id", created.PractitionerID.String()),
		zap.String("date", created.Date.String()),
		zap.String("time_slot", created.TimeSlot),
	)
	return created, nil
}

// reserve re-checks the slot and inserts the booking. A unique violation from
// the insert surfaces as ErrSlotAlreadyBooked.
func (s *Service) reserve(ctx context.Context, req BookRequest, label string) (*Appointment, error) {
	free, err := s.IsAvailable(ctx, req.PractitionerID, req.Date, label)
	if err != nil {
		return nil, err
	}
	if !free {
		return nil, ErrSlotAlreadyBooked
	}

	appt, err := s.repo.CreateScheduledAppointment(ctx, NewAppointment{
		PractitionerID: req.PractitionerID,
		PatientID:      req.PatientID,
		Date:           req.Date,
		TimeSlot:       label,
	})
	if err != nil {
		if errors.Is(err, ErrSlotAlreadyBooked) {
			return nil, err
		}
		return nil, fmt.Errorf("create appointment: %w", err)
	}

	s.logEvent(ctx, appt.ID, EventAppointmentBooked, map[string]any{
		"practitioner_id": req.PractitionerID.String(),
		"patient_id":      req.PatientID.String(),
		"date":            req.Date.String(),
		"time_slot":       label,
	})
	return appt, nil
}

// Cancel moves a scheduled appointment to cancelled on behalf of one of its
// parties. Cancelling an already-cancelled appointment returns it unchanged.
func (s *Service) Cancel(ctx context.Context, id, requesterID uuid.UUID) (*Appointment, error) {
	ctx, span := tracer.Start(ctx, "appointment.cancel")
	defer span.End()
	span.SetAttributes(attribute.String("appointment_id", id.String()))

	appt, changed, err := s.cancel(ctx, id, requesterID)
	outcome := "cancelled"
	switch {
	case err != nil:
		outcome = apperr.CodeOf(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		s.logFailure("cancellation rejected", err,
			zap.String("appointment_id", id.String()),
			zap.String("requester_id", requesterID.String()),
		)
	case !changed:
		outcome = "already_cancelled"
	}
	s.metrics.ObserveCancellation(outcome)
	return appt, err
}

func (s *Service) cancel(ctx context.Context, id, requesterID uuid.UUID) (*Appointment, bool, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, false, err
		}
		return nil, false, fmt.Errorf("load appointment: %w", err)
	}

	if requesterID != appt.PatientID && requesterID != appt.PractitionerID {
		return nil, false, ErrNotAParty
	}
	if appt.Status == StatusCancelled {
		return appt, false, nil
	}
	if err := checkTransition(appt.Status, StatusCancelled); err != nil {
		return nil, false, err
	}
	if appt.Date.Before(s.today()) {
		return nil, false, ErrAppointmentInPast
	}

	var (
		result  *Appointment
		changed bool
	)

	err = s.locker.WithSlotLock(ctx, SlotKey(appt.PractitionerID, appt.Date, appt.TimeSlot), func(lockCtx context.Context) error {
		actor := requesterID
		updated, err := s.repo.UpdateAppointmentStatus(lockCtx, appt.ID, StatusScheduled, StatusCancelled, &actor)
		if err != nil {
			if !errors.Is(err, ErrAppointmentNotFound) {
				return fmt.Errorf("cancel appointment: %w", err)
			}
			// Status moved since the first read.
			current, gerr := s.repo.GetAppointmentByID(lockCtx, appt.ID)
			if gerr != nil {
				return gerr
			}
			if current.Status == StatusCancelled {
				result = current
				return nil
			}
			return checkTransition(current.Status, StatusCancelled)
		}

		result = updated
		changed = true
		s.logEvent(lockCtx, updated.ID, EventAppointmentCancelled, map[string]any{
			"cancelled_by": requesterID.String(),
		})
		return nil
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, false, ErrCancellationInProgress
		}
		return nil, false, err
	}

	if changed {
		s.log.Info("appointment cancelled",
			zap.String("appointment_id", result.ID.String()),
			zap.String("cancelled_by", requesterID.String()),
		)
	}
	return result, changed, nil
}

// Complete marks a scheduled appointment as completed.
func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	ctx, span := tracer.Start(ctx, "appointment.complete")
	defer span.End()
	span.SetAttributes(attribute.String("appointment_id", id.String()))

	appt, err := s.complete(ctx, id)
	outcome := "completed"
	if err != nil {
		outcome = apperr.CodeOf(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		s.logFailure("completion rejected", err, zap.String("appointment_id", id.String()))
	}
	s.metrics.ObserveCompletion(outcome)
	return appt, err
}

func (s *Service) complete(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load appointment: %w", err)
	}
	if err := checkTransition(appt.Status, StatusCompleted); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateAppointmentStatus(ctx, appt.ID, StatusScheduled, StatusCompleted, nil)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, ErrInvalidStatusTransition
		}
		return nil, fmt.Errorf("complete appointment: %w", err)
	}

	s.logEvent(ctx, updated.ID, EventAppointmentCompleted, map[string]any{})
	s.log.Info("appointment completed", zap.String("appointment_id", updated.ID.String()))
	return updated, nil
}

// GetAppointment retrieves an appointment with party names resolved.
func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*AppointmentDetail, error) {
	detail, err := s.repo.GetAppointmentDetail(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return detail, nil
}

// ListForParty returns a party's appointments split into upcoming and past
// relative to today.
func (s *Service) ListForParty(ctx context.Context, partyID uuid.UUID, role Role) (Buckets, error) {
	switch role {
	case RolePatient:
		if _, err := s.repo.GetPatientByID(ctx, partyID); err != nil {
			return Buckets{}, err
		}
	case RolePractitioner:
		if _, err := s.repo.GetPractitionerByID(ctx, partyID); err != nil {
			return Buckets{}, err
		}
	default:
		return Buckets{}, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	items, err := s.repo.ListAppointmentDetails(ctx, partyID, role)
	if err != nil {
		return Buckets{}, fmt.Errorf("list appointments: %w", err)
	}
	return Classify(items, s.today()), nil
}

// OverdueScheduled lists appointments still scheduled on a day that has passed.
func (s *Service) OverdueScheduled(ctx context.Context) ([]Appointment, error) {
	overdue, err := s.repo.FindOverdueScheduled(ctx, s.today())
	if err != nil {
		return nil, fmt.Errorf("find overdue appointments: %w", err)
	}
	return overdue, nil
}

func (s *Service) logFailure(msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.String("code", apperr.CodeOf(err)), zap.Error(err))
	if apperr.KindOf(err) == apperr.KindInternal {
		s.log.Error(msg, fields...)
		return
	}
	s.log.Info(msg, fields...)
}

func (s *Service) logEvent(ctx context.Context, appointmentID uuid.UUID, eventType string, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.log.Warn("failed to marshal event payload", zap.String("event_type", eventType), zap.Error(err))
		data = nil
	}

	apptID := appointmentID

	ev := EventLog{
		EventType:     eventType,
		AppointmentID: &apptID,
		Payload:       data,
		CreatedAt:     s.now(),
	}

	if err := s.repo.InsertEvent(ctx, ev); err != nil {
		s.log.Warn("failed to insert event log",
			zap.String("event_type", eventType),
			zap.String("appointment_id", appointmentID.String()),
			zap.Error(err),
		)
	}
}
