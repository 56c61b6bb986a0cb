package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hackgods/practitioner-scheduling/internal/calendar"
)

type Service struct {
	repo Repository
	log  *zap.Logger
}

func NewService(repo Repository, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, log: log}
}

// SetInput is the raw window as a client submits it.
type SetInput struct {
	Start       string
	End         string
	WorkingDays []string
}

// Set replaces the practitioner's availability window.
func (s *Service) Set(ctx context.Context, practitionerID uuid.UUID, in SetInput) (*Availability, error) {
	exists, err := s.repo.PractitionerExists(ctx, practitionerID)
	if err != nil {
		return nil, fmt.Errorf("load practitioner: %w", err)
	}
	if !exists {
		return nil, ErrPractitionerNotFound
	}

	a, err := parseInput(practitionerID, in)
	if err != nil {
		return nil, err
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}

	saved, err := s.repo.UpsertAvailability(ctx, a)
	if err != nil {
		return nil, err
	}

	s.log.Info("availability updated",
		zap.String("practitioner_id", practitionerID.String()),
		zap.String("start", saved.Start.String()),
		zap.String("end", saved.End.String()),
		zap.Int("working_days", len(saved.WorkingDays)),
	)
	return saved, nil
}

func (s *Service) Get(ctx context.Context, practitionerID uuid.UUID) (*Availability, error) {
	a, err := s.repo.GetAvailability(ctx, practitionerID)
	if err != nil {
		if errors.Is(err, ErrAvailabilityNotSet) {
			return nil, err
		}
		return nil, fmt.Errorf("load availability: %w", err)
	}
	return a, nil
}

func parseInput(practitionerID uuid.UUID, in SetInput) (Availability, error) {
	start, err := calendar.ParseClock(in.Start)
	if err != nil {
		return Availability{}, fmt.Errorf("%w: start: %v", ErrInvalidAvailability, err)
	}
	end, err := calendar.ParseClock(in.End)
	if err != nil {
		return Availability{}, fmt.Errorf("%w: end: %v", ErrInvalidAvailability, err)
	}

	days := make([]time.Weekday, 0, len(in.WorkingDays))
	for _, tok := range in.WorkingDays {
		d, err := calendar.ParseWeekday(tok)
		if err != nil {
			return Availability{}, fmt.Errorf("%w: %v", ErrInvalidAvailability, err)
		}
		days = append(days, d)
	}

	return Availability{
		PractitionerID: practitionerID,
		Start:          start,
		End:            end,
		WorkingDays:    normalizeDays(days),
	}, nil
}
