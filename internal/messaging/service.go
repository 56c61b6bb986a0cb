package messaging

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hackgods/practitioner-scheduling/internal/apperr"
	"github.com/hackgods/practitioner-scheduling/internal/metrics"
)

type Service struct {
	repo    Repository
	log     *zap.Logger
	metrics *metrics.MessagingMetrics
	now     func() time.Time
}

func NewService(repo Repository, log *zap.Logger, m *metrics.MessagingMetrics) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		repo:    repo,
		log:     log,
		metrics: m,
		now:     time.Now,
	}
}

type SendInput struct {
	SenderID    uuid.UUID
	RecipientID uuid.UUID
	Body        string
}

func (s *Service) Send(ctx context.Context, in SendInput) (*Message, error) {
	msg, err := s.send(ctx, in)
	if err != nil {
		s.metrics.ObserveSent(apperr.CodeOf(err))
		return nil, err
	}
	s.metrics.ObserveSent("sent")
	s.log.Debug("message sent",
		zap.String("message_id", msg.ID.String()),
		zap.String("sender_id", msg.SenderID.String()),
		zap.String("recipient_id", msg.RecipientID.String()),
	)
	return msg, nil
}

func (s *Service) send(ctx context.Context, in SendInput) (*Message, error) {
	if in.SenderID == uuid.Nil || in.RecipientID == uuid.Nil {
		return nil, ErrInvalidIdentity
	}
	if in.SenderID == in.RecipientID {
		return nil, ErrSelfMessage
	}
	body := strings.TrimSpace(in.Body)
	if body == "" {
		return nil, ErrEmptyBody
	}
	if utf8.RuneCountInString(body) > MaxBodyLength {
		return nil, fmt.Errorf("%w: limit is %d characters", ErrBodyTooLong, MaxBodyLength)
	}

	msg, err := s.repo.Insert(ctx, Message{
		ID:          uuid.New(),
		SenderID:    in.SenderID,
		RecipientID: in.RecipientID,
		Body:        body,
		SentAt:      s.now().UTC(),
	})
	if err != nil {
		s.log.Error("failed to store message", zap.Error(err))
		return nil, err
	}
	return msg, nil
}

// Conversations returns partyID's conversation list, newest first.
func (s *Service) Conversations(ctx context.Context, partyID uuid.UUID) ([]Conversation, error) {
	if partyID == uuid.Nil {
		return nil, ErrInvalidIdentity
	}
	messages, err := s.repo.ListForParty(ctx, partyID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return Aggregate(messages, partyID), nil
}

func (s *Service) Thread(ctx context.Context, partyID, counterpartID uuid.UUID) ([]Message, error) {
	if partyID == uuid.Nil || counterpartID == uuid.Nil {
		return nil, ErrInvalidIdentity
	}
	messages, err := s.repo.Thread(ctx, partyID, counterpartID)
	if err != nil {
		return nil, fmt.Errorf("load thread: %w", err)
	}
	return messages, nil
}

// MarkRead marks everything counterpartID sent to partyID as read.
func (s *Service) MarkRead(ctx context.Context, partyID, counterpartID uuid.UUID) (int64, error) {
	if partyID == uuid.Nil || counterpartID == uuid.Nil {
		return 0, ErrInvalidIdentity
	}
	n, err := s.repo.MarkRead(ctx, partyID, counterpartID, s.now().UTC())
	if err != nil {
		return 0, err
	}
	return n, nil
}
