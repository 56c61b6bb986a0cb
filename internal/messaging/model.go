package messaging

import (
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/practitioner-scheduling/internal/apperr"
)

const MaxBodyLength = 4000

var (
	ErrEmptyBody       = apperr.New(apperr.KindValidation, "empty_message", "message body is empty")
	ErrBodyTooLong     = apperr.New(apperr.KindValidation, "message_too_long", "message body is too long")
	ErrSelfMessage     = apperr.New(apperr.KindValidation, "self_message", "sender and recipient must differ")
	ErrInvalidIdentity = apperr.New(apperr.KindValidation, "invalid_party", "party id is required")
)

// Message is one entry in the append-only message log.
type Message struct {
	ID          uuid.UUID
	SenderID    uuid.UUID
	RecipientID uuid.UUID
	Body        string
	SentAt      time.Time
	ReadAt      *time.Time
}

// Counterpart returns the other party of m as seen by partyID.
func (m Message) Counterpart(partyID uuid.UUID) uuid.UUID {
	if m.SenderID == partyID {
		return m.RecipientID
	}
	return m.SenderID
}

func (m Message) Involves(partyID uuid.UUID) bool {
	return m.SenderID == partyID || m.RecipientID == partyID
}

// Conversation is the per-counterpart rollup of a party's messages.
type Conversation struct {
	CounterpartID uuid.UUID
	LastMessage   Message
	UnreadCount   int
}
