package messaging

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Insert(ctx context.Context, m Message) (*Message, error)
	// ListForParty returns every message partyID sent or received, oldest first.
	ListForParty(ctx context.Context, partyID uuid.UUID) ([]Message, error)
	// Thread returns the messages exchanged between two parties, oldest first.
	Thread(ctx context.Context, partyID, counterpartID uuid.UUID) ([]Message, error)
	// MarkRead stamps unread messages from senderID to recipientID and reports how many changed.
	MarkRead(ctx context.Context, recipientID, senderID uuid.UUID, at time.Time) (int64, error)
}
