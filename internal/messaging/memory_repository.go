package messaging

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is an in-process test double for Repository.
type MemoryRepository struct {
	mu       sync.RWMutex
	messages []Message
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Insert(_ context.Context, m Message) (*Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.messages = append(r.messages, m)
	return &m, nil
}

func (r *MemoryRepository) ListForParty(_ context.Context, partyID uuid.UUID) ([]Message, error) {
	return r.filter(func(m Message) bool { return m.Involves(partyID) }), nil
}

func (r *MemoryRepository) Thread(_ context.Context, partyID, counterpartID uuid.UUID) ([]Message, error) {
	return r.filter(func(m Message) bool {
		return (m.SenderID == partyID && m.RecipientID == counterpartID) ||
			(m.SenderID == counterpartID && m.RecipientID == partyID)
	}), nil
}

func (r *MemoryRepository) MarkRead(_ context.Context, recipientID, senderID uuid.UUID, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for i := range r.messages {
		m := &r.messages[i]
		if m.RecipientID == recipientID && m.SenderID == senderID && m.ReadAt == nil {
			stamp := at
			m.ReadAt = &stamp
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepository) filter(keep func(Message) bool) []Message {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []Message{}
	for _, m := range r.messages {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out
}
