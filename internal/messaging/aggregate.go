package messaging

import (
	"slices"

	"github.com/google/uuid"
)

// Aggregate groups the messages partyID sent or received by counterpart. Each
// conversation carries the most recent message and how many messages addressed
// to partyID are still unread. Conversations are ordered newest first.
func Aggregate(messages []Message, partyID uuid.UUID) []Conversation {
	byCounterpart := make(map[uuid.UUID]*Conversation)
	var order []uuid.UUID

	for _, m := range messages {
		if !m.Involves(partyID) || m.SenderID == m.RecipientID {
			continue
		}
		other := m.Counterpart(partyID)

		c, ok := byCounterpart[other]
		if !ok {
			c = &Conversation{CounterpartID: other, LastMessage: m}
			byCounterpart[other] = c
			order = append(order, other)
		} else if !m.SentAt.Before(c.LastMessage.SentAt) {
			c.LastMessage = m
		}

		if m.RecipientID == partyID && m.ReadAt == nil {
			c.UnreadCount++
		}
	}

	out := make([]Conversation, 0, len(order))
	for _, id := range order {
		out = append(out, *byCounterpart[id])
	}
	slices.SortStableFunc(out, func(a, b Conversation) int {
		return b.LastMessage.SentAt.Compare(a.LastMessage.SentAt)
	})
	return out
}
