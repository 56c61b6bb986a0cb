package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hackgods/practitioner-scheduling/internal/messaging"
)

type MessagingService interface {
	Send(ctx context.Context, in messaging.SendInput) (*messaging.Message, error)
	Conversations(ctx context.Context, partyID uuid.UUID) ([]messaging.Conversation, error)
	Thread(ctx context.Context, partyID, counterpartID uuid.UUID) ([]messaging.Message, error)
	MarkRead(ctx context.Context, partyID, counterpartID uuid.UUID) (int64, error)
}

func sendMessageHandler(svc MessagingService, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SendMessageRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		msg, err := svc.Send(r.Context(), messaging.SendInput{
			SenderID:    uuid.MustParse(req.SenderID),
			RecipientID: uuid.MustParse(req.RecipientID),
			Body:        req.Body,
		})
		if err != nil {
			writeServiceError(w, r, log, err)
			return
		}

		writeJSON(w, http.StatusCreated, toMessageResponse(*msg))
	}
}

func listConversationsHandler(svc MessagingService, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partyID, ok := uuidQuery(w, r, "party_id")
		if !ok {
			return
		}

		convs, err := svc.Conversations(r.Context(), partyID)
		if err != nil {
			writeServiceError(w, r, log, err)
			return
		}

		resp := make([]ConversationResponse, 0, len(convs))
		for _, c := range convs {
			resp = append(resp, ConversationResponse{
				CounterpartID: c.CounterpartID,
				LastMessage:   toMessageResponse(c.LastMessage),
				UnreadCount:   c.UnreadCount,
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func threadHandler(svc MessagingService, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counterpart, ok := uuidParam(w, r, "counterpart")
		if !ok {
			return
		}
		partyID, ok := uuidQuery(w, r, "party_id")
		if !ok {
			return
		}

		msgs, err := svc.Thread(r.Context(), partyID, counterpart)
		if err != nil {
			writeServiceError(w, r, log, err)
			return
		}

		resp := make([]MessageResponse, 0, len(msgs))
		for _, m := range msgs {
			resp = append(resp, toMessageResponse(m))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func markReadHandler(svc MessagingService, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counterpart, ok := uuidParam(w, r, "counterpart")
		if !ok {
			return
		}
		partyID, ok := uuidQuery(w, r, "party_id")
		if !ok {
			return
		}

		n, err := svc.MarkRead(r.Context(), partyID, counterpart)
		if err != nil {
			writeServiceError(w, r, log, err)
			return
		}

		writeJSON(w, http.StatusOK, MarkReadResponse{Marked: n})
	}
}
