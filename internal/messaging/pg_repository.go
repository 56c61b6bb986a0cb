package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hackgods/practitioner-scheduling/internal/db"
)

const messageColumns = `id, sender_id, recipient_id, body, sent_at, read_at`

type PgRepository struct {
	db db.DBTX
}

func NewPgRepository(conn db.DBTX) *PgRepository {
	return &PgRepository{db: conn}
}

func scanMessage(row pgx.Row) (*Message, error) {
	var m Message
	if err := row.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Body, &m.SentAt, &m.ReadAt); err != nil {
		return nil, err
	}
	return &m, nil
}

func collectMessages(rows pgx.Rows) ([]Message, error) {
	defer rows.Close()

	out := []Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PgRepository) Insert(ctx context.Context, m Message) (*Message, error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO messages (id, sender_id, recipient_id, body, sent_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+messageColumns,
		m.ID, m.SenderID, m.RecipientID, m.Body, m.SentAt)

	saved, err := scanMessage(row)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	return saved, nil
}

func (r *PgRepository) ListForParty(ctx context.Context, partyID uuid.UUID) ([]Message, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE sender_id = $1 OR recipient_id = $1
		ORDER BY sent_at, id
	`, partyID)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	return collectMessages(rows)
}

func (r *PgRepository) Thread(ctx context.Context, partyID, counterpartID uuid.UUID) ([]Message, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE (sender_id = $1 AND recipient_id = $2)
		   OR (sender_id = $2 AND recipient_id = $1)
		ORDER BY sent_at, id
	`, partyID, counterpartID)
	if err != nil {
		return nil, fmt.Errorf("query thread: %w", err)
	}
	return collectMessages(rows)
}

func (r *PgRepository) MarkRead(ctx context.Context, recipientID, senderID uuid.UUID, at time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE messages
		SET read_at = $3
		WHERE recipient_id = $1
		  AND sender_id = $2
		  AND read_at IS NULL
	`, recipientID, senderID, at)
	if err != nil {
		return 0, fmt.Errorf("mark messages read: %w", err)
	}
	return tag.RowsAffected(), nil
}
