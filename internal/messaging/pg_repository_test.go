package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columns = []string{"id", "sender_id", "recipient_id", "body", "sent_at", "read_at"}

func TestPgInsertMessage(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPgRepository(mock)
	m := Message{ID: uuid.New(), SenderID: uuid.New(), RecipientID: uuid.New(), Body: "hi", SentAt: time.Now().UTC()}

	mock.ExpectQuery("INSERT INTO messages").
		WithArgs(m.ID, m.SenderID, m.RecipientID, m.Body, m.SentAt).
		WillReturnRows(pgxmock.NewRows(columns).
			AddRow(m.ID, m.SenderID, m.RecipientID, m.Body, m.SentAt, (*time.Time)(nil)))

	saved, err := repo.Insert(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, m.ID, saved.ID)
	assert.Nil(t, saved.ReadAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgListForParty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPgRepository(mock)
	me, other := uuid.New(), uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery("FROM messages").WithArgs(me).
		WillReturnRows(pgxmock.NewRows(columns).
			AddRow(uuid.New(), other, me, "one", now, (*time.Time)(nil)).
			AddRow(uuid.New(), me, other, "two", now.Add(time.Second), &now))

	got, err := repo.ListForParty(context.Background(), me)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "two", got[1].Body)
	require.NotNil(t, got[1].ReadAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgMarkRead(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPgRepository(mock)
	me, other := uuid.New(), uuid.New()
	at := time.Now().UTC()

	mock.ExpectExec("UPDATE messages").WithArgs(me, other, at).
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	n, err := repo.MarkRead(context.Background(), me, other, at)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	require.NoError(t, mock.ExpectationsWereMet())
}
