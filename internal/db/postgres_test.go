package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	named := &pgconn.PgError{Code: "23505", ConstraintName: "appointments_active_slot_key"}

	assert.True(t, IsUniqueViolation(named, ""))
	assert.True(t, IsUniqueViolation(named, "appointments_active_slot_key"))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", named), "appointments_active_slot_key"))
	assert.False(t, IsUniqueViolation(named, "some_other_index"))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}, ""))
	assert.False(t, IsUniqueViolation(errors.New("boom"), ""))
	assert.False(t, IsUniqueViolation(nil, ""))
}

func TestConnectPostgresRejectsBadDSN(t *testing.T) {
	_, err := ConnectPostgres(context.Background(), "postgres://%zz", 5)
	assert.Error(t, err)
}
