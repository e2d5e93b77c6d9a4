package service

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestStoreErr(t *testing.T) {
	assert.Nil(t, storeErr(nil))
	assert.ErrorIs(t, storeErr(pgx.ErrNoRows), ErrNotFound)
	assert.ErrorIs(t, storeErr(&pgconn.PgError{Code: "23505"}), ErrDuplicate)
	assert.ErrorIs(t, storeErr(&pgconn.PgError{Code: "23503"}), ErrInvalidReference)

	other := errors.New("boom")
	assert.Equal(t, other, storeErr(other))
}

func TestDeleteErr(t *testing.T) {
	assert.ErrorIs(t, deleteErr(&pgconn.PgError{Code: "23503"}), ErrInUse)
	assert.ErrorIs(t, deleteErr(pgx.ErrNoRows), ErrNotFound)
}
