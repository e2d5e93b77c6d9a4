package schedule

import (
	"testing"

	"github.com/stemsi/jadwal-backend/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	draft, published, locked := model.SessionStatusDraft, model.SessionStatusPublished, model.SessionStatusLocked

	assert.True(t, CanTransition(draft, published))
	assert.True(t, CanTransition(published, locked))
	assert.True(t, CanTransition(locked, published))
	assert.True(t, CanTransition(published, draft))

	assert.False(t, CanTransition(draft, locked))
	assert.False(t, CanTransition(locked, draft))
	assert.False(t, CanTransition(draft, draft))
	assert.False(t, CanTransition("archived", draft))

	assert.ErrorIs(t, CheckTransition(locked, draft), ErrInvalidTransition)
	assert.NoError(t, CheckTransition(draft, published))
}

func TestIsVisible(t *testing.T) {
	assert.False(t, IsVisible(model.SessionStatusDraft))
	assert.True(t, IsVisible(model.SessionStatusPublished))
	assert.True(t, IsVisible(model.SessionStatusLocked))
}
