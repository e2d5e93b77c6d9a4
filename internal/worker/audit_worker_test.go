package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/jadwal-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuditWriter struct {
	batchErr error
	failIDs  map[string]bool
	batches  [][]model.AuditEntry
	singles  []model.AuditEntry
}

func (f *fakeAuditWriter) InsertBatch(_ context.Context, entries []model.AuditEntry) error {
	if f.batchErr != nil {
		return f.batchErr
	}
	f.batches = append(f.batches, entries)
	return nil
}

func (f *fakeAuditWriter) Insert(_ context.Context, e model.AuditEntry) error {
	if f.failIDs[e.EntityID] {
		return errors.New("insert failed")
	}
	f.singles = append(f.singles, e)
	return nil
}

func newTestWorker(store AuditWriter) (*AuditWorker, *[][]byte) {
	var requeued [][]byte
	w := NewAuditWorker(store, nil, zerolog.Nop())
	w.requeue = func(_ context.Context, raw []byte) error {
		requeued = append(requeued, raw)
		return nil
	}
	return w, &requeued
}

func payload(entityID string, attempts int) *auditPayload {
	return &auditPayload{
		ChangeEvent: model.ChangeEvent{
			Entity:   model.EntityTimetableSession,
			EntityID: entityID,
			Action:   model.ChangeCreated,
			ActorID:  3,
			Version:  1,
			Snapshot: json.RawMessage(`{"id":"` + entityID + `"}`),
			At:       time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC),
		},
		Attempts: attempts,
	}
}

func TestDecodeAuditPayload(t *testing.T) {
	ev := model.ChangeEvent{
		Entity:   model.EntityGradingSystem,
		EntityID: "abc",
		Action:   model.ChangeUpdated,
		Version:  4,
	}
	raw, err := json.Marshal(ev)
	require.NoError(t, err)

	p, err := decodeAuditPayload(string(raw))
	require.NoError(t, err)
	assert.Equal(t, "abc", p.EntityID)
	assert.Equal(t, 0, p.Attempts)

	e := p.entry()
	assert.Equal(t, model.ChangeUpdated, e.Action)
	assert.False(t, e.OccurredAt.IsZero(), "missing timestamps default to now")

	_, err = decodeAuditPayload("{not json")
	assert.Error(t, err)
}

func TestFlushSafe_Batch(t *testing.T) {
	store := &fakeAuditWriter{}
	w, requeued := newTestWorker(store)

	w.flushSafe(context.Background(), []*auditPayload{payload("a", 0), payload("b", 0)})

	require.Len(t, store.batches, 1)
	assert.Len(t, store.batches[0], 2)
	assert.Empty(t, store.singles)
	assert.Empty(t, *requeued)
}

func TestFlushSafe_FallbackAndRequeue(t *testing.T) {
	store := &fakeAuditWriter{
		batchErr: errors.New("batch failed"),
		failIDs:  map[string]bool{"bad": true, "poison": true},
	}
	w, requeued := newTestWorker(store)

	w.flushSafe(context.Background(), []*auditPayload{
		payload("good", 0),
		payload("bad", 1),
		payload("poison", AuditMaxAttempts-1),
	})

	require.Len(t, store.singles, 1)
	assert.Equal(t, "good", store.singles[0].EntityID)

	require.Len(t, *requeued, 1, "poison entry is dropped, bad entry requeued")
	p, err := decodeAuditPayload(string((*requeued)[0]))
	require.NoError(t, err)
	assert.Equal(t, "bad", p.EntityID)
	assert.Equal(t, 2, p.Attempts)
	assert.JSONEq(t, `{"id":"bad"}`, string(p.Snapshot))
}

func TestFlushSafe_Empty(t *testing.T) {
	store := &fakeAuditWriter{}
	w, _ := newTestWorker(store)
	w.flushSafe(context.Background(), nil)
	assert.Empty(t, store.batches)
}
