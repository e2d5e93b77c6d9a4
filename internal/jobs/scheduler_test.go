package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClasses struct {
	ids []int
	err error
}

func (f fakeClasses) ListIDs(context.Context) ([]int, error) { return f.ids, f.err }

type fakeWarmer struct {
	got []int
}

func (f *fakeWarmer) WarmCache(_ context.Context, ids []int) (int, error) {
	f.got = append(f.got, ids...)
	return len(ids), nil
}

type fakePruner struct {
	retention time.Duration
	calls     int
}

func (f *fakePruner) Prune(_ context.Context, retention time.Duration) (int64, error) {
	f.retention = retention
	f.calls++
	return 3, nil
}

func TestNew_RegistersJobs(t *testing.T) {
	s, err := New(Config{
		CacheWarmSchedule:  "@daily",
		AuditPruneSchedule: "0 3 * * *",
		AuditRetention:     time.Hour,
	}, fakeClasses{}, &fakeWarmer{}, &fakePruner{}, zerolog.Nop())
	require.NoError(t, err)
	assert.Len(t, s.cron.Entries(), 2)

	s, err = New(Config{CacheWarmSchedule: "@daily"}, fakeClasses{}, &fakeWarmer{}, &fakePruner{}, zerolog.Nop())
	require.NoError(t, err)
	assert.Len(t, s.cron.Entries(), 1, "empty schedule disables a job")
}

func TestNew_BadSchedule(t *testing.T) {
	_, err := New(Config{CacheWarmSchedule: "every tuesday"}, fakeClasses{}, &fakeWarmer{}, &fakePruner{}, zerolog.Nop())
	assert.Error(t, err)
}

func TestWarmCache(t *testing.T) {
	warmer := &fakeWarmer{}
	s, err := New(Config{}, fakeClasses{ids: []int{1, 2, 3}}, warmer, &fakePruner{}, zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, s.WarmCache(context.Background()))
	assert.Equal(t, []int{1, 2, 3}, warmer.got)

	s.classes = fakeClasses{err: errors.New("db down")}
	assert.Error(t, s.WarmCache(context.Background()))
}

func TestPruneAudit(t *testing.T) {
	pruner := &fakePruner{}
	s, err := New(Config{AuditRetention: 180 * 24 * time.Hour}, fakeClasses{}, &fakeWarmer{}, pruner, zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, s.PruneAudit(context.Background()))
	assert.Equal(t, 180*24*time.Hour, pruner.retention)

	s.cfg.AuditRetention = 0
	require.NoError(t, s.PruneAudit(context.Background()))
	assert.Equal(t, 1, pruner.calls, "zero retention disables pruning")
}

func TestStartStop(t *testing.T) {
	s, err := New(Config{CacheWarmSchedule: "@hourly"}, fakeClasses{}, &fakeWarmer{}, &fakePruner{}, zerolog.Nop())
	require.NoError(t, err)

	s.Start()
	select {
	case <-s.Stop().Done():
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
