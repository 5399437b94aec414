package worker

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pratik-mahalle/mediremind/internal/pkg/logger"
)

type fakePurger struct {
	calls int
	n     int64
	err   error
}

func (f *fakePurger) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	f.calls++
	return f.n, f.err
}

type fakeCounter struct{ calls int }

func (f *fakeCounter) Count(ctx context.Context) (int64, error) {
	f.calls++
	return 3, nil
}

type fakeCleaner struct{ calls int }

func (f *fakeCleaner) Cleanup() int {
	f.calls++
	return 0
}

func TestNewMaintenance_RegistersEnabledJobs(t *testing.T) {
	m, err := NewMaintenance(Options{Purger: &fakePurger{}, Users: &fakeCounter{}}, logger.Nop())
	require.NoError(t, err)

	jobs := m.Jobs()
	sort.Strings(jobs)
	assert.Equal(t, []string{JobCountUsers, JobPurgeRevokedTokens}, jobs)
}

func TestNewMaintenance_InvalidSchedule(t *testing.T) {
	_, err := NewMaintenance(Options{PurgeSchedule: "every tuesday", Purger: &fakePurger{}}, logger.Nop())
	assert.Error(t, err)
}

func TestRunJob(t *testing.T) {
	purger := &fakePurger{n: 4}
	m, err := NewMaintenance(Options{Purger: purger}, logger.Nop())
	require.NoError(t, err)

	require.NoError(t, m.RunJob(context.Background(), JobPurgeRevokedTokens))
	assert.Equal(t, 1, purger.calls)

	purger.err = errors.New("db locked")
	assert.Error(t, m.RunJob(context.Background(), JobPurgeRevokedTokens))

	assert.Error(t, m.RunJob(context.Background(), JobCountUsers))
}

func TestStart_RunsJobsOnceAndStopsWithContext(t *testing.T) {
	purger, counter, cleaner := &fakePurger{}, &fakeCounter{}, &fakeCleaner{}
	m, err := NewMaintenance(Options{Purger: purger, Users: counter, Limiter: cleaner}, logger.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Start(ctx) }()

	require.Eventually(t, func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		return m.running
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after cancel")
	}

	assert.Equal(t, 1, purger.calls)
	assert.Equal(t, 1, counter.calls)
	assert.Equal(t, 1, cleaner.calls)
}
