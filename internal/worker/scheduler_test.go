package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penguin-works/kouji-backend/internal/kouji/service"
)

type fakeJobs struct {
	snapshots   atomic.Int32
	cleanups    atomic.Int32
	snapshotErr error
	path        string
}

func (f *fakeJobs) Snapshot(ctx context.Context, rel string) (int, error) {
	f.snapshots.Add(1)
	f.path = rel
	return 2, f.snapshotErr
}

func (f *fakeJobs) Cleanup(ctx context.Context) (service.CleanupReport, error) {
	f.cleanups.Add(1)
	return service.CleanupReport{Before: 2, After: 2}, nil
}

func TestNewScheduler_InvalidSpec(t *testing.T) {
	_, err := NewScheduler(&fakeJobs{}, "工事", "0 0 * * *", time.UTC)
	assert.Error(t, err, "five field specs are rejected")

	_, err = NewScheduler(&fakeJobs{}, "工事", "not a spec", time.UTC)
	assert.Error(t, err)
}

func TestRunOnce(t *testing.T) {
	jobs := &fakeJobs{}
	s, err := NewScheduler(jobs, "工事", "0 0 0 * * *", time.UTC)
	require.NoError(t, err)

	require.NoError(t, s.RunOnce(context.Background()))
	assert.EqualValues(t, 1, jobs.snapshots.Load())
	assert.EqualValues(t, 1, jobs.cleanups.Load())
	assert.Equal(t, "工事", jobs.path)
}

func TestRunOnce_SnapshotFailureSkipsCleanup(t *testing.T) {
	jobs := &fakeJobs{snapshotErr: errors.New("disk full")}
	s, err := NewScheduler(jobs, "工事", "0 0 0 * * *", time.UTC)
	require.NoError(t, err)

	assert.Error(t, s.RunOnce(context.Background()))
	assert.EqualValues(t, 0, jobs.cleanups.Load())
}

func TestScheduler_Ticks(t *testing.T) {
	jobs := &fakeJobs{}
	s, err := NewScheduler(jobs, "工事", "* * * * * *", time.UTC)
	require.NoError(t, err)

	s.Start()
	defer s.Stop(context.Background())

	assert.Eventually(t, func() bool { return jobs.snapshots.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
}
