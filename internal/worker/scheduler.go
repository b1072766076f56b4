// Package worker runs the nightly kouji snapshot.
package worker

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/penguin-works/kouji-backend/internal/kouji/service"
	"github.com/penguin-works/kouji-backend/internal/logging"
)

// Jobs is the part of the kouji service the scheduler drives.
type Jobs interface {
	Snapshot(ctx context.Context, rel string) (int, error)
	Cleanup(ctx context.Context) (service.CleanupReport, error)
}

type Scheduler struct {
	jobs Jobs
	path string
	spec string

	cron *cron.Cron
	// serializes manual runs with cron triggered ones
	mu sync.Mutex
}

// NewScheduler validates spec (six fields, seconds first) and returns a
// scheduler that snapshots path on every tick.
func NewScheduler(jobs Jobs, path, spec string, loc *time.Location) (*Scheduler, error) {
	if loc == nil {
		loc = time.Local
	}
	s := &Scheduler{
		jobs: jobs,
		path: path,
		spec: spec,
		cron: cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
	}
	if _, err := s.cron.AddFunc(spec, func() { _ = s.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid SNAPSHOT_CRON %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	log.Printf("[cron] snapshot scheduler started spec=%q path=%s", s.spec, s.path)
	s.cron.Start()
}

// Stop waits for a running job to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

// RunOnce takes a snapshot and then removes invalid stored ranges.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger := logging.New(ctx)
	start := time.Now()

	n, err := s.jobs.Snapshot(ctx, s.path)
	if err != nil {
		logger.Error("worker.snapshot", err)
		return err
	}

	report, err := s.jobs.Cleanup(ctx)
	if err != nil {
		logger.Error("worker.cleanup", err)
		return err
	}

	logger.Infof("worker.run", "saved=%d before=%d after=%d removed=%d took=%s",
		n, report.Before, report.After, len(report.Removed), time.Since(start))
	return nil
}
