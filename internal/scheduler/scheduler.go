// Package scheduler runs background jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is a scheduled unit of work. The context is cancelled when the scheduler stops.
type Job func(ctx context.Context)

// Scheduler runs one job on a standard five-field cron schedule (UTC).
// A run that is still going when the next one is due causes that next run to be skipped.
type Scheduler struct {
	cron   *cron.Cron
	entry  cron.EntryID
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a Scheduler running job on spec, e.g. "0 6 * * *".
func New(spec string, job Job) (*Scheduler, error) {
	logger := cron.PrintfLogger(log.Default())
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	id, err := c.AddFunc(spec, func() { job(ctx) })
	if err != nil {
		cancel()
		return nil, fmt.Errorf("invalid cron schedule %q: %w", spec, err)
	}

	return &Scheduler{cron: c, entry: id, ctx: ctx, cancel: cancel}, nil
}

// Start begins running the job in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Next returns the next scheduled run, or the zero time if the scheduler is not started.
func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.entry).Next
}

// Stop cancels a running job and waits for it to return, or for ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
