// Package scheduler runs the periodic sweeps inside the API process.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Job is one idempotent sweep. Overlapping runs across processes are safe;
// within a process a job never overlaps itself.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

type Scheduler struct {
	interval time.Duration
	jobs     []Job
}

func New(interval time.Duration, jobs ...Job) *Scheduler {
	return &Scheduler{interval: interval, jobs: jobs}
}

// Start runs every job once, then on each tick, until ctx is cancelled. It
// returns after the in-flight round finishes.
func (s *Scheduler) Start(ctx context.Context) {
	slog.Info("scheduler started", "interval", s.interval, "jobs", len(s.jobs))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.round(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.round(ctx)
		}
	}
}

func (s *Scheduler) round(ctx context.Context) {
	var wg sync.WaitGroup

	for _, job := range s.jobs {
		wg.Go(func() {
			s.runJob(ctx, job)
		})
	}

	wg.Wait()
}

func (s *Scheduler) runJob(ctx context.Context, job Job) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("sweep panicked", "job", job.Name, "panic", r)
		}
	}()

	start := time.Now()

	if err := job.Run(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}

		slog.Error("sweep failed", "job", job.Name, "error", err)

		return
	}

	slog.Debug("sweep finished", "job", job.Name, "took", time.Since(start))
}
