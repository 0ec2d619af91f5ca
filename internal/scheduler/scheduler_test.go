package scheduler_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/marketvest/internal/scheduler"
)

func TestScheduler_Start(t *testing.T) {
	var ok, failing, panicking atomic.Int32

	s := scheduler.New(10*time.Millisecond,
		scheduler.Job{Name: "ok", Run: func(context.Context) error {
			ok.Add(1)
			return nil
		}},
		scheduler.Job{Name: "failing", Run: func(context.Context) error {
			failing.Add(1)
			return errors.New("boom")
		}},
		scheduler.Job{Name: "panicking", Run: func(context.Context) error {
			panicking.Add(1)
			panic("boom")
		}},
	)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan struct{})

	go func() {
		s.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return ok.Load() >= 3 && failing.Load() >= 3 && panicking.Load() >= 3
	}, time.Second, 5*time.Millisecond)

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestScheduler_RunsImmediately(t *testing.T) {
	ran := make(chan struct{}, 1)

	s := scheduler.New(time.Hour, scheduler.Job{Name: "once", Run: func(context.Context) error {
		ran <- struct{}{}
		return nil
	}})

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	go s.Start(ctx)

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("job did not run on start")
	}
}
