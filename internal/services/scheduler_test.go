package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/podquote/podquote-backend/internal/platform/logger"
)

func TestSyncSchedulerRunsInline(t *testing.T) {
	var ran atomic.Bool
	SyncScheduler{}.Submit(func(ctx context.Context) {
		ran.Store(true)
	})
	if !ran.Load() {
		t.Fatalf("sync scheduler did not run task before returning")
	}
}

func TestAsyncSchedulerRunsAndWaits(t *testing.T) {
	s := NewAsyncScheduler(logger.NewNop(), time.Minute)
	var count atomic.Int32
	for i := 0; i < 5; i++ {
		s.Submit(func(ctx context.Context) {
			count.Add(1)
		})
	}
	s.Wait()
	if got := count.Load(); got != 5 {
		t.Fatalf("ran %d tasks, want 5", got)
	}
}

func TestAsyncSchedulerRecoversPanic(t *testing.T) {
	s := NewAsyncScheduler(logger.NewNop(), time.Minute)
	s.Submit(func(ctx context.Context) {
		panic("boom")
	})
	s.Wait()
}

func TestAsyncSchedulerBoundsTaskContext(t *testing.T) {
	s := NewAsyncScheduler(logger.NewNop(), time.Minute)
	var hasDeadline atomic.Bool
	s.Submit(func(ctx context.Context) {
		_, ok := ctx.Deadline()
		hasDeadline.Store(ok)
	})
	s.Wait()
	if !hasDeadline.Load() {
		t.Fatalf("task context has no deadline")
	}
}
