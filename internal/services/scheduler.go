package services

import (
	"context"
	"sync"
	"time"

	"github.com/podquote/podquote-backend/internal/platform/logger"
)

// TaskScheduler defers a pipeline run until after the triggering request
// has returned. Submit is fire-and-forget; the task owns its own context.
type TaskScheduler interface {
	Submit(task func(ctx context.Context))
}

type AsyncScheduler struct {
	log     *logger.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewAsyncScheduler runs each task on its own goroutine with a detached,
// deadline-bounded context, so an abandoned poller never cancels a run
// mid-persistence.
func NewAsyncScheduler(log *logger.Logger, timeout time.Duration) *AsyncScheduler {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &AsyncScheduler{log: log.With("service", "scheduler"), timeout: timeout}
}

func (s *AsyncScheduler) Submit(task func(ctx context.Context)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("background task panicked", "panic", r)
			}
		}()
		task(ctx)
	}()
}

// Wait blocks until every submitted task finishes. Called on shutdown.
func (s *AsyncScheduler) Wait() { s.wg.Wait() }

// SyncScheduler runs tasks inline. It is the fallback for environments
// without deferred execution and the default in tests, where it makes
// pipeline completion observable without polling.
type SyncScheduler struct{}

func (SyncScheduler) Submit(task func(ctx context.Context)) {
	task(context.Background())
}
