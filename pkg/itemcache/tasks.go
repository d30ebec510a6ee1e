package itemcache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

type orderedTask struct {
	ctx  context.Context
	name string
	fn   func(context.Context) error
	done chan struct{}
}

// taskRunner runs detached background work. Tasks outlive the request that
// spawned them, are bounded in number, and have their errors and panics
// logged instead of returned.
//
// Go runs tasks concurrently. GoOrdered tasks run one at a time on a single
// worker, in the order they were accepted.
type taskRunner struct {
	sem     *semaphore.Weighted
	queue   chan orderedTask
	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
	timeout time.Duration
	logger  *zap.Logger
}

func newTaskRunner(limit int64, timeout time.Duration, logger *zap.Logger) *taskRunner {
	r := &taskRunner{
		sem:     semaphore.NewWeighted(limit),
		queue:   make(chan orderedTask, limit),
		timeout: timeout,
		logger:  logger,
	}
	go r.drainOrdered()
	return r
}

// Go starts fn on a context detached from ctx's cancellation but bounded by
// the runner timeout. It never blocks; it fails when the runner is closed or full.
func (r *taskRunner) Go(ctx context.Context, name string, fn func(context.Context) error) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return errRunnerClosed
	}
	if !r.sem.TryAcquire(1) {
		return errRunnerBusy
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer r.sem.Release(1)
		r.run(ctx, name, fn)
	}()
	return nil
}

// GoOrdered queues fn behind every ordered task accepted before it. The
// returned channel is closed once fn has run. When the queue is full it fails
// with errRunnerBusy, or with wait set, blocks until there is room or ctx is done.
func (r *taskRunner) GoOrdered(ctx context.Context, name string, fn func(context.Context) error, wait bool) (<-chan struct{}, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, errRunnerClosed
	}

	task := orderedTask{ctx: ctx, name: name, fn: fn, done: make(chan struct{})}
	r.wg.Add(1)
	if wait {
		select {
		case r.queue <- task:
			return task.done, nil
		case <-ctx.Done():
			r.wg.Done()
			return nil, ctx.Err()
		}
	}
	select {
	case r.queue <- task:
		return task.done, nil
	default:
		r.wg.Done()
		return nil, errRunnerBusy
	}
}

// Wait blocks until running and queued tasks finish. Callers must not spawn
// tasks concurrently with Wait.
func (r *taskRunner) Wait() {
	r.wg.Wait()
}

// Close refuses new tasks and waits for running ones until ctx is done, after
// which they are abandoned.
func (r *taskRunner) Close(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ErrDrainTimeout
	}
}

func (r *taskRunner) drainOrdered() {
	for task := range r.queue {
		r.run(task.ctx, task.name, task.fn)
		close(task.done)
		r.wg.Done()
	}
}

func (r *taskRunner) run(ctx context.Context, name string, fn func(context.Context) error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("cache_task_panic",
				zap.String("task", name),
				zap.String("panic", fmt.Sprint(rec)),
				zap.Stack("stack"),
			)
		}
	}()

	taskCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	if err := fn(taskCtx); err != nil {
		r.logger.Error("cache_task_error", zap.String("task", name), zap.Error(err))
	}
}
