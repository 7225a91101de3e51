package workerpool

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

// task is a queued unit of work
type task struct {
	id  string
	fn  func() error
	ctx context.Context
}

var taskCounter atomic.Uint64

func newTask(fn func() error, ctx context.Context) *task {
	if ctx == nil {
		ctx = context.Background()
	}
	return &task{
		id:  fmt.Sprintf("task-%d", taskCounter.Add(1)),
		fn:  fn,
		ctx: ctx,
	}
}

// Pool is a fixed-size worker pool with a bounded queue
type Pool struct {
	config Config
	tasks  chan *task
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
	closed atomic.Bool

	stats *statsCollector

	// tracks queued-but-not-finished tasks for Wait
	pending sync.WaitGroup
}

// New creates a pool and starts its workers
func New(config Config) (*Pool, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		config: config,
		tasks:  make(chan *task, config.QueueSize),
		ctx:    ctx,
		cancel: cancel,
		stats:  newStatsCollector(),
	}

	for i := 0; i < config.Workers; i++ {
		p.wg.Add(1)
		p.stats.incActiveWorkers()
		go p.worker()
	}

	return p, nil
}

// NewDefault creates a pool with DefaultConfig
func NewDefault() *Pool {
	p, _ := New(DefaultConfig())
	return p
}

func (p *Pool) worker() {
	defer func() {
		p.wg.Done()
		p.stats.decActiveWorkers()
	}()

	for {
		select {
		case <-p.ctx.Done():
			p.drain()
			return
		case t, ok := <-p.tasks:
			if !ok {
				return
			}
			p.run(t)
		}
	}
}

// drain releases tasks still queued at shutdown so Wait cannot block
// on them. Stop closes the queue right after cancelling, which ends
// the range.
func (p *Pool) drain() {
	for t := range p.tasks {
		p.reportError(&TaskError{TaskID: t.id, Err: ErrPoolClosed})
		p.pending.Done()
	}
}

func (p *Pool) run(t *task) {
	defer p.pending.Done()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			p.reportError(&TaskError{
				TaskID: t.id,
				Err:    fmt.Errorf("panic: %v", r),
				Stack:  string(debug.Stack()),
			})
		}
		p.stats.recordTaskCompletion(time.Since(start))
	}()

	// Skip tasks whose context was cancelled while queued
	select {
	case <-t.ctx.Done():
		p.reportError(&TaskError{TaskID: t.id, Err: t.ctx.Err()})
		return
	default:
	}

	if err := t.fn(); err != nil {
		p.reportError(&TaskError{TaskID: t.id, Err: err})
	}
}

func (p *Pool) reportError(err *TaskError) {
	if p.config.ErrorHandler != nil {
		p.config.ErrorHandler(err)
	}
}

// Submit enqueues a task, blocking while the queue is full.
// Returns ErrPoolClosed after Stop.
func (p *Pool) Submit(fn func() error) error {
	return p.SubmitWithContext(context.Background(), fn)
}

// SubmitWithContext enqueues a task tied to ctx. The task is skipped if
// ctx is cancelled before a worker picks it up.
func (p *Pool) SubmitWithContext(ctx context.Context, fn func() error) error {
	if p.closed.Load() {
		return ErrPoolClosed
	}

	t := newTask(fn, ctx)
	p.pending.Add(1)

	select {
	case <-p.ctx.Done():
		p.pending.Done()
		return ErrPoolClosed
	case p.tasks <- t:
		return nil
	}
}

// TrySubmit enqueues a task without blocking. Returns ErrQueueFull when
// no queue space is available.
func (p *Pool) TrySubmit(fn func() error) error {
	if p.closed.Load() {
		return ErrPoolClosed
	}

	// Add before the send: a worker may finish the task, and hit its
	// pending.Done, before the sender resumes
	t := newTask(fn, context.Background())
	p.pending.Add(1)

	select {
	case <-p.ctx.Done():
		p.pending.Done()
		return ErrPoolClosed
	case p.tasks <- t:
		return nil
	default:
		p.pending.Done()
		p.stats.recordTaskRejection()
		return ErrQueueFull
	}
}

// SubmitWithTimeout enqueues a task, waiting up to timeout for queue
// space. Returns ErrTimeout when the wait expires.
func (p *Pool) SubmitWithTimeout(fn func() error, timeout time.Duration) error {
	if p.closed.Load() {
		return ErrPoolClosed
	}

	t := newTask(fn, context.Background())
	p.pending.Add(1)
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-p.ctx.Done():
		p.pending.Done()
		return ErrPoolClosed
	case p.tasks <- t:
		return nil
	case <-timer.C:
		p.pending.Done()
		p.stats.recordTaskRejection()
		return ErrTimeout
	}
}

// Stop shuts the pool down, waiting up to ShutdownTimeout for workers
// to finish. Returns ErrForcedShutdown if the timeout expired with
// tasks still running. Safe to call more than once.
func (p *Pool) Stop() error {
	var shutdownErr error

	p.once.Do(func() {
		p.closed.Store(true)
		p.cancel()
		close(p.tasks)

		done := make(chan struct{})
		go func() {
			p.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(p.config.ShutdownTimeout):
			shutdownErr = ErrForcedShutdown
		}
	})

	return shutdownErr
}

// IsClosed reports whether Stop has been called
func (p *Pool) IsClosed() bool {
	return p.closed.Load()
}

// Stats returns a snapshot of pool activity. Safe for concurrent use.
func (p *Pool) Stats() Stats {
	return p.stats.snapshot(len(p.tasks))
}

// Wait blocks until every submitted task has finished. It does not
// close the pool; use Stop for shutdown.
func (p *Pool) Wait() {
	p.pending.Wait()
}
