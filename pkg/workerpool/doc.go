// Package workerpool provides a fixed-size goroutine pool with a
// bounded task queue.
//
// Tasks are plain func() error values. Submit blocks when the queue is
// full, TrySubmit fails fast, and SubmitWithContext ties a task to a
// caller context so it is skipped if the context is cancelled before a
// worker picks it up. Panics inside tasks are recovered and routed to
// the configured ErrorHandler, never crashing a worker.
//
// Typical use:
//
//	pool, err := workerpool.New(workerpool.Config{
//	    Workers:   4,
//	    QueueSize: 100,
//	})
//	if err != nil {
//	    return err
//	}
//	defer pool.Stop()
//
//	for _, job := range jobs {
//	    job := job
//	    pool.Submit(func() error { return process(job) })
//	}
//	pool.Wait()
package workerpool
