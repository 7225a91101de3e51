package workerpool

import (
	"errors"
	"fmt"
	"runtime"
	"time"
)

// Pool errors
var (
	ErrPoolClosed     = errors.New("workerpool: pool is closed")
	ErrQueueFull      = errors.New("workerpool: task queue is full")
	ErrTimeout        = errors.New("workerpool: submit timed out")
	ErrForcedShutdown = errors.New("workerpool: shutdown timeout exceeded, tasks abandoned")
)

// TaskError wraps a task failure or recovered panic together with the
// task that produced it
type TaskError struct {
	TaskID string
	Err    error
	Stack  string // non-empty only for recovered panics
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("task %s: %v", e.TaskID, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}

// Config configures a pool
type Config struct {
	// Workers is the number of worker goroutines
	Workers int
	// QueueSize bounds the number of tasks waiting for a worker
	QueueSize int
	// ShutdownTimeout bounds how long Stop waits for in-flight tasks
	ShutdownTimeout time.Duration
	// ErrorHandler receives task errors and recovered panics. Nil
	// discards them.
	ErrorHandler func(*TaskError)
}

// Validate checks the configuration
func (c Config) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("workerpool: workers must be positive, got %d", c.Workers)
	}
	if c.QueueSize < 0 {
		return fmt.Errorf("workerpool: queue size must be non-negative, got %d", c.QueueSize)
	}
	if c.ShutdownTimeout < 0 {
		return fmt.Errorf("workerpool: shutdown timeout must be non-negative, got %s", c.ShutdownTimeout)
	}
	return nil
}

// DefaultConfig returns a configuration sized to the machine
func DefaultConfig() Config {
	return Config{
		Workers:         runtime.NumCPU(),
		QueueSize:       1000,
		ShutdownTimeout: 30 * time.Second,
	}
}
