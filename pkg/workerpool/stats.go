package workerpool

import (
	"sync"
	"sync/atomic"
	"time"
)

// Stats is a point-in-time snapshot of pool activity
type Stats struct {
	ActiveWorkers   int
	QueuedTasks     int
	CompletedTasks  uint64
	RejectedTasks   uint64
	AvgTaskDuration time.Duration
}

type statsCollector struct {
	activeWorkers  atomic.Int64
	completedTasks atomic.Uint64
	rejectedTasks  atomic.Uint64

	mu            sync.Mutex
	totalDuration time.Duration
}

func newStatsCollector() *statsCollector {
	return &statsCollector{}
}

func (s *statsCollector) incActiveWorkers() { s.activeWorkers.Add(1) }
func (s *statsCollector) decActiveWorkers() { s.activeWorkers.Add(-1) }

func (s *statsCollector) recordTaskCompletion(d time.Duration) {
	s.completedTasks.Add(1)
	s.mu.Lock()
	s.totalDuration += d
	s.mu.Unlock()
}

func (s *statsCollector) recordTaskRejection() {
	s.rejectedTasks.Add(1)
}

func (s *statsCollector) snapshot(queued int) Stats {
	completed := s.completedTasks.Load()

	s.mu.Lock()
	total := s.totalDuration
	s.mu.Unlock()

	var avg time.Duration
	if completed > 0 {
		avg = total / time.Duration(completed)
	}

	return Stats{
		ActiveWorkers:   int(s.activeWorkers.Load()),
		QueuedTasks:     queued,
		CompletedTasks:  completed,
		RejectedTasks:   s.rejectedTasks.Load(),
		AvgTaskDuration: avg,
	}
}
