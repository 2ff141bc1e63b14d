package scheduler

import (
	"sync"
	"time"
)

// Scheduler runs deferred callbacks keyed by an identifier. Scheduling a key
// that is already pending supersedes the earlier task.
type Scheduler struct {
	clock Clock
	mu    sync.Mutex
	gen   uint64
	tasks map[string]*task
}

type task struct {
	gen   uint64
	timer Timer
}

// New creates a scheduler on clock.
func New(clock Clock) *Scheduler {
	return &Scheduler{
		clock: clock,
		tasks: make(map[string]*task),
	}
}

// Clock returns the scheduler's time source.
func (s *Scheduler) Clock() Clock {
	return s.clock
}

// Schedule runs fn after delay unless the key is cancelled or rescheduled
// first.
func (s *Scheduler) Schedule(key string, delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.tasks[key]; ok {
		prev.timer.Stop()
	}
	s.gen++
	gen := s.gen
	t := &task{gen: gen}
	s.tasks[key] = t
	t.timer = s.clock.AfterFunc(delay, func() { s.fire(key, gen, fn) })
}

// fire runs fn only if gen is still the current task for key. A timer that
// already fired before Stop could take effect is discarded here.
func (s *Scheduler) fire(key string, gen uint64, fn func()) {
	s.mu.Lock()
	t, ok := s.tasks[key]
	if !ok || t.gen != gen {
		s.mu.Unlock()
		return
	}
	delete(s.tasks, key)
	s.mu.Unlock()
	fn()
}

// Cancel drops the pending task for key. It reports whether one was pending.
func (s *Scheduler) Cancel(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[key]
	if !ok {
		return false
	}
	t.timer.Stop()
	delete(s.tasks, key)
	return true
}

// Pending reports whether a task is waiting for key.
func (s *Scheduler) Pending(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tasks[key]
	return ok
}

// Stop cancels every pending task.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, t := range s.tasks {
		t.timer.Stop()
		delete(s.tasks, key)
	}
}
