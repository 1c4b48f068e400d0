// Package schedule provides cancellable one-shot tasks. Auto-close timers
// (cart drawer, order confirmation) run through a Scheduler owned by the
// session so that nothing fires against torn-down state.
package schedule

import (
	"sync"
	"time"
)

type Scheduler struct {
	mu      sync.Mutex
	tasks   map[*Task]struct{}
	wg      sync.WaitGroup
	stopped bool
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		tasks: make(map[*Task]struct{}),
	}
}

// After schedules fn to run once after d. The returned Task can be cancelled
// any time before it fires; cancelling after it fired is a no-op.
func (s *Scheduler) After(d time.Duration, fn func()) *Task {
	t := &Task{
		timer: time.NewTimer(d),
		stop:  make(chan struct{}),
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		t.timer.Stop()
		t.cancelled = true
		return t
	}
	s.tasks[t] = struct{}{}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer s.remove(t)
		select {
		case <-t.timer.C:
			fn()
		case <-t.stop:
			t.timer.Stop()
		}
	}()

	return t
}

func (s *Scheduler) remove(t *Task) {
	s.mu.Lock()
	delete(s.tasks, t)
	s.mu.Unlock()
}

// StopAll cancels every pending task and waits for their goroutines to exit.
// The scheduler accepts no new work afterwards.
func (s *Scheduler) StopAll() {
	s.mu.Lock()
	s.stopped = true
	pending := make([]*Task, 0, len(s.tasks))
	for t := range s.tasks {
		pending = append(pending, t)
	}
	s.mu.Unlock()

	for _, t := range pending {
		t.Cancel()
	}
	s.wg.Wait()
}

type Task struct {
	timer     *time.Timer
	stop      chan struct{}
	once      sync.Once
	cancelled bool
}

// Cancel stops the task if it has not fired yet. Safe to call more than once.
func (t *Task) Cancel() {
	t.once.Do(func() {
		t.cancelled = true
		close(t.stop)
	})
}
