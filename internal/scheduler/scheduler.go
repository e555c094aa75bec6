// Package scheduler runs one recurring reminder loop per task.
package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/yukikurage/taskbot/internal/models"
)

type State int

const (
	StateIdle State = iota
	StateRunning
	StateCancelled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Target resolves the task a reminder belongs to and delivers the reminder.
// Lookup must return a copy the loop may read without further locking.
type Target interface {
	Lookup(taskID string) (models.Task, bool)
	Deliver(ctx context.Context, task models.Task) error
}

type Option func(*Scheduler)

// WithAfter replaces time.After, mostly for tests.
func WithAfter(after func(time.Duration) <-chan time.Time) Option {
	return func(s *Scheduler) {
		s.after = after
	}
}

// WithOnEnd registers a hook called once whenever a loop terminates.
func WithOnEnd(fn func(taskID string, state State, err error)) Option {
	return func(s *Scheduler) {
		s.onEnd = fn
	}
}

type loop struct {
	cancel context.CancelFunc
}

type Scheduler struct {
	mu     sync.Mutex
	loops  map[string]*loop
	states map[string]State
	wg     sync.WaitGroup

	after func(time.Duration) <-chan time.Time
	onEnd func(taskID string, state State, err error)
}

func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		loops:  make(map[string]*loop),
		states: make(map[string]State),
		after:  time.After,
		onEnd:  func(string, State, error) {},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins delivering reminders for taskID every interval. A loop that
// is already running for the task is cancelled first.
func (s *Scheduler) Start(taskID string, interval time.Duration, target Target) {
	ctx, cancel := context.WithCancel(context.Background())
	l := &loop{cancel: cancel}

	s.mu.Lock()
	if old, ok := s.loops[taskID]; ok {
		old.cancel()
	}
	s.loops[taskID] = l
	s.states[taskID] = StateRunning
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		state, err := s.run(ctx, taskID, interval, target)
		cancel()

		s.mu.Lock()
		if s.loops[taskID] == l {
			delete(s.loops, taskID)
			s.states[taskID] = state
		}
		s.mu.Unlock()

		if err != nil {
			log.Printf("scheduler: reminder for task %s stopped: %v", taskID, err)
		}
		s.onEnd(taskID, state, err)
	}()
}

func (s *Scheduler) run(ctx context.Context, taskID string, interval time.Duration, target Target) (State, error) {
	for {
		select {
		case <-ctx.Done():
			return StateCancelled, nil
		case <-s.after(interval):
		}

		task, ok := target.Lookup(taskID)
		if !ok {
			return StateCancelled, nil
		}
		if task.Done {
			continue
		}
		if err := target.Deliver(ctx, task); err != nil {
			if ctx.Err() != nil {
				return StateCancelled, nil
			}
			return StateFailed, err
		}
	}
}

// Cancel stops the loop of taskID. It reports whether a loop was running.
func (s *Scheduler) Cancel(taskID string) bool {
	s.mu.Lock()
	l, ok := s.loops[taskID]
	if ok {
		delete(s.loops, taskID)
		s.states[taskID] = StateCancelled
	}
	s.mu.Unlock()

	if ok {
		l.cancel()
	}
	return ok
}

func (s *Scheduler) Running(taskID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.loops[taskID]
	return ok
}

func (s *Scheduler) State(taskID string) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[taskID]
}

// Stop cancels every loop and waits for all of them to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	for taskID, l := range s.loops {
		l.cancel()
		s.states[taskID] = StateCancelled
		delete(s.loops, taskID)
	}
	s.mu.Unlock()

	s.wg.Wait()
}
