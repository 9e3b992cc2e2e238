package schedule

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const dispatchTick = 200 * time.Millisecond

// ErrStopped is returned to queued waiters when the scheduler shuts down.
var ErrStopped = errStopped{}

type errStopped struct{}

func (errStopped) Error() string { return "scheduler stopped" }

type waiter struct {
	ready chan struct{}
	err   error // written before ready is closed
}

// Scheduler is a token-bucket admission queue for upstream calls. A fixed
// capacity of task starts is admitted per window; tokens refill all at once
// when a full window has elapsed since the last reset (batch reset, not a
// sliding window). Waiters are admitted strictly FIFO.
type Scheduler struct {
	capacity int
	window   time.Duration
	now      func() time.Time

	mu        sync.Mutex
	tokens    int
	lastReset time.Time
	queue     []*waiter
}

// New returns a scheduler with a full bucket. The clock defaults to
// time.Now; tests override it with WithClock.
func New(capacity int, window time.Duration) *Scheduler {
	s := &Scheduler{
		capacity: capacity,
		window:   window,
		now:      time.Now,
	}
	s.tokens = capacity
	s.lastReset = s.now()
	return s
}

// WithClock replaces the clock source. Must be called before Start.
func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	s.now = now
	s.lastReset = now()
	return s
}

// Start runs the dispatch loop until ctx is canceled.
func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(dispatchTick)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.dispatch()
			case <-ctx.Done():
				s.drain()
				return
			}
		}
	}()
}

// Acquire blocks until the caller is admitted or ctx ends. Admission order
// is submission order. The token spent on an admitted caller is not
// returned if the caller's work later fails; failures are the caller's
// problem, not the bucket's.
func (s *Scheduler) Acquire(ctx context.Context) error {
	w := &waiter{ready: make(chan struct{})}

	s.mu.Lock()
	s.queue = append(s.queue, w)
	s.mu.Unlock()

	select {
	case <-w.ready:
		return w.err
	case <-ctx.Done():
		s.mu.Lock()
		for i, queued := range s.queue {
			if queued == w {
				s.queue = append(s.queue[:i], s.queue[i+1:]...)
				s.mu.Unlock()
				return ctx.Err()
			}
		}
		s.mu.Unlock()
		// Already admitted before the cancellation won the race.
		return w.err
	}
}

// Pending reports the number of queued waiters.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

func (s *Scheduler) dispatch() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastReset) >= s.window {
		s.tokens = s.capacity
		s.lastReset = now
		if len(s.queue) > 0 {
			slog.Debug("rate window reset", "queued", len(s.queue))
		}
	}

	for s.tokens > 0 && len(s.queue) > 0 {
		w := s.queue[0]
		s.queue = s.queue[1:]
		s.tokens--
		close(w.ready)
	}
}

// drain fails every queued waiter so nothing slips past the bucket during
// shutdown.
func (s *Scheduler) drain() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.queue {
		w.err = ErrStopped
		close(w.ready)
	}
	s.queue = nil
}
