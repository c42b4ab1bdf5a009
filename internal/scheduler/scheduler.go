// Package scheduler runs named jobs at fixed intervals.
package scheduler

import (
	"container/heap"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/haytac/lounge-emotes/internal/logging"
	"github.com/rs/zerolog"
)

// ErrInvalidInterval is returned by Add for non-positive intervals.
var ErrInvalidInterval = errors.New("scheduler: interval must be positive")

// Job is a periodic task in the priority queue.
type Job struct {
	Name     string
	Interval time.Duration
	NextRun  time.Time
	run      func(ctx context.Context)
	index    int
}

// PriorityQueue implements heap.Interface ordered by NextRun.
type PriorityQueue []*Job

func (pq PriorityQueue) Len() int { return len(pq) }

func (pq PriorityQueue) Less(i, j int) bool {
	return pq[i].NextRun.Before(pq[j].NextRun)
}

func (pq PriorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *PriorityQueue) Push(x any) {
	job := x.(*Job)
	job.index = len(*pq)
	*pq = append(*pq, job)
}

func (pq *PriorityQueue) Pop() any {
	old := *pq
	n := len(old)
	job := old[n-1]
	old[n-1] = nil
	job.index = -1
	*pq = old[:n-1]
	return job
}

// Scheduler fires jobs when they are due. A job never overlaps with itself:
// its next run is scheduled once the current one returns.
type Scheduler struct {
	mu      sync.Mutex
	pq      PriorityQueue
	wake    chan struct{}
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
	log     zerolog.Logger
}

// New creates an idle scheduler.
func New() *Scheduler {
	return &Scheduler{
		wake: make(chan struct{}, 1),
		log:  logging.Component("scheduler"),
	}
}

// Add schedules fn every interval, first after delay.
func (s *Scheduler) Add(name string, interval, delay time.Duration, fn func(ctx context.Context)) error {
	if interval <= 0 {
		return ErrInvalidInterval
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	job := &Job{Name: name, Interval: interval, NextRun: time.Now().Add(max(delay, 0)), run: fn}
	heap.Push(&s.pq, job)
	s.log.Info().Str("job", name).Dur("interval", interval).Time("first_run_at", job.NextRun).Msg("Job added to scheduler")
	s.notify()
	return nil
}

// Len returns the number of scheduled jobs.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pq.Len()
}

// Start runs the scheduler loop until Stop or ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.log.Info().Msg("Scheduler started")
	s.wg.Add(1)
	go s.loop(ctx)
}

// Stop halts the loop and waits for running jobs to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.cancel()
	s.mu.Unlock()

	s.wg.Wait()
	s.log.Info().Msg("Scheduler stopped")
}

func (s *Scheduler) notify() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()
	timer := time.NewTimer(s.nextDelay())
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.wake:
		case <-timer.C:
			s.runDue(ctx)
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(s.nextDelay())
	}
}

// nextDelay returns the time until the earliest job, or an hour when idle.
func (s *Scheduler) nextDelay() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pq.Len() == 0 {
		return time.Hour
	}
	return max(time.Until(s.pq[0].NextRun), 0)
}

func (s *Scheduler) runDue(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for s.pq.Len() > 0 && !s.pq[0].NextRun.After(now) {
		job := heap.Pop(&s.pq).(*Job)
		s.log.Debug().Str("job", job.Name).Msg("Executing scheduled job")
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			job.run(ctx)
			s.reschedule(job)
		}()
	}
}

func (s *Scheduler) reschedule(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	job.NextRun = time.Now().Add(job.Interval)
	heap.Push(&s.pq, job)
	s.log.Debug().Str("job", job.Name).Time("next_run_at", job.NextRun).Msg("Job rescheduled")
	s.notify()
}
