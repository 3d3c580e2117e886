package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Interval is the fixed cadence of evaluation cycles.
const Interval = 5 * time.Second

var (
	ErrAlreadyStarted = errors.New("scheduler already started")
	ErrStopped        = errors.New("scheduler stopped")
)

// Runner executes one evaluation cycle. It must not panic or block forever.
type Runner interface {
	Run(ctx context.Context)
}

// TickObserver is told about ticks dropped because a cycle was still running.
type TickObserver interface {
	TickSkipped()
}

// Scheduler fires the runner immediately on Start and then every Interval.
//
// Cycles are serialized: a tick that fires while the previous cycle is still
// in flight is skipped rather than run concurrently. Once Stop returns no
// further cycle begins; Stop neither waits for nor cancels a cycle that
// had already begun.
type Scheduler struct {
	scheduler *gocron.Scheduler
	runner    Runner
	interval  time.Duration
	observer  TickObserver
	logger    zerolog.Logger

	mu      sync.Mutex
	started bool
	stopped bool

	inFlight  atomic.Bool
	launching sync.WaitGroup
	begun     atomic.Int64
}

// New creates a new Scheduler. observer may be nil.
func New(runner Runner, observer TickObserver) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		runner:    runner,
		interval:  Interval,
		observer:  observer,
		logger:    log.Logger,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrStopped
	}
	if s.started {
		return ErrAlreadyStarted
	}

	if _, err := s.scheduler.Every(s.interval).StartImmediately().Do(s.tick); err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.started = true
	s.logger.Info().Dur("interval", s.interval).Msg("scheduler: started")
	return nil
}

// Stop cancels future ticks. It returns without waiting for a running cycle.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	started := s.started
	s.mu.Unlock()

	// Launches still deciding whether to begin see stopped and back out.
	s.launching.Wait()

	if started {
		s.scheduler.Stop()
	}
	s.logger.Info().Msg("scheduler: stopped")
}

// Running reports whether a cycle is currently in flight.
func (s *Scheduler) Running() bool {
	return s.inFlight.Load()
}

// tick admits a cycle and hands it to its own goroutine so the gocron job
// returns at once. The goroutine checks stopped again before calling Run,
// so a launch that loses the race with Stop never begins.
func (s *Scheduler) tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}

	if !s.inFlight.CompareAndSwap(false, true) {
		if s.observer != nil {
			s.observer.TickSkipped()
		}
		s.logger.Warn().Msg("scheduler: previous cycle still running; skipping tick")
		return
	}

	s.launching.Add(1)
	go func() {
		defer s.inFlight.Store(false)
		if !s.begin() {
			return
		}
		// An admitted cycle runs to completion even if Stop follows.
		s.runner.Run(context.Background())
	}()
}

// begin reports whether a launched cycle may call Run.
func (s *Scheduler) begin() bool {
	defer s.launching.Done()
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return false
	}
	s.begun.Add(1)
	return true
}
