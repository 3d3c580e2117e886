package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRunner struct {
	runs    atomic.Int32
	release chan struct{}
}

func (r *countingRunner) Run(context.Context) {
	r.runs.Add(1)
	if r.release != nil {
		<-r.release
	}
}

type countingObserver struct {
	skipped atomic.Int32
}

func (o *countingObserver) TickSkipped() { o.skipped.Add(1) }

func TestTick_SkipsWhileCycleInFlight(t *testing.T) {
	runner := &countingRunner{release: make(chan struct{})}
	obs := &countingObserver{}
	s := New(runner, obs)

	s.tick()
	require.Eventually(t, func() bool { return runner.runs.Load() == 1 }, time.Second, 5*time.Millisecond)

	s.tick()
	s.tick()
	assert.Equal(t, int32(1), runner.runs.Load())
	assert.Equal(t, int32(2), obs.skipped.Load())
	assert.True(t, s.Running())

	close(runner.release)
	require.Eventually(t, func() bool { return !s.Running() }, time.Second, 5*time.Millisecond)

	s.tick()
	require.Eventually(t, func() bool { return runner.runs.Load() == 2 }, time.Second, 5*time.Millisecond)
}

func TestTick_NoCycleAfterStop(t *testing.T) {
	runner := &countingRunner{}
	s := New(runner, nil)

	s.Stop()
	s.tick()

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(0), runner.runs.Load())
}

func TestStop_RacingLaunchNeverBeginsAfterStopReturns(t *testing.T) {
	for i := 0; i < 200; i++ {
		runner := &countingRunner{}
		s := New(runner, nil)

		s.tick()
		s.Stop()
		begunBeforeStopReturned := s.begun.Load()

		require.Eventually(t, func() bool { return !s.Running() }, time.Second, time.Millisecond)
		require.Equal(t, begunBeforeStopReturned, s.begun.Load(), "iteration %d", i)
		require.Equal(t, int32(begunBeforeStopReturned), runner.runs.Load(), "iteration %d", i)
	}
}

func TestStop_DoesNotWaitForInFlightCycle(t *testing.T) {
	runner := &countingRunner{release: make(chan struct{})}
	defer close(runner.release)
	s := New(runner, nil)

	s.tick()
	require.Eventually(t, func() bool { return runner.runs.Load() == 1 }, time.Second, 5*time.Millisecond)

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked on an in-flight cycle")
	}
	assert.True(t, s.Running())
}

func TestStart_RunsImmediately(t *testing.T) {
	runner := &countingRunner{}
	s := New(runner, nil)
	s.interval = time.Hour

	require.NoError(t, s.Start())
	defer s.Stop()

	require.Eventually(t, func() bool { return runner.runs.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestStop_EndsScheduledCycles(t *testing.T) {
	runner := &countingRunner{}
	s := New(runner, nil)
	s.interval = 20 * time.Millisecond

	require.NoError(t, s.Start())
	require.Eventually(t, func() bool { return runner.runs.Load() >= 2 }, time.Second, 2*time.Millisecond)

	s.Stop()
	begun := s.begun.Load()
	// A cycle that began just before Stop may not have reached Run yet.
	require.Eventually(t, func() bool { return !s.Running() }, time.Second, time.Millisecond)
	after := runner.runs.Load()
	assert.Equal(t, int32(begun), after)
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, after, runner.runs.Load())
}

func TestStart_Twice(t *testing.T) {
	s := New(&countingRunner{}, nil)
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.ErrorIs(t, s.Start(), ErrAlreadyStarted)
}

func TestStart_AfterStop(t *testing.T) {
	s := New(&countingRunner{}, nil)
	s.Stop()
	s.Stop()

	assert.ErrorIs(t, s.Start(), ErrStopped)
}

func TestNew_UsesFixedInterval(t *testing.T) {
	assert.Equal(t, 5*time.Second, New(&countingRunner{}, nil).interval)
}
