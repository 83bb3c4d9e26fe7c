package scheduler_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Gunvolt24/kbridge/internal/scheduler"
)

type nopLogger struct{}

func (nopLogger) Debugf(context.Context, string, ...any) {}
func (nopLogger) Infof(context.Context, string, ...any)  {}
func (nopLogger) Warnf(context.Context, string, ...any)  {}
func (nopLogger) Errorf(context.Context, string, ...any) {}

func TestSchedule_InitialDelayThenInterval(t *testing.T) {
	s := scheduler.New(nopLogger{})
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })

	start := time.Now()
	firstAt := make(chan time.Duration, 1)
	var runs atomic.Int32

	h, err := s.Schedule("p1", 50*time.Millisecond, 10*time.Millisecond, func(context.Context) {
		if runs.Add(1) == 1 {
			firstAt <- time.Since(start)
		}
	})
	require.NoError(t, err)

	first := <-firstAt
	require.GreaterOrEqual(t, first, 50*time.Millisecond)

	require.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)

	h.Cancel()
	<-h.Done()
	after := runs.Load()
	time.Sleep(40 * time.Millisecond)
	require.Equal(t, after, runs.Load(), "no runs after cancel")
}

func TestSchedule_RunsNeverOverlap(t *testing.T) {
	s := scheduler.New(nopLogger{})
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })

	var active, overlaps, runs atomic.Int32
	h, err := s.Schedule("slow", 0, 5*time.Millisecond, func(context.Context) {
		if active.Add(1) > 1 {
			overlaps.Add(1)
		}
		time.Sleep(25 * time.Millisecond) // дольше интервала
		active.Add(-1)
		runs.Add(1)
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)
	h.Cancel()
	<-h.Done()

	require.Zero(t, overlaps.Load())
}

func TestSchedule_PanicDoesNotStopTask(t *testing.T) {
	s := scheduler.New(nopLogger{})
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })

	var runs atomic.Int32
	_, err := s.Schedule("panicky", 0, 5*time.Millisecond, func(context.Context) {
		runs.Add(1)
		panic("tick failed")
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return runs.Load() >= 2 }, time.Second, 5*time.Millisecond)
}

func TestSchedule_Validation(t *testing.T) {
	s := scheduler.New(nopLogger{})

	_, err := s.Schedule("bad", 0, 0, func(context.Context) {})
	require.Error(t, err)

	require.NoError(t, s.Shutdown(context.Background()))
	_, err = s.Schedule("late", 0, time.Second, func(context.Context) {})
	require.ErrorIs(t, err, scheduler.ErrStopped)
}

func TestShutdown_CancelsContextAndWaits(t *testing.T) {
	s := scheduler.New(nopLogger{})

	started := make(chan struct{})
	var sawCancel atomic.Bool
	h, err := s.Schedule("blocking", 0, time.Hour, func(ctx context.Context) {
		close(started)
		<-ctx.Done()
		sawCancel.Store(true)
	})
	require.NoError(t, err)
	<-started

	require.NoError(t, s.Shutdown(context.Background()))
	require.True(t, sawCancel.Load())

	select {
	case <-h.Done():
	default:
		t.Fatal("handle must be done after shutdown")
	}

	h.Cancel() // после остановки — без эффекта
}
