// Пакет scheduler — периодический запуск задач: первая через initialDelay, дальше каждые interval.
// У каждой задачи своя горутина; тики одной задачи никогда не пересекаются, опоздавшие схлопываются.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Gunvolt24/kbridge/internal/ports"
)

// ErrStopped — планировщик уже остановлен.
var ErrStopped = errors.New("scheduler stopped")

// Func — тело периодической задачи; ctx отменяется при Cancel или Shutdown.
type Func func(ctx context.Context)

// Handle — управление одной запланированной задачей.
type Handle struct {
	name   string
	cancel context.CancelFunc
	done   chan struct{}
}

// Cancel — больше не запускать задачу. Идемпотентен; не ждёт текущий запуск (для этого есть Done).
func (h *Handle) Cancel() { h.cancel() }

// Done — закрывается, когда горутина задачи завершилась.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Name — имя задачи (для логов).
func (h *Handle) Name() string { return h.name }

// Scheduler — общий планировщик адаптера.
type Scheduler struct {
	log ports.Logger

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	closed bool
	tasks  sync.WaitGroup
}

// New — конструктор.
func New(log ports.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{log: log, ctx: ctx, cancel: cancel}
}

// Schedule — запускает fn через initialDelay и затем каждые interval.
func (s *Scheduler) Schedule(name string, initialDelay, interval time.Duration, fn Func) (*Handle, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("schedule %s: interval must be positive, got %s", name, interval)
	}
	initialDelay = max(initialDelay, 0)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrStopped
	}

	ctx, cancel := context.WithCancel(s.ctx)
	h := &Handle{name: name, cancel: cancel, done: make(chan struct{})}

	s.tasks.Add(1)
	go func() {
		defer s.tasks.Done()
		defer close(h.done)
		defer cancel()
		s.loop(ctx, h, initialDelay, interval, fn)
	}()

	return h, nil
}

// Shutdown — отменяет все задачи и ждёт их горутины, но не дольше ctx.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.tasks.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler shutdown: %w", ctx.Err())
	}
}

func (s *Scheduler) loop(ctx context.Context, h *Handle, initialDelay, interval time.Duration, fn Func) {
	timer := time.NewTimer(initialDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}
	s.run(ctx, h, fn)

	// time.Ticker отбрасывает тики, которые не успели забрать: медленный запуск не копит очередь.
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				return
			}
			s.run(ctx, h, fn)
		}
	}
}

func (s *Scheduler) run(ctx context.Context, h *Handle, fn Func) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Errorf(ctx, "scheduled task %s panicked: %v", h.name, r)
		}
	}()
	fn(ctx)
}
