// Пакет workmanager — ограниченный пул исполнения доставок.
// DoWork блокирует вызывающего до завершения работы; одновременно выполняется не больше maxWorkers работ.
package workmanager

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/Gunvolt24/kbridge/internal/ports"
	"github.com/Gunvolt24/kbridge/pkg/metrics"
)

// DefaultMaxWorkers — размер пула по умолчанию.
const DefaultMaxWorkers = 16

// ErrWorkRejected — работа не принята: менеджер остановлен или контекст истёк до получения слота.
var ErrWorkRejected = errors.New("work rejected")

// Work — единица работы.
type Work func(ctx context.Context) error

// PanicError — паника внутри работы, превращённая в ошибку.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string { return fmt.Sprintf("work panicked: %v", e.Value) }

// Manager — пул с семафором на maxWorkers слотов.
type Manager struct {
	sem  *semaphore.Weighted
	size int64
	log  ports.Logger

	mu      sync.Mutex // закрытие и running.Add не пересекаются
	closed  atomic.Bool
	running sync.WaitGroup
}

// New — конструктор; maxWorkers <= 0 → DefaultMaxWorkers.
func New(maxWorkers int, log ports.Logger) *Manager {
	if maxWorkers <= 0 {
		maxWorkers = DefaultMaxWorkers
	}
	return &Manager{
		sem:  semaphore.NewWeighted(int64(maxWorkers)),
		size: int64(maxWorkers),
		log:  log,
	}
}

// Size — число слотов.
func (m *Manager) Size() int { return int(m.size) }

// DoWork — ждёт свободный слот и выполняет w в текущей горутине.
// Паника в w перехватывается и возвращается как *PanicError.
func (m *Manager) DoWork(ctx context.Context, w Work) (err error) {
	if m.closed.Load() {
		return ErrWorkRejected
	}
	if acqErr := m.sem.Acquire(ctx, 1); acqErr != nil {
		return fmt.Errorf("%w: %w", ErrWorkRejected, acqErr)
	}

	// Shutdown мог начаться, пока ждали слот.
	m.mu.Lock()
	if m.closed.Load() {
		m.mu.Unlock()
		m.sem.Release(1)
		return ErrWorkRejected
	}
	m.running.Add(1)
	m.mu.Unlock()

	metrics.WorkInFlight.Inc()
	defer func() {
		metrics.WorkInFlight.Dec()
		m.sem.Release(1)
		m.running.Done()
	}()

	defer func() {
		if r := recover(); r != nil {
			pe := &PanicError{Value: r, Stack: debug.Stack()}
			m.log.Errorf(ctx, "work panicked: %v\n%s", r, pe.Stack)
			err = pe
		}
	}()

	return w(ctx)
}

// Shutdown — новые работы отклоняются; ждём выполняющиеся, но не дольше ctx.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	m.closed.Store(true)
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.running.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("work manager shutdown: %w", ctx.Err())
	}
}
