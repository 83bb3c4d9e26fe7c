// Пакет registry — активные подписки: фабрика конечной точки → её опрашивающие задачи.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/Gunvolt24/kbridge/internal/ports"
	"github.com/Gunvolt24/kbridge/pkg/metrics"
)

var (
	// ErrPartialActivation — одна из задач не создалась; созданные отменены, ничего не зарегистрировано.
	ErrPartialActivation = errors.New("partial activation rolled back")
	// ErrAlreadyActive — фабрика уже активирована; новые задачи отменены.
	ErrAlreadyActive = errors.New("endpoint already active")
)

// Task — зарегистрированная задача: идентификатор и идемпотентная отмена.
type Task interface {
	ID() string
	Cancel()
}

// BuildFunc — создаёт задачу для слота пула [0, poolSize).
type BuildFunc func(slot int) (Task, error)

// ActivationError — ошибка создания задачи slot; Built задач до неё уже отменены.
type ActivationError struct {
	Endpoint string
	Slot     int
	Built    int
	Err      error
}

func (e *ActivationError) Error() string {
	return fmt.Sprintf("activate %s: slot %d (after %d built): %v", e.Endpoint, e.Slot, e.Built, e.Err)
}

func (e *ActivationError) Unwrap() []error { return []error{ErrPartialActivation, e.Err} }

// Entry — снимок одной записи реестра.
type Entry struct {
	Factory ports.EndpointFactory
	Name    string
	TaskIDs []string
}

// Registry — потокобезопасный реестр; вставка и удаление записи атомарны по ключу.
type Registry struct {
	entries *xsync.Map[ports.EndpointFactory, []Task]
	log     ports.Logger
}

// New — пустой реестр.
func New(log ports.Logger) *Registry {
	return &Registry{
		entries: xsync.NewMap[ports.EndpointFactory, []Task](),
		log:     log,
	}
}

// Activate — создаёт poolSize задач и регистрирует их только если созданы все.
// При ошибке уже созданные задачи отменяются, реестр не меняется.
func (r *Registry) Activate(ctx context.Context, factory ports.EndpointFactory, poolSize int, build BuildFunc) error {
	name := factory.Name()
	if poolSize < 1 {
		return &ActivationError{Endpoint: name, Err: fmt.Errorf("pool size must be >= 1, got %d", poolSize)}
	}
	if _, ok := r.entries.Load(factory); ok {
		return fmt.Errorf("activate %s: %w", name, ErrAlreadyActive)
	}

	tasks := make([]Task, 0, poolSize)
	for slot := 0; slot < poolSize; slot++ {
		task, err := build(slot)
		if err != nil {
			cancelAll(tasks)
			r.log.Errorf(ctx, "activation of %s rolled back at slot %d/%d: %v", name, slot+1, poolSize, err)
			return &ActivationError{Endpoint: name, Slot: slot, Built: len(tasks), Err: err}
		}
		tasks = append(tasks, task)
	}

	if _, loaded := r.entries.LoadOrStore(factory, tasks); loaded {
		cancelAll(tasks)
		return fmt.Errorf("activate %s: %w", name, ErrAlreadyActive)
	}

	metrics.ActivePollers.WithLabelValues(name).Add(float64(len(tasks)))
	r.log.Infof(ctx, "endpoint %s activated with %d pollers", name, len(tasks))
	return nil
}

// Deactivate — удаляет запись и отменяет все её задачи; возвращает число отменённых.
// Неизвестная фабрика — не ошибка.
func (r *Registry) Deactivate(ctx context.Context, factory ports.EndpointFactory) int {
	tasks, ok := r.entries.LoadAndDelete(factory)
	if !ok {
		r.log.Debugf(ctx, "deactivate %s: not active", factory.Name())
		return 0
	}

	cancelAll(tasks)
	metrics.ActivePollers.WithLabelValues(factory.Name()).Sub(float64(len(tasks)))
	r.log.Infof(ctx, "endpoint %s deactivated, %d pollers cancelled", factory.Name(), len(tasks))
	return len(tasks)
}

// Tasks — задачи фабрики (копия среза) или nil.
func (r *Registry) Tasks(factory ports.EndpointFactory) []Task {
	tasks, ok := r.entries.Load(factory)
	if !ok {
		return nil
	}
	return append([]Task(nil), tasks...)
}

// Len — число активных подписок.
func (r *Registry) Len() int { return r.entries.Size() }

// Snapshot — все записи, отсортированные по имени.
func (r *Registry) Snapshot() []Entry {
	var out []Entry
	r.entries.Range(func(f ports.EndpointFactory, tasks []Task) bool {
		ids := make([]string, len(tasks))
		for i, t := range tasks {
			ids[i] = t.ID()
		}
		out = append(out, Entry{Factory: f, Name: f.Name(), TaskIDs: ids})
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// cancelAll — отменяет задачи параллельно: каждая ждёт свой тик.
func cancelAll(tasks []Task) {
	var wg sync.WaitGroup
	for _, t := range tasks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			t.Cancel()
		}()
	}
	wg.Wait()
}
