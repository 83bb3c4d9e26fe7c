// Пакет adapter — жизненный цикл моста: старт/стоп и активация подписок конечных точек.
package adapter

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Gunvolt24/kbridge/internal/broker"
	"github.com/Gunvolt24/kbridge/internal/dispatch"
	"github.com/Gunvolt24/kbridge/internal/poller"
	"github.com/Gunvolt24/kbridge/internal/ports"
	"github.com/Gunvolt24/kbridge/internal/registry"
	"github.com/Gunvolt24/kbridge/internal/scheduler"
	"github.com/Gunvolt24/kbridge/internal/subscription"
)

// ErrNotStarted — Activate до Start или после Stop.
var ErrNotStarted = errors.New("adapter not started")

// Scheduler — планировщик тиков (scheduler.Scheduler).
type Scheduler interface {
	Schedule(name string, initialDelay, interval time.Duration, fn scheduler.Func) (*scheduler.Handle, error)
}

// Options — параметры адаптера.
type Options struct {
	// Defaults — свойства клиента уровня адаптера (ниже явных значений подписки).
	Defaults subscription.Properties
	// NewClient — фабрика клиентов брокера (broker.NewFactory(driver)).
	NewClient broker.Factory
	// CloseTimeout — ожидание закрытия клиента при деактивации.
	CloseTimeout time.Duration
	Log          ports.Logger
}

// Adapter — точка входа хоста: Start → Activate… → Deactivate… → Stop.
type Adapter struct {
	id           string
	defaults     subscription.Properties
	newClient    broker.Factory
	closeTimeout time.Duration
	log          ports.Logger
	registry     *registry.Registry

	mu    sync.RWMutex
	sched Scheduler
	work  dispatch.WorkRunner
}

// New — адаптер с собственным реестром подписок.
func New(opts Options) (*Adapter, error) {
	if opts.NewClient == nil {
		return nil, errors.New("adapter: broker client factory is required")
	}
	if opts.Log == nil {
		return nil, errors.New("adapter: logger is required")
	}
	return &Adapter{
		id:           uuid.NewString(),
		defaults:     opts.Defaults.Clone(),
		newClient:    opts.NewClient,
		closeTimeout: opts.CloseTimeout,
		log:          opts.Log,
		registry:     registry.New(opts.Log),
	}, nil
}

// ID — идентификатор экземпляра адаптера.
func (a *Adapter) ID() string { return a.id }

// Defaults — копия дефолтных свойств адаптера.
func (a *Adapter) Defaults() subscription.Properties { return a.defaults.Clone() }

// Start — запоминает общий планировщик и пул работ. Повторный вызов на запущенном адаптере — no-op.
func (a *Adapter) Start(ctx context.Context, sched Scheduler, work dispatch.WorkRunner) error {
	if sched == nil || work == nil {
		return errors.New("adapter: scheduler and work manager are required")
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.sched != nil {
		a.log.Debugf(ctx, "adapter %s already started", a.id)
		return nil
	}
	a.sched, a.work = sched, work

	a.log.Infof(ctx, "adapter %s started, defaults: %v", a.id, a.defaults.Keys())
	return nil
}

// Stop — забывает планировщик и пул. Активные подписки не отменяет (хост деактивирует их раньше),
// только сообщает о них.
func (a *Adapter) Stop(ctx context.Context) {
	a.mu.Lock()
	a.sched, a.work = nil, nil
	a.mu.Unlock()

	if a.registry.Len() > 0 {
		for _, e := range a.registry.Snapshot() {
			a.log.Warnf(ctx, "adapter stopped with active endpoint %s (%d pollers)", e.Name, len(e.TaskIDs))
		}
	}
	a.log.Infof(ctx, "adapter %s stopped", a.id)
}

// Activate — проверяет конфигурацию, создаёт poolSize опрашивающих задач и планирует каждую.
// Либо регистрируются все задачи, либо ни одной.
func (a *Adapter) Activate(ctx context.Context, factory ports.EndpointFactory, cfg subscription.Config) error {
	a.mu.RLock()
	sched, work := a.sched, a.work
	a.mu.RUnlock()
	if sched == nil {
		return ErrNotStarted
	}

	name := factory.Name()
	if err := cfg.Validate(a.defaults); err != nil {
		return fmt.Errorf("activate %s: %w", name, err)
	}
	selector, err := cfg.Topics()
	if err != nil {
		return fmt.Errorf("activate %s: %w", name, err)
	}

	props := cfg.BuildProperties(a.defaults)
	dispatcher := dispatch.NewDispatcher(factory, selector, work)
	initialDelay, interval := cfg.InitialPollDelayOrDefault(), cfg.PollIntervalOrDefault()

	build := func(int) (registry.Task, error) {
		task, err := poller.New(poller.Params{
			Endpoint:     name,
			Properties:   props,
			Selector:     selector,
			NewClient:    a.newClient,
			Dispatcher:   dispatcher,
			Log:          a.log,
			CloseTimeout: a.closeTimeout,
		})
		if err != nil {
			return nil, err
		}
		handle, err := sched.Schedule(task.ID(), initialDelay, interval, task.Tick)
		if err != nil {
			task.Cancel()
			return nil, fmt.Errorf("schedule %s: %w", task.ID(), err)
		}
		return &scheduledTask{task: task, handle: handle}, nil
	}

	if err := a.registry.Activate(ctx, factory, cfg.PoolSizeOrDefault(), build); err != nil {
		return err
	}
	tasks := a.registry.Tasks(factory)
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID()
	}
	a.log.Infof(ctx, "endpoint %s subscribed to %s with pollers %v, first poll in %s, then every %s",
		name, selector, ids, initialDelay, interval)
	return nil
}

// Deactivate — отменяет и удаляет все задачи фабрики; возвращает их число. Неизвестная фабрика — no-op.
func (a *Adapter) Deactivate(ctx context.Context, factory ports.EndpointFactory) int {
	return a.registry.Deactivate(ctx, factory)
}

// Registrations — снимок реестра.
func (a *Adapter) Registrations() []registry.Entry {
	return a.registry.Snapshot()
}

// scheduledTask — задача реестра: опрашивающий плюс его расписание.
type scheduledTask struct {
	task   *poller.Task
	handle *scheduler.Handle
}

func (s *scheduledTask) ID() string { return s.task.ID() }

// Cancel — сначала расписание (новые тики не стартуют), затем задача (ждёт текущий тик и закрывает клиента).
func (s *scheduledTask) Cancel() {
	s.handle.Cancel()
	s.task.Cancel()
}
