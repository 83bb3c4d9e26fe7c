// Пакет poller — опрашивающая задача: один клиент брокера, тик «опрос → доставка → коммит».
package poller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Gunvolt24/kbridge/internal/broker"
	"github.com/Gunvolt24/kbridge/internal/ports"
	"github.com/Gunvolt24/kbridge/internal/subscription"
	"github.com/Gunvolt24/kbridge/pkg/ctxmeta"
	"github.com/Gunvolt24/kbridge/pkg/metrics"
)

// DefaultCloseTimeout — сколько ждать закрытия клиента при отмене.
const DefaultCloseTimeout = 10 * time.Second

// Dispatcher — синхронная доставка пачки; nil означает, что пачку можно коммитить.
type Dispatcher interface {
	Dispatch(ctx context.Context, batch broker.Batch) error
}

// Params — всё, что нужно для создания задачи.
type Params struct {
	Endpoint     string                  // имя конечной точки (префикс id)
	Properties   subscription.Properties // свойства клиента после слияния с дефолтами
	Selector     subscription.TopicSelector
	NewClient    broker.Factory
	Dispatcher   Dispatcher
	Log          ports.Logger
	CloseTimeout time.Duration
}

// Task — опрашивающая задача. Tick вызывается планировщиком; тики одной задачи не пересекаются.
type Task struct {
	id           string
	endpoint     string
	selector     subscription.TopicSelector
	client       broker.Client
	dispatcher   Dispatcher
	log          ports.Logger
	pollTimeout   time.Duration
	commitTimeout time.Duration
	closeTimeout  time.Duration

	state      atomic.Int32
	tickMu     sync.Mutex // удерживается на время тика; Cancel ждёт его
	cancelOnce sync.Once
}

// New — создаёт клиента с client.id = id задачи и подписывает его.
// При ошибке подписки клиент закрывается.
func New(p Params) (*Task, error) {
	if p.NewClient == nil || p.Dispatcher == nil || p.Log == nil {
		return nil, errors.New("poller: NewClient, Dispatcher and Log are required")
	}
	closeTimeout := p.CloseTimeout
	if closeTimeout <= 0 {
		closeTimeout = DefaultCloseTimeout
	}

	id := fmt.Sprintf("%s-%s", p.Endpoint, uuid.NewString())
	props := p.Properties.Clone()
	props[subscription.KeyClientID] = id

	client, err := p.NewClient(props)
	if err != nil {
		return nil, fmt.Errorf("poller %s: create client: %w", id, err)
	}

	t := &Task{
		id:            id,
		endpoint:      p.Endpoint,
		selector:      p.Selector,
		client:        client,
		dispatcher:    p.Dispatcher,
		log:           p.Log,
		pollTimeout:   broker.FetchMaxWait(props),
		commitTimeout: broker.CommitTimeout(props),
		closeTimeout:  closeTimeout,
	}
	t.state.Store(int32(StateCreated))

	if err := client.Subscribe(p.Selector); err != nil {
		if closeErr := client.Close(closeTimeout); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
		return nil, fmt.Errorf("poller %s: subscribe to %s: %w", id, p.Selector, err)
	}
	t.state.Store(int32(StateSubscribed))

	ctx := t.logContext(context.Background())
	if p.Selector.IsEmpty() {
		t.log.Warnf(ctx, "poller subscribed to nothing: no topics or pattern configured")
	} else {
		t.log.Infof(ctx, "poller subscribed to %s", p.Selector)
	}
	return t, nil
}

// ID — идентификатор задачи ("<endpoint>-<uuid>").
func (t *Task) ID() string { return t.id }

// State — текущее состояние.
func (t *Task) State() State { return State(t.state.Load()) }

// Tick — один проход: опрос, при непустой пачке синхронная доставка и асинхронный коммит.
// Тик, заставший предыдущий незавершённым, пропускается.
func (t *Task) Tick(ctx context.Context) {
	if !t.tickMu.TryLock() {
		t.log.Debugf(t.logContext(ctx), "tick skipped: previous tick still running")
		return
	}
	defer t.tickMu.Unlock()

	if !t.transition(StateIdle, StatePolling) && !t.transition(StateSubscribed, StatePolling) {
		return
	}
	ctx = t.logContext(ctx)

	batch, err := t.client.Poll(ctx, t.pollTimeout)
	var partial *broker.PartialPollError
	if errors.As(err, &partial) && !batch.IsEmpty() {
		t.log.Warnf(ctx, "poll returned %d records, some partitions failed: %v", batch.Len(), partial.Err)
		err = nil
	}
	if err != nil {
		t.transition(StatePolling, StateIdle)
		if ctx.Err() != nil || t.State() == StateCancelled {
			return
		}
		metrics.PollsTotal.WithLabelValues(t.endpoint, "error").Inc()
		t.log.Warnf(ctx, "poll failed: %v", err)
		return
	}
	if batch.IsEmpty() {
		metrics.PollsTotal.WithLabelValues(t.endpoint, "empty").Inc()
		t.transition(StatePolling, StateIdle)
		return
	}
	metrics.PollsTotal.WithLabelValues(t.endpoint, "records").Inc()
	for _, r := range batch {
		metrics.RecordsPolled.WithLabelValues(t.endpoint, r.Topic).Inc()
	}

	// отменили во время опроса: пачку не доставляем, смещения не коммитим
	if !t.transition(StatePolling, StateDispatching) {
		t.log.Debugf(ctx, "cancelled during poll, %d records left uncommitted", batch.Len())
		return
	}
	t.log.Debugf(ctx, "dispatching %d records from %v", batch.Len(), batch.Topics())

	// доставка не прерывается отменой задачи
	dctx := context.WithoutCancel(ctx)
	if err := t.dispatcher.Dispatch(dctx, batch); err != nil {
		t.log.Errorf(ctx, "dispatch failed, %d records will be redelivered: %v", batch.Len(), err)
		t.rewind(ctx, batch)
		t.transition(StateDispatching, StateIdle)
		return
	}

	// Пачка доставлена: коммитим даже после отмены, клиент закроется только после этого тика.
	if t.State() == StateCancelled {
		t.log.Debugf(ctx, "cancelled during dispatch, committing delivered batch")
	}
	// коммит не должен висеть вечно: незавершённый коммит задерживает Rewind и Close
	cctx, cancel := context.WithTimeout(dctx, t.commitTimeout)
	t.client.CommitAsync(cctx, batch, func(err error) {
		defer cancel()
		if err != nil {
			metrics.CommitsTotal.WithLabelValues(t.endpoint, "failed").Inc()
			t.log.Warnf(ctx, "async commit failed: %v", err)
			return
		}
		metrics.CommitsTotal.WithLabelValues(t.endpoint, "ok").Inc()
	})
	t.transition(StateDispatching, StateIdle)
}

// Cancel — идемпотентно: новые тики больше ничего не делают, текущий тик дорабатывает,
// затем клиент закрывается с ограничением по времени.
func (t *Task) Cancel() {
	t.cancelOnce.Do(func() {
		t.state.Store(int32(StateCancelled))

		t.tickMu.Lock()
		defer t.tickMu.Unlock()

		ctx := t.logContext(context.Background())
		if err := t.client.Close(t.closeTimeout); err != nil {
			t.log.Warnf(ctx, "close broker client: %v", err)
			return
		}
		t.log.Infof(ctx, "poller cancelled")
	})
}

// transition — CAS из from в to; Cancelled не покидается никогда.
func (t *Task) transition(from, to State) bool {
	return t.state.CompareAndSwap(int32(from), int32(to))
}

func (t *Task) rewind(ctx context.Context, batch broker.Batch) {
	rw, ok := t.client.(broker.Rewinder)
	if !ok {
		return
	}
	if err := rw.Rewind(batch); err != nil {
		t.log.Warnf(ctx, "rewind after failed dispatch: %v", err)
	}
}

func (t *Task) logContext(ctx context.Context) context.Context {
	return ctxmeta.WithEndpoint(ctxmeta.WithPollerID(ctx, t.id), t.endpoint)
}
