package dispatch

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Gunvolt24/kbridge/internal/broker"
	"github.com/Gunvolt24/kbridge/internal/ports"
	"github.com/Gunvolt24/kbridge/internal/subscription"
	"github.com/Gunvolt24/kbridge/internal/workmanager"
	"github.com/Gunvolt24/kbridge/pkg/metrics"
	"github.com/Gunvolt24/kbridge/pkg/telemetry"
)

// WorkRunner — исполнитель работ (workmanager.Manager).
type WorkRunner interface {
	DoWork(ctx context.Context, w workmanager.Work) error
}

// Dispatcher — доставка пачек одной подписки через общий пул работ.
type Dispatcher struct {
	factory  ports.EndpointFactory
	selector subscription.TopicSelector
	work     WorkRunner
	tracer   trace.Tracer
}

// NewDispatcher — DI-конструктор.
func NewDispatcher(factory ports.EndpointFactory, selector subscription.TopicSelector, work WorkRunner) *Dispatcher {
	return &Dispatcher{
		factory:  factory,
		selector: selector,
		work:     work,
		tracer:   telemetry.Tracer(),
	}
}

// Dispatch — синхронно: возвращается после завершения доставки. nil — пачку можно коммитить.
func (d *Dispatcher) Dispatch(ctx context.Context, batch broker.Batch) error {
	name := d.factory.Name()

	ctx, span := d.tracer.Start(ctx, "kbridge.dispatch", trace.WithAttributes(
		attribute.String("kbridge.endpoint", name),
		attribute.Int("kbridge.batch.size", batch.Len()),
		attribute.StringSlice("kbridge.batch.topics", batch.Topics()),
	))
	defer span.End()

	unit := &Unit{Factory: d.factory, Selector: d.selector, Batch: batch}

	start := time.Now()
	err := d.work.DoWork(ctx, unit.Run)
	metrics.DispatchDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	if err == nil {
		metrics.DispatchTotal.WithLabelValues(name, "ok").Inc()
		return nil
	}

	result := "failed"
	var de *DispatchError
	if !errors.As(err, &de) {
		// работа не выполнилась: отказ пула или паника вне Unit
		if errors.Is(err, workmanager.ErrWorkRejected) {
			result = "rejected"
		}
		err = &DispatchError{Endpoint: name, Stage: StageWork, Err: err}
	}
	metrics.DispatchTotal.WithLabelValues(name, result).Inc()

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
