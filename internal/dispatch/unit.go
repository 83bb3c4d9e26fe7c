// Пакет dispatch — доставка одной пачки записей в конечную точку приложения.
package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/Gunvolt24/kbridge/internal/broker"
	"github.com/Gunvolt24/kbridge/internal/ports"
	"github.com/Gunvolt24/kbridge/internal/subscription"
)

// ErrDispatchFailed — доставка пачки не удалась; смещения не коммитятся.
var ErrDispatchFailed = errors.New("dispatch failed")

// Stage — шаг доставки, на котором произошла ошибка.
type Stage string

const (
	StageCreateEndpoint Stage = "create_endpoint"
	StageBeforeDelivery Stage = "before_delivery"
	StageDeliver        Stage = "deliver"
	StageAfterDelivery  Stage = "after_delivery"
	StagePanic          Stage = "panic"
	StageWork           Stage = "work"
)

// DispatchError — ошибка доставки с указанием шага; errors.Is(err, ErrDispatchFailed) == true.
type DispatchError struct {
	Endpoint string
	Stage    Stage
	Err      error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch %s: %s: %v", e.Endpoint, e.Stage, e.Err)
}

func (e *DispatchError) Unwrap() []error { return []error{ErrDispatchFailed, e.Err} }

// Unit — одна доставка: CreateEndpoint → BeforeDelivery → Deliver → AfterDelivery, Release всегда.
// Ошибка на любом шаге прерывает остальные (AfterDelivery после неудачного Deliver не вызывается).
type Unit struct {
	Factory  ports.EndpointFactory
	Selector subscription.TopicSelector
	Batch    broker.Batch
}

// Run — выполнить доставку; паника конечной точки возвращается как *DispatchError со StagePanic.
func (u *Unit) Run(ctx context.Context) (err error) {
	name := u.Factory.Name()
	fail := func(stage Stage, cause error) error {
		return &DispatchError{Endpoint: name, Stage: stage, Err: cause}
	}

	defer func() {
		if r := recover(); r != nil {
			err = fail(StagePanic, fmt.Errorf("%v", r))
		}
	}()

	ep, err := u.Factory.CreateEndpoint(ctx)
	if err != nil {
		return fail(StageCreateEndpoint, err)
	}
	if ep == nil {
		return fail(StageCreateEndpoint, errors.New("factory returned nil endpoint"))
	}
	defer ep.Release()

	if err := ep.BeforeDelivery(ctx, u.Selector); err != nil {
		return fail(StageBeforeDelivery, err)
	}
	if err := ep.Deliver(ctx, u.Batch); err != nil {
		return fail(StageDeliver, err)
	}
	if err := ep.AfterDelivery(ctx); err != nil {
		return fail(StageAfterDelivery, err)
	}
	return nil
}
