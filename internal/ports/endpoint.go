package ports

import (
	"context"

	"github.com/Gunvolt24/kbridge/internal/broker"
	"github.com/Gunvolt24/kbridge/internal/subscription"
)

// Endpoint — экземпляр слушателя приложения на одну доставку.
// Порядок вызовов: BeforeDelivery → Deliver → AfterDelivery; Release вызывается всегда.
type Endpoint interface {
	// BeforeDelivery — подготовка к доставке; selector — на что подписан опрашивающий.
	BeforeDelivery(ctx context.Context, selector subscription.TopicSelector) error
	// Deliver — вся пачка одним вызовом.
	Deliver(ctx context.Context, batch broker.Batch) error
	// AfterDelivery — завершение доставки.
	AfterDelivery(ctx context.Context) error
	// Release — освобождение экземпляра.
	Release()
}

// EndpointFactory — фабрика конечных точек; её идентичность — ключ реестра подписок.
// Реализации должны быть сравнимыми (указатель или значение без срезов и карт).
type EndpointFactory interface {
	// Name — имя конечной точки (префикс идентификатора опрашивающего, поле логов).
	Name() string
	// CreateEndpoint — новый экземпляр на одну доставку.
	CreateEndpoint(ctx context.Context) (Endpoint, error)
}
