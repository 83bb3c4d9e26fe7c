package ports

import (
	"context"

	"github.com/Gunvolt24/kbridge/internal/domain"
)

// DeliveryReadService — чтение архива доставок.
type DeliveryReadService interface {
	RecentDeliveries(ctx context.Context, endpoint string, limit, offset int) ([]*domain.DeliveredRecord, error)
}

// SubscriptionAdmin — управление подписками из админского API.
type SubscriptionAdmin interface {
	// Subscriptions — активные подписки.
	Subscriptions(ctx context.Context) []domain.SubscriptionInfo
	// ActivateByName — активировать подписку манифеста по имени.
	ActivateByName(ctx context.Context, name string) error
	// DeactivateByName — деактивировать; возвращает число остановленных опрашивающих.
	DeactivateByName(ctx context.Context, name string) (int, error)
}
