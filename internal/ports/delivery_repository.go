package ports

import (
	"context"

	"github.com/Gunvolt24/kbridge/internal/domain"
)

// DeliveryRepository — архив доставленных записей.
type DeliveryRepository interface {
	// SaveBatch — идемпотентная вставка; возвращает число реально добавленных строк.
	SaveBatch(ctx context.Context, records []*domain.DeliveredRecord) (int, error)
	// ListRecent — последние записи конечной точки (пустое имя — все), от новых к старым.
	ListRecent(ctx context.Context, endpoint string, limit, offset int) ([]*domain.DeliveredRecord, error)
	// LastIDs — ключи последних n записей (прогрев кэша).
	LastIDs(ctx context.Context, n int) ([]string, error)
}
