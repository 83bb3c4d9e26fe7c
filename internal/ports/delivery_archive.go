package ports

import (
	"context"

	"github.com/Gunvolt24/kbridge/internal/domain"
)

// DeliveryArchive — сохранение доставленных записей без дублей.
type DeliveryArchive interface {
	// Archive — возвращает число новых сохранённых записей.
	Archive(ctx context.Context, records []*domain.DeliveredRecord) (int, error)
}
