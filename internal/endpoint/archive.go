package endpoint

import (
	"context"
	"fmt"
	"time"

	"github.com/Gunvolt24/kbridge/internal/broker"
	"github.com/Gunvolt24/kbridge/internal/domain"
	"github.com/Gunvolt24/kbridge/internal/ports"
	"github.com/Gunvolt24/kbridge/internal/subscription"
)

var _ ports.EndpointFactory = (*ArchiveFactory)(nil)

// ArchiveFactory — конечная точка, сохраняющая пачку в архив доставок.
// Ошибка архива возвращается из Deliver: пачка не коммитится и придёт снова.
type ArchiveFactory struct {
	name    string
	archive ports.DeliveryArchive
	log     ports.Logger
	now     func() time.Time
}

func NewArchiveFactory(name string, archive ports.DeliveryArchive, log ports.Logger) *ArchiveFactory {
	return &ArchiveFactory{name: name, archive: archive, log: log, now: time.Now}
}

func (f *ArchiveFactory) Name() string { return f.name }

func (f *ArchiveFactory) CreateEndpoint(context.Context) (ports.Endpoint, error) {
	return &archiveEndpoint{factory: f}, nil
}

type archiveEndpoint struct {
	factory  *ArchiveFactory
	selector subscription.TopicSelector
	stored   int
}

func (e *archiveEndpoint) BeforeDelivery(_ context.Context, selector subscription.TopicSelector) error {
	e.selector = selector
	return nil
}

func (e *archiveEndpoint) Deliver(ctx context.Context, batch broker.Batch) error {
	if batch.IsEmpty() {
		return nil
	}
	now := e.factory.now().UTC()
	records := make([]*domain.DeliveredRecord, len(batch))
	for i := range batch {
		records[i] = ToDelivered(e.factory.name, &batch[i], now)
	}

	n, err := e.factory.archive.Archive(ctx, records)
	if err != nil {
		return fmt.Errorf("archive %d records: %w", len(records), err)
	}
	e.stored += n
	return nil
}

func (e *archiveEndpoint) AfterDelivery(ctx context.Context) error {
	e.factory.log.Debugf(ctx, "%s stored %d new records from %s", e.factory.name, e.stored, e.selector)
	return nil
}

func (e *archiveEndpoint) Release() { e.stored = 0 }
