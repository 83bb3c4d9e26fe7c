package endpoint

import (
	"context"

	"github.com/Gunvolt24/kbridge/internal/broker"
	"github.com/Gunvolt24/kbridge/internal/ports"
	"github.com/Gunvolt24/kbridge/internal/subscription"
)

var _ ports.EndpointFactory = (*LoggingFactory)(nil)

// LoggingFactory — конечная точка, которая пишет каждую запись в лог.
type LoggingFactory struct {
	name string
	log  ports.Logger
}

func NewLoggingFactory(name string, log ports.Logger) *LoggingFactory {
	return &LoggingFactory{name: name, log: log}
}

func (f *LoggingFactory) Name() string { return f.name }

func (f *LoggingFactory) CreateEndpoint(context.Context) (ports.Endpoint, error) {
	return &loggingEndpoint{name: f.name, log: f.log}, nil
}

type loggingEndpoint struct {
	name     string
	log      ports.Logger
	selector subscription.TopicSelector
	count    int
}

func (e *loggingEndpoint) BeforeDelivery(_ context.Context, selector subscription.TopicSelector) error {
	e.selector = selector
	return nil
}

func (e *loggingEndpoint) Deliver(ctx context.Context, batch broker.Batch) error {
	for i := range batch {
		r := &batch[i]
		e.log.Infof(ctx, "%s :: %s/%d@%d %s", e.name, r.Topic, r.Partition, r.Offset, stringify(r.Value))
	}
	e.count += batch.Len()
	return nil
}

func (e *loggingEndpoint) AfterDelivery(ctx context.Context) error {
	e.log.Debugf(ctx, "%s delivered %d records from %s", e.name, e.count, e.selector)
	return nil
}

func (e *loggingEndpoint) Release() { e.count = 0 }
