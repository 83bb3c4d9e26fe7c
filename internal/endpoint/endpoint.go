// Package endpoint — конечные точки, которые хост умеет собирать по виду из манифеста.
package endpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Gunvolt24/kbridge/internal/broker"
	"github.com/Gunvolt24/kbridge/internal/domain"
	"github.com/Gunvolt24/kbridge/internal/ports"
)

// Виды конечных точек в манифесте.
const (
	KindLogging = "logging"
	KindArchive = "archive"
)

var ErrUnknownKind = errors.New("unknown endpoint kind")

// Builder — собирает фабрики конечных точек по виду.
type Builder struct {
	Log ports.Logger
	// Archive — нужен только для вида archive.
	Archive ports.DeliveryArchive
}

// Build — фабрика для подписки name; каждый вызов возвращает новую фабрику.
func (b Builder) Build(kind, name string) (ports.EndpointFactory, error) {
	switch kind {
	case KindLogging:
		return NewLoggingFactory(name, b.Log), nil
	case KindArchive:
		if b.Archive == nil {
			return nil, fmt.Errorf("%s endpoint %q: archive storage is not configured", kind, name)
		}
		return NewArchiveFactory(name, b.Archive, b.Log), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// ToDelivered — запись брокера в виде строки архива.
func ToDelivered(endpoint string, r *broker.Record, deliveredAt time.Time) *domain.DeliveredRecord {
	var headers map[string]string
	if len(r.Headers) > 0 {
		headers = make(map[string]string, len(r.Headers))
		for _, h := range r.Headers {
			headers[h.Key] = string(h.Value)
		}
	}
	return &domain.DeliveredRecord{
		Endpoint:    endpoint,
		Topic:       r.Topic,
		Partition:   r.Partition,
		Offset:      r.Offset,
		Key:         stringify(r.Key),
		Value:       stringify(r.Value),
		Headers:     headers,
		RecordTime:  r.Timestamp,
		DeliveredAt: deliveredAt,
	}
}

// stringify — декодированное значение как текст; json-значения сериализуются обратно.
func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	default:
		raw, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(raw)
	}
}
