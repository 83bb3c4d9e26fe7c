package domain

import (
	"fmt"
	"time"
)

// DeliveredRecord — запись брокера, доставленная в конечную точку и сохранённая в архиве.
type DeliveredRecord struct {
	Endpoint    string            `json:"endpoint"`
	Topic       string            `json:"topic"`
	Partition   int32             `json:"partition"`
	Offset      int64             `json:"offset"`
	Key         string            `json:"key,omitempty"`
	Value       string            `json:"value"`
	Headers     map[string]string `json:"headers,omitempty"`
	RecordTime  time.Time         `json:"record_time"`
	DeliveredAt time.Time         `json:"delivered_at"`
}

// ID — ключ идемпотентности записи: endpoint/topic/partition/offset.
func (r *DeliveredRecord) ID() string {
	return RecordID(r.Endpoint, r.Topic, r.Partition, r.Offset)
}

// RecordID — ключ идемпотентности без создания DeliveredRecord.
func RecordID(endpoint, topic string, partition int32, offset int64) string {
	return fmt.Sprintf("%s/%s/%d/%d", endpoint, topic, partition, offset)
}

// SubscriptionInfo — активная подписка: имя конечной точки и идентификаторы её опрашивающих задач.
type SubscriptionInfo struct {
	Endpoint string   `json:"endpoint"`
	Pollers  []string `json:"pollers"`
}
