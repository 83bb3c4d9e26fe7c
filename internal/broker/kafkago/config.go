package kafkago

import (
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Gunvolt24/kbridge/internal/subscription"
)

// readerConfig — базовая конфигурация kafka.Reader из карты свойств (без топиков).
// Коммит всегда ручной, кроме enable.auto.commit=true: тогда CommitMessages только копит смещения,
// а отправляет их сам reader раз в auto.commit.interval.ms.
func readerConfig(props subscription.Properties) kafka.ReaderConfig {
	clientID, _ := props.String(subscription.KeyClientID)
	groupID, _ := props.String(subscription.KeyGroupID)

	dialer := &kafka.Dialer{
		ClientID:  clientID,
		Timeout:   10 * time.Second,
		DualStack: true,
	}
	if d, ok := props.Millis(subscription.KeyRequestTimeoutMs); ok && d > 0 {
		dialer.Timeout = d
	}

	rc := kafka.ReaderConfig{
		Brokers:        props.List(subscription.KeyBootstrapServers),
		GroupID:        groupID,
		Dialer:         dialer,
		MaxWait:        fetchMaxWait(props),
		CommitInterval: 0,
		StartOffset:    startOffset(props),
	}

	if n, ok := props.Int(subscription.KeyFetchMinBytes); ok && n > 0 {
		rc.MinBytes = int(n)
	}
	if n, ok := props.Int(subscription.KeyMaxPartitionFetchBytes); ok && n > 0 {
		rc.MaxBytes = int(n)
	}
	if rc.MaxBytes > 0 && rc.MinBytes > rc.MaxBytes {
		rc.MinBytes = rc.MaxBytes
	}
	if d, ok := props.Millis(subscription.KeySessionTimeoutMs); ok && d > 0 {
		rc.SessionTimeout = d
	}
	if d, ok := props.Millis(subscription.KeyHeartbeatIntervalMs); ok && d > 0 {
		rc.HeartbeatInterval = d
	}
	if d, ok := props.Millis(subscription.KeyRetryBackoffMs); ok && d > 0 {
		rc.ReadBackoffMin = d
	}
	if d, ok := props.Millis(subscription.KeyReconnectBackoffMs); ok && d > 0 {
		rc.ReadBackoffMax = d
	}
	if rc.ReadBackoffMax > 0 && rc.ReadBackoffMax < rc.ReadBackoffMin {
		rc.ReadBackoffMax = rc.ReadBackoffMin
	}
	if d, ok := props.Millis(subscription.KeyMetadataMaxAgeMs); ok && d > 0 {
		rc.WatchPartitionChanges = true
		rc.PartitionWatchInterval = d
	}

	if auto, ok := props.Bool(subscription.KeyEnableAutoCommit); ok && auto {
		rc.CommitInterval = 5 * time.Second
		if d, ok := props.Millis(subscription.KeyAutoCommitIntervalMs); ok && d > 0 {
			rc.CommitInterval = d
		}
	}

	return rc
}

// startOffset — auto.offset.reset: earliest/first → FirstOffset, всё остальное → LastOffset.
func startOffset(props subscription.Properties) int64 {
	v, _ := props.String(subscription.KeyAutoOffsetReset)
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "earliest", "first":
		return kafka.FirstOffset
	default:
		return kafka.LastOffset
	}
}

func fetchMaxWait(props subscription.Properties) time.Duration {
	if d, ok := props.Millis(subscription.KeyFetchMaxWaitMs); ok && d > 0 {
		return d
	}
	return 500 * time.Millisecond
}
