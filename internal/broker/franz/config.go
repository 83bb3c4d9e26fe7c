package franz

import (
	"strings"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/Gunvolt24/kbridge/internal/broker"
	"github.com/Gunvolt24/kbridge/internal/subscription"
)

// clientOptions — опции kgo.Client из карты свойств (без топиков).
// Автокоммит franz-go выключен всегда, кроме enable.auto.commit=true.
func clientOptions(props subscription.Properties) []kgo.Opt {
	opts := []kgo.Opt{
		kgo.SeedBrokers(props.List(subscription.KeyBootstrapServers)...),
		kgo.FetchMaxWait(broker.FetchMaxWait(props)),
		kgo.ConsumeResetOffset(resetOffset(props)),
	}

	if id, ok := props.String(subscription.KeyClientID); ok {
		opts = append(opts, kgo.ClientID(id))
	}
	if group, ok := props.String(subscription.KeyGroupID); ok {
		opts = append(opts, kgo.ConsumerGroup(group))
	}

	if auto, ok := props.Bool(subscription.KeyEnableAutoCommit); ok && auto {
		interval := 5 * time.Second
		if d, ok := props.Millis(subscription.KeyAutoCommitIntervalMs); ok && d > 0 {
			interval = d
		}
		opts = append(opts, kgo.AutoCommitInterval(interval))
	} else {
		opts = append(opts, kgo.DisableAutoCommit())
	}

	if n, ok := props.Int(subscription.KeyFetchMinBytes); ok && n > 0 {
		opts = append(opts, kgo.FetchMinBytes(int32(n)))
	}
	if n, ok := props.Int(subscription.KeyMaxPartitionFetchBytes); ok && n > 0 {
		opts = append(opts, kgo.FetchMaxPartitionBytes(int32(n)))
	}
	if d, ok := props.Millis(subscription.KeySessionTimeoutMs); ok && d > 0 {
		opts = append(opts, kgo.SessionTimeout(d))
	}
	if d, ok := props.Millis(subscription.KeyHeartbeatIntervalMs); ok && d > 0 {
		opts = append(opts, kgo.HeartbeatInterval(d))
	}
	if d, ok := props.Millis(subscription.KeyMetadataMaxAgeMs); ok && d > 0 {
		opts = append(opts, kgo.MetadataMaxAge(d))
	}
	if d, ok := props.Millis(subscription.KeyConnectionsMaxIdleMs); ok && d > 0 {
		opts = append(opts, kgo.ConnIdleTimeout(d))
	}
	if d, ok := props.Millis(subscription.KeyRequestTimeoutMs); ok && d > 0 {
		opts = append(opts, kgo.RequestTimeoutOverhead(d))
	}
	if d, ok := props.Millis(subscription.KeyRetryBackoffMs); ok && d > 0 {
		opts = append(opts, kgo.RetryBackoffFn(func(int) time.Duration { return d }))
	}

	return opts
}

// resetOffset — auto.offset.reset: earliest/first → начало партиции, остальное → конец.
func resetOffset(props subscription.Properties) kgo.Offset {
	v, _ := props.String(subscription.KeyAutoOffsetReset)
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "earliest", "first":
		return kgo.NewOffset().AtStart()
	default:
		return kgo.NewOffset().AtEnd()
	}
}

// consumeOptions — топики подписки: список как есть, шаблон через ConsumeRegex.
func consumeOptions(sel subscription.TopicSelector) []kgo.Opt {
	if sel.IsPattern() {
		return []kgo.Opt{kgo.ConsumeTopics(sel.Pattern.String()), kgo.ConsumeRegex()}
	}
	return []kgo.Opt{kgo.ConsumeTopics(sel.List...)}
}
