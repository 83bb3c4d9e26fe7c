package subscription

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Ключи свойств клиента брокера (канонические имена Kafka).
const (
	KeyBootstrapServers       = "bootstrap.servers"
	KeyKeyDeserializer        = "key.deserializer"
	KeyValueDeserializer      = "value.deserializer"
	KeyClientID               = "client.id"
	KeyGroupID                = "group.id"
	KeyEnableAutoCommit       = "enable.auto.commit"
	KeyFetchMaxWaitMs         = "fetch.max.wait.ms"
	KeyAutoCommitIntervalMs   = "auto.commit.interval.ms"
	KeySessionTimeoutMs       = "session.timeout.ms"
	KeyAutoOffsetReset        = "auto.offset.reset"
	KeyConnectionsMaxIdleMs   = "connections.max.idle.ms"
	KeyReceiveBufferBytes     = "receive.buffer.bytes"
	KeyRequestTimeoutMs       = "request.timeout.ms"
	KeyCheckCRCs              = "check.crcs"
	KeyMaxPartitionFetchBytes = "max.partition.fetch.bytes"
	KeyHeartbeatIntervalMs    = "heartbeat.interval.ms"
	KeyFetchMinBytes          = "fetch.min.bytes"
	KeyMetadataMaxAgeMs       = "metadata.max.age.ms"
	KeyReconnectBackoffMs     = "reconnect.backoff.ms"
	KeyRetryBackoffMs         = "retry.backoff.ms"
)

// Properties — карта свойств, передаваемая конструктору клиента брокера.
// Значения: string, int, int64 или bool.
type Properties map[string]any

// Clone — поверхностная копия карты.
func (p Properties) Clone() Properties {
	out := make(Properties, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Keys — отсортированный список ключей (для детерминированного вывода).
func (p Properties) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String — строковое значение; ("", false), если ключа нет или значение пустое.
func (p Properties) String(key string) (string, bool) {
	v, ok := p[key]
	if !ok || v == nil {
		return "", false
	}
	s := strings.TrimSpace(fmt.Sprint(v))
	if s == "" {
		return "", false
	}
	return s, true
}

// Int — целое значение; строки тоже разбираются.
func (p Properties) Int(key string) (int64, bool) {
	v, ok := p[key]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// Bool — логическое значение; строки "true"/"false" тоже разбираются.
func (p Properties) Bool(key string) (value, ok bool) {
	v, found := p[key]
	if !found || v == nil {
		return false, false
	}
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		if err != nil {
			return false, false
		}
		return parsed, true
	default:
		return false, false
	}
}

// Millis — значение в миллисекундах как time.Duration.
func (p Properties) Millis(key string) (time.Duration, bool) {
	n, ok := p.Int(key)
	if !ok {
		return 0, false
	}
	return time.Duration(n) * time.Millisecond, true
}

// List — значение, разделённое запятыми (например, bootstrap.servers).
func (p Properties) List(key string) []string {
	s, ok := p.String(key)
	if !ok {
		return nil
	}
	return splitList(s)
}

// splitList — режет по запятой, убирает пробелы и пустые элементы, сохраняя порядок.
func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}
