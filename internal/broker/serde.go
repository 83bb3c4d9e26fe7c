package broker

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Gunvolt24/kbridge/internal/subscription"
)

// Deserializer — превращает сырые байты ключа/значения в значение для эндпоинта.
type Deserializer interface {
	Deserialize(topic string, data []byte) (any, error)
}

// DeserializerFunc — адаптер функции к Deserializer.
type DeserializerFunc func(topic string, data []byte) (any, error)

func (f DeserializerFunc) Deserialize(topic string, data []byte) (any, error) { return f(topic, data) }

var (
	stringDeserializer = DeserializerFunc(func(_ string, data []byte) (any, error) {
		if data == nil {
			return nil, nil
		}
		return string(data), nil
	})
	bytesDeserializer = DeserializerFunc(func(_ string, data []byte) (any, error) {
		return data, nil
	})
	jsonDeserializer = DeserializerFunc(func(topic string, data []byte) (any, error) {
		if len(data) == 0 {
			return nil, nil
		}
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("json deserialize topic=%s: %w", topic, err)
		}
		return v, nil
	})
)

// deserializers — идентификаторы, включая имена классов исходного Java-адаптера.
var deserializers = map[string]Deserializer{
	"string": stringDeserializer,
	"bytes":  bytesDeserializer,
	"json":   jsonDeserializer,

	"org.apache.kafka.common.serialization.StringDeserializer":    stringDeserializer,
	"org.apache.kafka.common.serialization.ByteArrayDeserializer": bytesDeserializer,
	"com.jftechnology.jca.kafka.serialization.JsonDeserializer":   jsonDeserializer,
}

// LookupDeserializer — десериализатор по идентификатору (без учёта регистра для коротких имён).
func LookupDeserializer(id string) (Deserializer, error) {
	id = strings.TrimSpace(id)
	if d, ok := deserializers[id]; ok {
		return d, nil
	}
	if d, ok := deserializers[strings.ToLower(id)]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("unknown deserializer %q", id)
}

// Codec — пара десериализаторов ключа и значения подписки.
type Codec struct {
	Key   Deserializer
	Value Deserializer
}

// NewCodec — собирает пару десериализаторов из свойств подписки.
func NewCodec(props subscription.Properties) (Codec, error) {
	keyID, _ := props.String(subscription.KeyKeyDeserializer)
	valueID, _ := props.String(subscription.KeyValueDeserializer)

	key, err := LookupDeserializer(keyID)
	if err != nil {
		return Codec{}, fmt.Errorf("%s: %w", subscription.KeyKeyDeserializer, err)
	}
	value, err := LookupDeserializer(valueID)
	if err != nil {
		return Codec{}, fmt.Errorf("%s: %w", subscription.KeyValueDeserializer, err)
	}
	return Codec{Key: key, Value: value}, nil
}

// Decode — заполняет Key/Value записи из RawKey/RawValue.
func (c Codec) Decode(r *Record) error {
	key, err := c.Key.Deserialize(r.Topic, r.RawKey)
	if err != nil {
		return fmt.Errorf("decode key %s/%d@%d: %w", r.Topic, r.Partition, r.Offset, err)
	}
	value, err := c.Value.Deserialize(r.Topic, r.RawValue)
	if err != nil {
		return fmt.Errorf("decode value %s/%d@%d: %w", r.Topic, r.Partition, r.Offset, err)
	}
	r.Key, r.Value = key, value
	return nil
}
