package subscription

import (
	"fmt"
	"strings"
	"time"
)

// Значения по умолчанию уровня подписки.
const (
	DefaultPoolSize         = 1
	DefaultPollInterval     = 5000 * time.Millisecond
	DefaultInitialPollDelay = 2000 * time.Millisecond

	defaultEnableAutoCommit = false
	defaultCheckCRCs        = true
	defaultFetchMinBytes    = 1
)

// Config — параметры одной логической подписки (activation config).
// Пустая строка или nil означают «не задано»: значение берётся из дефолтов адаптера,
// а если нет и там — ключ не попадает в карту свойств (дефолт самого клиента брокера).
type Config struct {
	BootstrapServers  string `koanf:"bootstrapServers"  json:"bootstrapServers,omitempty"`
	KeyDeserializer   string `koanf:"keyDeserializer"   json:"keyDeserializer,omitempty"`
	ValueDeserializer string `koanf:"valueDeserializer" json:"valueDeserializer,omitempty"`
	ClientID          string `koanf:"clientId"          json:"clientId,omitempty"`
	GroupID           string `koanf:"groupId"           json:"groupId,omitempty"`
	AutoOffsetReset   string `koanf:"autoOffsetReset"   json:"autoOffsetReset,omitempty"`

	EnableAutoCommit       *bool  `koanf:"enableAutoCommit"       json:"enableAutoCommit,omitempty"`
	CheckCRCs              *bool  `koanf:"checkCRCs"              json:"checkCRCs,omitempty"`
	FetchMaxWaitMs         *int   `koanf:"fetchMaxWaitMs"         json:"fetchMaxWaitMs,omitempty"`
	AutoCommitIntervalMs   *int   `koanf:"autoCommitIntervalMs"   json:"autoCommitIntervalMs,omitempty"`
	SessionTimeoutMs       *int   `koanf:"sessionTimeoutMs"       json:"sessionTimeoutMs,omitempty"`
	ConnectionsMaxIdleMs   *int   `koanf:"connectionsMaxIdleMs"   json:"connectionsMaxIdleMs,omitempty"`
	ReceiveBufferBytes     *int   `koanf:"receiveBufferBytes"     json:"receiveBufferBytes,omitempty"`
	RequestTimeoutMs       *int   `koanf:"requestTimeoutMs"       json:"requestTimeoutMs,omitempty"`
	MaxPartitionFetchBytes *int   `koanf:"maxPartitionFetchBytes" json:"maxPartitionFetchBytes,omitempty"`
	HeartbeatIntervalMs    *int   `koanf:"heartbeatIntervalMs"    json:"heartbeatIntervalMs,omitempty"`
	FetchMinBytes          *int   `koanf:"fetchMinBytes"          json:"fetchMinBytes,omitempty"`
	MetadataMaxAgeMs       *int64 `koanf:"metadataMaxAgeMs"       json:"metadataMaxAgeMs,omitempty"`
	ReconnectBackoffMs     *int   `koanf:"reconnectBackoffMs"     json:"reconnectBackoffMs,omitempty"`
	RetryBackoffMs         *int   `koanf:"retryBackoffMs"         json:"retryBackoffMs,omitempty"`

	// TopicList — топики через запятую (опция "topics").
	TopicList    string `koanf:"topics"       json:"topics,omitempty"`
	TopicPattern string `koanf:"topicPattern" json:"topicPattern,omitempty"`

	PoolSize *int `koanf:"poolSize" json:"poolSize,omitempty"`
	// PollInterval и InitialPollDelay — в миллисекундах.
	PollInterval     *int64 `koanf:"pollInterval"     json:"pollInterval,omitempty"`
	InitialPollDelay *int64 `koanf:"initialPollDelay" json:"initialPollDelay,omitempty"`
}

// Validate — проверка обязательных свойств после слияния с дефолтами адаптера.
func (c *Config) Validate(defaults Properties) error {
	props := c.BuildProperties(defaults)

	for _, name := range []string{KeyBootstrapServers, KeyKeyDeserializer, KeyValueDeserializer, KeyClientID} {
		if _, ok := props.String(name); !ok {
			return &MissingPropertyError{Name: name}
		}
	}

	if c.PoolSize != nil && *c.PoolSize < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidPoolSize, *c.PoolSize)
	}

	if _, err := c.Topics(); err != nil {
		return err
	}
	return nil
}

// BuildProperties — детерминированное слияние: явное значение подписки > дефолт адаптера > пропуск.
func (c *Config) BuildProperties(defaults Properties) Properties {
	props := make(Properties)

	putString(props, KeyBootstrapServers, c.BootstrapServers)
	putString(props, KeyKeyDeserializer, c.KeyDeserializer)
	putString(props, KeyValueDeserializer, c.ValueDeserializer)
	putString(props, KeyClientID, c.ClientID)
	putString(props, KeyGroupID, c.GroupID)
	putString(props, KeyAutoOffsetReset, c.AutoOffsetReset)

	props[KeyEnableAutoCommit] = boolOr(c.EnableAutoCommit, defaultEnableAutoCommit)
	props[KeyCheckCRCs] = boolOr(c.CheckCRCs, defaultCheckCRCs)
	props[KeyFetchMinBytes] = intOr(c.FetchMinBytes, defaultFetchMinBytes)

	putInt(props, KeyFetchMaxWaitMs, c.FetchMaxWaitMs)
	putInt(props, KeyAutoCommitIntervalMs, c.AutoCommitIntervalMs)
	putInt(props, KeySessionTimeoutMs, c.SessionTimeoutMs)
	putInt(props, KeyConnectionsMaxIdleMs, c.ConnectionsMaxIdleMs)
	putInt(props, KeyReceiveBufferBytes, c.ReceiveBufferBytes)
	putInt(props, KeyRequestTimeoutMs, c.RequestTimeoutMs)
	putInt(props, KeyMaxPartitionFetchBytes, c.MaxPartitionFetchBytes)
	putInt(props, KeyHeartbeatIntervalMs, c.HeartbeatIntervalMs)
	putInt(props, KeyReconnectBackoffMs, c.ReconnectBackoffMs)
	putInt(props, KeyRetryBackoffMs, c.RetryBackoffMs)
	if c.MetadataMaxAgeMs != nil {
		props[KeyMetadataMaxAgeMs] = *c.MetadataMaxAgeMs
	}

	// Дефолты адаптера заполняют только отсутствующие ключи; пустые значения не переносим.
	for k, v := range defaults {
		if _, exists := props[k]; exists {
			continue
		}
		if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
			continue
		}
		if v == nil {
			continue
		}
		props[k] = v
	}

	return props
}

// PoolSizeOrDefault — число независимых опрашивающих задач.
func (c *Config) PoolSizeOrDefault() int {
	if c.PoolSize == nil || *c.PoolSize < 1 {
		return DefaultPoolSize
	}
	return *c.PoolSize
}

// PollIntervalOrDefault — период между тиками одной задачи.
func (c *Config) PollIntervalOrDefault() time.Duration {
	if c.PollInterval == nil || *c.PollInterval <= 0 {
		return DefaultPollInterval
	}
	return time.Duration(*c.PollInterval) * time.Millisecond
}

// InitialPollDelayOrDefault — задержка перед первым тиком.
func (c *Config) InitialPollDelayOrDefault() time.Duration {
	if c.InitialPollDelay == nil || *c.InitialPollDelay < 0 {
		return DefaultInitialPollDelay
	}
	return time.Duration(*c.InitialPollDelay) * time.Millisecond
}

func putString(props Properties, key, value string) {
	if s := strings.TrimSpace(value); s != "" {
		props[key] = s
	}
}

func putInt(props Properties, key string, value *int) {
	if value != nil {
		props[key] = *value
	}
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}
