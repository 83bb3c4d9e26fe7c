package broker

import (
	"context"
	"errors"
	"time"

	"github.com/Gunvolt24/kbridge/internal/subscription"
)

const (
	// DefaultFetchMaxWait — таймаут опроса, если fetch.max.wait.ms не задан нигде.
	DefaultFetchMaxWait = 500 * time.Millisecond
	// DefaultMaxPollRecords — размер пачки по умолчанию.
	DefaultMaxPollRecords = 500
	// DefaultCommitTimeout — предел асинхронного коммита, если request.timeout.ms не задан.
	DefaultCommitTimeout = 30 * time.Second

	// KeyMaxPollRecords — необязательное свойство драйверов (только из дефолтов адаптера).
	KeyMaxPollRecords = "max.poll.records"
)

var (
	// ErrClientClosed — операция над закрытым клиентом.
	ErrClientClosed = errors.New("broker client closed")
	// ErrAlreadySubscribed — повторная подписка одного клиента.
	ErrAlreadySubscribed = errors.New("broker client already subscribed")
)

// PartialPollError — опрос вернул записи, но часть партиций ответила ошибкой.
// Пачка при этом годна к доставке.
type PartialPollError struct {
	Err error
}

func (e *PartialPollError) Error() string { return "partial poll: " + e.Err.Error() }

func (e *PartialPollError) Unwrap() error { return e.Err }

// Client — pull-API клиента брокера. Один экземпляр принадлежит одной опрашивающей задаче
// и не используется конкурентно (кроме Close).
type Client interface {
	// Subscribe — подписка на список топиков или на шаблон; пустой селектор — no-op.
	Subscribe(selector subscription.TopicSelector) error
	// Poll — ждёт записи не дольше timeout; пустая пачка — не ошибка.
	// Непустая пачка вместе с *PartialPollError — записи доставляются, ошибка только сообщается.
	Poll(ctx context.Context, timeout time.Duration) (Batch, error)
	// CommitAsync — неблокирующий коммит смещений пачки; onDone вызывается с результатом.
	CommitAsync(ctx context.Context, batch Batch, onDone func(error))
	// Close — закрытие с ограничением по времени.
	Close(timeout time.Duration) error
}

// Rewinder — клиент умеет вернуть позицию чтения к началу пачки, чтобы недоставленные записи
// пришли в следующем опросе, а не только после перезапуска или ребалансировки.
type Rewinder interface {
	Rewind(batch Batch) error
}

// Factory — конструктор клиента из карты свойств.
type Factory func(props subscription.Properties) (Client, error)

// MaxPollRecords — верхняя граница размера пачки (max.poll.records).
func MaxPollRecords(props subscription.Properties) int {
	if n, ok := props.Int(KeyMaxPollRecords); ok && n > 0 {
		return int(n)
	}
	return DefaultMaxPollRecords
}

// FetchMaxWait — таймаут опроса из свойств.
func FetchMaxWait(props subscription.Properties) time.Duration {
	if d, ok := props.Millis(subscription.KeyFetchMaxWaitMs); ok && d > 0 {
		return d
	}
	return DefaultFetchMaxWait
}

// CommitTimeout — предел ожидания одного коммита (request.timeout.ms).
func CommitTimeout(props subscription.Properties) time.Duration {
	if d, ok := props.Millis(subscription.KeyRequestTimeoutMs); ok && d > 0 {
		return d
	}
	return DefaultCommitTimeout
}
