package franz

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/kmsg"

	"github.com/Gunvolt24/kbridge/internal/broker"
	"github.com/Gunvolt24/kbridge/internal/subscription"
)

// DriverName — имя драйвера в реестре broker.
const DriverName = "franz-go"

func init() {
	broker.Register(DriverName, func(props subscription.Properties) (broker.Client, error) {
		return NewClient(props)
	})
}

var (
	_ broker.Client   = (*Client)(nil)
	_ broker.Rewinder = (*Client)(nil)
	_ consumer        = (*kgo.Client)(nil)
)

// consumer — часть API *kgo.Client, которой пользуется драйвер.
type consumer interface {
	PollRecords(ctx context.Context, maxPollRecords int) kgo.Fetches
	CommitOffsets(
		ctx context.Context,
		uncommitted map[string]map[int32]kgo.EpochOffset,
		onDone func(*kgo.Client, *kmsg.OffsetCommitRequest, *kmsg.OffsetCommitResponse, error),
	)
	SetOffsets(setOffsets map[string]map[int32]kgo.EpochOffset)
	CloseAllowingRebalance()
}

// Client — клиент брокера поверх twmb/franz-go.
// kgo.Client создаётся при Subscribe: ConsumeRegex задаётся только при конструировании.
type Client struct {
	opts       []kgo.Opt
	group      string
	codec      broker.Codec
	maxRecords int

	newConsumer func(opts ...kgo.Opt) (consumer, error)

	mu         sync.Mutex
	cl         consumer
	subscribed bool
	closed     bool
}

// NewClient — конструктор из карты свойств подписки.
func NewClient(props subscription.Properties) (*Client, error) {
	codec, err := broker.NewCodec(props)
	if err != nil {
		return nil, err
	}
	if len(props.List(subscription.KeyBootstrapServers)) == 0 {
		return nil, fmt.Errorf("franz-go: %s is empty", subscription.KeyBootstrapServers)
	}
	group, _ := props.String(subscription.KeyGroupID)

	return &Client{
		opts:       clientOptions(props),
		group:      group,
		codec:      codec,
		maxRecords: broker.MaxPollRecords(props),
		newConsumer: func(opts ...kgo.Opt) (consumer, error) {
			return kgo.NewClient(opts...)
		},
	}, nil
}

// Subscribe — создаёт kgo.Client с топиками селектора; пустой селектор оставляет клиента инертным.
func (c *Client) Subscribe(sel subscription.TopicSelector) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return broker.ErrClientClosed
	}
	if c.subscribed {
		return broker.ErrAlreadySubscribed
	}
	c.subscribed = true

	if sel.IsEmpty() {
		return nil
	}
	if c.group == "" {
		return fmt.Errorf("franz-go: %s is required to subscribe to %s", subscription.KeyGroupID, sel)
	}

	opts := append(append([]kgo.Opt(nil), c.opts...), consumeOptions(sel)...)
	cl, err := c.newConsumer(opts...)
	if err != nil {
		return fmt.Errorf("franz-go: create client: %w", err)
	}
	c.cl = cl
	return nil
}

// Poll — PollRecords с ограничением по времени; истечение timeout не считается ошибкой.
func (c *Client) Poll(ctx context.Context, timeout time.Duration) (broker.Batch, error) {
	cl, err := c.consumer()
	if err != nil || cl == nil {
		return nil, err
	}

	pollCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	fetches := cl.PollRecords(pollCtx, c.maxRecords)
	if fetches.IsClientClosed() {
		return nil, broker.ErrClientClosed
	}

	var fetchErr error
	for _, fe := range fetches.Errors() {
		if errors.Is(fe.Err, context.DeadlineExceeded) || errors.Is(fe.Err, context.Canceled) {
			continue
		}
		fetchErr = errors.Join(fetchErr, fmt.Errorf("fetch %s/%d: %w", fe.Topic, fe.Partition, fe.Err))
	}

	records := fetches.Records()
	if fetchErr != nil && len(records) == 0 {
		return nil, fetchErr
	}

	batch := make(broker.Batch, 0, len(records))
	for _, r := range records {
		rec := toRecord(r)
		if decodeErr := c.codec.Decode(&rec); decodeErr != nil {
			// всё, что уже выдано PollRecords, вернётся следующим опросом
			if rwErr := c.Rewind(toBatch(records)); rwErr != nil {
				return nil, errors.Join(decodeErr, rwErr)
			}
			return nil, decodeErr
		}
		batch = append(batch, rec)
	}

	if fetchErr != nil {
		return batch, &broker.PartialPollError{Err: fetchErr}
	}
	return batch, nil
}

// CommitAsync — CommitOffsets без ожидания; ошибки партиций из ответа тоже уходят в onDone.
func (c *Client) CommitAsync(ctx context.Context, batch broker.Batch, onDone func(error)) {
	done := func(err error) {
		if onDone != nil {
			onDone(err)
		}
	}

	cl, err := c.consumer()
	if err != nil {
		done(err)
		return
	}
	if cl == nil {
		done(broker.ErrClientClosed)
		return
	}

	cl.CommitOffsets(ctx, commitOffsets(batch),
		func(_ *kgo.Client, _ *kmsg.OffsetCommitRequest, resp *kmsg.OffsetCommitResponse, err error) {
			if err == nil {
				err = commitResponseErr(resp)
			}
			done(err)
		})
}

// Rewind — возвращает позицию чтения каждой партиции пачки к её первой записи.
func (c *Client) Rewind(batch broker.Batch) error {
	cl, err := c.consumer()
	if err != nil || cl == nil {
		return err
	}
	if batch.IsEmpty() {
		return nil
	}
	cl.SetOffsets(firstOffsets(batch))
	return nil
}

// Close — CloseAllowingRebalance, но не дольше timeout.
func (c *Client) Close(timeout time.Duration) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	cl := c.cl
	c.mu.Unlock()

	if cl == nil {
		return nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		cl.CloseAllowingRebalance()
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("franz-go: close timed out after %s", timeout)
	}
}

func (c *Client) consumer() (consumer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, broker.ErrClientClosed
	}
	return c.cl, nil
}

func toRecord(r *kgo.Record) broker.Record {
	headers := make([]broker.Header, len(r.Headers))
	for i, h := range r.Headers {
		headers[i] = broker.Header{Key: h.Key, Value: h.Value}
	}
	return broker.Record{
		Topic:       r.Topic,
		Partition:   r.Partition,
		Offset:      r.Offset,
		LeaderEpoch: r.LeaderEpoch,
		Timestamp:   r.Timestamp,
		Headers:     headers,
		RawKey:      r.Key,
		RawValue:    r.Value,
	}
}

func toBatch(records []*kgo.Record) broker.Batch {
	batch := make(broker.Batch, len(records))
	for i, r := range records {
		batch[i] = toRecord(r)
	}
	return batch
}

// commitOffsets — следующее смещение каждой партиции с эпохой лидера последней записи.
func commitOffsets(batch broker.Batch) map[string]map[int32]kgo.EpochOffset {
	out := make(map[string]map[int32]kgo.EpochOffset)
	for _, r := range batch {
		parts, ok := out[r.Topic]
		if !ok {
			parts = make(map[int32]kgo.EpochOffset)
			out[r.Topic] = parts
		}
		if cur, ok := parts[r.Partition]; ok && cur.Offset > r.Offset {
			continue
		}
		parts[r.Partition] = kgo.EpochOffset{Epoch: r.LeaderEpoch, Offset: r.Offset + 1}
	}
	return out
}

// firstOffsets — наименьшее смещение каждой партиции пачки.
func firstOffsets(batch broker.Batch) map[string]map[int32]kgo.EpochOffset {
	out := make(map[string]map[int32]kgo.EpochOffset)
	for _, r := range batch {
		parts, ok := out[r.Topic]
		if !ok {
			parts = make(map[int32]kgo.EpochOffset)
			out[r.Topic] = parts
		}
		if cur, ok := parts[r.Partition]; ok && cur.Offset <= r.Offset {
			continue
		}
		parts[r.Partition] = kgo.EpochOffset{Epoch: r.LeaderEpoch, Offset: r.Offset}
	}
	return out
}

func commitResponseErr(resp *kmsg.OffsetCommitResponse) error {
	if resp == nil {
		return nil
	}
	var errs error
	for _, t := range resp.Topics {
		for _, p := range t.Partitions {
			if err := kerr.ErrorForCode(p.ErrorCode); err != nil {
				errs = errors.Join(errs, fmt.Errorf("commit %s/%d: %w", t.Topic, p.Partition, err))
			}
		}
	}
	return errs
}
