package kafkago

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Gunvolt24/kbridge/internal/broker"
	"github.com/Gunvolt24/kbridge/internal/subscription"
)

// DriverName — имя драйвера в реестре broker.
const DriverName = "kafka-go"

// drainWait — сколько ждать следующего сообщения, когда пачка уже не пуста.
const drainWait = 10 * time.Millisecond

func init() {
	broker.Register(DriverName, func(props subscription.Properties) (broker.Client, error) {
		return NewClient(props)
	})
}

// Проверка, что Client удовлетворяет контракту клиента брокера.
var (
	_ broker.Client   = (*Client)(nil)
	_ broker.Rewinder = (*Client)(nil)
)

// reader — минимальный контракт над kafka.Reader, чтобы подменять его моками в тестах.
type reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// topicResolver — список топиков кластера, подходящих под шаблон.
type topicResolver func(ctx context.Context, rc kafka.ReaderConfig, sel subscription.TopicSelector) ([]string, error)

// Client — клиент брокера поверх segmentio/kafka-go.
// kafka.Reader создаётся при Subscribe: ему нужен список топиков заранее.
type Client struct {
	base       kafka.ReaderConfig
	codec      broker.Codec
	maxRecords int
	resolveAge time.Duration
	commitWait time.Duration // сколько Rewind ждёт незавершённые коммиты

	newReader func(kafka.ReaderConfig) reader
	resolve   topicResolver

	mu           sync.Mutex
	reader       reader
	selector     subscription.TopicSelector
	subscribed   bool
	closed       bool
	rewinding    bool
	lastResolved time.Time
	inflight     *sync.WaitGroup // коммиты текущего reader; новый reader — новая группа
}

// NewClient — конструктор из карты свойств подписки.
func NewClient(props subscription.Properties) (*Client, error) {
	codec, err := broker.NewCodec(props)
	if err != nil {
		return nil, err
	}

	base := readerConfig(props)
	if len(base.Brokers) == 0 {
		return nil, fmt.Errorf("kafka-go: %s is empty", subscription.KeyBootstrapServers)
	}

	resolveAge := 5 * time.Minute
	if d, ok := props.Millis(subscription.KeyMetadataMaxAgeMs); ok && d > 0 {
		resolveAge = d
	}

	return &Client{
		base:       base,
		codec:      codec,
		maxRecords: broker.MaxPollRecords(props),
		resolveAge: resolveAge,
		commitWait: broker.CommitTimeout(props),
		newReader:  func(rc kafka.ReaderConfig) reader { return kafka.NewReader(rc) },
		resolve:    resolveTopics,
	}, nil
}

// Subscribe — список топиков идёт в GroupTopics; шаблон разрешается по метаданным кластера.
// Без group.id kafka-go не умеет читать несколько топиков с коммитом смещений.
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
	c.selector = sel

	if sel.IsEmpty() {
		return nil
	}
	if c.base.GroupID == "" {
		return fmt.Errorf("kafka-go: %s is required to subscribe to %s", subscription.KeyGroupID, sel)
	}

	topics := sel.List
	if sel.IsPattern() {
		ctx, cancel := context.WithTimeout(context.Background(), c.base.Dialer.Timeout)
		defer cancel()

		resolved, err := c.resolve(ctx, c.base, sel)
		if err != nil {
			return fmt.Errorf("kafka-go: resolve %s: %w", sel, err)
		}
		c.lastResolved = time.Now()
		topics = resolved
	}

	c.openLocked(topics)
	return nil
}

// Poll — первое сообщение ждём до timeout, остальные добираем, пока они есть в буфере reader.
func (c *Client) Poll(ctx context.Context, timeout time.Duration) (broker.Batch, error) {
	r, err := c.currentReader()
	if err != nil || r == nil {
		return nil, err
	}

	pollCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var (
		batch    broker.Batch
		firstErr error
	)
	for len(batch) < c.maxRecords {
		msg, fetchErr := fetchOne(pollCtx, r, len(batch) > 0)
		if fetchErr != nil {
			if errors.Is(fetchErr, context.DeadlineExceeded) || errors.Is(fetchErr, context.Canceled) {
				break
			}
			if errors.Is(fetchErr, io.EOF) {
				return nil, broker.ErrClientClosed
			}
			if len(batch) > 0 {
				// вернём то, что уже прочитано; ошибка повторится в следующем опросе
				firstErr = fetchErr
				break
			}
			return nil, fetchErr
		}

		rec := toRecord(&msg)
		if decodeErr := c.codec.Decode(&rec); decodeErr != nil {
			// прочитанное не должно потеряться: откатываемся к последнему коммиту
			if rwErr := c.Rewind(append(batch, rec)); rwErr != nil {
				return nil, errors.Join(decodeErr, rwErr)
			}
			return nil, decodeErr
		}
		batch = append(batch, rec)
	}

	if firstErr != nil {
		return batch, &broker.PartialPollError{Err: firstErr}
	}
	return batch, nil
}

// CommitAsync — CommitMessages в отдельной горутине; Close дожидается незавершённых коммитов.
func (c *Client) CommitAsync(ctx context.Context, batch broker.Batch, onDone func(error)) {
	done := func(err error) {
		if onDone != nil {
			onDone(err)
		}
	}

	c.mu.Lock()
	r := c.reader
	if c.closed || r == nil {
		c.mu.Unlock()
		done(broker.ErrClientClosed)
		return
	}
	wg := c.inflight
	wg.Add(1)
	c.mu.Unlock()

	msgs := commitMessages(batch)
	go func() {
		defer wg.Done()
		done(r.CommitMessages(ctx, msgs...))
	}()
}

// Rewind — kafka-go не умеет seek в группе, поэтому пересоздаём reader:
// новый участник группы начнёт с последнего закоммиченного смещения.
// Незавершённые коммиты ждём не дольше commitWait и без c.mu: Poll и Close не блокируются.
func (c *Client) Rewind(_ broker.Batch) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return broker.ErrClientClosed
	}
	old := c.reader
	if old == nil || c.rewinding {
		c.mu.Unlock()
		return nil
	}
	c.rewinding = true
	c.reader = nil
	inflight := c.inflight
	topics := c.activeTopics()
	c.mu.Unlock()

	waitTimeout(inflight, c.commitWait)
	closeErr := old.Close()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.rewinding = false
	if c.closed {
		return broker.ErrClientClosed
	}
	c.openLocked(topics)
	if closeErr != nil {
		return fmt.Errorf("kafka-go: close reader on rewind: %w", closeErr)
	}
	return nil
}

// Close — ждёт незавершённые коммиты и закрывает reader, но не дольше timeout.
func (c *Client) Close(timeout time.Duration) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	r := c.reader
	inflight := c.inflight
	c.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		if inflight != nil {
			inflight.Wait()
		}
		if r == nil {
			done <- nil
			return
		}
		done <- r.Close()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		return fmt.Errorf("kafka-go: close timed out after %s", timeout)
	}
}

// currentReader — текущий reader; для «пустой» подписки по шаблону периодически
// перепроверяет метаданные, чтобы подхватить появившиеся топики.
func (c *Client) currentReader() (reader, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, broker.ErrClientClosed
	}
	if c.rewinding {
		return nil, nil
	}
	if c.reader != nil || !c.selector.IsPattern() || c.base.GroupID == "" {
		return c.reader, nil
	}
	if time.Since(c.lastResolved) < c.resolveAge {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.base.Dialer.Timeout)
	defer cancel()
	topics, err := c.resolve(ctx, c.base, c.selector)
	c.lastResolved = time.Now()
	if err != nil {
		return nil, fmt.Errorf("kafka-go: resolve %s: %w", c.selector, err)
	}
	c.openLocked(topics)
	return c.reader, nil
}

// openLocked — создаёт reader на топики; пустой список оставляет клиента инертным.
func (c *Client) openLocked(topics []string) {
	if len(topics) == 0 {
		c.reader = nil
		return
	}
	rc := c.base
	rc.GroupTopics = append([]string(nil), topics...)
	c.reader = c.newReader(rc)
	c.inflight = &sync.WaitGroup{}
	c.base.GroupTopics = rc.GroupTopics
}

func (c *Client) activeTopics() []string {
	return append([]string(nil), c.base.GroupTopics...)
}

// waitTimeout — wg.Wait, но не дольше timeout.
func waitTimeout(wg *sync.WaitGroup, timeout time.Duration) {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
	}
}

func fetchOne(ctx context.Context, r reader, draining bool) (kafka.Message, error) {
	if !draining {
		return r.FetchMessage(ctx)
	}
	drainCtx, cancel := context.WithTimeout(ctx, drainWait)
	defer cancel()
	return r.FetchMessage(drainCtx)
}

// resolveTopics — топики кластера, подходящие под шаблон (внутренние пропускаем).
func resolveTopics(ctx context.Context, rc kafka.ReaderConfig, sel subscription.TopicSelector) ([]string, error) {
	cl := &kafka.Client{
		Addr:    kafka.TCP(rc.Brokers...),
		Timeout: rc.Dialer.Timeout,
	}
	meta, err := cl.Metadata(ctx, &kafka.MetadataRequest{})
	if err != nil {
		return nil, err
	}

	var topics []string
	for _, t := range meta.Topics {
		if t.Internal || t.Error != nil {
			continue
		}
		if sel.Pattern.MatchString(t.Name) {
			topics = append(topics, t.Name)
		}
	}
	sort.Strings(topics)
	return topics, nil
}

func toRecord(msg *kafka.Message) broker.Record {
	headers := make([]broker.Header, len(msg.Headers))
	for i, h := range msg.Headers {
		headers[i] = broker.Header{Key: h.Key, Value: h.Value}
	}
	return broker.Record{
		Topic:       msg.Topic,
		Partition:   int32(msg.Partition),
		Offset:      msg.Offset,
		LeaderEpoch: -1,
		Timestamp:   msg.Time,
		Headers:     headers,
		RawKey:      msg.Key,
		RawValue:    msg.Value,
	}
}

// commitMessages — по одному сообщению на партицию с максимальным смещением пачки
// (kafka-go сам коммитит offset+1).
func commitMessages(batch broker.Batch) []kafka.Message {
	next := batch.NextOffsets()
	msgs := make([]kafka.Message, 0, len(next))
	for tp, offset := range next {
		msgs = append(msgs, kafka.Message{Topic: tp.Topic, Partition: int(tp.Partition), Offset: offset - 1})
	}
	sort.Slice(msgs, func(i, j int) bool {
		if msgs[i].Topic != msgs[j].Topic {
			return msgs[i].Topic < msgs[j].Topic
		}
		return msgs[i].Partition < msgs[j].Partition
	})
	return msgs
}
