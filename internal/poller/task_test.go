package poller_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/Gunvolt24/kbridge/internal/broker"
	"github.com/Gunvolt24/kbridge/internal/broker/mocks"
	"github.com/Gunvolt24/kbridge/internal/poller"
	"github.com/Gunvolt24/kbridge/internal/subscription"
)

type nopLogger struct{}

func (nopLogger) Debugf(context.Context, string, ...any) {}
func (nopLogger) Infof(context.Context, string, ...any)  {}
func (nopLogger) Warnf(context.Context, string, ...any)  {}
func (nopLogger) Errorf(context.Context, string, ...any) {}

// dispatchFunc — Dispatcher из функции.
type dispatchFunc func(ctx context.Context, batch broker.Batch) error

func (f dispatchFunc) Dispatch(ctx context.Context, batch broker.Batch) error { return f(ctx, batch) }

// rewindingClient — клиент с поддержкой Rewind.
type rewindingClient struct {
	*mocks.MockClient
	rewound atomic.Int32
}

func (c *rewindingClient) Rewind(broker.Batch) error {
	c.rewound.Add(1)
	return nil
}

var (
	selector = subscription.TopicSelector{List: []string{"t1", "t2"}}
	batch    = broker.Batch{
		{Topic: "t1", Partition: 0, Offset: 5},
		{Topic: "t2", Partition: 1, Offset: 9},
	}
)

func baseProps() subscription.Properties {
	return subscription.Properties{
		subscription.KeyBootstrapServers:  "b:9092",
		subscription.KeyKeyDeserializer:   "string",
		subscription.KeyValueDeserializer: "string",
		subscription.KeyClientID:          "configured",
		subscription.KeyFetchMaxWaitMs:    250,
	}
}

func newTask(t *testing.T, client broker.Client, d poller.Dispatcher) *poller.Task {
	t.Helper()
	task, err := poller.New(poller.Params{
		Endpoint:   "OrdersListener",
		Properties: baseProps(),
		Selector:   selector,
		NewClient:  func(subscription.Properties) (broker.Client, error) { return client, nil },
		Dispatcher: d,
		Log:        nopLogger{},
	})
	require.NoError(t, err)
	return task
}

func noDispatch(t *testing.T) poller.Dispatcher {
	return dispatchFunc(func(context.Context, broker.Batch) error {
		t.Errorf("dispatch must not be called")
		return nil
	})
}

func TestNew_ClientIDAndSubscribe(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	client.EXPECT().Subscribe(selector).Return(nil)

	var gotProps subscription.Properties
	props := baseProps()
	task, err := poller.New(poller.Params{
		Endpoint:   "OrdersListener",
		Properties: props,
		Selector:   selector,
		NewClient: func(p subscription.Properties) (broker.Client, error) {
			gotProps = p
			return client, nil
		},
		Dispatcher: noDispatch(t),
		Log:        nopLogger{},
	})
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(task.ID(), "OrdersListener-"))
	require.Len(t, task.ID(), len("OrdersListener-")+36)
	require.Equal(t, task.ID(), gotProps[subscription.KeyClientID])
	require.Equal(t, "configured", props[subscription.KeyClientID], "caller properties must not be mutated")
	require.Equal(t, poller.StateSubscribed, task.State())
}

func TestNew_SubscribeFailureClosesClient(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	client.EXPECT().Subscribe(gomock.Any()).Return(errors.New("group.id is required"))
	client.EXPECT().Close(gomock.Any()).Return(nil)

	_, err := poller.New(poller.Params{
		Endpoint:   "OrdersListener",
		Properties: baseProps(),
		Selector:   selector,
		NewClient:  func(subscription.Properties) (broker.Client, error) { return client, nil },
		Dispatcher: noDispatch(t),
		Log:        nopLogger{},
	})
	require.ErrorContains(t, err, "group.id is required")
}

func TestNew_ClientFactoryFailure(t *testing.T) {
	_, err := poller.New(poller.Params{
		Endpoint:   "OrdersListener",
		Properties: baseProps(),
		NewClient:  func(subscription.Properties) (broker.Client, error) { return nil, errors.New("bad brokers") },
		Dispatcher: noDispatch(t),
		Log:        nopLogger{},
	})
	require.ErrorContains(t, err, "bad brokers")
}

func TestTick_EmptyPollHasNoSideEffects(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	client.EXPECT().Subscribe(selector).Return(nil)
	client.EXPECT().Poll(gomock.Any(), 250*time.Millisecond).Return(nil, nil)
	client.EXPECT().CommitAsync(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	task := newTask(t, client, noDispatch(t))
	task.Tick(context.Background())

	require.Equal(t, poller.StateIdle, task.State())
}

func TestTick_CommitOnlyAfterSuccessfulDispatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)

	var dispatched broker.Batch
	d := dispatchFunc(func(_ context.Context, b broker.Batch) error {
		dispatched = b
		return nil
	})

	gomock.InOrder(
		client.EXPECT().Subscribe(selector).Return(nil),
		client.EXPECT().Poll(gomock.Any(), gomock.Any()).Return(batch, nil),
		client.EXPECT().CommitAsync(gomock.Any(), batch, gomock.Any()).
			Do(func(_ context.Context, _ broker.Batch, onDone func(error)) { onDone(nil) }),
	)

	task := newTask(t, client, d)
	task.Tick(context.Background())

	require.Equal(t, batch, dispatched)
	require.Equal(t, poller.StateIdle, task.State())
}

// Коммит идёт с ограничением request.timeout.ms и не зависит от отмены тика.
func TestTick_CommitContextIsBounded(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)

	var commitCtx context.Context
	gomock.InOrder(
		client.EXPECT().Subscribe(selector).Return(nil),
		client.EXPECT().Poll(gomock.Any(), gomock.Any()).Return(batch, nil),
		client.EXPECT().CommitAsync(gomock.Any(), batch, gomock.Any()).
			Do(func(ctx context.Context, _ broker.Batch, _ func(error)) { commitCtx = ctx }),
	)

	props := baseProps()
	props[subscription.KeyRequestTimeoutMs] = 200
	task, err := poller.New(poller.Params{
		Endpoint:   "OrdersListener",
		Properties: props,
		Selector:   selector,
		NewClient:  func(subscription.Properties) (broker.Client, error) { return client, nil },
		Dispatcher: dispatchFunc(func(context.Context, broker.Batch) error { return nil }),
		Log:        nopLogger{},
	})
	require.NoError(t, err)

	tickCtx, cancelTick := context.WithCancel(context.Background())
	task.Tick(tickCtx)
	cancelTick()

	require.NotNil(t, commitCtx)
	deadline, ok := commitCtx.Deadline()
	require.True(t, ok, "commit context must carry a deadline")
	require.WithinDuration(t, time.Now().Add(200*time.Millisecond), deadline, 200*time.Millisecond)
	require.NoError(t, commitCtx.Err(), "tick cancellation must not cancel the commit")

	require.Eventually(t, func() bool { return commitCtx.Err() != nil }, time.Second, 10*time.Millisecond)
}

// Пачка с ошибкой части партиций доставляется и коммитится как обычная.
func TestTick_PartialPollIsDispatched(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)

	var dispatched broker.Batch
	d := dispatchFunc(func(_ context.Context, b broker.Batch) error {
		dispatched = b
		return nil
	})

	gomock.InOrder(
		client.EXPECT().Subscribe(selector).Return(nil),
		client.EXPECT().Poll(gomock.Any(), gomock.Any()).
			Return(batch, &broker.PartialPollError{Err: errors.New("t3/0: not leader")}),
		client.EXPECT().CommitAsync(gomock.Any(), batch, gomock.Any()),
	)

	task := newTask(t, client, d)
	task.Tick(context.Background())

	require.Equal(t, batch, dispatched)
	require.Equal(t, poller.StateIdle, task.State())
}

func TestTick_DispatchFailure_NoCommitAndRewind(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := &rewindingClient{MockClient: mocks.NewMockClient(ctrl)}
	client.EXPECT().Subscribe(selector).Return(nil)
	client.EXPECT().Poll(gomock.Any(), gomock.Any()).Return(batch, nil)
	client.EXPECT().CommitAsync(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	d := dispatchFunc(func(context.Context, broker.Batch) error { return errors.New("listener failed") })

	task := newTask(t, client, d)
	task.Tick(context.Background())

	require.Equal(t, int32(1), client.rewound.Load())
	require.Equal(t, poller.StateIdle, task.State())
}

func TestTick_PollErrorStaysAlive(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	client.EXPECT().Subscribe(selector).Return(nil)
	gomock.InOrder(
		client.EXPECT().Poll(gomock.Any(), gomock.Any()).Return(nil, errors.New("broker unreachable")),
		client.EXPECT().Poll(gomock.Any(), gomock.Any()).Return(nil, nil),
	)

	task := newTask(t, client, noDispatch(t))
	task.Tick(context.Background())
	require.Equal(t, poller.StateIdle, task.State())
	task.Tick(context.Background())
}

func TestTick_NeverOverlaps(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	client.EXPECT().Subscribe(selector).Return(nil)
	client.EXPECT().Poll(gomock.Any(), gomock.Any()).Return(batch, nil).Times(1)
	client.EXPECT().CommitAsync(gomock.Any(), gomock.Any(), gomock.Any()).Times(1)

	entered := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	d := dispatchFunc(func(context.Context, broker.Batch) error {
		calls.Add(1)
		close(entered)
		<-release
		return nil
	})

	task := newTask(t, client, d)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		task.Tick(context.Background())
	}()
	<-entered
	require.Equal(t, poller.StateDispatching, task.State())

	// тики, пришедшие во время доставки, пропускаются
	task.Tick(context.Background())
	task.Tick(context.Background())

	close(release)
	wg.Wait()
	require.Equal(t, int32(1), calls.Load())
}

func TestCancel_IdempotentAndSuppressesTicks(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	client.EXPECT().Subscribe(selector).Return(nil)
	client.EXPECT().Close(poller.DefaultCloseTimeout).Return(nil).Times(1)
	client.EXPECT().Poll(gomock.Any(), gomock.Any()).Times(0)

	task := newTask(t, client, noDispatch(t))
	task.Cancel()
	task.Cancel()
	task.Tick(context.Background())

	require.Equal(t, poller.StateCancelled, task.State())
}

func TestCancel_WaitsForInFlightDispatchThenCommitsAndCloses(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)

	entered := make(chan struct{})
	release := make(chan struct{})
	var dispatchCtxErr error
	d := dispatchFunc(func(ctx context.Context, _ broker.Batch) error {
		close(entered)
		<-release
		dispatchCtxErr = ctx.Err()
		return nil
	})

	gomock.InOrder(
		client.EXPECT().Subscribe(selector).Return(nil),
		client.EXPECT().Poll(gomock.Any(), gomock.Any()).Return(batch, nil),
		client.EXPECT().CommitAsync(gomock.Any(), batch, gomock.Any()),
		client.EXPECT().Close(gomock.Any()).Return(nil),
	)

	task := newTask(t, client, d)

	tickCtx, cancelTick := context.WithCancel(context.Background())
	tickDone := make(chan struct{})
	go func() {
		defer close(tickDone)
		task.Tick(tickCtx)
	}()
	<-entered

	// отмена планировщика не прерывает доставку
	cancelTick()
	cancelled := make(chan struct{})
	go func() {
		defer close(cancelled)
		task.Cancel()
	}()

	select {
	case <-cancelled:
		t.Fatal("Cancel must wait for the in-flight dispatch")
	case <-time.After(30 * time.Millisecond):
	}

	close(release)
	<-tickDone
	<-cancelled

	require.NoError(t, dispatchCtxErr)
	require.Equal(t, poller.StateCancelled, task.State())
}
