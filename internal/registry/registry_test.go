package registry_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Gunvolt24/kbridge/internal/ports"
	"github.com/Gunvolt24/kbridge/internal/registry"
)

type nopLogger struct{}

func (nopLogger) Debugf(context.Context, string, ...any) {}
func (nopLogger) Infof(context.Context, string, ...any)  {}
func (nopLogger) Warnf(context.Context, string, ...any)  {}
func (nopLogger) Errorf(context.Context, string, ...any) {}

// factory — сравнимая фабрика-заглушка (ключ реестра по указателю).
type factory struct{ name string }

func (f *factory) Name() string { return f.name }
func (f *factory) CreateEndpoint(context.Context) (ports.Endpoint, error) {
	return nil, errors.New("not used")
}

type fakeTask struct {
	id        string
	cancelled atomic.Int32
}

func (t *fakeTask) ID() string { return t.id }
func (t *fakeTask) Cancel()    { t.cancelled.Add(1) }

// builder — собирает задачи и запоминает их; failAt >= 0 — слот, на котором сборка падает.
type builder struct {
	mu     sync.Mutex
	built  []*fakeTask
	failAt int
}

func (b *builder) build(slot int) (registry.Task, error) {
	if slot == b.failAt {
		return nil, errors.New("client construction failed")
	}
	task := &fakeTask{id: fmt.Sprintf("task-%d", slot)}
	b.mu.Lock()
	b.built = append(b.built, task)
	b.mu.Unlock()
	return task, nil
}

func TestActivate_RegistersPoolSizeTasks(t *testing.T) {
	r := registry.New(nopLogger{})
	f := &factory{name: "orders"}
	b := &builder{failAt: -1}

	require.NoError(t, r.Activate(context.Background(), f, 3, b.build))

	require.Equal(t, 1, r.Len())
	require.Len(t, r.Tasks(f), 3)
	snap := r.Snapshot()
	require.Len(t, snap, 1)
	require.Equal(t, "orders", snap[0].Name)
	require.Equal(t, []string{"task-0", "task-1", "task-2"}, snap[0].TaskIDs)
}

func TestActivate_PartialFailureRollsBack(t *testing.T) {
	r := registry.New(nopLogger{})
	f := &factory{name: "orders"}
	b := &builder{failAt: 2}

	err := r.Activate(context.Background(), f, 4, b.build)

	require.ErrorIs(t, err, registry.ErrPartialActivation)
	var ae *registry.ActivationError
	require.ErrorAs(t, err, &ae)
	require.Equal(t, 2, ae.Slot)
	require.Equal(t, 2, ae.Built)

	require.Zero(t, r.Len())
	require.Nil(t, r.Tasks(f))
	require.Len(t, b.built, 2)
	for _, task := range b.built {
		require.Equal(t, int32(1), task.cancelled.Load(), "built task %s must be cancelled", task.id)
	}
}

func TestActivate_DuplicateIdentity(t *testing.T) {
	r := registry.New(nopLogger{})
	f := &factory{name: "orders"}

	require.NoError(t, r.Activate(context.Background(), f, 1, (&builder{failAt: -1}).build))

	second := &builder{failAt: -1}
	err := r.Activate(context.Background(), f, 2, second.build)
	require.ErrorIs(t, err, registry.ErrAlreadyActive)
	require.Len(t, r.Tasks(f), 1)

	// другая фабрика с тем же именем — другой ключ
	require.NoError(t, r.Activate(context.Background(), &factory{name: "orders"}, 1, (&builder{failAt: -1}).build))
	require.Equal(t, 2, r.Len())
}

func TestActivate_InvalidPoolSize(t *testing.T) {
	r := registry.New(nopLogger{})
	err := r.Activate(context.Background(), &factory{name: "x"}, 0, (&builder{failAt: -1}).build)
	require.ErrorIs(t, err, registry.ErrPartialActivation)
	require.Zero(t, r.Len())
}

func TestDeactivate_CancelsAllAndIsIdempotent(t *testing.T) {
	r := registry.New(nopLogger{})
	f := &factory{name: "orders"}
	b := &builder{failAt: -1}
	require.NoError(t, r.Activate(context.Background(), f, 2, b.build))

	require.Equal(t, 2, r.Deactivate(context.Background(), f))
	require.Zero(t, r.Deactivate(context.Background(), f))
	require.Zero(t, r.Deactivate(context.Background(), &factory{name: "unknown"}))

	require.Zero(t, r.Len())
	for _, task := range b.built {
		require.Equal(t, int32(1), task.cancelled.Load())
	}
}

func TestConcurrentActivateDeactivate(t *testing.T) {
	r := registry.New(nopLogger{})
	f := &factory{name: "orders"}

	var wg sync.WaitGroup
	var activated atomic.Int32
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if r.Activate(context.Background(), f, 2, (&builder{failAt: -1}).build) == nil {
				activated.Add(1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), activated.Load(), "exactly one activation wins")
	require.Len(t, r.Tasks(f), 2)
}
