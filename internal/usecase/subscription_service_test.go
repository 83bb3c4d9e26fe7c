package usecase_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/golang/mock/gomock"

	"github.com/Gunvolt24/kbridge/internal/manifest"
	"github.com/Gunvolt24/kbridge/internal/ports"
	"github.com/Gunvolt24/kbridge/internal/ports/mocks"
	"github.com/Gunvolt24/kbridge/internal/registry"
	"github.com/Gunvolt24/kbridge/internal/subscription"
	"github.com/Gunvolt24/kbridge/internal/usecase"
)

// fakeActivator — адаптер в памяти: одна «задача» на активацию.
type fakeActivator struct {
	mu      sync.Mutex
	active  map[ports.EndpointFactory]subscription.Config
	failFor string
}

func newFakeActivator() *fakeActivator {
	return &fakeActivator{active: make(map[ports.EndpointFactory]subscription.Config)}
}

func (a *fakeActivator) Activate(_ context.Context, f ports.EndpointFactory, cfg subscription.Config) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if f.Name() == a.failFor {
		return errors.New("broker unavailable")
	}
	a.active[f] = cfg
	return nil
}

func (a *fakeActivator) Deactivate(_ context.Context, f ports.EndpointFactory) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.active[f]; !ok {
		return 0
	}
	delete(a.active, f)
	return 1
}

func (a *fakeActivator) Registrations() []registry.Entry {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]registry.Entry, 0, len(a.active))
	for f := range a.active {
		out = append(out, registry.Entry{Factory: f, Name: f.Name(), TaskIDs: []string{f.Name() + "-1"}})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func loadManifest(t *testing.T) *manifest.Manifest {
	t.Helper()
	path := filepath.Join(t.TempDir(), "subs.yaml")
	body := `
subscriptions:
  - {name: alpha, endpoint: logging, topics: t1, groupId: g, clientId: c}
  - {name: beta, endpoint: archive, topics: t2, groupId: g, clientId: c}
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	m, err := manifest.Load(path)
	if err != nil {
		t.Fatalf("manifest.Load: %v", err)
	}
	return m
}

func mockBuilder(ctrl *gomock.Controller, kinds map[string]string) usecase.EndpointBuilder {
	return func(kind, name string) (ports.EndpointFactory, error) {
		if kinds[name] != kind {
			return nil, errors.New("unexpected kind " + kind)
		}
		f := mocks.NewMockEndpointFactory(ctrl)
		f.EXPECT().Name().Return(name).AnyTimes()
		return f, nil
	}
}

func TestSubscriptionService_ActivateDeactivate(t *testing.T) {
	ctrl := gomock.NewController(t)
	act := newFakeActivator()
	svc := usecase.NewSubscriptionService(loadManifest(t), act,
		mockBuilder(ctrl, map[string]string{"alpha": "logging", "beta": "archive"}), noopLogger{})
	ctx := context.Background()

	if err := svc.ActivateAll(ctx); err != nil {
		t.Fatalf("ActivateAll: %v", err)
	}
	subs := svc.Subscriptions(ctx)
	if len(subs) != 2 || subs[0].Endpoint != "alpha" || subs[1].Pollers[0] != "beta-1" {
		t.Fatalf("unexpected snapshot: %+v", subs)
	}

	// повторная активация того же имени
	if err := svc.ActivateByName(ctx, "alpha"); !errors.Is(err, registry.ErrAlreadyActive) {
		t.Fatalf("want ErrAlreadyActive, got %v", err)
	}

	n, err := svc.DeactivateByName(ctx, "alpha")
	if err != nil || n != 1 {
		t.Fatalf("DeactivateByName: n=%d err=%v", n, err)
	}
	n, err = svc.DeactivateByName(ctx, "alpha")
	if err != nil || n != 0 {
		t.Fatalf("second DeactivateByName: n=%d err=%v", n, err)
	}

	if got := svc.DeactivateAll(ctx); got != 1 {
		t.Fatalf("DeactivateAll: want 1, got %d", got)
	}
	if len(svc.Subscriptions(ctx)) != 0 {
		t.Fatalf("registry must be empty")
	}
}

func TestSubscriptionService_UnknownName(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := usecase.NewSubscriptionService(loadManifest(t), newFakeActivator(), mockBuilder(ctrl, nil), noopLogger{})

	if err := svc.ActivateByName(context.Background(), "gamma"); !errors.Is(err, manifest.ErrUnknownSubscription) {
		t.Fatalf("want ErrUnknownSubscription, got %v", err)
	}
	if _, err := svc.DeactivateByName(context.Background(), "gamma"); !errors.Is(err, manifest.ErrUnknownSubscription) {
		t.Fatalf("want ErrUnknownSubscription, got %v", err)
	}
}

func TestSubscriptionService_ActivateAllContinuesOnError(t *testing.T) {
	ctrl := gomock.NewController(t)
	act := newFakeActivator()
	act.failFor = "alpha"
	svc := usecase.NewSubscriptionService(loadManifest(t), act,
		mockBuilder(ctrl, map[string]string{"alpha": "logging", "beta": "archive"}), noopLogger{})

	err := svc.ActivateAll(context.Background())
	if err == nil {
		t.Fatalf("expected joined error")
	}
	subs := svc.Subscriptions(context.Background())
	if len(subs) != 1 || subs[0].Endpoint != "beta" {
		t.Fatalf("beta must be active: %+v", subs)
	}

	// после неудачи подписку можно активировать снова
	act.failFor = ""
	if err := svc.ActivateByName(context.Background(), "alpha"); err != nil {
		t.Fatalf("retry activate: %v", err)
	}
}
