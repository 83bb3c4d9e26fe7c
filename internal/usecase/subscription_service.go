package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Gunvolt24/kbridge/internal/domain"
	"github.com/Gunvolt24/kbridge/internal/manifest"
	"github.com/Gunvolt24/kbridge/internal/ports"
	"github.com/Gunvolt24/kbridge/internal/registry"
	"github.com/Gunvolt24/kbridge/internal/subscription"
)

var _ ports.SubscriptionAdmin = (*SubscriptionService)(nil)

// Activator — часть адаптера, которой управляет сервис подписок.
type Activator interface {
	Activate(ctx context.Context, factory ports.EndpointFactory, cfg subscription.Config) error
	Deactivate(ctx context.Context, factory ports.EndpointFactory) int
	Registrations() []registry.Entry
}

// EndpointBuilder — фабрика конечной точки по виду из манифеста и имени подписки.
type EndpointBuilder func(kind, name string) (ports.EndpointFactory, error)

// SubscriptionService — активация подписок манифеста по имени.
// Держит фабрики активных подписок: идентичность фабрики — ключ реестра адаптера.
type SubscriptionService struct {
	manifest *manifest.Manifest
	adapter  Activator
	build    EndpointBuilder
	log      ports.Logger

	mu        sync.Mutex
	factories map[string]ports.EndpointFactory
}

// NewSubscriptionService — DI-конструктор.
func NewSubscriptionService(
	m *manifest.Manifest,
	adapter Activator,
	build EndpointBuilder,
	log ports.Logger,
) *SubscriptionService {
	return &SubscriptionService{
		manifest:  m,
		adapter:   adapter,
		build:     build,
		log:       log,
		factories: make(map[string]ports.EndpointFactory),
	}
}

// ActivateAll — активировать все подписки манифеста; ошибки отдельных подписок не останавливают остальные.
func (s *SubscriptionService) ActivateAll(ctx context.Context) error {
	var errs error
	for _, name := range s.manifest.Names() {
		if err := s.ActivateByName(ctx, name); err != nil {
			s.log.Errorf(ctx, "activate subscription %s failed: %v", name, err)
			errs = errors.Join(errs, err)
		}
	}
	return errs
}

// ActivateByName — собрать конечную точку и активировать подписку манифеста.
func (s *SubscriptionService) ActivateByName(ctx context.Context, name string) error {
	sub, ok := s.manifest.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", manifest.ErrUnknownSubscription, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, active := s.factories[name]; active {
		return fmt.Errorf("subscription %q: %w", name, registry.ErrAlreadyActive)
	}

	factory, err := s.build(sub.Endpoint, sub.Name)
	if err != nil {
		return fmt.Errorf("subscription %q: %w", name, err)
	}
	if err := s.adapter.Activate(ctx, factory, sub.Config); err != nil {
		return err
	}
	s.factories[name] = factory

	s.log.Infof(ctx, "subscription %s activated (endpoint=%s)", name, sub.Endpoint)
	return nil
}

// DeactivateByName — деактивировать подписку; неактивная подписка — (0, nil).
func (s *SubscriptionService) DeactivateByName(ctx context.Context, name string) (int, error) {
	if _, ok := s.manifest.Lookup(name); !ok {
		return 0, fmt.Errorf("%w: %q", manifest.ErrUnknownSubscription, name)
	}

	s.mu.Lock()
	factory, active := s.factories[name]
	delete(s.factories, name)
	s.mu.Unlock()

	if !active {
		return 0, nil
	}
	n := s.adapter.Deactivate(ctx, factory)
	s.log.Infof(ctx, "subscription %s deactivated, %d pollers cancelled", name, n)
	return n, nil
}

// DeactivateAll — деактивировать все активные подписки; возвращает число отменённых задач.
func (s *SubscriptionService) DeactivateAll(ctx context.Context) int {
	s.mu.Lock()
	factories := s.factories
	s.factories = make(map[string]ports.EndpointFactory)
	s.mu.Unlock()

	total := 0
	for _, f := range factories {
		total += s.adapter.Deactivate(ctx, f)
	}
	return total
}

// Subscriptions — снимок реестра адаптера.
func (s *SubscriptionService) Subscriptions(_ context.Context) []domain.SubscriptionInfo {
	entries := s.adapter.Registrations()
	out := make([]domain.SubscriptionInfo, 0, len(entries))
	for _, e := range entries {
		out = append(out, domain.SubscriptionInfo{Endpoint: e.Name, Pollers: e.TaskIDs})
	}
	return out
}
