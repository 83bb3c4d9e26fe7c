// Package manifest — файл с описанием подписок, которые хост активирует при старте.
package manifest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/Gunvolt24/kbridge/internal/subscription"
)

// SchemaVersion — единственная поддерживаемая версия схемы.
const SchemaVersion = "v1"

var (
	ErrUnknownSubscription = errors.New("subscription not found in manifest")
	ErrInvalidManifest     = errors.New("invalid subscriptions manifest")
)

// Subscription — одна запись манифеста: имя, вид эндпоинта и параметры активации.
type Subscription struct {
	Name     string `koanf:"name"`
	Endpoint string `koanf:"endpoint"`

	subscription.Config `koanf:",squash"`
}

// Manifest — содержимое файла подписок.
type Manifest struct {
	SchemaVersion string         `koanf:"schema_version"`
	Subscriptions []Subscription `koanf:"subscriptions"`
}

// Load — читает YAML (JSON тоже подходит как подмножество YAML) и проверяет структуру.
func Load(path string) (*Manifest, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load manifest %s: %w", path, err)
	}

	var m Manifest
	if err := k.Unmarshal("", &m); err != nil {
		return nil, fmt.Errorf("decode manifest %s: %w", path, err)
	}
	if err := m.check(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Lookup — подписка по имени.
func (m *Manifest) Lookup(name string) (Subscription, bool) {
	for _, s := range m.Subscriptions {
		if s.Name == name {
			return s, true
		}
	}
	return Subscription{}, false
}

// Names — имена подписок в порядке файла.
func (m *Manifest) Names() []string {
	out := make([]string, len(m.Subscriptions))
	for i, s := range m.Subscriptions {
		out[i] = s.Name
	}
	return out
}

func (m *Manifest) check() error {
	if m.SchemaVersion != "" && m.SchemaVersion != SchemaVersion {
		return fmt.Errorf("%w: schema_version %q not supported (want %s)", ErrInvalidManifest, m.SchemaVersion, SchemaVersion)
	}

	seen := make(map[string]struct{}, len(m.Subscriptions))
	for i := range m.Subscriptions {
		s := &m.Subscriptions[i]
		s.Name = strings.TrimSpace(s.Name)
		s.Endpoint = strings.TrimSpace(s.Endpoint)

		if s.Name == "" {
			return fmt.Errorf("%w: subscription #%d has no name", ErrInvalidManifest, i)
		}
		if s.Endpoint == "" {
			return fmt.Errorf("%w: subscription %q has no endpoint", ErrInvalidManifest, s.Name)
		}
		if _, dup := seen[s.Name]; dup {
			return fmt.Errorf("%w: duplicate subscription %q", ErrInvalidManifest, s.Name)
		}
		seen[s.Name] = struct{}{}
	}
	return nil
}
