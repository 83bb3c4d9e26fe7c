package validate

import (
	"errors"
	"fmt"

	"github.com/Gunvolt24/kbridge/internal/endpoint"
	"github.com/Gunvolt24/kbridge/internal/manifest"
	"github.com/Gunvolt24/kbridge/internal/subscription"
)

// ErrInvalidSubscription — базовая (sentinel error) ошибка валидации подписки.
var ErrInvalidSubscription = errors.New("subscription validation failed")

// Result — итог проверки одной подписки манифеста.
type Result struct {
	Name       string                  `json:"name"`
	Endpoint   string                  `json:"endpoint"`
	Topics     string                  `json:"topics,omitempty"`
	PoolSize   int                     `json:"poolSize,omitempty"`
	Properties subscription.Properties `json:"properties,omitempty"`
	Error      string                  `json:"error,omitempty"`
}

// ValidateSubscription — те же проверки, что при активации, без подключения к брокеру.
// Возвращает ErrInvalidSubscription (с обёрнутой причиной) при любой проблеме.
func ValidateSubscription(sub *manifest.Subscription, defaults subscription.Properties) (Result, error) {
	res := Result{Name: sub.Name, Endpoint: sub.Endpoint}

	if sub.Endpoint != endpoint.KindLogging && sub.Endpoint != endpoint.KindArchive {
		return res, fmt.Errorf("%w: %w: %q", ErrInvalidSubscription, endpoint.ErrUnknownKind, sub.Endpoint)
	}
	if err := sub.Validate(defaults); err != nil {
		return res, fmt.Errorf("%w: %w", ErrInvalidSubscription, err)
	}
	sel, err := sub.Topics()
	if err != nil {
		return res, fmt.Errorf("%w: %w", ErrInvalidSubscription, err)
	}

	res.Topics = sel.String()
	res.PoolSize = sub.PoolSizeOrDefault()
	res.Properties = sub.BuildProperties(defaults)
	return res, nil
}
