// Пакет ctxmeta — нейтральный слой для работы с метаданными, которые прокидываются
// через context.Context (request_id, poller_id, endpoint, trace_id и т.д.).
// Идея: HTTP-слой, опрашивающие задачи и логгер зависят от небольшого общего пакета, но не друг от друга.
package ctxmeta

import "context"

type ctxKey string

const (
	// Ключи контекста (неэкспортируемые типы — чтобы избежать коллизий).
	KeyRequestID ctxKey = "request_id"
	KeyPollerID  ctxKey = "poller_id"
	KeyEndpoint  ctxKey = "endpoint"
)

// WithRequestID кладёт request_id в контекст (если пусто — ничего не делает).
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return withValue(ctx, KeyRequestID, requestID)
}

// RequestIDFromContext достаёт request_id из контекста.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	return value(ctx, KeyRequestID)
}

// WithPollerID кладёт идентификатор опрашивающей задачи.
func WithPollerID(ctx context.Context, pollerID string) context.Context {
	return withValue(ctx, KeyPollerID, pollerID)
}

// PollerIDFromContext достаёт poller_id из контекста.
func PollerIDFromContext(ctx context.Context) (string, bool) {
	return value(ctx, KeyPollerID)
}

// WithEndpoint кладёт имя конечной точки.
func WithEndpoint(ctx context.Context, endpoint string) context.Context {
	return withValue(ctx, KeyEndpoint, endpoint)
}

// EndpointFromContext достаёт имя конечной точки из контекста.
func EndpointFromContext(ctx context.Context) (string, bool) {
	return value(ctx, KeyEndpoint)
}

func withValue(ctx context.Context, key ctxKey, v string) context.Context {
	if ctx == nil || v == "" {
		return ctx
	}
	return context.WithValue(ctx, key, v)
}

func value(ctx context.Context, key ctxKey) (string, bool) {
	if ctx == nil {
		return "", false
	}
	if v, ok := ctx.Value(key).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
