package logger

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Gunvolt24/kbridge/pkg/ctxmeta"
)

// ZapLogger — реализация ports.Logger поверх zap.
// Метаданные из контекста (request_id, poller_id, endpoint, trace_id, span_id) уходят полями записи.
type ZapLogger struct {
	base   *zap.Logger
	sugar  *zap.SugaredLogger
	isProd bool
}

// NewZapLogger — prod: JSON и уровень info, иначе development-конфиг.
// level, если не пуст, переопределяет уровень ("debug", "warn", ...).
func NewZapLogger(isProd bool, level string) (*ZapLogger, func() error, error) {
	cfg := zap.NewDevelopmentConfig()
	if isProd {
		cfg = zap.NewProductionConfig()
	}
	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, nil, fmt.Errorf("parse log level %q: %w", level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, nil, err
	}

	loggerWrap := newZapLogger(logger, isProd)
	cleanup := func() error { return loggerWrap.base.Sync() }
	return loggerWrap, cleanup, nil
}

// NewFromZap — обёртка над готовым *zap.Logger (тесты, zaptest/observer).
func NewFromZap(base *zap.Logger) *ZapLogger {
	return newZapLogger(base, false)
}

func newZapLogger(base *zap.Logger, isProd bool) *ZapLogger {
	return &ZapLogger{
		base:   base,
		sugar:  base.Sugar(),
		isProd: isProd,
	}
}

func (z *ZapLogger) Debugf(ctx context.Context, format string, args ...any) {
	z.with(ctx).Debugf(format, args...)
}
func (z *ZapLogger) Infof(ctx context.Context, format string, args ...any) {
	z.with(ctx).Infof(format, args...)
}
func (z *ZapLogger) Warnf(ctx context.Context, format string, args ...any) {
	z.with(ctx).Warnf(format, args...)
}
func (z *ZapLogger) Errorf(ctx context.Context, format string, args ...any) {
	z.with(ctx).Errorf(format, args...)
}

func (z *ZapLogger) Base() *zap.Logger           { return z.base }
func (z *ZapLogger) Sugared() *zap.SugaredLogger { return z.sugar }

// with — логгер с полями из контекста; без метаданных возвращается базовый.
func (z *ZapLogger) with(ctx context.Context) *zap.SugaredLogger {
	if ctx == nil {
		return z.sugar
	}
	var fields []any
	if v, ok := ctxmeta.RequestIDFromContext(ctx); ok {
		fields = append(fields, "request_id", v)
	}
	if v, ok := ctxmeta.PollerIDFromContext(ctx); ok {
		fields = append(fields, "poller_id", v)
	}
	if v, ok := ctxmeta.EndpointFromContext(ctx); ok {
		fields = append(fields, "endpoint", v)
	}
	if v, ok := ctxmeta.TraceIDFromContext(ctx); ok {
		fields = append(fields, "trace_id", v)
	}
	if v, ok := ctxmeta.SpanIDFromContext(ctx); ok {
		fields = append(fields, "span_id", v)
	}
	if len(fields) == 0 {
		return z.sugar
	}
	return z.sugar.With(fields...)
}
