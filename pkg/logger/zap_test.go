package logger_test

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Gunvolt24/kbridge/pkg/ctxmeta"
	"github.com/Gunvolt24/kbridge/pkg/logger"
)

func TestZapLogger_ContextFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := logger.NewFromZap(zap.New(core))

	ctx := ctxmeta.WithEndpoint(ctxmeta.WithPollerID(context.Background(), "orders-42"), "orders")
	log.Warnf(ctx, "commit failed: %s", "boom")
	log.Debugf(context.Background(), "poll")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("want 2 entries, got %d", len(entries))
	}

	got := entries[0].ContextMap()
	if got["poller_id"] != "orders-42" || got["endpoint"] != "orders" {
		t.Fatalf("unexpected fields: %v", got)
	}
	if entries[0].Message != "commit failed: boom" || entries[0].Level != zapcore.WarnLevel {
		t.Fatalf("unexpected entry: %+v", entries[0].Entry)
	}
	if len(entries[1].Context) != 0 {
		t.Fatalf("empty ctx must not add fields: %v", entries[1].ContextMap())
	}
}

func TestNewZapLogger_Level(t *testing.T) {
	log, cleanup, err := logger.NewZapLogger(true, "warn")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = cleanup() }()

	if log.Base().Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("info must be disabled at warn level")
	}

	if _, _, err := logger.NewZapLogger(false, "loud"); err == nil {
		t.Fatalf("want error for unknown level")
	}
}
