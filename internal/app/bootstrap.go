package app

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Gunvolt24/kbridge/config"
	"github.com/Gunvolt24/kbridge/internal/adapter"
	"github.com/Gunvolt24/kbridge/internal/broker"
	_ "github.com/Gunvolt24/kbridge/internal/broker/franz"   // драйвер franz-go
	_ "github.com/Gunvolt24/kbridge/internal/broker/kafkago" // драйвер kafka-go
	cachemem "github.com/Gunvolt24/kbridge/internal/cache/memory"
	"github.com/Gunvolt24/kbridge/internal/endpoint"
	"github.com/Gunvolt24/kbridge/internal/manifest"
	"github.com/Gunvolt24/kbridge/internal/ports"
	"github.com/Gunvolt24/kbridge/internal/repo/postgres"
	"github.com/Gunvolt24/kbridge/internal/scheduler"
	rest "github.com/Gunvolt24/kbridge/internal/transport/http"
	"github.com/Gunvolt24/kbridge/internal/usecase"
	"github.com/Gunvolt24/kbridge/internal/workmanager"
	"github.com/Gunvolt24/kbridge/pkg/logger"
	"github.com/Gunvolt24/kbridge/pkg/metrics"
	"github.com/Gunvolt24/kbridge/pkg/telemetry"
)

// Subscriptions — активация подписок манифеста при старте и их отмена при остановке.
type Subscriptions interface {
	ActivateAll(ctx context.Context) error
	DeactivateAll(ctx context.Context) int
}

// Stopper — компонент, который нужно остановить после отмены подписок.
type Stopper interface {
	Stop(ctx context.Context) error
}

// StopFunc — адаптер функции к Stopper.
type StopFunc func(ctx context.Context) error

// Stop — вызывает f.
func (f StopFunc) Stop(ctx context.Context) error { return f(ctx) }

// App — собранное приложение: HTTP, подписки и рантайм моста.
type App struct {
	Logger        ports.Logger  // логгер
	HTTPServer    *http.Server  // админский HTTP-сервер
	MetricsServer *http.Server  // отдельный listener для /metrics; nil — не поднимать
	Subscriptions Subscriptions // подписки манифеста
	// Runtime — останавливается по порядку после DeactivateAll: адаптер, планировщик, пул работ.
	Runtime         []Stopper
	gracefulTimeout time.Duration // время ожидания завершения HTTP-сервера
}

// Cleanup — функция освобождения ресурсов.
type Cleanup func()

// applyGinMode — устанавливает режим Gin по строке;
// неизвестное значение → debug и предупреждение в лог.
func applyGinMode(ctx context.Context, mode string, log ports.Logger) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	case "", "debug":
		gin.SetMode(gin.DebugMode)
	default:
		gin.SetMode(gin.DebugMode)
		log.Warnf(ctx, "unknown GIN_MODE=%q, fallback to debug", mode)
	}
}

// Bootstrap — собирает зависимости и возвращает приложение, функцию очистки и ошибку.
func Bootstrap(ctx context.Context, cfg *config.Config) (*App, Cleanup, error) {
	// Логгер (dev/prod режим и уровень задаются конфигурацией).
	logg, cleanupLogger, err := logger.NewZapLogger(cfg.Logger.IsProd, cfg.Logger.Level)
	if err != nil {
		return nil, func() {}, err
	}
	closeLogger := func() {
		if cErr := cleanupLogger(); cErr != nil {
			logg.Warnf(ctx, "cleanup logger: %v", cErr)
		}
	}

	// Регистрация метрик (Prometheus).
	metrics.MustRegister()

	// Манифест подписок.
	m, err := manifest.Load(cfg.Subscriptions.File)
	if err != nil {
		closeLogger()
		return nil, func() {}, err
	}

	// Драйвер брокера и адаптер.
	newClient, err := broker.NewFactory(cfg.Adapter.Driver)
	if err != nil {
		closeLogger()
		return nil, func() {}, err
	}
	logg.Infof(ctx, "broker driver %s (registered: %v)", cfg.Adapter.Driver, broker.Drivers())
	bridge, err := adapter.New(adapter.Options{
		Defaults:     cfg.Adapter.Defaults(),
		NewClient:    newClient,
		CloseTimeout: cfg.Adapter.CloseTimeout,
		Log:          logg,
	})
	if err != nil {
		closeLogger()
		return nil, func() {}, err
	}

	// Трейсинг OTEL (при включённой конфигурации); по умолчанию — no-op.
	shutdownTrace := func(context.Context) error { return nil }
	if cfg.Tracing.Enabled {
		setup, tErr := telemetry.SetupTracing(ctx,
			cfg.Tracing.ServiceName, bridge.ID(), cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio)
		if tErr != nil {
			logg.Warnf(ctx, "failed to setup tracing: %v", tErr)
		} else {
			logg.Infof(ctx, "otel tracing enabled service=%s endpoint=%s sample=%.2f",
				cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio)
			shutdownTrace = setup
		}
	}

	// Архив доставок (только при заданном DSN).
	var (
		pool       *pgxpool.Pool
		archive    ports.DeliveryArchive
		deliveries ports.DeliveryReadService
	)
	if cfg.Postgres.DSN != "" {
		pool, err = postgres.NewPool(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
		if err != nil {
			_ = shutdownTrace(context.Background())
			closeLogger()
			return nil, func() {}, err
		}

		if cfg.Postgres.AutoMigrate {
			if _, mErr := postgres.Migrate(ctx, pool, logg); mErr != nil {
				pool.Close()
				_ = shutdownTrace(context.Background())
				closeLogger()
				return nil, func() {}, mErr
			}
		}

		seen := cachemem.NewSeenCache(cfg.Cache.Capacity, cfg.Cache.TTL)
		archiveService := usecase.NewArchiveService(postgres.NewDeliveryRepository(pool), seen, logg)

		// Прогрев кэша
		if n := cfg.Cache.WarmUpN; n > 0 {
			if wErr := archiveService.WarmUpCache(ctx, n); wErr != nil {
				logg.Warnf(ctx, "warm-up cache failed: %v", wErr)
			}
		}
		archive, deliveries = archiveService, archiveService
	} else {
		logg.Infof(ctx, "postgres DSN is empty, delivery archive disabled")
	}

	// Планировщик тиков и общий пул доставки.
	sched := scheduler.New(logg)
	work := workmanager.New(cfg.Work.MaxWorkers, logg)
	logg.Infof(ctx, "work manager ready, %d delivery slots", work.Size())
	if err := bridge.Start(ctx, sched, work); err != nil {
		if pool != nil {
			pool.Close()
		}
		_ = shutdownTrace(context.Background())
		closeLogger()
		return nil, func() {}, err
	}

	// Подписки манифеста.
	builder := endpoint.Builder{Log: logg, Archive: archive}
	subs := usecase.NewSubscriptionService(m, bridge, builder.Build, logg)

	// Режим Gin.
	applyGinMode(ctx, cfg.HTTP.GinMode, logg)

	// Имя сервиса для otelgin (только при включённом трейсинге).
	otelServiceName := ""
	if cfg.Tracing.Enabled {
		otelServiceName = cfg.Tracing.ServiceName
	}

	// Роутер и HTTP-сервер.
	httpHandler := rest.NewHandler(subs, deliveries, logg, cfg.HTTP.HandlerTimeout)
	router := rest.NewRouter(httpHandler, otelServiceName)

	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}

	// Отдельный listener метрик, если адрес отличается от админского.
	var metricsSrv *http.Server
	if addr := cfg.Metrics.Addr; addr != "" && addr != cfg.HTTP.Addr {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		}
	}

	app := &App{
		Logger:        logg,
		HTTPServer:    httpSrv,
		MetricsServer: metricsSrv,
		Subscriptions: subs,
		Runtime: []Stopper{
			StopFunc(func(ctx context.Context) error { bridge.Stop(ctx); return nil }),
			StopFunc(sched.Shutdown),
			StopFunc(work.Shutdown),
		},
		gracefulTimeout: cfg.HTTP.GracefulTimeout,
	}

	// Очистка ресурсов (в обратном порядке).
	cleanup := func() {
		if terr := shutdownTrace(context.Background()); terr != nil {
			logg.Warnf(ctx, "shutdown tracing: %v", terr)
		}
		if pool != nil {
			pool.Close()
		}
		closeLogger()
	}

	return app, cleanup, nil
}

// Run — запускает HTTP-серверы и подписки; ждёт отмены контекста или ошибки и останавливает всё.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 2)

	// Запуск HTTP-серверов.
	for _, srv := range []*http.Server{a.HTTPServer, a.MetricsServer} {
		if srv == nil {
			continue
		}
		go func() {
			a.Logger.Infof(ctx, "http server starting (addr=%s)", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}

	// Активация подписок манифеста: сбой одной не мешает остальным.
	if err := a.Subscriptions.ActivateAll(ctx); err != nil {
		a.Logger.Errorf(ctx, "activate subscriptions: %v", err)
	}

	// Ожидание сигнала остановки или фоновой ошибки.
	select {
	case <-ctx.Done():
		a.Logger.Infof(ctx, "shutdown requested, starting graceful shutdown")
	case err := <-errCh:
		a.Logger.Warnf(ctx, "background error: %v", err)
	}

	gt := a.gracefulTimeout
	if gt <= 0 {
		gt = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), gt)
	defer cancel()

	// Сначала подписки: каждая отмена дожидается своего тика.
	n := a.Subscriptions.DeactivateAll(shutdownCtx)
	a.Logger.Infof(ctx, "cancelled %d pollers", n)

	for _, s := range a.Runtime {
		if err := s.Stop(shutdownCtx); err != nil {
			a.Logger.Warnf(ctx, "runtime shutdown: %v", err)
		}
	}

	// Корректная остановка HTTP-серверов.
	for _, srv := range []*http.Server{a.HTTPServer, a.MetricsServer} {
		if srv == nil {
			continue
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.Logger.Warnf(ctx, "http server %s shutdown failed: %v", srv.Addr, err)
		} else {
			a.Logger.Infof(ctx, "http server %s stopped gracefully", srv.Addr)
		}
	}

	a.Logger.Infof(ctx, "service stopped")
	return nil
}
