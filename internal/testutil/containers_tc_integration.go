//go:build integration

package testutil

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/modules/redpanda"
	"github.com/testcontainers/testcontainers-go/wait"

	pgrepo "github.com/Gunvolt24/kbridge/internal/repo/postgres"
)

// Образы тестовых зависимостей.
const (
	postgresImage = "postgres:16-alpine"
	redpandaImage = "docker.redpanda.com/redpandadata/redpanda:v23.3.8"
)

var tcLogger = log.New(os.Stdout, "[tc] ", log.LstdFlags)

func shortID(c tc.Container) string {
	id := c.GetContainerID()
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

// stage — хук, который пишет этап жизни контейнера в tcLogger.
func stage(label string) tc.ContainerHook {
	return func(_ context.Context, c tc.Container) error {
		tcLogger.Printf("%s id=%s", label, shortID(c))
		return nil
	}
}

func lifecycle() tc.CustomizeRequestOption {
	return tc.WithLifecycleHooks(tc.ContainerLifecycleHooks{
		PreCreates: []tc.ContainerRequestHook{
			func(_ context.Context, req tc.ContainerRequest) error {
				tcLogger.Printf("creating image=%s", req.Image)
				return nil
			},
		},
		PostStarts:     []tc.ContainerHook{stage("started")},
		PostReadies:    []tc.ContainerHook{stage("ready")},
		PreTerminates:  []tc.ContainerHook{stage("terminating")},
		PostTerminates: []tc.ContainerHook{stage("terminated")},
	})
}

// PGContainer — Postgres архива с накатанной схемой.
type PGContainer struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	DSN       string
}

// StartPostgresTC — поднимает Postgres, открывает пул через postgres.NewPool и применяет миграции.
func StartPostgresTC(ctx context.Context) (*PGContainer, func(context.Context) error, error) {
	pg, err := postgres.Run(ctx, postgresImage,
		lifecycle(),
		postgres.WithDatabase("kbridge"),
		postgres.WithUsername("app"),
		postgres.WithPassword("app"),
		tc.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("run postgres: %w", err)
	}

	fail := func(step string, err error) (*PGContainer, func(context.Context) error, error) {
		_ = tc.TerminateContainer(pg)
		return nil, nil, fmt.Errorf("%s: %w", step, err)
	}

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return fail("conn string", err)
	}
	pool, err := pgrepo.NewPool(ctx, dsn, 5)
	if err != nil {
		return fail("new pool", err)
	}
	if _, err := pgrepo.Migrate(ctx, pool, stdLogger{}); err != nil {
		pool.Close()
		return fail("migrate", err)
	}

	stop := func(context.Context) error {
		pool.Close()
		return tc.TerminateContainer(pg)
	}
	return &PGContainer{Container: pg, Pool: pool, DSN: dsn}, stop, nil
}

// KafkaEnv — redpanda с Kafka API.
type KafkaEnv struct {
	Container *redpanda.Container
	Brokers   []string
	BaseTopic string
}

// StartKafkaTC — поднимает redpanda; BaseTopic — префикс топиков теста.
func StartKafkaTC(ctx context.Context, baseTopic string) (*KafkaEnv, func(context.Context) error, error) {
	rp, err := redpanda.Run(ctx, redpandaImage,
		lifecycle(),
		redpanda.WithAutoCreateTopics(),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("run redpanda: %w", err)
	}

	seed, err := rp.KafkaSeedBroker(ctx)
	if err != nil {
		_ = tc.TerminateContainer(rp)
		return nil, nil, fmt.Errorf("seed broker: %w", err)
	}

	stop := func(context.Context) error { return tc.TerminateContainer(rp) }
	return &KafkaEnv{Container: rp, Brokers: []string{seed}, BaseTopic: baseTopic}, stop, nil
}

// stdLogger — ports.Logger поверх tcLogger для вспомогательного кода тестов.
type stdLogger struct{}

func (stdLogger) Debugf(_ context.Context, format string, args ...any) {
	tcLogger.Printf("DEBUG "+format, args...)
}

func (stdLogger) Infof(_ context.Context, format string, args ...any) {
	tcLogger.Printf("INFO "+format, args...)
}

func (stdLogger) Warnf(_ context.Context, format string, args ...any) {
	tcLogger.Printf("WARN "+format, args...)
}

func (stdLogger) Errorf(_ context.Context, format string, args ...any) {
	tcLogger.Printf("ERROR "+format, args...)
}
