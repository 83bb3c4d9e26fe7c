//go:build integration

package adapter_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Gunvolt24/kbridge/internal/adapter"
	"github.com/Gunvolt24/kbridge/internal/broker"
	"github.com/Gunvolt24/kbridge/internal/broker/franz"
	"github.com/Gunvolt24/kbridge/internal/broker/kafkago"
	cachemem "github.com/Gunvolt24/kbridge/internal/cache/memory"
	"github.com/Gunvolt24/kbridge/internal/endpoint"
	pgrepo "github.com/Gunvolt24/kbridge/internal/repo/postgres"
	"github.com/Gunvolt24/kbridge/internal/scheduler"
	"github.com/Gunvolt24/kbridge/internal/subscription"
	"github.com/Gunvolt24/kbridge/internal/testutil"
	"github.com/Gunvolt24/kbridge/internal/usecase"
	"github.com/Gunvolt24/kbridge/internal/workmanager"
	"github.com/Gunvolt24/kbridge/pkg/logger"
)

// Опубликованные записи доходят до архива через оба драйвера; повторная активация не плодит дублей.
func TestAdapter_ArchivesPublishedRecords_TC(t *testing.T) {
	ctxStart, cancelStart := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancelStart()

	pg, stopPG, err := testutil.StartPostgresTC(ctxStart)
	require.NoError(t, err)
	t.Cleanup(func() { _ = stopPG(context.Background()) })

	kf, stopKF, err := testutil.StartKafkaTC(ctxStart, "kbridge-itest")
	require.NoError(t, err)
	t.Cleanup(func() { _ = stopKF(context.Background()) })

	logg, cleanup, err := logger.NewZapLogger(false, "debug")
	require.NoError(t, err)
	t.Cleanup(func() { _ = cleanup() })

	repo := pgrepo.NewDeliveryRepository(pg.Pool)
	archive := usecase.NewArchiveService(repo, cachemem.NewSeenCache(100, time.Minute), logg)

	for _, driver := range []string{kafkago.DriverName, franz.DriverName} {
		t.Run(driver, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
			defer cancel()

			topic, group := testutil.UniqueTopicAndGroup(kf.BaseTopic + "-" + driver)
			require.NoError(t, testutil.EnsureTopic(ctx, kf.Brokers, topic, 1))
			require.NoError(t, testutil.ProduceValues(ctx, kf.Brokers, topic, "v0", "v1", "v2"))

			newClient, err := broker.NewFactory(driver)
			require.NoError(t, err)

			a, err := adapter.New(adapter.Options{
				Defaults: subscription.Properties{
					subscription.KeyBootstrapServers:  strings.Join(kf.Brokers, ","),
					subscription.KeyKeyDeserializer:   "string",
					subscription.KeyValueDeserializer: "string",
				},
				NewClient:    newClient,
				CloseTimeout: 10 * time.Second,
				Log:          logg,
			})
			require.NoError(t, err)

			sched := scheduler.New(logg)
			work := workmanager.New(4, logg)
			require.NoError(t, a.Start(ctx, sched, work))
			t.Cleanup(func() {
				a.Stop(context.Background())
				_ = sched.Shutdown(context.Background())
				_ = work.Shutdown(context.Background())
			})

			name := "itest-" + driver
			interval, delay := int64(200), int64(0)
			cfg := subscription.Config{
				TopicList:        topic,
				ClientID:         "itest",
				GroupID:          group,
				AutoOffsetReset:  "earliest",
				PollInterval:     &interval,
				InitialPollDelay: &delay,
			}

			// одна активация: ждём want записей в архиве и отменяем подписку
			runOnce := func(want int) {
				factory := endpoint.NewArchiveFactory(name, archive, logg)
				require.NoError(t, a.Activate(ctx, factory, cfg))
				waitArchived(ctx, t, repo, name, want)
				require.Equal(t, 1, a.Deactivate(ctx, factory))
			}

			runOnce(3)

			got, err := repo.ListRecent(ctx, name, 10, 0)
			require.NoError(t, err)
			values := make([]string, 0, len(got))
			for _, r := range got {
				require.Equal(t, topic, r.Topic)
				values = append(values, r.Value)
			}
			require.ElementsMatch(t, []string{"v0", "v1", "v2"}, values)

			// смещения закоммичены: та же группа продолжает с новой записи, дублей нет
			require.NoError(t, testutil.ProduceValues(ctx, kf.Brokers, topic, "v3"))
			runOnce(4)

			got, err = repo.ListRecent(ctx, name, 10, 0)
			require.NoError(t, err)
			require.Len(t, got, 4)
		})
	}
}

func waitArchived(ctx context.Context, t *testing.T, repo *pgrepo.DeliveryRepository, name string, want int) {
	t.Helper()

	deadline := time.Now().Add(30 * time.Second)
	for {
		got, err := repo.ListRecent(ctx, name, 100, 0)
		require.NoError(t, err)
		if len(got) >= want {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("%s: want %d archived records, got %d", name, want, len(got))
		}
		time.Sleep(200 * time.Millisecond)
	}
}
