package kafkago

import (
	"slices"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Gunvolt24/kbridge/internal/subscription"
)

func TestReaderConfig_StartOffset(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		reset      string
		wantOffset int64
	}{
		{"earliest", "earliest", kafka.FirstOffset},
		{"first upper", "FIRST", kafka.FirstOffset},
		{"earliest spaced", " Earliest \n", kafka.FirstOffset},
		{"empty -> last", "", kafka.LastOffset},
		{"latest -> last", "latest", kafka.LastOffset},
		{"unknown -> last", "none", kafka.LastOffset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			props := subscription.Properties{
				subscription.KeyBootstrapServers: "k1:9092, k2:9092",
				subscription.KeyGroupID:          "group-1",
				subscription.KeyClientID:         "Listener-abc",
				subscription.KeyAutoOffsetReset:  tt.reset,
			}
			rc := readerConfig(props)

			if rc.StartOffset != tt.wantOffset {
				t.Fatalf("StartOffset: want %d, got %d", tt.wantOffset, rc.StartOffset)
			}
			if !slices.Equal(rc.Brokers, []string{"k1:9092", "k2:9092"}) {
				t.Fatalf("Brokers: got %v", rc.Brokers)
			}
			if rc.GroupID != "group-1" || rc.Dialer.ClientID != "Listener-abc" {
				t.Fatalf("group/client id not propagated: %+v", rc)
			}
			// ручной коммит
			if rc.CommitInterval != 0 {
				t.Fatalf("CommitInterval: want 0, got %v", rc.CommitInterval)
			}
		})
	}
}

func TestReaderConfig_Tuning(t *testing.T) {
	t.Parallel()

	rc := readerConfig(subscription.Properties{
		subscription.KeyBootstrapServers:       "k:9092",
		subscription.KeyFetchMaxWaitMs:         250,
		subscription.KeyFetchMinBytes:          2048,
		subscription.KeyMaxPartitionFetchBytes: 1024,
		subscription.KeySessionTimeoutMs:       "30000",
		subscription.KeyHeartbeatIntervalMs:    3000,
		subscription.KeyRequestTimeoutMs:       15000,
		subscription.KeyRetryBackoffMs:         200,
		subscription.KeyReconnectBackoffMs:     100,
		subscription.KeyMetadataMaxAgeMs:       int64(60000),
		subscription.KeyEnableAutoCommit:       true,
		subscription.KeyAutoCommitIntervalMs:   1000,
	})

	if rc.MaxWait != 250*time.Millisecond {
		t.Fatalf("MaxWait: got %v", rc.MaxWait)
	}
	if rc.MaxBytes != 1024 || rc.MinBytes != 1024 {
		t.Fatalf("Min/MaxBytes: got %d/%d", rc.MinBytes, rc.MaxBytes)
	}
	if rc.SessionTimeout != 30*time.Second || rc.HeartbeatInterval != 3*time.Second {
		t.Fatalf("session/heartbeat: got %v/%v", rc.SessionTimeout, rc.HeartbeatInterval)
	}
	if rc.Dialer.Timeout != 15*time.Second {
		t.Fatalf("Dialer.Timeout: got %v", rc.Dialer.Timeout)
	}
	if rc.ReadBackoffMin != 200*time.Millisecond || rc.ReadBackoffMax != 200*time.Millisecond {
		t.Fatalf("backoff: got %v/%v", rc.ReadBackoffMin, rc.ReadBackoffMax)
	}
	if !rc.WatchPartitionChanges || rc.PartitionWatchInterval != time.Minute {
		t.Fatalf("partition watch: got %v/%v", rc.WatchPartitionChanges, rc.PartitionWatchInterval)
	}
	if rc.CommitInterval != time.Second {
		t.Fatalf("CommitInterval: got %v", rc.CommitInterval)
	}
}
