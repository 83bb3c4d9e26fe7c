//go:build integration

package testutil

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/Gunvolt24/kbridge/internal/domain"
)

func randHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func UniqSuffix() string { return randHex(6) }

// MakeRecords — n записей одной партиции с последовательными смещениями от base.
func MakeRecords(endpoint, topic string, base int64, n int, opts ...func(*domain.DeliveredRecord)) []*domain.DeliveredRecord {
	now := time.Now().UTC().Truncate(time.Millisecond)

	out := make([]*domain.DeliveredRecord, 0, n)
	for i := 0; i < n; i++ {
		rec := &domain.DeliveredRecord{
			Endpoint:    endpoint,
			Topic:       topic,
			Partition:   0,
			Offset:      base + int64(i),
			Key:         "k-" + UniqSuffix(),
			Value:       `{"n":` + strconv.Itoa(i) + `}`,
			Headers:     map[string]string{"source": "itest"},
			RecordTime:  now.Add(-time.Second),
			DeliveredAt: now.Add(time.Duration(i) * time.Millisecond),
		}
		for _, fn := range opts {
			fn(rec)
		}
		out = append(out, rec)
	}
	return out
}

func WithPartition(p int32) func(*domain.DeliveredRecord) {
	return func(r *domain.DeliveredRecord) { r.Partition = p }
}
