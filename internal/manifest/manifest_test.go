package manifest_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Gunvolt24/kbridge/internal/manifest"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_YAML(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "subs.yaml", `
schema_version: v1
subscriptions:
  - name: orders-log
    endpoint: logging
    topics: orders, payments
    groupId: kbridge-log
    clientId: Listener
    autoOffsetReset: earliest
    poolSize: 2
    pollInterval: 1000
  - name: audit-archive
    endpoint: archive
    topicPattern: "^audit\\."
    groupId: kbridge-archive
    clientId: Archiver
    enableAutoCommit: false
    metadataMaxAgeMs: 60000
`)

	m, err := manifest.Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{"orders-log", "audit-archive"}, m.Names())

	s, ok := m.Lookup("orders-log")
	require.True(t, ok)
	require.Equal(t, "logging", s.Endpoint)
	require.Equal(t, "orders, payments", s.TopicList)
	require.Equal(t, "kbridge-log", s.GroupID)
	require.Equal(t, "earliest", s.AutoOffsetReset)
	require.NotNil(t, s.PoolSize)
	require.Equal(t, 2, *s.PoolSize)
	require.NotNil(t, s.PollInterval)
	require.Equal(t, int64(1000), *s.PollInterval)

	sel, err := s.Topics()
	require.NoError(t, err)
	require.Equal(t, []string{"orders", "payments"}, sel.List)

	a, ok := m.Lookup("audit-archive")
	require.True(t, ok)
	require.Equal(t, `^audit\.`, a.TopicPattern)
	require.NotNil(t, a.EnableAutoCommit)
	require.False(t, *a.EnableAutoCommit)
	require.NotNil(t, a.MetadataMaxAgeMs)
	require.Equal(t, int64(60000), *a.MetadataMaxAgeMs)

	_, ok = m.Lookup("missing")
	require.False(t, ok)
}

func TestLoad_JSON(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "subs.json", `{"subscriptions":[{"name":"a","endpoint":"logging","topics":"t1"}]}`)

	m, err := manifest.Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, m.Names())
}

func TestLoad_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"no name", "subscriptions:\n  - endpoint: logging\n"},
		{"no endpoint", "subscriptions:\n  - name: a\n"},
		{"duplicate", "subscriptions:\n  - {name: a, endpoint: logging}\n  - {name: a, endpoint: archive}\n"},
		{"schema", "schema_version: v2\nsubscriptions: []\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := manifest.Load(writeFile(t, "subs.yaml", tt.body))
			require.ErrorIs(t, err, manifest.ErrInvalidManifest)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := manifest.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
