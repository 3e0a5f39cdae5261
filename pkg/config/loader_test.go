package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chatYAML = `
port: "8082"
jwt_secret: ${TEST_CHAT_SECRET}
transport: redis
mongo:
  host: mongo
  port: 27017
  database: chat
pg:
  host: pg
  port: 5432
event_stream:
  driver: kafka
  brokers: ["kafka:9092"]
  topic: chat.message.events
presence:
  sync_timeout: 2s
paging:
  default_limit: 30
  max_limit: 100
`

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "chat_test.yaml"), []byte(chatYAML), 0o644))
	t.Setenv("TEST_CHAT_SECRET", "s3cret")

	cfg, err := ReadConfig[Chat]("chat_test", dir)
	require.NoError(t, err)

	assert.Equal(t, "8082", cfg.Port)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, "redis", cfg.Transport)
	assert.Equal(t, 27017, cfg.MongoSQL.Port)
	assert.Equal(t, []string{"kafka:9092"}, cfg.EventStream.Brokers)
	assert.Equal(t, 2*time.Second, cfg.Presence.SyncTimeout)
	assert.Equal(t, 30, cfg.Paging.DefaultLimit)
	assert.False(t, cfg.MinIO.Enabled())
}

func TestReadConfig_Missing(t *testing.T) {
	_, err := ReadConfig[Chat]("does_not_exist", t.TempDir())
	assert.Error(t, err)
}

func TestGetRedisSetting(t *testing.T) {
	t.Setenv("REDIS_MASTER_NAME", "")
	t.Setenv("REDIS_SENTINEL1_IP", "10.0.0.1")
	t.Setenv("REDIS_SENTINEL1_PORT", "26379")

	master, addrs := GetRedisSetting()
	assert.Equal(t, "mymaster", master)
	assert.Contains(t, addrs, "10.0.0.1:26379")
}
