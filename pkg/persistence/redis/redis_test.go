package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Layr-Labs/eigenx-txsign-go/pkg/config"
	"github.com/Layr-Labs/eigenx-txsign-go/pkg/logger"
	"github.com/Layr-Labs/eigenx-txsign-go/pkg/persistence"
	"github.com/Layr-Labs/eigenx-txsign-go/pkg/persistence/persistencetest"
)

// getTestRedisAddress uses REDIS_TEST_ADDRESS if set, otherwise localhost:6379.
func getTestRedisAddress() string {
	if addr := os.Getenv("REDIS_TEST_ADDRESS"); addr != "" {
		return addr
	}
	return config.DefaultRedisAddress
}

func testLogger(t *testing.T) *zap.Logger {
	t.Helper()
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: false})
	require.NoError(t, err)
	return l
}

// testConfig isolates each test under its own key prefix in DB 15.
func testConfig() *config.RedisConfig {
	return &config.RedisConfig{
		Address:   getTestRedisAddress(),
		DB:        15,
		KeyPrefix: "txsign-test:" + uuid.New().String() + ":",
	}
}

// requireRedis skips the test when no Redis server is reachable.
func requireRedis(t *testing.T, cfg *config.RedisConfig) *RedisPersistence {
	t.Helper()

	rp, err := NewRedisPersistence(cfg, testLogger(t))
	if err != nil {
		t.Skipf("Redis not available at %s: %v", cfg.Address, err)
	}
	t.Cleanup(func() { cleanupRedis(t, cfg) })
	return rp
}

// cleanupRedis deletes every key under the test's prefix.
func cleanupRedis(t *testing.T, cfg *config.RedisConfig) {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: cfg.Address, Password: cfg.Password, DB: cfg.DB})
	defer func() { _ = client.Close() }()

	ctx := context.Background()
	iter := client.Scan(ctx, 0, cfg.KeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		client.Del(ctx, iter.Val())
	}
}

func TestRedisPersistence(t *testing.T) {
	persistencetest.Run(t, func(t *testing.T) persistence.ITranscriptPersistence {
		rp := requireRedis(t, testConfig())
		t.Cleanup(func() { _ = rp.Close() })
		return rp
	})
}

func TestRedisPersistence_KeyPrefixIsolation(t *testing.T) {
	first := requireRedis(t, testConfig())
	defer func() { _ = first.Close() }()
	second := requireRedis(t, testConfig())
	defer func() { _ = second.Close() }()

	require.NoError(t, first.SaveTranscript(persistencetest.NewTranscript(time.Now())))

	all, err := second.ListTranscripts()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRedisPersistence_StaleIndexEntry(t *testing.T) {
	cfg := testConfig()
	rp := requireRedis(t, cfg)
	defer func() { _ = rp.Close() }()

	tr := persistencetest.NewTranscript(time.Now())
	require.NoError(t, rp.SaveTranscript(tr))
	require.NoError(t, rp.client.Del(context.Background(), rp.transcriptKey(tr.Id)).Err())

	all, err := rp.ListTranscripts()
	require.NoError(t, err)
	assert.Empty(t, all)

	count, err := rp.client.ZCard(context.Background(), rp.prefixKey(keyTranscriptIndex)).Result()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestNewRedisPersistence_InvalidConfig(t *testing.T) {
	l := testLogger(t)

	_, err := NewRedisPersistence(nil, l)
	require.Error(t, err)

	_, err = NewRedisPersistence(&config.RedisConfig{}, l)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "address")
}
