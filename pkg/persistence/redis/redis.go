package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Layr-Labs/eigenx-txsign-go/pkg/config"
	"github.com/Layr-Labs/eigenx-txsign-go/pkg/persistence"
	"github.com/Layr-Labs/eigenx-txsign-go/pkg/types"
)

// Key names, all namespaced by the configured key prefix
const (
	keyPrefixTranscript  = "transcript:"
	keySchemaVersion     = "metadata:schema_version"
	currentSchemaVersion = "v1"

	// Sorted set of transcript ids scored by creation time, since Redis has no prefix iteration
	keyTranscriptIndex = "transcripts:index"

	connectTimeout = 5 * time.Second
)

// RedisPersistence stores transcripts in Redis so several CLI hosts can share them.
type RedisPersistence struct {
	client    *redis.Client
	logger    *zap.Logger
	keyPrefix string
	mu        sync.RWMutex
	closed    bool
}

// Ensure RedisPersistence implements ITranscriptPersistence
var _ persistence.ITranscriptPersistence = (*RedisPersistence)(nil)

// NewRedisPersistence connects to Redis and checks the schema version.
func NewRedisPersistence(cfg *config.RedisConfig, logger *zap.Logger) (*RedisPersistence, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address cannot be empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	rp := &RedisPersistence{
		client:    client,
		logger:    logger,
		keyPrefix: cfg.KeyPrefix,
	}

	if err := rp.initSchema(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Sugar().Infow("Redis transcript persistence initialized",
		"address", cfg.Address,
		"db", cfg.DB,
		"key_prefix", cfg.KeyPrefix,
	)

	return rp, nil
}

func (r *RedisPersistence) prefixKey(key string) string {
	return r.keyPrefix + key
}

func (r *RedisPersistence) transcriptKey(id string) string {
	return r.prefixKey(keyPrefixTranscript + id)
}

func (r *RedisPersistence) initSchema(ctx context.Context) error {
	schemaKey := r.prefixKey(keySchemaVersion)

	// SETNX so concurrent first runs agree on the version
	if err := r.client.SetNX(ctx, schemaKey, currentSchemaVersion, 0).Err(); err != nil {
		return fmt.Errorf("failed to write schema version: %w", err)
	}

	existing, err := r.client.Get(ctx, schemaKey).Result()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if existing != currentSchemaVersion {
		return fmt.Errorf("unsupported schema version: %s (expected: %s)", existing, currentSchemaVersion)
	}
	return nil
}

// SaveTranscript stores the transcript and indexes it by creation time in one transaction
func (r *RedisPersistence) SaveTranscript(transcript *types.Transcript) error {
	if err := persistence.ValidateTranscript(transcript); err != nil {
		return err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return persistence.ErrClosed
	}

	data, err := persistence.MarshalTranscript(transcript)
	if err != nil {
		return err
	}

	ctx := context.Background()
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.transcriptKey(transcript.Id), data, 0)
	pipe.ZAdd(ctx, r.prefixKey(keyTranscriptIndex), redis.Z{
		Score:  float64(transcript.CreatedAt.UnixMilli()),
		Member: transcript.Id,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save Transcript: %w", err)
	}
	return nil
}

// LoadTranscript retrieves a transcript by id
func (r *RedisPersistence) LoadTranscript(id string) (*types.Transcript, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, persistence.ErrClosed
	}

	data, err := r.client.Get(context.Background(), r.transcriptKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil // Not found is not an error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load Transcript: %w", err)
	}

	return persistence.UnmarshalTranscript(data)
}

// ListTranscripts returns all transcripts sorted by creation time
func (r *RedisPersistence) ListTranscripts() ([]*types.Transcript, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, persistence.ErrClosed
	}

	ctx := context.Background()
	indexKey := r.prefixKey(keyTranscriptIndex)

	ids, err := r.client.ZRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list Transcript ids: %w", err)
	}

	transcripts := make([]*types.Transcript, 0, len(ids))
	if len(ids) == 0 {
		return transcripts, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.transcriptKey(id)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch Transcripts: %w", err)
	}

	for i, val := range values {
		if val == nil {
			// Indexed but missing, drop the stale index entry
			r.client.ZRem(ctx, indexKey, ids[i])
			continue
		}

		data, ok := val.(string)
		if !ok {
			r.logger.Sugar().Warnw("Unexpected value type for Transcript", "key", keys[i])
			continue
		}

		t, err := persistence.UnmarshalTranscript([]byte(data))
		if err != nil {
			r.logger.Sugar().Warnw("Failed to unmarshal Transcript, skipping",
				"key", keys[i], "error", err)
			continue
		}
		transcripts = append(transcripts, t)
	}

	// The index score has millisecond resolution
	persistence.SortTranscripts(transcripts)
	return transcripts, nil
}

// DeleteTranscript removes a transcript and its index entry
func (r *RedisPersistence) DeleteTranscript(id string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return persistence.ErrClosed
	}

	ctx := context.Background()
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.transcriptKey(id))
	pipe.ZRem(ctx, r.prefixKey(keyTranscriptIndex), id)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete Transcript: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (r *RedisPersistence) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	if err := r.client.Close(); err != nil {
		return fmt.Errorf("failed to close Redis client: %w", err)
	}

	r.logger.Sugar().Info("Redis transcript persistence closed")
	return nil
}

// HealthCheck pings Redis and checks the schema marker
func (r *RedisPersistence) HealthCheck() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return persistence.ErrClosed
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}

	_, err := r.client.Get(ctx, r.prefixKey(keySchemaVersion)).Result()
	if errors.Is(err, redis.Nil) {
		return fmt.Errorf("schema version not found - database may not be properly initialized")
	}
	if err != nil {
		return fmt.Errorf("failed to verify schema version: %w", err)
	}
	return nil
}
