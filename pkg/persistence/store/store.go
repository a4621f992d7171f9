// Package store opens the transcript persistence backend selected in config.
package store

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Layr-Labs/eigenx-txsign-go/pkg/config"
	"github.com/Layr-Labs/eigenx-txsign-go/pkg/persistence"
	"github.com/Layr-Labs/eigenx-txsign-go/pkg/persistence/badger"
	"github.com/Layr-Labs/eigenx-txsign-go/pkg/persistence/bolt"
	"github.com/Layr-Labs/eigenx-txsign-go/pkg/persistence/memory"
	"github.com/Layr-Labs/eigenx-txsign-go/pkg/persistence/redis"
)

// NewTranscriptPersistence validates cfg and opens its store. It returns nil, nil when
// cfg selects no store.
func NewTranscriptPersistence(cfg *config.TxSignConfig, logger *zap.Logger) (persistence.ITranscriptPersistence, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var (
		p   persistence.ITranscriptPersistence
		err error
	)
	switch cfg.StoreType {
	case config.StoreTypeNone:
		return nil, nil
	case config.StoreTypeMemory:
		p = memory.NewMemoryPersistence(logger)
	case config.StoreTypeBadger:
		p, err = badger.NewBadgerPersistence(cfg.DataPath, logger)
	case config.StoreTypeBolt:
		p, err = bolt.NewBoltPersistence(cfg.DataPath, logger)
	case config.StoreTypeRedis:
		p, err = redis.NewRedisPersistence(&cfg.Redis, logger)
	default:
		return nil, fmt.Errorf("unsupported store type: %s", cfg.StoreType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.StoreType, err)
	}

	if err := p.HealthCheck(); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("%s store failed health check: %w", cfg.StoreType, err)
	}
	return p, nil
}
