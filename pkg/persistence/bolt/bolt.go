package bolt

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/Layr-Labs/eigenx-txsign-go/pkg/persistence"
	"github.com/Layr-Labs/eigenx-txsign-go/pkg/types"
)

const (
	dbFileName           = "transcripts.db"
	bucketTranscripts    = "transcripts"
	bucketMetadata       = "metadata"
	keySchemaVersion     = "schema_version"
	currentSchemaVersion = "v1"

	// bolt holds an exclusive file lock, so a second process waits this long before failing
	openTimeout = time.Second
)

// BoltPersistence stores transcripts in a single bbolt file. It suits one CLI host that
// wants durable transcripts without Badger's directory of value logs.
type BoltPersistence struct {
	db     *bolt.DB
	logger *zap.Logger
	mu     sync.RWMutex
	closed bool
}

// Ensure BoltPersistence implements ITranscriptPersistence
var _ persistence.ITranscriptPersistence = (*BoltPersistence)(nil)

// NewBoltPersistence opens (or creates) transcripts.db inside dataPath.
func NewBoltPersistence(dataPath string, logger *zap.Logger) (*BoltPersistence, error) {
	absPath, err := filepath.Abs(dataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	if err := os.MkdirAll(absPath, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", absPath, err)
	}

	dbPath := filepath.Join(absPath, dbFileName)
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database at %s: %w", dbPath, err)
	}

	bp := &BoltPersistence{
		db:     db,
		logger: logger,
	}

	if err := bp.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Sugar().Infow("Bolt transcript persistence initialized", "path", dbPath)
	return bp, nil
}

func (b *BoltPersistence) initSchema() error {
	return b.db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(bucketTranscripts)); err != nil {
			return err
		}
		meta, err := tx.CreateBucketIfNotExists([]byte(bucketMetadata))
		if err != nil {
			return err
		}

		existing := meta.Get([]byte(keySchemaVersion))
		if existing == nil {
			return meta.Put([]byte(keySchemaVersion), []byte(currentSchemaVersion))
		}
		if !bytes.Equal(existing, []byte(currentSchemaVersion)) {
			return fmt.Errorf("unsupported schema version: %s (expected: %s)", existing, currentSchemaVersion)
		}
		return nil
	})
}

// SaveTranscript persists a transcript
func (b *BoltPersistence) SaveTranscript(transcript *types.Transcript) error {
	if err := persistence.ValidateTranscript(transcript); err != nil {
		return err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return persistence.ErrClosed
	}

	data, err := persistence.MarshalTranscript(transcript)
	if err != nil {
		return err
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketTranscripts)).Put([]byte(transcript.Id), data)
	})
}

// LoadTranscript retrieves a transcript by id
func (b *BoltPersistence) LoadTranscript(id string) (*types.Transcript, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, persistence.ErrClosed
	}

	var data []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		// Values are only valid inside the transaction
		if v := tx.Bucket([]byte(bucketTranscripts)).Get([]byte(id)); v != nil {
			data = bytes.Clone(v)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load Transcript: %w", err)
	}
	if data == nil {
		return nil, nil
	}

	return persistence.UnmarshalTranscript(data)
}

// ListTranscripts returns all transcripts sorted by creation time
func (b *BoltPersistence) ListTranscripts() ([]*types.Transcript, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, persistence.ErrClosed
	}

	transcripts := make([]*types.Transcript, 0)
	err := b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketTranscripts)).ForEach(func(k, v []byte) error {
			t, err := persistence.UnmarshalTranscript(v)
			if err != nil {
				b.logger.Sugar().Warnw("Failed to unmarshal Transcript, skipping",
					"key", string(k), "error", err)
				return nil
			}
			transcripts = append(transcripts, t)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list Transcripts: %w", err)
	}

	persistence.SortTranscripts(transcripts)
	return transcripts, nil
}

// DeleteTranscript removes a transcript
func (b *BoltPersistence) DeleteTranscript(id string) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return persistence.ErrClosed
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketTranscripts)).Delete([]byte(id))
	})
}

// Close closes the database file
func (b *BoltPersistence) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	if err := b.db.Close(); err != nil {
		return fmt.Errorf("failed to close bolt database: %w", err)
	}

	b.logger.Sugar().Info("Bolt transcript persistence closed")
	return nil
}

// HealthCheck verifies both buckets and the schema marker are present
func (b *BoltPersistence) HealthCheck() error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return persistence.ErrClosed
	}

	return b.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(bucketTranscripts)) == nil {
			return fmt.Errorf("transcripts bucket not found - database may be corrupted")
		}
		meta := tx.Bucket([]byte(bucketMetadata))
		if meta == nil || meta.Get([]byte(keySchemaVersion)) == nil {
			return fmt.Errorf("schema version not found - database may be corrupted")
		}
		return nil
	})
}
