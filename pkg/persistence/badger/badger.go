package badger

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	badgerdb "github.com/dgraph-io/badger/v3"
	"go.uber.org/zap"

	"github.com/Layr-Labs/eigenx-txsign-go/pkg/persistence"
	"github.com/Layr-Labs/eigenx-txsign-go/pkg/types"
)

const (
	keyPrefixTranscript = "transcript:"

	// index:<20 digit unix nanos>:<id> -> id, so prefix iteration yields creation order
	keyPrefixCreatedIndex = "index:created:"

	keySchemaVersion     = "metadata:schema_version"
	currentSchemaVersion = "v2"
)

// Options tunes the Badger store. Zero values fall back to the defaults below.
type Options struct {
	DataPath       string
	GCInterval     time.Duration
	GCDiscardRatio float64
	// InMemory runs Badger without touching disk; DataPath is ignored
	InMemory bool
}

const (
	DefaultGCInterval     = 5 * time.Minute
	DefaultGCDiscardRatio = 0.5
)

// BadgerPersistence keeps transcripts in an embedded Badger database.
type BadgerPersistence struct {
	db     *badgerdb.DB
	logger *zap.Logger

	stopGC context.CancelFunc
	gcDone chan struct{}

	mu     sync.RWMutex
	closed bool
}

var _ persistence.ITranscriptPersistence = (*BadgerPersistence)(nil)

// NewBadgerPersistence opens the store at dataPath with default GC settings.
func NewBadgerPersistence(dataPath string, logger *zap.Logger) (*BadgerPersistence, error) {
	return Open(Options{DataPath: dataPath}, logger)
}

// Open opens (or creates) the database described by o. Writes are synced and a background
// goroutine reclaims value-log space until Close.
func Open(o Options, logger *zap.Logger) (*BadgerPersistence, error) {
	if o.GCInterval <= 0 {
		o.GCInterval = DefaultGCInterval
	}
	if o.GCDiscardRatio <= 0 || o.GCDiscardRatio >= 1 {
		o.GCDiscardRatio = DefaultGCDiscardRatio
	}

	var bopts badgerdb.Options
	location := "memory"
	if o.InMemory {
		bopts = badgerdb.DefaultOptions("").WithInMemory(true)
	} else {
		if o.DataPath == "" {
			return nil, fmt.Errorf("badger data path cannot be empty")
		}
		abs, err := filepath.Abs(o.DataPath)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve absolute path: %w", err)
		}
		location = abs
		bopts = badgerdb.DefaultOptions(abs).
			WithSyncWrites(true).
			WithCompactL0OnClose(true)
	}
	bopts = bopts.WithLogger(newBadgerLogger(logger)).WithNumVersionsToKeep(1)

	db, err := badgerdb.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database at %s: %w", location, err)
	}

	if err := db.Update(checkSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	bp := &BadgerPersistence{
		db:     db,
		logger: logger,
		stopGC: cancel,
		gcDone: make(chan struct{}),
	}
	go bp.collectGarbage(ctx, o.GCInterval, o.GCDiscardRatio)

	logger.Sugar().Infow("Badger transcript store opened",
		"location", location,
		"gc_interval", o.GCInterval,
	)
	return bp, nil
}

// checkSchema stamps a fresh database and refuses one written by another layout.
func checkSchema(txn *badgerdb.Txn) error {
	item, err := txn.Get([]byte(keySchemaVersion))
	switch {
	case errors.Is(err, badgerdb.ErrKeyNotFound):
		return txn.Set([]byte(keySchemaVersion), []byte(currentSchemaVersion))
	case err != nil:
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	return item.Value(func(v []byte) error {
		if string(v) != currentSchemaVersion {
			return fmt.Errorf("unsupported schema version: %s (expected: %s)", v, currentSchemaVersion)
		}
		return nil
	})
}

func (b *BadgerPersistence) collectGarbage(ctx context.Context, every time.Duration, ratio float64) {
	defer close(b.gcDone)

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// ErrNoRewrite just means there was nothing worth reclaiming
			if err := b.db.RunValueLogGC(ratio); err != nil && !errors.Is(err, badgerdb.ErrNoRewrite) {
				b.logger.Sugar().Warnw("Badger value log GC failed", "error", err)
			}
		}
	}
}

func transcriptKey(id string) []byte {
	return []byte(keyPrefixTranscript + id)
}

func createdIndexKey(t *types.Transcript) []byte {
	return []byte(fmt.Sprintf("%s%020d:%s", keyPrefixCreatedIndex, t.CreatedAt.UnixNano(), t.Id))
}

// open runs fn while holding the read lock, failing once the store is closed.
func (b *BadgerPersistence) open(fn func() error) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return persistence.ErrClosed
	}
	return fn()
}

// readTranscript returns nil when id is absent.
func readTranscript(txn *badgerdb.Txn, id string) (*types.Transcript, error) {
	item, err := txn.Get(transcriptKey(id))
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	data, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	return persistence.UnmarshalTranscript(data)
}

// SaveTranscript writes the transcript and its creation index entry in one transaction,
// replacing the index entry of any previous version.
func (b *BadgerPersistence) SaveTranscript(transcript *types.Transcript) error {
	if err := persistence.ValidateTranscript(transcript); err != nil {
		return err
	}
	data, err := persistence.MarshalTranscript(transcript)
	if err != nil {
		return err
	}

	return b.open(func() error {
		err := b.db.Update(func(txn *badgerdb.Txn) error {
			if prev, err := readTranscript(txn, transcript.Id); err == nil && prev != nil {
				if err := txn.Delete(createdIndexKey(prev)); err != nil {
					return err
				}
			}
			if err := txn.Set(transcriptKey(transcript.Id), data); err != nil {
				return err
			}
			return txn.Set(createdIndexKey(transcript), []byte(transcript.Id))
		})
		if err != nil {
			return fmt.Errorf("failed to save transcript %s: %w", transcript.Id, err)
		}
		return nil
	})
}

// LoadTranscript returns nil, nil when id is unknown.
func (b *BadgerPersistence) LoadTranscript(id string) (*types.Transcript, error) {
	var out *types.Transcript
	err := b.open(func() error {
		return b.db.View(func(txn *badgerdb.Txn) error {
			t, err := readTranscript(txn, id)
			out = t
			return err
		})
	})
	if errors.Is(err, persistence.ErrClosed) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load transcript %s: %w", id, err)
	}
	return out, nil
}

// ListTranscripts walks the creation index. Entries that no longer decode are logged and
// skipped.
func (b *BadgerPersistence) ListTranscripts() ([]*types.Transcript, error) {
	transcripts := make([]*types.Transcript, 0)

	err := b.open(func() error {
		return b.db.View(func(txn *badgerdb.Txn) error {
			opts := badgerdb.DefaultIteratorOptions
			opts.Prefix = []byte(keyPrefixCreatedIndex)
			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Rewind(); it.Valid(); it.Next() {
				id, err := it.Item().ValueCopy(nil)
				if err != nil {
					return err
				}
				t, err := readTranscript(txn, string(id))
				if err != nil {
					b.logger.Sugar().Warnw("Skipping unreadable transcript",
						"id", string(id), "error", err)
					continue
				}
				if t != nil {
					transcripts = append(transcripts, t)
				}
			}
			return nil
		})
	})
	if errors.Is(err, persistence.ErrClosed) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list transcripts: %w", err)
	}

	// index order already matches; this only settles pre-1970 timestamps
	persistence.SortTranscripts(transcripts)
	return transcripts, nil
}

// DeleteTranscript removes the transcript and its index entry. Unknown ids are a no-op.
func (b *BadgerPersistence) DeleteTranscript(id string) error {
	return b.open(func() error {
		return b.db.Update(func(txn *badgerdb.Txn) error {
			prev, err := readTranscript(txn, id)
			if err == nil && prev != nil {
				if err := txn.Delete(createdIndexKey(prev)); err != nil {
					return err
				}
			}
			return txn.Delete(transcriptKey(id))
		})
	})
}

// Close stops GC and closes the database. Calling it again is a no-op.
func (b *BadgerPersistence) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	b.stopGC()
	<-b.gcDone

	if err := b.db.Close(); err != nil {
		return fmt.Errorf("failed to close badger database: %w", err)
	}
	b.logger.Sugar().Info("Badger transcript store closed")
	return nil
}

func (b *BadgerPersistence) HealthCheck() error {
	return b.open(func() error {
		return b.db.View(func(txn *badgerdb.Txn) error {
			_, err := txn.Get([]byte(keySchemaVersion))
			if errors.Is(err, badgerdb.ErrKeyNotFound) {
				return fmt.Errorf("schema version missing, database may be corrupted")
			}
			return err
		})
	})
}
