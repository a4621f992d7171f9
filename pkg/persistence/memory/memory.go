package memory

import (
	"sync"

	"go.uber.org/zap"

	"github.com/Layr-Labs/eigenx-txsign-go/pkg/persistence"
	"github.com/Layr-Labs/eigenx-txsign-go/pkg/types"
)

// MemoryPersistence is an in-memory implementation of ITranscriptPersistence.
//
// All data is lost when the process exits, which makes it useful for tests and for
// single-invocation demo runs. Copies are stored and returned so callers cannot mutate
// the stored transcripts.
type MemoryPersistence struct {
	mu sync.RWMutex

	// id -> Transcript
	transcripts map[string]*types.Transcript

	closed bool
}

// Ensure MemoryPersistence implements ITranscriptPersistence
var _ persistence.ITranscriptPersistence = (*MemoryPersistence)(nil)

// NewMemoryPersistence creates a new in-memory persistence layer.
func NewMemoryPersistence(logger *zap.Logger) *MemoryPersistence {
	logger.Sugar().Warnw("Using in-memory transcript persistence - transcripts will be lost on exit")

	return &MemoryPersistence{
		transcripts: make(map[string]*types.Transcript),
	}
}

// SaveTranscript persists a transcript.
func (m *MemoryPersistence) SaveTranscript(transcript *types.Transcript) error {
	if err := persistence.ValidateTranscript(transcript); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return persistence.ErrClosed
	}

	m.transcripts[transcript.Id] = copyTranscript(transcript)
	return nil
}

// LoadTranscript retrieves a transcript by id.
func (m *MemoryPersistence) LoadTranscript(id string) (*types.Transcript, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, persistence.ErrClosed
	}

	t, exists := m.transcripts[id]
	if !exists {
		return nil, nil // Not found is not an error
	}
	return copyTranscript(t), nil
}

// ListTranscripts returns all transcripts sorted by creation time.
func (m *MemoryPersistence) ListTranscripts() ([]*types.Transcript, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, persistence.ErrClosed
	}

	result := make([]*types.Transcript, 0, len(m.transcripts))
	for _, t := range m.transcripts {
		result = append(result, copyTranscript(t))
	}
	persistence.SortTranscripts(result)

	return result, nil
}

// DeleteTranscript removes a transcript.
func (m *MemoryPersistence) DeleteTranscript(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return persistence.ErrClosed
	}

	delete(m.transcripts, id)
	return nil
}

// Close marks the persistence layer as closed.
func (m *MemoryPersistence) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	return nil
}

// HealthCheck returns an error once the store is closed.
func (m *MemoryPersistence) HealthCheck() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return persistence.ErrClosed
	}
	return nil
}

// Transcript holds only value fields, so a struct copy is a deep copy.
func copyTranscript(t *types.Transcript) *types.Transcript {
	c := *t
	return &c
}
