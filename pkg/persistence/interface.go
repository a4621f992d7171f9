package persistence

import "github.com/Layr-Labs/eigenx-txsign-go/pkg/types"

// ITranscriptPersistence stores the public transcripts of finished signing runs.
// All implementations must be thread-safe.
//
// Transcripts never carry private key material, so every backend may be shared
// or inspected freely.
type ITranscriptPersistence interface {
	// SaveTranscript persists a transcript keyed by its Id.
	// Saving an Id that already exists overwrites it.
	SaveTranscript(transcript *types.Transcript) error

	// LoadTranscript retrieves a transcript by Id.
	// Returns nil if it doesn't exist, error only on storage failure.
	LoadTranscript(id string) (*types.Transcript, error)

	// ListTranscripts returns all transcripts sorted by creation time (ascending).
	// Returns empty slice if none exist, error only on storage failure.
	ListTranscripts() ([]*types.Transcript, error)

	// DeleteTranscript removes a transcript by Id.
	// Idempotent - returns nil if it doesn't exist.
	DeleteTranscript(id string) error

	// Close cleanly shuts down the persistence layer.
	// Idempotent - safe to call multiple times.
	// After Close(), all other operations should return errors.
	Close() error

	// HealthCheck verifies the persistence layer is operational.
	HealthCheck() error
}
