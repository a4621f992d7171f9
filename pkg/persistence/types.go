package persistence

import (
	"errors"
	"sort"

	"github.com/Layr-Labs/eigenx-txsign-go/pkg/types"
)

// ErrClosed is returned by every operation after Close.
var ErrClosed = errors.New("persistence layer is closed")

// SortTranscripts orders transcripts by creation time, breaking ties by Id so the
// order is stable across backends.
func SortTranscripts(transcripts []*types.Transcript) {
	sort.Slice(transcripts, func(i, j int) bool {
		a, b := transcripts[i], transcripts[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.Id < b.Id
	})
}

// ValidateTranscript rejects transcripts that cannot be keyed.
func ValidateTranscript(t *types.Transcript) error {
	if t == nil {
		return errors.New("cannot save nil Transcript")
	}
	if t.Id == "" {
		return errors.New("transcript id cannot be empty")
	}
	return nil
}
