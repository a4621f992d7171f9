package persistence

import (
	"encoding/json"
	"fmt"

	"github.com/Layr-Labs/eigenx-txsign-go/pkg/types"
)

// MarshalTranscript serializes a Transcript to JSON bytes.
func MarshalTranscript(t *types.Transcript) ([]byte, error) {
	if t == nil {
		return nil, fmt.Errorf("cannot marshal nil Transcript")
	}

	data, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal Transcript to JSON: %w", err)
	}

	return data, nil
}

// UnmarshalTranscript deserializes a Transcript from JSON bytes.
func UnmarshalTranscript(data []byte) (*types.Transcript, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("cannot unmarshal empty data")
	}

	var t types.Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON to Transcript: %w", err)
	}

	return &t, nil
}
