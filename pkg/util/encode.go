package util

import (
	"encoding/hex"

	"github.com/pkg/errors"

	"github.com/Layr-Labs/eigenx-txsign-go/pkg/types"
)

// EncodeHex returns the lowercase hex text of b without separators or prefix.
func EncodeHex(b []byte) string {
	return hex.EncodeToString(b)
}

// DecodeHex parses hex text produced by EncodeHex. Either case is accepted; a "0x"
// prefix is not hex and is rejected like any other non-hex character.
func DecodeHex(s string) ([]byte, error) {
	if len(s)%2 != 0 {
		return nil, errors.Wrapf(types.ErrMalformedHex, "odd length %d", len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrapf(types.ErrMalformedHex, "%v", err)
	}
	return b, nil
}

// Abbreviate shortens s to its first n characters followed by "...".
func Abbreviate(s string, n int) string {
	if n < 0 || len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
