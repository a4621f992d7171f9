package util

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Layr-Labs/eigenx-txsign-go/pkg/types"
)

func TestEncodeHex(t *testing.T) {
	assert.Equal(t, "", EncodeHex(nil))
	assert.Equal(t, "00ff10ab", EncodeHex([]byte{0x00, 0xff, 0x10, 0xab}))
}

func TestDecodeHex(t *testing.T) {
	t.Run("lowercase and uppercase", func(t *testing.T) {
		b, err := DecodeHex("00ff10AB")
		require.NoError(t, err)
		assert.Equal(t, []byte{0x00, 0xff, 0x10, 0xab}, b)
	})

	t.Run("0x prefix is rejected", func(t *testing.T) {
		for _, s := range []string{"0xdead", "0x", "0Xab"} {
			_, err := DecodeHex(s)
			require.Error(t, err, s)
			assert.True(t, errors.Is(err, types.ErrMalformedHex), s)
		}
	})

	t.Run("empty", func(t *testing.T) {
		b, err := DecodeHex("")
		require.NoError(t, err)
		assert.Empty(t, b)
	})

	t.Run("odd length", func(t *testing.T) {
		_, err := DecodeHex("abc")
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrMalformedHex))
	})

	t.Run("non-hex characters", func(t *testing.T) {
		_, err := DecodeHex("zz")
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrMalformedHex))
	})
}

func TestAbbreviate(t *testing.T) {
	assert.Equal(t, "abc", Abbreviate("abc", 20))
	assert.Equal(t, "0123456789...", Abbreviate("0123456789abcdef", 10))
	assert.Equal(t, "abc", Abbreviate("abc", -1))
}
