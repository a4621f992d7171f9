package localKeyGenerator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Layr-Labs/eigenx-txsign-go/pkg/crypto"
	"github.com/Layr-Labs/eigenx-txsign-go/pkg/logger"
	"github.com/Layr-Labs/eigenx-txsign-go/pkg/types"
)

type brokenEntropy struct{}

func (brokenEntropy) Read([]byte) (int, error) {
	return 0, errors.New("getrandom: function not implemented")
}

func setup() (*LocalKeyGenerator, error) {
	l, err := logger.NewLogger(&logger.LoggerConfig{
		Debug: true,
	})
	if err != nil {
		return nil, err
	}

	generator := NewLocalKeyGenerator(l)
	return generator, nil
}

func Test_LocalKeyGenerator(t *testing.T) {
	generator, err := setup()
	if err != nil {
		t.Fatalf("Failed to setup test: %v", err)
	}

	for _, scheme := range types.SupportedSchemes() {
		scheme := scheme

		t.Run("Should generate a keypair for "+scheme.String(), func(t *testing.T) {
			kp, err := generator.GenerateKeyPair(context.Background(), scheme)
			require.NoError(t, err)
			require.NotNil(t, kp)

			assert.Equal(t, scheme, kp.Scheme)
			assert.True(t, strings.HasPrefix(kp.KeyId, "local-key-"))
			assert.Len(t, kp.PrivateKey, 32)
			switch scheme {
			case types.SchemeEdDSA25519:
				assert.Len(t, kp.PublicKey, 32)
			case types.SchemeECDSASecp256k1:
				assert.Len(t, kp.PublicKey, 33)
			}
		})

		t.Run("Should keep the public key derivable from the private key for "+scheme.String(), func(t *testing.T) {
			impl, err := crypto.SchemeFor(scheme)
			require.NoError(t, err)

			for i := 0; i < 20; i++ {
				kp, err := generator.GenerateKeyPair(context.Background(), scheme)
				require.NoError(t, err)

				derived, err := impl.DerivePublicKey(kp.PrivateKey)
				require.NoError(t, err)
				assert.Equal(t, kp.PublicKey, derived)
			}
		})

		t.Run("Should never repeat a private key for "+scheme.String(), func(t *testing.T) {
			seen := make(map[string]bool)
			keyIds := make(map[string]bool)
			for i := 0; i < 500; i++ {
				kp, err := generator.GenerateKeyPair(context.Background(), scheme)
				require.NoError(t, err)

				if seen[kp.PrivateKeyHex()] {
					t.Fatalf("duplicate private key generated after %d keys", i)
				}
				seen[kp.PrivateKeyHex()] = true
				keyIds[kp.KeyId] = true
			}
			assert.Len(t, keyIds, 500)
		})
	}

	t.Run("Should count generated keys", func(t *testing.T) {
		before := generator.GetKeyCount()
		_, err := generator.GenerateKeyPair(context.Background(), types.SchemeEdDSA25519)
		require.NoError(t, err)
		assert.Equal(t, before+1, generator.GetKeyCount())
	})

	t.Run("Should reject an unsupported scheme", func(t *testing.T) {
		_, err := generator.GenerateKeyPair(context.Background(), types.Scheme("rsa"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrUnsupportedScheme))
	})

	t.Run("Should honour a cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := generator.GenerateKeyPair(ctx, types.SchemeEdDSA25519)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func Test_LocalKeyGenerator_EntropyUnavailable(t *testing.T) {
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: false})
	require.NoError(t, err)

	generator := NewLocalKeyGeneratorWithEntropy(brokenEntropy{}, l)
	for _, scheme := range types.SupportedSchemes() {
		kp, err := generator.GenerateKeyPair(context.Background(), scheme)
		require.Error(t, err)
		assert.Nil(t, kp)
		assert.True(t, errors.Is(err, types.ErrEntropySourceUnavailable))
	}
	assert.Equal(t, 0, generator.GetKeyCount())
}
