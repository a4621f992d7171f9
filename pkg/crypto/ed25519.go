package crypto

import (
	"bytes"
	"io"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/oasisprotocol/curve25519-voi/primitives/ed25519"
	"github.com/pkg/errors"

	"github.com/Layr-Labs/eigenx-txsign-go/pkg/types"
)

var _ IScheme = (*Ed25519Scheme)(nil)

// Ed25519Scheme implements EdDSA over Curve25519. Private keys are 32-byte seeds.
type Ed25519Scheme struct{}

func (e *Ed25519Scheme) Scheme() types.Scheme { return types.SchemeEdDSA25519 }

func (e *Ed25519Scheme) GeneratePrivateKey(rand io.Reader) ([]byte, error) {
	seed := make([]byte, ed25519.SeedSize)
	if err := readEntropy(rand, seed); err != nil {
		return nil, err
	}
	return seed, nil
}

func (e *Ed25519Scheme) DerivePublicKey(privateKey []byte) ([]byte, error) {
	key, err := e.expand(privateKey)
	if err != nil {
		return nil, err
	}
	return bytes.Clone(key[ed25519.SeedSize:]), nil
}

func (e *Ed25519Scheme) Sign(privateKey []byte, message []byte) (types.Signature, error) {
	key, err := e.expand(privateKey)
	if err != nil {
		return nil, err
	}
	return types.Signature(ed25519.Sign(key, message)), nil
}

func (e *Ed25519Scheme) Verify(publicKey []byte, message []byte, sig types.Signature) (bool, error) {
	if len(publicKey) != ed25519.PublicKeySize {
		return false, errors.Wrapf(types.ErrMalformedKey, "ed25519 public key must be %d bytes, got %d", ed25519.PublicKeySize, len(publicKey))
	}
	if len(sig) != ed25519.SignatureSize {
		return false, errors.Wrapf(types.ErrMalformedSignature, "ed25519 signature must be %d bytes, got %d", ed25519.SignatureSize, len(sig))
	}
	return ed25519.Verify(ed25519.PublicKey(publicKey), message, sig), nil
}

// Address is the base58 encoding of the public key, as Solana renders accounts.
func (e *Ed25519Scheme) Address(publicKey []byte) (string, error) {
	if len(publicKey) != ed25519.PublicKeySize {
		return "", errors.Wrapf(types.ErrMalformedKey, "ed25519 public key must be %d bytes, got %d", ed25519.PublicKeySize, len(publicKey))
	}
	return base58.Encode(publicKey), nil
}

func (e *Ed25519Scheme) expand(seed []byte) (ed25519.PrivateKey, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, errors.Wrapf(types.ErrInvalidPrivateKey, "ed25519 seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	return ed25519.NewKeyFromSeed(seed), nil
}
