package crypto

import (
	"crypto/ecdsa"
	"fmt"
	"io"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	dcrecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"github.com/Layr-Labs/eigenx-txsign-go/pkg/types"
)

const (
	Secp256k1PrivateKeySize            = 32
	Secp256k1CompressedPublicKeySize   = 33
	Secp256k1UncompressedPublicKeySize = 65
	Secp256k1SignatureSize             = 65 // R || S || V

	// SignCompact prefixes V with 27, plus 4 for a compressed key
	compactRecoveryOffset = 27 + 4
)

var _ IScheme = (*Secp256k1Scheme)(nil)

// Secp256k1Scheme implements ECDSA over secp256k1 with RFC6979 nonces and recoverable
// R || S || V signatures in lower-S form. Public keys are emitted compressed.
//
// The message is handed to the signing routine as is, without a prehash. As with any
// ECDSA implementation over a 256-bit curve, only its leftmost 256 bits enter the
// signature, so for fingerprint text that is the first 32 characters.
type Secp256k1Scheme struct{}

func (s *Secp256k1Scheme) Scheme() types.Scheme { return types.SchemeECDSASecp256k1 }

// GeneratePrivateKey samples 32 bytes until they form a scalar in [1, N-1].
func (s *Secp256k1Scheme) GeneratePrivateKey(rand io.Reader) ([]byte, error) {
	n := ethcrypto.S256().Params().N
	buf := make([]byte, Secp256k1PrivateKeySize)
	d := new(big.Int)
	for {
		if err := readEntropy(rand, buf); err != nil {
			return nil, err
		}
		d.SetBytes(buf)
		if d.Sign() > 0 && d.Cmp(n) < 0 {
			return buf, nil
		}
	}
}

func (s *Secp256k1Scheme) DerivePublicKey(privateKey []byte) ([]byte, error) {
	key, err := toECDSA(privateKey)
	if err != nil {
		return nil, err
	}
	return ethcrypto.CompressPubkey(&key.PublicKey), nil
}

func (s *Secp256k1Scheme) Sign(privateKey []byte, message []byte) (types.Signature, error) {
	if _, err := toECDSA(privateKey); err != nil {
		return nil, err
	}
	key := secp256k1.PrivKeyFromBytes(privateKey)
	defer key.Zero()

	// V || R || S
	compact := dcrecdsa.SignCompact(key, message, true)

	sig := make([]byte, Secp256k1SignatureSize)
	copy(sig, compact[1:])
	sig[64] = compact[0] - compactRecoveryOffset
	return types.Signature(sig), nil
}

// Verify checks R || S against the public key and additionally requires the recovery id
// to recover that same key, so every byte of the signature is bound. High-S signatures
// are rejected.
func (s *Secp256k1Scheme) Verify(publicKey []byte, message []byte, sig types.Signature) (bool, error) {
	pub, err := parsePublicKey(publicKey)
	if err != nil {
		return false, err
	}
	if len(sig) != Secp256k1SignatureSize {
		return false, errors.Wrapf(types.ErrMalformedSignature, "secp256k1 signature must be %d bytes, got %d", Secp256k1SignatureSize, len(sig))
	}

	var r, sc secp256k1.ModNScalar
	if r.SetByteSlice(sig[:32]) || sc.SetByteSlice(sig[32:64]) {
		return false, nil
	}
	if r.IsZero() || sc.IsZero() || sc.IsOverHalfOrder() {
		return false, nil
	}
	if !dcrecdsa.NewSignature(&r, &sc).Verify(message, pub) {
		return false, nil
	}

	recovered, err := recoverKey(message, sig)
	if err != nil {
		return false, nil
	}
	return recovered.IsEqual(pub), nil
}

// RecoverPublicKey returns the compressed public key that produced sig over message.
func (s *Secp256k1Scheme) RecoverPublicKey(message []byte, sig types.Signature) ([]byte, error) {
	if len(sig) != Secp256k1SignatureSize {
		return nil, errors.Wrapf(types.ErrMalformedSignature, "secp256k1 signature must be %d bytes, got %d", Secp256k1SignatureSize, len(sig))
	}
	pub, err := recoverKey(message, sig)
	if err != nil {
		return nil, errors.Wrapf(types.ErrMalformedSignature, "public key recovery failed: %v", err)
	}
	return pub.SerializeCompressed(), nil
}

func recoverKey(message []byte, sig []byte) (*secp256k1.PublicKey, error) {
	if v := sig[64]; v > 3 {
		return nil, fmt.Errorf("invalid recovery id %d", v)
	}
	compact := make([]byte, 0, Secp256k1SignatureSize)
	compact = append(compact, sig[64]+compactRecoveryOffset)
	compact = append(compact, sig[:64]...)

	pub, _, err := dcrecdsa.RecoverCompact(compact, message)
	return pub, err
}

// Address returns the EIP-55 checksummed Ethereum address of publicKey.
func (s *Secp256k1Scheme) Address(publicKey []byte) (string, error) {
	pub, err := parsePublicKey(publicKey)
	if err != nil {
		return "", err
	}
	return ethcrypto.PubkeyToAddress(*pub.ToECDSA()).Hex(), nil
}

func toECDSA(privateKey []byte) (*ecdsa.PrivateKey, error) {
	if len(privateKey) != Secp256k1PrivateKeySize {
		return nil, errors.Wrapf(types.ErrInvalidPrivateKey, "secp256k1 private key must be %d bytes, got %d", Secp256k1PrivateKeySize, len(privateKey))
	}
	key, err := ethcrypto.ToECDSA(privateKey)
	if err != nil {
		return nil, errors.Wrapf(types.ErrInvalidPrivateKey, "%v", err)
	}
	return key, nil
}

// parsePublicKey accepts a compressed or uncompressed SEC1 point on the curve.
func parsePublicKey(publicKey []byte) (*secp256k1.PublicKey, error) {
	switch len(publicKey) {
	case Secp256k1CompressedPublicKeySize, Secp256k1UncompressedPublicKeySize:
	default:
		return nil, errors.Wrapf(types.ErrMalformedKey, "secp256k1 public key must be %d or %d bytes, got %d",
			Secp256k1CompressedPublicKeySize, Secp256k1UncompressedPublicKeySize, len(publicKey))
	}
	pub, err := secp256k1.ParsePubKey(publicKey)
	if err != nil {
		return nil, errors.Wrapf(types.ErrMalformedKey, "%v", err)
	}
	return pub, nil
}
