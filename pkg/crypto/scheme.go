package crypto

import (
	"io"

	"github.com/pkg/errors"

	"github.com/Layr-Labs/eigenx-txsign-go/pkg/types"
)

// IScheme is one row of the closed scheme table. Implementations are stateless.
type IScheme interface {
	// Scheme returns the tag this implementation serves.
	Scheme() types.Scheme

	// GeneratePrivateKey draws a fresh private key from rand.
	// A failing reader yields types.ErrEntropySourceUnavailable.
	GeneratePrivateKey(rand io.Reader) ([]byte, error)

	// DerivePublicKey deterministically derives the public key for privateKey.
	DerivePublicKey(privateKey []byte) ([]byte, error)

	// Sign signs message under privateKey.
	Sign(privateKey []byte, message []byte) (types.Signature, error)

	// Verify checks sig over message. Mismatches return false; only structurally
	// invalid keys or signatures return an error.
	Verify(publicKey []byte, message []byte, sig types.Signature) (bool, error)

	// Address renders the chain address for publicKey.
	Address(publicKey []byte) (string, error)
}

var schemes = map[types.Scheme]IScheme{
	types.SchemeEdDSA25519:     &Ed25519Scheme{},
	types.SchemeECDSASecp256k1: &Secp256k1Scheme{},
}

// SchemeFor returns the implementation registered for s.
func SchemeFor(s types.Scheme) (IScheme, error) {
	impl, ok := schemes[s]
	if !ok {
		return nil, errors.Wrapf(types.ErrUnsupportedScheme, "%q", s)
	}
	return impl, nil
}

func readEntropy(rand io.Reader, buf []byte) error {
	if rand == nil {
		return errors.Wrap(types.ErrEntropySourceUnavailable, "no entropy source configured")
	}
	if _, err := io.ReadFull(rand, buf); err != nil {
		return errors.Wrapf(types.ErrEntropySourceUnavailable, "%v", err)
	}
	return nil
}
