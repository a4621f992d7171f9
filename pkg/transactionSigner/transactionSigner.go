package transactionSigner

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Layr-Labs/eigenx-txsign-go/pkg/crypto"
	"github.com/Layr-Labs/eigenx-txsign-go/pkg/types"
)

// ITransactionSigner signs and verifies transaction fingerprints.
//
// Both sides operate on the UTF-8 bytes of the fingerprint's hex text rather than the
// canonical transaction bytes. A signature made over one form never verifies against the
// other, so the two must always be used together.
type ITransactionSigner interface {
	// Sign signs fingerprintText under privateKey for scheme.
	Sign(fingerprintText string, privateKey []byte, scheme types.Scheme) (types.Signature, error)

	// Verify reports whether signature is valid for fingerprintText and publicKey.
	Verify(signature types.Signature, fingerprintText string, publicKey []byte, scheme types.Scheme) (bool, error)
}

var _ ITransactionSigner = (*TransactionSigner)(nil)

type TransactionSigner struct {
	logger *zap.Logger
}

func NewTransactionSigner(logger *zap.Logger) *TransactionSigner {
	return &TransactionSigner{logger: logger}
}

// Message returns the exact bytes that are signed for fingerprintText.
func Message(fingerprintText string) []byte {
	return []byte(fingerprintText)
}

func (ts *TransactionSigner) Sign(fingerprintText string, privateKey []byte, scheme types.Scheme) (types.Signature, error) {
	impl, err := crypto.SchemeFor(scheme)
	if err != nil {
		return nil, err
	}

	sig, err := impl.Sign(privateKey, Message(fingerprintText))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to sign fingerprint with %s", scheme)
	}

	ts.logger.Debug("Signed fingerprint",
		zap.String("scheme", scheme.String()),
		zap.Int("messageLen", len(fingerprintText)),
		zap.Int("signatureLen", len(sig)),
	)
	return sig, nil
}

func (ts *TransactionSigner) Verify(signature types.Signature, fingerprintText string, publicKey []byte, scheme types.Scheme) (bool, error) {
	impl, err := crypto.SchemeFor(scheme)
	if err != nil {
		return false, err
	}

	ok, err := impl.Verify(publicKey, Message(fingerprintText), signature)
	if err != nil {
		return false, errors.Wrapf(err, "cannot verify %s signature", scheme)
	}

	ts.logger.Debug("Verified fingerprint signature",
		zap.String("scheme", scheme.String()),
		zap.Bool("valid", ok),
	)
	return ok, nil
}

// RecoverPublicKey returns the compressed public key behind an ECDSA signature.
// EdDSA signatures do not support recovery.
func (ts *TransactionSigner) RecoverPublicKey(signature types.Signature, fingerprintText string, scheme types.Scheme) ([]byte, error) {
	if scheme != types.SchemeECDSASecp256k1 {
		return nil, errors.Wrapf(types.ErrUnsupportedScheme, "public key recovery is not available for %s", scheme)
	}
	impl, err := crypto.SchemeFor(scheme)
	if err != nil {
		return nil, err
	}
	return impl.(*crypto.Secp256k1Scheme).RecoverPublicKey(Message(fingerprintText), signature)
}
