// Package txsign exposes the signing lifecycle operations with hex text at the boundary.
package txsign

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Layr-Labs/eigenx-txsign-go/internal/keyGenerator"
	"github.com/Layr-Labs/eigenx-txsign-go/internal/keyGenerator/localKeyGenerator"
	"github.com/Layr-Labs/eigenx-txsign-go/pkg/crypto"
	"github.com/Layr-Labs/eigenx-txsign-go/pkg/transaction"
	"github.com/Layr-Labs/eigenx-txsign-go/pkg/transactionSigner"
	"github.com/Layr-Labs/eigenx-txsign-go/pkg/types"
	"github.com/Layr-Labs/eigenx-txsign-go/pkg/util"
)

// KeyPairHex is a generated key pair rendered as lowercase hex.
type KeyPairHex struct {
	KeyId         string       `json:"keyId"`
	Scheme        types.Scheme `json:"scheme"`
	PrivateKeyHex string       `json:"privateKey"`
	PublicKeyHex  string       `json:"publicKey"`
	Address       string       `json:"address"`
}

type TxSign struct {
	generator keyGenerator.IKeyGenerator
	signer    transactionSigner.ITransactionSigner
	logger    *zap.Logger
}

// New returns a TxSign backed by the local key generator and the default signer.
func New(logger *zap.Logger) *TxSign {
	return NewWithDependencies(
		localKeyGenerator.NewLocalKeyGenerator(logger),
		transactionSigner.NewTransactionSigner(logger),
		logger,
	)
}

func NewWithDependencies(generator keyGenerator.IKeyGenerator, signer transactionSigner.ITransactionSigner, logger *zap.Logger) *TxSign {
	return &TxSign{
		generator: generator,
		signer:    signer,
		logger:    logger,
	}
}

// GenerateKeyPair creates a fresh key pair for scheme.
func (t *TxSign) GenerateKeyPair(ctx context.Context, scheme types.Scheme) (*KeyPairHex, error) {
	kp, err := t.generator.GenerateKeyPair(ctx, scheme)
	if err != nil {
		return nil, err
	}
	impl, err := crypto.SchemeFor(scheme)
	if err != nil {
		return nil, err
	}
	address, err := impl.Address(kp.PublicKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive address")
	}
	return &KeyPairHex{
		KeyId:         kp.KeyId,
		Scheme:        kp.Scheme,
		PrivateKeyHex: kp.PrivateKeyHex(),
		PublicKeyHex:  kp.PublicKeyHex(),
		Address:       address,
	}, nil
}

// BuildFingerprint returns the fingerprint text of record.
func (t *TxSign) BuildFingerprint(record types.TransactionRecord) string {
	return transaction.BuildFingerprint(record).Hex()
}

// Sign signs fingerprintText and returns the signature hex.
func (t *TxSign) Sign(fingerprintText, privateKeyHex string, scheme types.Scheme) (string, error) {
	priv, err := util.DecodeHex(privateKeyHex)
	if err != nil {
		return "", errors.Wrap(err, "private key")
	}
	sig, err := t.signer.Sign(fingerprintText, priv, scheme)
	if err != nil {
		return "", err
	}
	return sig.Hex(), nil
}

// Verify reports whether signatureHex is valid for fingerprintText under publicKeyHex.
func (t *TxSign) Verify(signatureHex, fingerprintText, publicKeyHex string, scheme types.Scheme) (bool, error) {
	sig, err := util.DecodeHex(signatureHex)
	if err != nil {
		return false, errors.Wrap(err, "signature")
	}
	pub, err := util.DecodeHex(publicKeyHex)
	if err != nil {
		return false, errors.Wrap(err, "public key")
	}
	return t.signer.Verify(sig, fingerprintText, pub, scheme)
}
