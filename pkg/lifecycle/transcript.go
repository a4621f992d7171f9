package lifecycle

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/Layr-Labs/eigenx-txsign-go/pkg/transaction"
	"github.com/Layr-Labs/eigenx-txsign-go/pkg/transactionSigner"
	"github.com/Layr-Labs/eigenx-txsign-go/pkg/types"
	"github.com/Layr-Labs/eigenx-txsign-go/pkg/util"
)

// NewTranscript captures the public outcome of a finished run. The private key is
// deliberately left out.
func NewTranscript(state *types.LifecycleState) (*types.Transcript, error) {
	if state == nil {
		return nil, errors.New("cannot build transcript from nil state")
	}
	if state.Step != types.StepVerified {
		return nil, errors.Wrapf(types.ErrStepOutOfOrder, "transcript requires step %s, lifecycle is at %s", types.StepVerified, state.Step)
	}

	return &types.Transcript{
		Id:             uuid.New().String(),
		Scheme:         state.Scheme,
		KeyId:          state.Keys.KeyId,
		PublicKeyHex:   state.Keys.PublicKeyHex(),
		Transaction:    *state.Transaction,
		FingerprintHex: state.Fingerprint.Hex(),
		SignatureHex:   state.Signature.Hex(),
		Verified:       state.Verified,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

// Reverify re-runs verification from the transcript's stored hex fields. A transcript whose
// fingerprint no longer matches its transaction record does not verify.
func Reverify(signer transactionSigner.ITransactionSigner, t *types.Transcript) (bool, error) {
	if t == nil {
		return false, errors.New("cannot verify nil transcript")
	}
	if transaction.BuildFingerprint(t.Transaction).Hex() != t.FingerprintHex {
		return false, nil
	}
	pub, err := util.DecodeHex(t.PublicKeyHex)
	if err != nil {
		return false, errors.Wrap(err, "transcript public key")
	}
	sig, err := util.DecodeHex(t.SignatureHex)
	if err != nil {
		return false, errors.Wrap(err, "transcript signature")
	}
	return signer.Verify(sig, t.FingerprintHex, pub, t.Scheme)
}
