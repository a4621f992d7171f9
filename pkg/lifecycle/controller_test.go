package lifecycle

import (
	"context"
	"sync"
	"testing"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Layr-Labs/eigenx-txsign-go/internal/keyGenerator/localKeyGenerator"
	"github.com/Layr-Labs/eigenx-txsign-go/pkg/crypto"
	"github.com/Layr-Labs/eigenx-txsign-go/pkg/logger"
	"github.com/Layr-Labs/eigenx-txsign-go/pkg/transaction"
	"github.com/Layr-Labs/eigenx-txsign-go/pkg/transactionSigner"
	"github.com/Layr-Labs/eigenx-txsign-go/pkg/types"
)

var scenarioRecord = types.TransactionRecord{Recipient: "Alice", Amount: 10, SchemeParam: "abc123"}

// flakyGenerator fails the first call and delegates afterwards.
type flakyGenerator struct {
	inner  *localKeyGenerator.LocalKeyGenerator
	failed bool
}

func (f *flakyGenerator) GenerateKeyPair(ctx context.Context, scheme types.Scheme) (*types.KeyPair, error) {
	if !f.failed {
		f.failed = true
		return nil, types.ErrEntropySourceUnavailable
	}
	return f.inner.GenerateKeyPair(ctx, scheme)
}

// blockingGenerator holds GenerateKeyPair until release is closed.
type blockingGenerator struct {
	inner   *localKeyGenerator.LocalKeyGenerator
	started chan struct{}
	release chan struct{}
}

func (b *blockingGenerator) GenerateKeyPair(ctx context.Context, scheme types.Scheme) (*types.KeyPair, error) {
	close(b.started)
	<-b.release
	return b.inner.GenerateKeyPair(ctx, scheme)
}

// brokenSigner refuses to sign and reports every signature as invalid.
type brokenSigner struct{}

func (brokenSigner) Sign(string, []byte, types.Scheme) (types.Signature, error) {
	return nil, types.ErrInvalidPrivateKey
}

func (brokenSigner) Verify(types.Signature, string, []byte, types.Scheme) (bool, error) {
	return false, nil
}

func testLogger(t *testing.T) *zap.Logger {
	t.Helper()
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: false})
	require.NoError(t, err)
	return l
}

func newController(t *testing.T, scheme types.Scheme) *Controller {
	t.Helper()
	l := testLogger(t)
	c, err := NewController(scheme, localKeyGenerator.NewLocalKeyGenerator(l), transactionSigner.NewTransactionSigner(l), l)
	require.NoError(t, err)
	return c
}

func runToVerified(t *testing.T, c *Controller, record types.TransactionRecord) bool {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, c.GenerateKeys(ctx))
	require.NoError(t, c.BuildTransaction(ctx, record))
	require.NoError(t, c.Sign(ctx))
	ok, err := c.Verify(ctx)
	require.NoError(t, err)
	return ok
}

func Test_Controller_Scenarios(t *testing.T) {
	for _, scheme := range types.SupportedSchemes() {
		t.Run(scheme.String(), func(t *testing.T) {
			c := newController(t, scheme)
			ctx := context.Background()

			state := c.State()
			assert.Equal(t, types.StepInit, state.Step)
			assert.Nil(t, state.Keys)

			require.NoError(t, c.GenerateKeys(ctx))
			state = c.State()
			assert.Equal(t, types.StepKeysReady, state.Step)
			require.NotNil(t, state.Keys)

			impl, err := crypto.SchemeFor(scheme)
			require.NoError(t, err)
			derived, err := impl.DerivePublicKey(state.Keys.PrivateKey)
			require.NoError(t, err)
			assert.Equal(t, state.Keys.PublicKey, derived)

			require.NoError(t, c.BuildTransaction(ctx, scenarioRecord))
			state = c.State()
			assert.Equal(t, types.StepTxBuilt, state.Step)
			assert.Equal(t, transaction.BuildFingerprint(scenarioRecord), state.Fingerprint)

			require.NoError(t, c.Sign(ctx))
			state = c.State()
			assert.Equal(t, types.StepSigned, state.Step)
			assert.NotEmpty(t, state.Signature)

			ok, err := c.Verify(ctx)
			require.NoError(t, err)
			assert.True(t, ok)
			state = c.State()
			assert.Equal(t, types.StepVerified, state.Step)
			assert.True(t, state.Verified)
		})
	}
}

func Test_Controller_StepOrder(t *testing.T) {
	c := newController(t, types.SchemeEdDSA25519)
	ctx := context.Background()

	err := c.BuildTransaction(ctx, scenarioRecord)
	require.ErrorIs(t, err, types.ErrStepOutOfOrder)
	err = c.Sign(ctx)
	require.ErrorIs(t, err, types.ErrStepOutOfOrder)
	_, err = c.Verify(ctx)
	require.ErrorIs(t, err, types.ErrStepOutOfOrder)
	assert.Equal(t, types.StepInit, c.State().Step)

	require.NoError(t, c.GenerateKeys(ctx))
	err = c.GenerateKeys(ctx)
	require.ErrorIs(t, err, types.ErrStepOutOfOrder)

	require.True(t, runRemaining(t, c))

	for _, step := range []func() error{
		func() error { return c.GenerateKeys(ctx) },
		func() error { return c.BuildTransaction(ctx, scenarioRecord) },
		func() error { return c.Sign(ctx) },
		func() error { _, err := c.Verify(ctx); return err },
	} {
		require.ErrorIs(t, step(), types.ErrStepOutOfOrder)
	}
	assert.Equal(t, types.StepVerified, c.State().Step)
}

func runRemaining(t *testing.T, c *Controller) bool {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, c.BuildTransaction(ctx, scenarioRecord))
	require.NoError(t, c.Sign(ctx))
	ok, err := c.Verify(ctx)
	require.NoError(t, err)
	return ok
}

func Test_Controller_FailureLeavesStateUnchanged(t *testing.T) {
	l := testLogger(t)

	t.Run("key generation can be retried", func(t *testing.T) {
		gen := &flakyGenerator{inner: localKeyGenerator.NewLocalKeyGenerator(l)}
		c, err := NewController(types.SchemeECDSASecp256k1, gen, transactionSigner.NewTransactionSigner(l), l)
		require.NoError(t, err)

		err = c.GenerateKeys(context.Background())
		require.ErrorIs(t, err, types.ErrEntropySourceUnavailable)
		assert.Equal(t, types.StepInit, c.State().Step)
		assert.Nil(t, c.State().Keys)

		require.NoError(t, c.GenerateKeys(context.Background()))
		assert.Equal(t, types.StepKeysReady, c.State().Step)
	})

	t.Run("signing failure stays at tx-built", func(t *testing.T) {
		c, err := NewController(types.SchemeEdDSA25519, localKeyGenerator.NewLocalKeyGenerator(l), brokenSigner{}, l)
		require.NoError(t, err)
		ctx := context.Background()

		require.NoError(t, c.GenerateKeys(ctx))
		require.NoError(t, c.BuildTransaction(ctx, scenarioRecord))
		err = c.Sign(ctx)
		require.ErrorIs(t, err, types.ErrInvalidPrivateKey)

		state := c.State()
		assert.Equal(t, types.StepTxBuilt, state.Step)
		assert.Empty(t, state.Signature)
		assert.False(t, c.Busy())
	})

	t.Run("cancelled context does not start a step", func(t *testing.T) {
		c := newController(t, types.SchemeEdDSA25519)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		require.ErrorIs(t, c.GenerateKeys(ctx), context.Canceled)
		assert.Equal(t, types.StepInit, c.State().Step)
	})
}

func Test_Controller_VerificationMismatchIsNotAnError(t *testing.T) {
	l := testLogger(t)
	inner := transactionSigner.NewTransactionSigner(l)
	c, err := NewController(types.SchemeEdDSA25519, localKeyGenerator.NewLocalKeyGenerator(l), &mismatchSigner{inner: inner}, l)
	require.NoError(t, err)

	ok := runToVerified(t, c, scenarioRecord)
	assert.False(t, ok)
	state := c.State()
	assert.Equal(t, types.StepVerified, state.Step)
	assert.False(t, state.Verified)
}

// mismatchSigner signs correctly but verifies against a different fingerprint.
type mismatchSigner struct {
	inner *transactionSigner.TransactionSigner
}

func (m *mismatchSigner) Sign(text string, priv []byte, scheme types.Scheme) (types.Signature, error) {
	return m.inner.Sign(text, priv, scheme)
}

func (m *mismatchSigner) Verify(sig types.Signature, text string, pub []byte, scheme types.Scheme) (bool, error) {
	return m.inner.Verify(sig, text+"00", pub, scheme)
}

func Test_Controller_StepGate(t *testing.T) {
	l := testLogger(t)
	gen := &blockingGenerator{
		inner:   localKeyGenerator.NewLocalKeyGenerator(l),
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	c, err := NewController(types.SchemeEdDSA25519, gen, transactionSigner.NewTransactionSigner(l), l)
	require.NoError(t, err)

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		firstErr = c.GenerateKeys(context.Background())
	}()

	<-gen.started
	assert.True(t, c.Busy())
	assert.False(t, c.Snapshot().CanTrigger(types.StepInit))
	require.ErrorIs(t, c.GenerateKeys(context.Background()), types.ErrStepInProgress)
	require.ErrorIs(t, c.Reset(), types.ErrStepInProgress)

	close(gen.release)
	wg.Wait()
	require.NoError(t, firstErr)
	assert.False(t, c.Busy())
	assert.Equal(t, types.StepKeysReady, c.State().Step)
}

func Test_Controller_StateIsACopy(t *testing.T) {
	c := newController(t, types.SchemeECDSASecp256k1)
	require.True(t, runToVerified(t, c, scenarioRecord))

	state := c.State()
	state.Signature[0] ^= 0xff
	state.Keys.PublicKey[1] ^= 0xff
	state.Transaction.Recipient = "Mallory"

	fresh := c.State()
	assert.NotEqual(t, state.Signature, fresh.Signature)
	assert.NotEqual(t, state.Keys.PublicKey, fresh.Keys.PublicKey)
	assert.Equal(t, "Alice", fresh.Transaction.Recipient)
}

func Test_Controller_Reset(t *testing.T) {
	c := newController(t, types.SchemeEdDSA25519)
	require.True(t, runToVerified(t, c, scenarioRecord))
	first := c.State()

	require.NoError(t, c.Reset())
	state := c.State()
	assert.Equal(t, types.StepInit, state.Step)
	assert.Nil(t, state.Keys)
	assert.Empty(t, state.Fingerprint)

	edited := scenarioRecord
	edited.Amount = 11
	require.True(t, runToVerified(t, c, edited))
	second := c.State()
	assert.NotEqual(t, first.Fingerprint, second.Fingerprint)
	assert.NotEqual(t, first.Keys.PrivateKey, second.Keys.PrivateKey)
}

func Test_NewController_Validation(t *testing.T) {
	l := testLogger(t)
	gen := localKeyGenerator.NewLocalKeyGenerator(l)
	signer := transactionSigner.NewTransactionSigner(l)

	_, err := NewController(types.Scheme("rsa"), gen, signer, l)
	require.ErrorIs(t, err, types.ErrUnsupportedScheme)

	_, err = NewController(types.SchemeEdDSA25519, nil, signer, l)
	require.Error(t, err)

	_, err = NewController(types.SchemeEdDSA25519, gen, nil, l)
	require.Error(t, err)
}

func Test_Demo_IndependentLifecycles(t *testing.T) {
	l := testLogger(t)
	demo, err := NewDemo(localKeyGenerator.NewLocalKeyGenerator(l), transactionSigner.NewTransactionSigner(l), l)
	require.NoError(t, err)

	ed, err := demo.Controller(types.SchemeEdDSA25519)
	require.NoError(t, err)
	ec, err := demo.Controller(types.SchemeECDSASecp256k1)
	require.NoError(t, err)

	require.True(t, runToVerified(t, ed, scenarioRecord))
	assert.Equal(t, types.StepVerified, ed.State().Step)
	assert.Equal(t, types.StepInit, ec.State().Step)

	require.NoError(t, ec.GenerateKeys(context.Background()))
	snaps := demo.Snapshots()
	require.Len(t, snaps, 2)
	assert.Equal(t, types.SchemeEdDSA25519, snaps[0].Scheme)
	assert.Equal(t, types.StepVerified, snaps[0].Step)
	assert.Equal(t, types.SchemeECDSASecp256k1, snaps[1].Scheme)
	assert.Equal(t, types.StepKeysReady, snaps[1].Step)

	_, err = demo.Controller(types.SchemeUnknown)
	require.ErrorIs(t, err, types.ErrUnsupportedScheme)
}

func Test_Snapshot(t *testing.T) {
	c := newController(t, types.SchemeECDSASecp256k1)
	snap := c.Snapshot()
	assert.Equal(t, "Ethereum", snap.ChainLabel)
	assert.Equal(t, "Gas Price", snap.ParamLabel)
	assert.True(t, snap.CanTrigger(types.StepInit))
	assert.False(t, snap.Reached(types.StepKeysReady))
	assert.Empty(t, snap.PublicKeyHex)
	assert.Empty(t, snap.DigestHex)

	require.True(t, runToVerified(t, c, scenarioRecord))
	snap = c.Snapshot()
	assert.True(t, snap.Reached(types.StepVerified))
	assert.Len(t, snap.PublicKeyHex, 66)
	assert.Len(t, snap.PrivateKeyHex, 64)
	assert.Len(t, snap.SignatureHex, 130)
	assert.Regexp(t, "^0x[0-9a-fA-F]{40}$", snap.Address)
	assert.Equal(t, transaction.BuildFingerprint(scenarioRecord).Hex(), snap.FingerprintHex)
	assert.Equal(t, "0x"+snap.DigestHex, ethcrypto.Keccak256Hash(transaction.BuildFingerprint(scenarioRecord)).Hex())
	assert.NotEqual(t, snap.FingerprintHex, snap.DigestHex)
	assert.True(t, snap.Verified)
}
