package lifecycle

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Layr-Labs/eigenx-txsign-go/internal/keyGenerator"
	"github.com/Layr-Labs/eigenx-txsign-go/pkg/transaction"
	"github.com/Layr-Labs/eigenx-txsign-go/pkg/transactionSigner"
	"github.com/Layr-Labs/eigenx-txsign-go/pkg/types"
)

// Controller drives one scheme through generate -> build -> sign -> verify.
//
// Steps run strictly in order and one at a time. A step that fails leaves the state
// untouched so the caller can retry it.
type Controller struct {
	scheme    types.Scheme
	logger    *zap.Logger
	generator keyGenerator.IKeyGenerator
	signer    transactionSigner.ITransactionSigner

	mu    sync.Mutex
	busy  bool
	state *types.LifecycleState
}

func NewController(
	scheme types.Scheme,
	generator keyGenerator.IKeyGenerator,
	signer transactionSigner.ITransactionSigner,
	logger *zap.Logger,
) (*Controller, error) {
	if !scheme.Valid() {
		return nil, errors.Wrapf(types.ErrUnsupportedScheme, "%q", scheme)
	}
	if generator == nil {
		return nil, errors.New("key generator cannot be nil")
	}
	if signer == nil {
		return nil, errors.New("transaction signer cannot be nil")
	}
	return &Controller{
		scheme:    scheme,
		logger:    logger.With(zap.String("scheme", scheme.String())),
		generator: generator,
		signer:    signer,
		state:     initialState(scheme),
	}, nil
}

func initialState(scheme types.Scheme) *types.LifecycleState {
	return &types.LifecycleState{Scheme: scheme, Step: types.StepInit}
}

// Scheme returns the scheme this controller was created for.
func (c *Controller) Scheme() types.Scheme {
	return c.scheme
}

// State returns a deep copy of the current state.
func (c *Controller) State() *types.LifecycleState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Copy()
}

// Busy reports whether a step is currently running.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// GenerateKeys runs step 1 -> 2.
func (c *Controller) GenerateKeys(ctx context.Context) error {
	_, err := c.run(ctx, types.StepInit, func(s *types.LifecycleState) error {
		kp, err := c.generator.GenerateKeyPair(ctx, s.Scheme)
		if err != nil {
			return err
		}
		s.Keys = kp
		return nil
	})
	return err
}

// BuildTransaction freezes record and computes its fingerprint, running step 2 -> 3.
func (c *Controller) BuildTransaction(ctx context.Context, record types.TransactionRecord) error {
	_, err := c.run(ctx, types.StepKeysReady, func(s *types.LifecycleState) error {
		s.Transaction = &record
		s.Fingerprint = transaction.BuildFingerprint(record)
		return nil
	})
	return err
}

// Sign signs the fingerprint's hex text with the generated private key, running step 3 -> 4.
func (c *Controller) Sign(ctx context.Context) error {
	_, err := c.run(ctx, types.StepTxBuilt, func(s *types.LifecycleState) error {
		sig, err := c.signer.Sign(s.Fingerprint.Hex(), s.Keys.PrivateKey, s.Scheme)
		if err != nil {
			return err
		}
		s.Signature = sig
		return nil
	})
	return err
}

// Verify checks the signature and records the outcome, running step 4 -> 5.
// A mismatch is reported through the returned bool, not as an error.
func (c *Controller) Verify(ctx context.Context) (bool, error) {
	next, err := c.run(ctx, types.StepSigned, func(s *types.LifecycleState) error {
		ok, err := c.signer.Verify(s.Signature, s.Fingerprint.Hex(), s.Keys.PublicKey, s.Scheme)
		if err != nil {
			return err
		}
		s.Verified = ok
		return nil
	})
	if err != nil {
		return false, err
	}
	return next.Verified, nil
}

// Reset discards the current run and returns to step 1.
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return types.ErrStepInProgress
	}
	c.state = initialState(c.scheme)
	c.logger.Debug("Lifecycle reset")
	return nil
}

// run executes one transition. The step function works on a copy that is committed,
// with the step advanced, only if it succeeds.
func (c *Controller) run(ctx context.Context, expected types.Step, step func(s *types.LifecycleState) error) (*types.LifecycleState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return nil, errors.Wrapf(types.ErrStepInProgress, "cannot start %s", expected)
	}
	if c.state.Step != expected {
		current := c.state.Step
		c.mu.Unlock()
		return nil, errors.Wrapf(types.ErrStepOutOfOrder, "expected step %s, lifecycle is at %s", expected, current)
	}
	c.busy = true
	working := c.state.Copy()
	c.mu.Unlock()

	err := step(working)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	if err != nil {
		c.logger.Warn("Lifecycle step failed",
			zap.String("step", expected.String()),
			zap.Error(err),
		)
		return nil, err
	}
	working.Step = expected + 1
	c.state = working
	c.logger.Info("Lifecycle step completed",
		zap.String("from", expected.String()),
		zap.String("to", working.Step.String()),
	)
	return working.Copy(), nil
}
