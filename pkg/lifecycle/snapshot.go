package lifecycle

import (
	"github.com/Layr-Labs/eigenx-txsign-go/pkg/crypto"
	"github.com/Layr-Labs/eigenx-txsign-go/pkg/types"
	"github.com/Layr-Labs/eigenx-txsign-go/pkg/util"
)

// Snapshot is the text view of a lifecycle that a consumer renders.
// Byte fields are lowercase hex; empty strings mean the step has not run yet.
type Snapshot struct {
	Scheme         types.Scheme
	ChainLabel     string
	ParamLabel     string
	Step           types.Step
	Busy           bool
	KeyId          string
	PublicKeyHex   string
	PrivateKeyHex  string
	Address        string
	Transaction    *types.TransactionRecord
	FingerprintHex string
	// DigestHex is keccak256 of the canonical encoding, shown for contrast. It is never signed.
	DigestHex    string
	SignatureHex string
	Verified     bool
}

// Snapshot returns the current state rendered as text.
func (c *Controller) Snapshot() *Snapshot {
	c.mu.Lock()
	state := c.state.Copy()
	busy := c.busy
	c.mu.Unlock()

	snap := &Snapshot{
		Scheme:         state.Scheme,
		ChainLabel:     state.Scheme.ChainLabel(),
		ParamLabel:     state.Scheme.ParamLabel(),
		Step:           state.Step,
		Busy:           busy,
		Transaction:    state.Transaction,
		FingerprintHex: util.EncodeHex(state.Fingerprint),
		SignatureHex:   util.EncodeHex(state.Signature),
		Verified:       state.Verified,
	}
	if len(state.Fingerprint) > 0 {
		digest := state.Fingerprint.Digest()
		snap.DigestHex = util.EncodeHex(digest[:])
	}
	if state.Keys != nil {
		snap.KeyId = state.Keys.KeyId
		snap.PublicKeyHex = state.Keys.PublicKeyHex()
		snap.PrivateKeyHex = state.Keys.PrivateKeyHex()
		if impl, err := crypto.SchemeFor(state.Scheme); err == nil {
			snap.Address, _ = impl.Address(state.Keys.PublicKey)
		}
	}
	return snap
}

// Reached reports whether the lifecycle has completed up to step s, which is how the
// consumer decides which parts of the walkthrough to show.
func (s *Snapshot) Reached(step types.Step) bool {
	return s.Step >= step
}

// CanTrigger reports whether the action that starts step s is currently enabled.
func (s *Snapshot) CanTrigger(step types.Step) bool {
	return !s.Busy && s.Step == step
}
