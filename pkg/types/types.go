package types

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// Scheme identifies one of the two supported signature schemes.
type Scheme string

func (s Scheme) String() string {
	return string(s)
}

const (
	SchemeUnknown        Scheme = "unknown"
	SchemeEdDSA25519     Scheme = "eddsa25519"
	SchemeECDSASecp256k1 Scheme = "ecdsa-secp256k1"
)

// ParamLabel returns the display label of the scheme-dependent transaction parameter.
func (s Scheme) ParamLabel() string {
	switch s {
	case SchemeEdDSA25519:
		return "Latest Block Hash"
	case SchemeECDSASecp256k1:
		return "Gas Price"
	default:
		return "Parameter"
	}
}

// ChainLabel is the blockchain the scheme was demonstrated against.
func (s Scheme) ChainLabel() string {
	switch s {
	case SchemeEdDSA25519:
		return "Solana"
	case SchemeECDSASecp256k1:
		return "Ethereum"
	default:
		return "Unknown"
	}
}

// Valid reports whether s is one of the supported schemes.
func (s Scheme) Valid() bool {
	return s == SchemeEdDSA25519 || s == SchemeECDSASecp256k1
}

// ParseScheme accepts the canonical scheme names as well as the curve and chain aliases.
func ParseScheme(name string) (Scheme, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case string(SchemeEdDSA25519), "eddsa", "ed25519", "solana":
		return SchemeEdDSA25519, nil
	case string(SchemeECDSASecp256k1), "ecdsa", "secp256k1", "ethereum":
		return SchemeECDSASecp256k1, nil
	default:
		return SchemeUnknown, fmt.Errorf("%w: %q", ErrUnsupportedScheme, name)
	}
}

// SupportedSchemes returns the schemes in the order they are demonstrated.
func SupportedSchemes() []Scheme {
	return []Scheme{SchemeEdDSA25519, SchemeECDSASecp256k1}
}

// KeyPair holds a locally generated keypair.
// PublicKey is always the derivation of PrivateKey under Scheme.
type KeyPair struct {
	KeyId      string
	Scheme     Scheme
	PrivateKey []byte
	PublicKey  []byte
}

func (kp *KeyPair) PrivateKeyHex() string {
	return hex.EncodeToString(kp.PrivateKey)
}

func (kp *KeyPair) PublicKeyHex() string {
	return hex.EncodeToString(kp.PublicKey)
}

// Copy returns a deep copy of the keypair.
func (kp *KeyPair) Copy() *KeyPair {
	if kp == nil {
		return nil
	}
	return &KeyPair{
		KeyId:      kp.KeyId,
		Scheme:     kp.Scheme,
		PrivateKey: bytes.Clone(kp.PrivateKey),
		PublicKey:  bytes.Clone(kp.PublicKey),
	}
}

// TransactionRecord is the transfer being signed. SchemeParam carries the latest block hash
// for EdDSA and the gas price for ECDSA; it is opaque to the encoder.
type TransactionRecord struct {
	Recipient   string
	Amount      float64
	SchemeParam string
}

type transactionRecordJSON struct {
	Recipient   string   `json:"recipient"`
	Amount      *float64 `json:"amount"`
	SchemeParam string   `json:"blockchainParam"`
}

// MarshalJSON stores a non-finite amount as null, matching the canonical encoding.
func (r TransactionRecord) MarshalJSON() ([]byte, error) {
	out := transactionRecordJSON{Recipient: r.Recipient, SchemeParam: r.SchemeParam}
	if !math.IsNaN(r.Amount) && !math.IsInf(r.Amount, 0) {
		amount := r.Amount
		out.Amount = &amount
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads a null amount back as NaN.
func (r *TransactionRecord) UnmarshalJSON(data []byte) error {
	var in transactionRecordJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	r.Recipient = in.Recipient
	r.SchemeParam = in.SchemeParam
	r.Amount = math.NaN()
	if in.Amount != nil {
		r.Amount = *in.Amount
	}
	return nil
}

// Fingerprint is the canonical encoding of a TransactionRecord.
//
// It is NOT a cryptographic digest: the hex text of these bytes is what gets signed.
// Digest shows what a production system would sign instead.
type Fingerprint []byte

// Hex returns the text form that the signer and verifier operate on.
func (f Fingerprint) Hex() string {
	return hex.EncodeToString(f)
}

// Digest returns keccak256 over the canonical bytes. Informational only.
func (f Fingerprint) Digest() [32]byte {
	return crypto.Keccak256Hash(f)
}

// Signature is a scheme-specific signature over a fingerprint's hex text.
type Signature []byte

func (s Signature) Hex() string {
	return hex.EncodeToString(s)
}

// Step is the position of a lifecycle run.
type Step int

const (
	StepInit      Step = 1
	StepKeysReady Step = 2
	StepTxBuilt   Step = 3
	StepSigned    Step = 4
	StepVerified  Step = 5
)

func (s Step) String() string {
	switch s {
	case StepInit:
		return "init"
	case StepKeysReady:
		return "keys-ready"
	case StepTxBuilt:
		return "tx-built"
	case StepSigned:
		return "signed"
	case StepVerified:
		return "verified"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// LifecycleState is the state of one scheme's lifecycle run.
type LifecycleState struct {
	Scheme      Scheme
	Step        Step
	Keys        *KeyPair
	Transaction *TransactionRecord
	Fingerprint Fingerprint
	Signature   Signature
	Verified    bool
}

// Copy returns a deep copy of the state.
func (s *LifecycleState) Copy() *LifecycleState {
	if s == nil {
		return nil
	}
	out := &LifecycleState{
		Scheme:      s.Scheme,
		Step:        s.Step,
		Keys:        s.Keys.Copy(),
		Fingerprint: bytes.Clone(s.Fingerprint),
		Signature:   bytes.Clone(s.Signature),
		Verified:    s.Verified,
	}
	if s.Transaction != nil {
		tx := *s.Transaction
		out.Transaction = &tx
	}
	return out
}
