package types

import "time"

// Transcript is the public record of a finished lifecycle run.
// It never carries private key material.
type Transcript struct {
	Id             string            `json:"id"`
	Scheme         Scheme            `json:"scheme"`
	KeyId          string            `json:"keyId"`
	PublicKeyHex   string            `json:"publicKey"`
	Transaction    TransactionRecord `json:"transaction"`
	FingerprintHex string            `json:"fingerprint"`
	SignatureHex   string            `json:"signature"`
	Verified       bool              `json:"verified"`
	CreatedAt      time.Time         `json:"createdAt"`
}
