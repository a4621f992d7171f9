package types

import "errors"

// Component errors. All are recoverable by the caller; a lifecycle run stays at its
// current step when one is returned.
var (
	ErrMalformedHex             = errors.New("malformed hex")
	ErrEntropySourceUnavailable = errors.New("entropy source unavailable")
	ErrInvalidPrivateKey        = errors.New("invalid private key")
	ErrMalformedSignature       = errors.New("malformed signature")
	ErrMalformedKey             = errors.New("malformed public key")
	ErrUnsupportedScheme        = errors.New("unsupported scheme")
)

// Lifecycle controller errors.
var (
	ErrStepOutOfOrder = errors.New("lifecycle step out of order")
	ErrStepInProgress = errors.New("lifecycle step already in progress")
)
