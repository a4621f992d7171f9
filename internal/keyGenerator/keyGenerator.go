package keyGenerator

import (
	"context"

	"github.com/Layr-Labs/eigenx-txsign-go/pkg/types"
)

type IKeyGenerator interface {
	// GenerateKeyPair draws a fresh keypair for scheme from the generator's entropy source.
	GenerateKeyPair(ctx context.Context, scheme types.Scheme) (*types.KeyPair, error)
}
