package lifecycle

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Layr-Labs/eigenx-txsign-go/internal/keyGenerator"
	"github.com/Layr-Labs/eigenx-txsign-go/pkg/transactionSigner"
	"github.com/Layr-Labs/eigenx-txsign-go/pkg/types"
)

// Demo owns one independent Controller per supported scheme.
type Demo struct {
	controllers map[types.Scheme]*Controller
}

func NewDemo(
	generator keyGenerator.IKeyGenerator,
	signer transactionSigner.ITransactionSigner,
	logger *zap.Logger,
) (*Demo, error) {
	d := &Demo{controllers: make(map[types.Scheme]*Controller)}
	for _, scheme := range types.SupportedSchemes() {
		c, err := NewController(scheme, generator, signer, logger)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to create %s controller", scheme)
		}
		d.controllers[scheme] = c
	}
	return d, nil
}

// Controller returns the lifecycle for scheme.
func (d *Demo) Controller(scheme types.Scheme) (*Controller, error) {
	c, ok := d.controllers[scheme]
	if !ok {
		return nil, errors.Wrapf(types.ErrUnsupportedScheme, "%q", scheme)
	}
	return c, nil
}

// Snapshots returns the view of every lifecycle in demonstration order.
func (d *Demo) Snapshots() []*Snapshot {
	out := make([]*Snapshot, 0, len(d.controllers))
	for _, scheme := range types.SupportedSchemes() {
		out = append(out, d.controllers[scheme].Snapshot())
	}
	return out
}
