package localKeyGenerator

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Layr-Labs/eigenx-txsign-go/internal/keyGenerator"
	"github.com/Layr-Labs/eigenx-txsign-go/pkg/crypto"
	"github.com/Layr-Labs/eigenx-txsign-go/pkg/types"
	"github.com/Layr-Labs/eigenx-txsign-go/pkg/util"
)

var _ keyGenerator.IKeyGenerator = (*LocalKeyGenerator)(nil)

// LocalKeyGenerator generates keys in-process from a secure entropy source.
// Private keys never leave the process through this type's logging.
type LocalKeyGenerator struct {
	logger  *zap.Logger
	entropy io.Reader

	mu        sync.Mutex
	generated int
}

func NewLocalKeyGenerator(logger *zap.Logger) *LocalKeyGenerator {
	return NewLocalKeyGeneratorWithEntropy(rand.Reader, logger)
}

// NewLocalKeyGeneratorWithEntropy uses entropy in place of crypto/rand.
// This is useful for testing entropy failures.
func NewLocalKeyGeneratorWithEntropy(entropy io.Reader, logger *zap.Logger) *LocalKeyGenerator {
	return &LocalKeyGenerator{
		logger:  logger,
		entropy: entropy,
	}
}

func (l *LocalKeyGenerator) GenerateKeyPair(ctx context.Context, scheme types.Scheme) (*types.KeyPair, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	impl, err := crypto.SchemeFor(scheme)
	if err != nil {
		return nil, err
	}

	// io.Reader implementations are not required to be safe for concurrent use
	l.mu.Lock()
	privateKey, err := impl.GeneratePrivateKey(l.entropy)
	if err == nil {
		l.generated++
	}
	l.mu.Unlock()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to generate %s private key", scheme)
	}

	publicKey, err := impl.DerivePublicKey(privateKey)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to derive %s public key", scheme)
	}

	keyId := fmt.Sprintf("local-key-%s", uuid.New().String())

	l.logger.Info("Generated local keypair",
		zap.String("keyId", keyId),
		zap.String("scheme", scheme.String()),
		zap.String("publicKey", util.EncodeHex(publicKey)),
	)

	return &types.KeyPair{
		KeyId:      keyId,
		Scheme:     scheme,
		PrivateKey: privateKey,
		PublicKey:  publicKey,
	}, nil
}

// GetKeyCount returns how many keypairs this generator has produced.
func (l *LocalKeyGenerator) GetKeyCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.generated
}
