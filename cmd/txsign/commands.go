package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Layr-Labs/eigenx-txsign-go/internal/keyGenerator/localKeyGenerator"
	"github.com/Layr-Labs/eigenx-txsign-go/pkg/config"
	"github.com/Layr-Labs/eigenx-txsign-go/pkg/lifecycle"
	"github.com/Layr-Labs/eigenx-txsign-go/pkg/logger"
	"github.com/Layr-Labs/eigenx-txsign-go/pkg/merkle"
	"github.com/Layr-Labs/eigenx-txsign-go/pkg/persistence"
	"github.com/Layr-Labs/eigenx-txsign-go/pkg/persistence/store"
	"github.com/Layr-Labs/eigenx-txsign-go/pkg/transactionSigner"
	"github.com/Layr-Labs/eigenx-txsign-go/pkg/txsign"
	"github.com/Layr-Labs/eigenx-txsign-go/pkg/types"
	"github.com/Layr-Labs/eigenx-txsign-go/pkg/util"
)

// abbreviateAt matches how much of each value the demo page showed
const abbreviateAt = 20

// buildConfig layers the config file, then explicitly set flags or env vars, over the defaults
func buildConfig(c *cli.Context) (*config.TxSignConfig, error) {
	cfg := config.NewDefaultConfig()
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = config.LoadFile(path); err != nil {
			return nil, err
		}
	}

	if c.IsSet("debug") {
		cfg.Debug = c.Bool("debug")
	}
	if c.IsSet("log-format") {
		cfg.LogFormat = c.String("log-format")
	}
	if c.IsSet("store") {
		storeType, err := config.ParseStoreType(c.String("store"))
		if err != nil {
			return nil, err
		}
		cfg.StoreType = storeType
	}
	if c.IsSet("data-path") {
		cfg.DataPath = c.String("data-path")
	}
	if c.IsSet("redis-address") {
		cfg.Redis.Address = c.String("redis-address")
	}
	if c.IsSet("redis-password") {
		cfg.Redis.Password = c.String("redis-password")
	}
	if c.IsSet("redis-db") {
		cfg.Redis.DB = c.Int("redis-db")
	}
	if c.IsSet("redis-key-prefix") {
		cfg.Redis.KeyPrefix = c.String("redis-key-prefix")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// setup builds the config and the logger every command needs
func setup(c *cli.Context) (*config.TxSignConfig, *zap.Logger, error) {
	cfg, err := buildConfig(c)
	if err != nil {
		return nil, nil, err
	}
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: cfg.Debug, Format: cfg.LogFormat})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, l, nil
}

func createLogger(c *cli.Context) (*zap.Logger, error) {
	_, l, err := setup(c)
	return l, err
}

// openStore opens the configured transcript store; it fails when none is configured
func openStore(cfg *config.TxSignConfig, l *zap.Logger) (persistence.ITranscriptPersistence, error) {
	if !cfg.HasStore() {
		return nil, fmt.Errorf("no transcript store configured, set --store or %s", config.EnvTxSignStore)
	}
	return store.NewTranscriptPersistence(cfg, l)
}

// loadDotEnv loads TXSIGN_* variables from the file named by TXSIGN_ENV_FILE, or from
// ./.env when present. Variables already in the environment win.
func loadDotEnv() error {
	path := os.Getenv(config.EnvTxSignEnvFile)
	if path == "" {
		path = ".env"
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return nil
		}
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

func recordFromFlags(c *cli.Context) types.TransactionRecord {
	return types.TransactionRecord{
		Recipient:   c.String("recipient"),
		Amount:      c.Float64("amount"),
		SchemeParam: c.String("param"),
	}
}

func schemeFromFlag(c *cli.Context) (types.Scheme, error) {
	return types.ParseScheme(c.String("scheme"))
}

// keygenCommand handles the keygen subcommand
func keygenCommand(c *cli.Context) error {
	scheme, err := schemeFromFlag(c)
	if err != nil {
		return err
	}
	l, err := createLogger(c)
	if err != nil {
		return err
	}

	kp, err := txsign.New(l).GenerateKeyPair(c.Context, scheme)
	if err != nil {
		return fmt.Errorf("failed to generate key pair: %w", err)
	}

	w := c.App.Writer
	fmt.Fprintf(w, "🔑 %s key pair (%s)\n", scheme, scheme.ChainLabel())
	fmt.Fprintf(w, "Key ID:      %s\n", kp.KeyId)
	fmt.Fprintf(w, "Private Key: %s\n", kp.PrivateKeyHex)
	fmt.Fprintf(w, "Public Key:  %s\n", kp.PublicKeyHex)
	fmt.Fprintf(w, "Address:     %s\n", kp.Address)
	return nil
}

// fingerprintCommand handles the fingerprint subcommand
func fingerprintCommand(c *cli.Context) error {
	l, err := createLogger(c)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, txsign.New(l).BuildFingerprint(recordFromFlags(c)))
	return nil
}

// hexFlag reads a key or signature flag, dropping the 0x prefix users paste from
// Ethereum tooling. Fingerprint text is the signed message and is passed through as is.
func hexFlag(c *cli.Context, name string) string {
	v := strings.TrimSpace(c.String(name))
	if len(v) >= 2 && v[0] == '0' && (v[1] == 'x' || v[1] == 'X') {
		return v[2:]
	}
	return v
}

// signCommand handles the sign subcommand
func signCommand(c *cli.Context) error {
	scheme, err := schemeFromFlag(c)
	if err != nil {
		return err
	}
	l, err := createLogger(c)
	if err != nil {
		return err
	}

	sig, err := txsign.New(l).Sign(c.String("fingerprint"), hexFlag(c, "private-key"), scheme)
	if err != nil {
		return fmt.Errorf("failed to sign: %w", err)
	}
	fmt.Fprintln(c.App.Writer, sig)
	return nil
}

// verifyCommand handles the verify subcommand
func verifyCommand(c *cli.Context) error {
	scheme, err := schemeFromFlag(c)
	if err != nil {
		return err
	}
	l, err := createLogger(c)
	if err != nil {
		return err
	}

	ok, err := txsign.New(l).Verify(hexFlag(c, "signature"), c.String("fingerprint"), hexFlag(c, "public-key"), scheme)
	if err != nil {
		return fmt.Errorf("failed to verify: %w", err)
	}
	printVerification(c.App.Writer, ok)
	if !ok {
		return cli.Exit("", 1)
	}
	return nil
}

func printVerification(w io.Writer, ok bool) {
	if ok {
		fmt.Fprintln(w, "✅ Signature Verified!")
	} else {
		fmt.Fprintln(w, "❌ Verification Failed")
	}
}

// demoCommand runs every requested scheme through the full lifecycle. The lifecycles are
// independent, so they run concurrently and their output is printed in scheme order.
func demoCommand(c *cli.Context) error {
	cfg, l, err := setup(c)
	if err != nil {
		return err
	}

	schemes, err := parseSchemes(c.StringSlice("scheme"))
	if err != nil {
		return err
	}

	var transcripts persistence.ITranscriptPersistence
	if c.Bool("record") {
		transcripts, err = openStore(cfg, l)
		if err != nil {
			return err
		}
		defer func() { _ = transcripts.Close() }()
	}

	demo, err := lifecycle.NewDemo(localKeyGenerator.NewLocalKeyGenerator(l), transactionSigner.NewTransactionSigner(l), l)
	if err != nil {
		return err
	}

	record := recordFromFlags(c)
	outputs := make([]bytes.Buffer, len(schemes))
	g, ctx := errgroup.WithContext(c.Context)
	for i, scheme := range schemes {
		controller, err := demo.Controller(scheme)
		if err != nil {
			return err
		}
		out := &outputs[i]
		g.Go(func() error {
			if err := runDemo(ctx, out, controller, record); err != nil {
				return fmt.Errorf("%s lifecycle failed: %w", controller.Scheme(), err)
			}
			return nil
		})
	}
	err = g.Wait()
	for i := range outputs {
		_, _ = outputs[i].WriteTo(c.App.Writer)
	}
	if err != nil {
		return err
	}

	if transcripts == nil {
		return nil
	}
	for _, scheme := range schemes {
		controller, _ := demo.Controller(scheme)
		t, err := lifecycle.NewTranscript(controller.State())
		if err != nil {
			return err
		}
		if err := transcripts.SaveTranscript(t); err != nil {
			return fmt.Errorf("failed to save transcript: %w", err)
		}
		fmt.Fprintf(c.App.Writer, "📝 Transcript saved: %s\n", t.Id)
	}
	return nil
}

// parseSchemes resolves scheme names and aliases in order, dropping repeats so that each
// scheme gets exactly one controller. No names means every supported scheme.
func parseSchemes(names []string) ([]types.Scheme, error) {
	if len(names) == 0 {
		return types.SupportedSchemes(), nil
	}
	schemes := make([]types.Scheme, 0, len(names))
	seen := make(map[types.Scheme]bool, len(names))
	for _, name := range names {
		s, err := types.ParseScheme(name)
		if err != nil {
			return nil, err
		}
		if seen[s] {
			continue
		}
		seen[s] = true
		schemes = append(schemes, s)
	}
	return schemes, nil
}

func runDemo(ctx context.Context, w io.Writer, controller *lifecycle.Controller, record types.TransactionRecord) error {
	scheme := controller.Scheme()

	fmt.Fprintf(w, "\n=== %s (%s) ===\n", scheme.ChainLabel(), scheme)

	if err := controller.GenerateKeys(ctx); err != nil {
		return err
	}
	snap := controller.Snapshot()
	fmt.Fprintln(w, "Step 1: Generate Keys")
	fmt.Fprintf(w, "  Private Key: %s\n", util.Abbreviate(snap.PrivateKeyHex, abbreviateAt))
	fmt.Fprintf(w, "  Public Key:  %s\n", util.Abbreviate(snap.PublicKeyHex, abbreviateAt))
	fmt.Fprintf(w, "  Address:     %s\n", snap.Address)

	if err := controller.BuildTransaction(ctx, record); err != nil {
		return err
	}
	snap = controller.Snapshot()
	fmt.Fprintln(w, "Step 2: Build Transaction")
	fmt.Fprintf(w, "  Recipient:   %s\n", record.Recipient)
	fmt.Fprintf(w, "  Amount:      %v\n", record.Amount)
	fmt.Fprintf(w, "  %s: %s\n", snap.ParamLabel, record.SchemeParam)
	fmt.Fprintf(w, "  Fingerprint: %s\n", util.Abbreviate(snap.FingerprintHex, 2*abbreviateAt))
	fmt.Fprintf(w, "  Digest:      %s (keccak256, informational, not signed)\n", util.Abbreviate(snap.DigestHex, 2*abbreviateAt))

	if err := controller.Sign(ctx); err != nil {
		return err
	}
	snap = controller.Snapshot()
	fmt.Fprintln(w, "Step 3: Sign Transaction")
	fmt.Fprintf(w, "  Signature:   %s\n", util.Abbreviate(snap.SignatureHex, abbreviateAt))

	if _, err := controller.Verify(ctx); err != nil {
		return err
	}
	snap = controller.Snapshot()
	fmt.Fprintln(w, "Step 4: Verify Signature")
	fmt.Fprint(w, "  ")
	printVerification(w, snap.Verified)
	return nil
}

func withStore(c *cli.Context, fn func(p persistence.ITranscriptPersistence, l *zap.Logger) error) error {
	cfg, l, err := setup(c)
	if err != nil {
		return err
	}
	p, err := openStore(cfg, l)
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()
	return fn(p, l)
}

func loadTranscript(p persistence.ITranscriptPersistence, id string) (*types.Transcript, error) {
	t, err := p.LoadTranscript(id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("transcript %s not found", id)
	}
	return t, nil
}

// transcriptsListCommand prints one line per stored transcript
func transcriptsListCommand(c *cli.Context) error {
	return withStore(c, func(p persistence.ITranscriptPersistence, _ *zap.Logger) error {
		all, err := p.ListTranscripts()
		if err != nil {
			return err
		}
		if len(all) == 0 {
			fmt.Fprintln(c.App.Writer, "No transcripts stored")
			return nil
		}
		for _, t := range all {
			fmt.Fprintf(c.App.Writer, "%s  %s  %-16s verified=%t  %s\n",
				t.Id, t.CreatedAt.Format("2006-01-02T15:04:05Z07:00"), t.Scheme, t.Verified,
				util.Abbreviate(t.SignatureHex, abbreviateAt))
		}
		return nil
	})
}

// transcriptsShowCommand prints a transcript as indented JSON
func transcriptsShowCommand(c *cli.Context) error {
	return withStore(c, func(p persistence.ITranscriptPersistence, _ *zap.Logger) error {
		t, err := loadTranscript(p, c.String("id"))
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(t, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, string(data))
		return nil
	})
}

// transcriptsVerifyCommand re-runs verification from the stored hex fields
func transcriptsVerifyCommand(c *cli.Context) error {
	return withStore(c, func(p persistence.ITranscriptPersistence, l *zap.Logger) error {
		t, err := loadTranscript(p, c.String("id"))
		if err != nil {
			return err
		}
		ok, err := lifecycle.Reverify(transactionSigner.NewTransactionSigner(l), t)
		if err != nil {
			return err
		}
		printVerification(c.App.Writer, ok)
		if !ok {
			return cli.Exit("", 1)
		}
		return nil
	})
}

// transcriptsRootCommand prints the merkle root over every stored transcript
func transcriptsRootCommand(c *cli.Context) error {
	return withStore(c, func(p persistence.ITranscriptPersistence, _ *zap.Logger) error {
		all, err := p.ListTranscripts()
		if err != nil {
			return err
		}
		tree, err := merkle.BuildMerkleTree(all)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "Transcripts: %d\n", len(tree.Leaves))
		fmt.Fprintf(c.App.Writer, "Root:        %s\n", util.EncodeHex(tree.Root[:]))
		return nil
	})
}

// transcriptsProofCommand prints the inclusion proof of one transcript
func transcriptsProofCommand(c *cli.Context) error {
	return withStore(c, func(p persistence.ITranscriptPersistence, _ *zap.Logger) error {
		all, err := p.ListTranscripts()
		if err != nil {
			return err
		}
		tree, err := merkle.BuildMerkleTree(all)
		if err != nil {
			return err
		}
		proof, err := tree.GenerateProofForId(c.String("id"))
		if err != nil {
			return err
		}

		w := c.App.Writer
		fmt.Fprintf(w, "Root:       %s\n", util.EncodeHex(tree.Root[:]))
		fmt.Fprintf(w, "Leaf index: %d\n", proof.LeafIndex)
		fmt.Fprintf(w, "Leaf:       %s\n", util.EncodeHex(proof.Leaf[:]))
		for i, sibling := range proof.Proof {
			fmt.Fprintf(w, "Sibling %d:  %s\n", i, util.EncodeHex(sibling[:]))
		}
		if merkle.VerifyProof(proof, tree.Root) {
			fmt.Fprintln(w, "✅ Proof valid")
		} else {
			fmt.Fprintln(w, "❌ Proof invalid")
		}
		return nil
	})
}

// transcriptsDeleteCommand removes one transcript
func transcriptsDeleteCommand(c *cli.Context) error {
	return withStore(c, func(p persistence.ITranscriptPersistence, _ *zap.Logger) error {
		if err := p.DeleteTranscript(c.String("id")); err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "🗑️  Deleted transcript %s\n", c.String("id"))
		return nil
	})
}
