package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/Layr-Labs/eigenx-txsign-go/pkg/config"
)

func main() {
	// Must run before flag parsing so EnvVars see the file's values
	if err := loadDotEnv(); err != nil {
		log.Fatal(err)
	}
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	schemeFlag := &cli.StringFlag{
		Name:     "scheme",
		Usage:    "Signature scheme: eddsa25519 (Solana) or ecdsa-secp256k1 (Ethereum)",
		Required: true,
	}

	return &cli.App{
		Name:  "txsign",
		Usage: "Walk a transaction through key generation, fingerprinting, signing and verification",
		Description: `A local demonstration of how blockchain transactions are signed.

txsign can:
- Generate EdDSA25519 and ECDSA-secp256k1 key pairs
- Build the canonical fingerprint of a transaction record
- Sign and verify fingerprints
- Record finished runs as transcripts and commit them into a merkle root`,
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "YAML config file; flags and env vars override its values",
				EnvVars: []string{config.EnvTxSignConfigFile},
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "Enable debug logging",
				EnvVars: []string{config.EnvTxSignDebug},
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log format: json, console or logfmt",
				Value:   "json",
				EnvVars: []string{config.EnvTxSignLogFormat},
			},
			&cli.StringFlag{
				Name:    "store",
				Usage:   "Transcript store: " + config.GetSupportedStoreTypesString(),
				Value:   string(config.StoreTypeNone),
				EnvVars: []string{config.EnvTxSignStore},
			},
			&cli.StringFlag{
				Name:    "data-path",
				Usage:   "Directory of the badger or bolt transcript store",
				Value:   config.DefaultDataPath,
				EnvVars: []string{config.EnvTxSignDataPath},
			},
			&cli.StringFlag{
				Name:    "redis-address",
				Usage:   "Redis server address (host:port)",
				Value:   config.DefaultRedisAddress,
				EnvVars: []string{config.EnvTxSignRedisAddress},
			},
			&cli.StringFlag{
				Name:    "redis-password",
				Usage:   "Redis password",
				EnvVars: []string{config.EnvTxSignRedisPassword},
			},
			&cli.IntFlag{
				Name:    "redis-db",
				Usage:   "Redis database number (0-15)",
				EnvVars: []string{config.EnvTxSignRedisDB},
			},
			&cli.StringFlag{
				Name:    "redis-key-prefix",
				Usage:   "Prefix for every Redis key",
				Value:   config.DefaultRedisKeyPrefix,
				EnvVars: []string{config.EnvTxSignRedisKeyPrefix},
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "keygen",
				Usage:  "Generate a key pair",
				Flags:  []cli.Flag{schemeFlag},
				Action: keygenCommand,
			},
			{
				Name:   "fingerprint",
				Usage:  "Build the fingerprint of a transaction record",
				Flags:  recordFlags(),
				Action: fingerprintCommand,
			},
			{
				Name:  "sign",
				Usage: "Sign a fingerprint",
				Flags: []cli.Flag{
					schemeFlag,
					&cli.StringFlag{
						Name:     "fingerprint",
						Usage:    "Fingerprint text (hex)",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "private-key",
						Usage:    "Private key (hex, optional 0x prefix)",
						Required: true,
					},
				},
				Action: signCommand,
			},
			{
				Name:  "verify",
				Usage: "Verify a signature over a fingerprint",
				Flags: []cli.Flag{
					schemeFlag,
					&cli.StringFlag{
						Name:     "fingerprint",
						Usage:    "Fingerprint text (hex)",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "public-key",
						Usage:    "Public key (hex, optional 0x prefix)",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "signature",
						Usage:    "Signature (hex, optional 0x prefix)",
						Required: true,
					},
				},
				Action: verifyCommand,
			},
			{
				Name:  "demo",
				Usage: "Run the full lifecycle for one or more schemes",
				Flags: append(recordFlags(),
					&cli.StringSliceFlag{
						Name:  "scheme",
						Usage: "Scheme to demonstrate (repeatable, default: all)",
					},
					&cli.BoolFlag{
						Name:  "record",
						Usage: "Save a transcript of each finished run to the configured store",
					},
				),
				Action: demoCommand,
			},
			{
				Name:  "transcripts",
				Usage: "Inspect stored transcripts",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List transcripts by creation time",
						Action: transcriptsListCommand,
					},
					{
						Name:   "show",
						Usage:  "Show one transcript",
						Flags:  []cli.Flag{transcriptIdFlag()},
						Action: transcriptsShowCommand,
					},
					{
						Name:   "verify",
						Usage:  "Re-verify a stored transcript",
						Flags:  []cli.Flag{transcriptIdFlag()},
						Action: transcriptsVerifyCommand,
					},
					{
						Name:   "root",
						Usage:  "Print the merkle root over all transcripts",
						Action: transcriptsRootCommand,
					},
					{
						Name:   "proof",
						Usage:  "Print the inclusion proof of a transcript",
						Flags:  []cli.Flag{transcriptIdFlag()},
						Action: transcriptsProofCommand,
					},
					{
						Name:   "delete",
						Usage:  "Delete a transcript",
						Flags:  []cli.Flag{transcriptIdFlag()},
						Action: transcriptsDeleteCommand,
					},
				},
			},
		},
	}
}

func recordFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "recipient",
			Usage: "Recipient address",
		},
		&cli.Float64Flag{
			Name:  "amount",
			Usage: "Amount to send",
		},
		&cli.StringFlag{
			Name:    "param",
			Aliases: []string{"blockchain-param"},
			Usage:   "Latest block hash (Solana) or gas price (Ethereum)",
		},
	}
}

func transcriptIdFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "id",
		Usage:    "Transcript id",
		Required: true,
	}
}
