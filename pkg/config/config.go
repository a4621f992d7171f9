package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
	"k8s.io/apimachinery/pkg/util/validation/field"
)

// Environment variable names for txsign configuration
const (
	EnvTxSignConfigFile     = "TXSIGN_CONFIG"
	EnvTxSignEnvFile        = "TXSIGN_ENV_FILE"
	EnvTxSignDebug          = "TXSIGN_DEBUG"
	EnvTxSignLogFormat      = "TXSIGN_LOG_FORMAT"
	EnvTxSignStore          = "TXSIGN_STORE"
	EnvTxSignDataPath       = "TXSIGN_DATA_PATH"
	EnvTxSignRedisAddress   = "TXSIGN_REDIS_ADDRESS"
	EnvTxSignRedisPassword  = "TXSIGN_REDIS_PASSWORD"
	EnvTxSignRedisDB        = "TXSIGN_REDIS_DB"
	EnvTxSignRedisKeyPrefix = "TXSIGN_REDIS_KEY_PREFIX"
)

type StoreType string

func (s StoreType) String() string {
	return string(s)
}

const (
	StoreTypeNone   StoreType = "none"
	StoreTypeMemory StoreType = "memory"
	StoreTypeBadger StoreType = "badger"
	StoreTypeRedis  StoreType = "redis"
	StoreTypeBolt   StoreType = "bolt"
)

var supportedStoreTypes = []string{
	string(StoreTypeNone),
	string(StoreTypeMemory),
	string(StoreTypeBadger),
	string(StoreTypeBolt),
	string(StoreTypeRedis),
}

// ParseStoreType converts a flag value into a StoreType. An empty value means no store.
func ParseStoreType(s string) (StoreType, error) {
	switch StoreType(strings.ToLower(strings.TrimSpace(s))) {
	case "", StoreTypeNone:
		return StoreTypeNone, nil
	case StoreTypeMemory:
		return StoreTypeMemory, nil
	case StoreTypeBadger:
		return StoreTypeBadger, nil
	case StoreTypeRedis:
		return StoreTypeRedis, nil
	case StoreTypeBolt:
		return StoreTypeBolt, nil
	default:
		return "", fmt.Errorf("unsupported store type: %s", s)
	}
}

// GetSupportedStoreTypesString returns the store types for CLI help
func GetSupportedStoreTypesString() string {
	return strings.Join(supportedStoreTypes, ", ")
}

const (
	DefaultDataPath       = "./txsign-data"
	DefaultRedisAddress   = "localhost:6379"
	DefaultRedisKeyPrefix = "txsign:"
)

type RedisConfig struct {
	Address   string `json:"address" yaml:"address"`
	Password  string `json:"password" yaml:"password"`
	DB        int    `json:"db" yaml:"db"`
	KeyPrefix string `json:"keyPrefix" yaml:"keyPrefix"`
}

// TxSignConfig is the configuration of the txsign CLI
type TxSignConfig struct {
	Debug     bool   `json:"debug" yaml:"debug"`
	LogFormat string `json:"log_format" yaml:"logFormat"`

	// Transcript storage
	StoreType StoreType   `json:"store_type" yaml:"store"`
	DataPath  string      `json:"data_path" yaml:"dataPath"` // badger or bolt location
	Redis     RedisConfig `json:"redis" yaml:"redis"`
}

// NewDefaultConfig returns a config with no transcript store
func NewDefaultConfig() *TxSignConfig {
	return &TxSignConfig{
		StoreType: StoreTypeNone,
		DataPath:  DefaultDataPath,
		Redis: RedisConfig{
			Address:   DefaultRedisAddress,
			KeyPrefix: DefaultRedisKeyPrefix,
		},
	}
}

// Validate validates the txsign configuration
func (c *TxSignConfig) Validate() error {
	var allErrors field.ErrorList

	switch c.StoreType {
	case StoreTypeNone, StoreTypeMemory:
	case StoreTypeBadger, StoreTypeBolt:
		if c.DataPath == "" {
			allErrors = append(allErrors, field.Required(field.NewPath("dataPath"), fmt.Sprintf("dataPath is required for the %s store", c.StoreType)))
		}
	case StoreTypeRedis:
		allErrors = append(allErrors, c.Redis.validate(field.NewPath("redis"))...)
	default:
		allErrors = append(allErrors, field.NotSupported(field.NewPath("storeType"), c.StoreType, supportedStoreTypes))
	}

	switch c.LogFormat {
	case "", "json", "console", "logfmt":
	default:
		allErrors = append(allErrors, field.NotSupported(field.NewPath("logFormat"), c.LogFormat, []string{"json", "console", "logfmt"}))
	}

	if len(allErrors) > 0 {
		return allErrors.ToAggregate()
	}
	return nil
}

func (rc *RedisConfig) validate(path *field.Path) field.ErrorList {
	var allErrors field.ErrorList
	if rc.Address == "" {
		allErrors = append(allErrors, field.Required(path.Child("address"), "address is required"))
	}
	if rc.DB < 0 || rc.DB > 15 {
		allErrors = append(allErrors, field.Invalid(path.Child("db"), rc.DB, "db must be between 0-15"))
	}
	return allErrors
}

// HasStore reports whether transcripts should be persisted
func (c *TxSignConfig) HasStore() bool {
	return c.StoreType != "" && c.StoreType != StoreTypeNone
}

// LoadFile reads a YAML config file on top of the defaults.
func LoadFile(path string) (*TxSignConfig, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := NewDefaultConfig()
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
	}

	storeType, err := ParseStoreType(string(cfg.StoreType))
	if err != nil {
		return nil, err
	}
	cfg.StoreType = storeType

	return cfg, nil
}
