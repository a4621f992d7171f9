package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStoreType(t *testing.T) {
	tests := []struct {
		input   string
		want    StoreType
		wantErr bool
	}{
		{"", StoreTypeNone, false},
		{"none", StoreTypeNone, false},
		{"memory", StoreTypeMemory, false},
		{" Badger ", StoreTypeBadger, false},
		{"REDIS", StoreTypeRedis, false},
		{"bolt", StoreTypeBolt, false},
		{"postgres", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseStoreType(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTxSignConfig_Validate(t *testing.T) {
	t.Run("default config is valid", func(t *testing.T) {
		cfg := NewDefaultConfig()
		require.NoError(t, cfg.Validate())
		assert.False(t, cfg.HasStore())
	})

	t.Run("badger requires a data path", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.StoreType = StoreTypeBadger
		cfg.DataPath = ""
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "dataPath")

		cfg.DataPath = t.TempDir()
		require.NoError(t, cfg.Validate())
		assert.True(t, cfg.HasStore())
	})

	t.Run("redis errors are aggregated", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.StoreType = StoreTypeRedis
		cfg.Redis.Address = ""
		cfg.Redis.DB = 16
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "redis.address")
		assert.Contains(t, err.Error(), "redis.db")
	})

	t.Run("unknown store type", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.StoreType = StoreType("postgres")
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storeType")
	})
}

func TestTxSignConfig_ValidateLogFormat(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.LogFormat = "logfmt"
	require.NoError(t, cfg.Validate())

	cfg.LogFormat = "xml"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logFormat")
}

func TestLoadFile(t *testing.T) {
	writeFile := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "txsign.yaml")
		require.NoError(t, os.WriteFile(path, []byte(content), 0600))
		return path
	}

	t.Run("full file", func(t *testing.T) {
		path := writeFile(t, `
debug: true
logFormat: console
store: Redis
redis:
  address: redis.internal:6380
  db: 3
  keyPrefix: "demo:"
`)
		cfg, err := LoadFile(path)
		require.NoError(t, err)
		assert.True(t, cfg.Debug)
		assert.Equal(t, "console", cfg.LogFormat)
		assert.Equal(t, StoreTypeRedis, cfg.StoreType)
		assert.Equal(t, "redis.internal:6380", cfg.Redis.Address)
		assert.Equal(t, 3, cfg.Redis.DB)
		assert.Equal(t, "demo:", cfg.Redis.KeyPrefix)
		assert.Equal(t, DefaultDataPath, cfg.DataPath)
		require.NoError(t, cfg.Validate())
	})

	t.Run("empty file keeps defaults", func(t *testing.T) {
		cfg, err := LoadFile(writeFile(t, ""))
		require.NoError(t, err)
		assert.Equal(t, NewDefaultConfig(), cfg)
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := LoadFile(writeFile(t, "stores: badger\n"))
		require.Error(t, err)
	})

	t.Run("unknown store", func(t *testing.T) {
		_, err := LoadFile(writeFile(t, "store: postgres\n"))
		require.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
	})
}
