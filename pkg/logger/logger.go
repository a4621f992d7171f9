package logger

import (
	"fmt"
	"os"

	zaplogfmt "github.com/jsternberg/zap-logfmt"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"
	FormatLogfmt  = "logfmt"
)

type LoggerConfig struct {
	Debug bool

	// Format is json (default), console or logfmt
	Format string

	// Output defaults to stderr
	Output zapcore.WriteSyncer
}

// NewLogger builds a zap logger. Debug lowers the level to debug and adds caller information.
func NewLogger(cfg *LoggerConfig) (*zap.Logger, error) {
	if cfg == nil {
		cfg = &LoggerConfig{}
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	switch cfg.Format {
	case "", FormatJSON:
		encoder = zapcore.NewJSONEncoder(encCfg)
	case FormatConsole:
		encoder = zapcore.NewConsoleEncoder(encCfg)
	case FormatLogfmt:
		encoder = zaplogfmt.NewEncoder(encCfg)
	default:
		return nil, fmt.Errorf("unsupported log format: %s", cfg.Format)
	}

	ws := cfg.Output
	if ws == nil {
		ws = zapcore.Lock(os.Stderr)
	}

	level := zap.InfoLevel
	var opts []zap.Option
	if cfg.Debug {
		level = zap.DebugLevel
		opts = append(opts, zap.AddCaller(), zap.Development())
	}

	return zap.New(zapcore.NewCore(encoder, ws, level), opts...), nil
}
