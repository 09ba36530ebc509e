// Package xzap holds the process-wide zap logger, configured once at start
// and reached from anywhere through WithContext.
package xzap

import (
	"context"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Conf selects the log destination and verbosity.
type Conf struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level" mapstructure:"level" json:"level"`
	// Mode is console or file.
	Mode string `toml:"mode" mapstructure:"mode" json:"mode"`
	// Path is the log file written in file mode.
	Path string `toml:"path" mapstructure:"path" json:"path"`
	// MaxSizeMB, MaxBackups and MaxAgeDays bound file rotation.
	MaxSizeMB  int  `toml:"max_size_mb" mapstructure:"max_size_mb" json:"max_size_mb"`
	MaxBackups int  `toml:"max_backups" mapstructure:"max_backups" json:"max_backups"`
	MaxAgeDays int  `toml:"max_age_days" mapstructure:"max_age_days" json:"max_age_days"`
	Compress   bool `toml:"compress" mapstructure:"compress" json:"compress"`
}

type ctxLoggerKey struct{}

var (
	mu     sync.RWMutex
	global = zap.NewNop()
)

// SetUp builds the global logger from config and returns it.
func SetUp(c Conf) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if c.Level != "" {
		if err := level.Set(c.Level); err != nil {
			return nil, err
		}
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var sink zapcore.WriteSyncer
	if c.Mode == "file" && c.Path != "" {
		sink = zapcore.AddSync(&lumberjack.Logger{
			Filename:   c.Path,
			MaxSize:    c.MaxSizeMB,
			MaxBackups: c.MaxBackups,
			MaxAge:     c.MaxAgeDays,
			Compress:   c.Compress,
		})
	} else {
		sink = zapcore.AddSync(os.Stdout)
	}

	logger := zap.New(zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), sink, level), zap.AddCaller())

	mu.Lock()
	global = logger
	mu.Unlock()
	return logger, nil
}

// NewContext attaches a request-scoped logger derived from the global one.
func NewContext(ctx context.Context, fields ...zap.Field) context.Context {
	return context.WithValue(ctx, ctxLoggerKey{}, WithContext(ctx).With(fields...))
}

// WithContext returns the request-scoped logger if the context carries one,
// otherwise the global logger.
func WithContext(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(ctxLoggerKey{}).(*zap.Logger); ok {
			return logger
		}
	}
	mu.RLock()
	defer mu.RUnlock()
	return global
}
