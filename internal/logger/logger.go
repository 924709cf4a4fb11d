package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the process-wide logger. It is a no-op until Init is called so that
// packages can log freely from tests.
var Log = zap.NewNop()

// Init installs a production logger at info level.
func Init() {
	InitWithConfig("info", false)
}

// InitWithConfig installs a logger at the given level. Development mode uses
// the console encoder with caller information.
func InitWithConfig(level string, development bool) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	l, err := cfg.Build()
	if err != nil {
		// Keep the previous logger rather than losing output entirely
		Log.Error("Failed to build logger", zap.Error(err))
		return
	}
	Log = l
}

// Use swaps in an externally built logger, mainly for tests.
func Use(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	Log = l
}

func Sync() {
	_ = Log.Sync()
}
