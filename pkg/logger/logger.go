package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the process-wide logger, set up once at startup.
var Log = zap.NewNop()

// Init builds the global logger. In development a human-readable console
// encoder is used, otherwise the production JSON config.
func Init(env string) {
	var cfg zap.Config
	if env == "development" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level.SetLevel(zapcore.InfoLevel)

	l, err := cfg.Build()
	if err != nil {
		return
	}
	Log = l
}

// Sync flushes buffered log entries. Called from main on shutdown.
func Sync() {
	_ = Log.Sync()
}
