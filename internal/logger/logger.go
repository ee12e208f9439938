// Package logger provides the application-wide structured logger.
package logger

import (
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log atomic.Pointer[zap.SugaredLogger]

func init() {
	log.Store(zap.NewNop().Sugar())
}

// Initialize configures the global logger. Debug mode enables development
// output with debug-level logging; otherwise a production JSON logger at info
// level is installed.
func Initialize(debug bool) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	l, err := cfg.Build()
	if err != nil {
		// Fall back to a no-op logger rather than failing startup.
		l = zap.NewNop()
	}
	log.Store(l.Sugar())
}

// Debugf logs a formatted message at debug level.
func Debugf(format string, args ...any) {
	log.Load().Debugf(format, args...)
}

// Infof logs a formatted message at info level.
func Infof(format string, args ...any) {
	log.Load().Infof(format, args...)
}

// Warnf logs a formatted message at warn level.
func Warnf(format string, args ...any) {
	log.Load().Warnf(format, args...)
}

// Errorf logs a formatted message at error level.
func Errorf(format string, args ...any) {
	log.Load().Errorf(format, args...)
}
