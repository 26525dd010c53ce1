// Package logger wraps zap with key/value call sites for the cardsync
// binaries.
package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Modes accepted by New. "production" and "development" are aliases.
const (
	ModeDev  = "dev"
	ModeProd = "prod"
)

// Logger logs structured messages; pairs after msg are alternating keys and
// values, e.g. log.Info("field write failed", "entity", key, "field", name).
type Logger struct {
	s *zap.SugaredLogger
}

// ParseMode normalises a configured mode. Empty means dev.
func ParseMode(mode string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", ModeDev, "development":
		return ModeDev, nil
	case ModeProd, "production":
		return ModeProd, nil
	default:
		return "", fmt.Errorf("unknown log mode %q (want %s or %s)", mode, ModeDev, ModeProd)
	}
}

// New builds a logger. prod writes JSON at info level; dev writes console
// output at debug level. Both go to stderr.
func New(mode string) (*Logger, error) {
	m, err := ParseMode(mode)
	if err != nil {
		return nil, err
	}

	cfg := zap.NewDevelopmentConfig()
	if m == ModeProd {
		cfg = zap.NewProductionConfig()
	}
	zl, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return fromZap(zl), nil
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return fromZap(zap.NewNop())
}

func fromZap(zl *zap.Logger) *Logger {
	return &Logger{s: zl.Sugar()}
}

// Sync flushes buffered entries. Errors from syncing stderr are ignored.
func (l *Logger) Sync() {
	_ = l.s.Sync()
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

// Info logs at info level.
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Infow(msg, keysAndValues...)
}

// Warn logs at warn level.
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.s.Warnw(msg, keysAndValues...)
}

// Error logs at error level.
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, keysAndValues...)
}

// Fatal logs at fatal level and exits the process.
func (l *Logger) Fatal(msg string, keysAndValues ...interface{}) {
	l.s.Fatalw(msg, keysAndValues...)
}

// With returns a child logger that adds the pairs to every entry.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{s: l.s.With(keysAndValues...)}
}

// Named returns a child logger whose name is extended with name.
func (l *Logger) Named(name string) *Logger {
	return &Logger{s: l.s.Named(name)}
}

// Enabled reports whether entries at level would be written.
func (l *Logger) Enabled(level zapcore.Level) bool {
	return l.s.Desugar().Core().Enabled(level)
}
