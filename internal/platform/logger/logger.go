package logger

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger writes structured key/value logs.
type Logger struct {
	config *LoggerConfig
	sugar  *zap.SugaredLogger
}

func NewLogger() *Logger {
	return New(DefaultConfig(), os.Stdout)
}

func New(cfg *LoggerConfig, out io.Writer) *Logger {
	core := zapcore.NewCore(newEncoder(cfg.Format), zapcore.AddSync(out), cfg.ZapLevel())
	return &Logger{
		config: cfg,
		sugar:  zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Sugar(),
	}
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{
		config: &LoggerConfig{Level: "error", Format: "json"},
		sugar:  zap.NewNop().Sugar(),
	}
}

func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, keysAndValues...)
}

func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.sugar.Warnw(msg, keysAndValues...)
}

func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, keysAndValues...)
}

func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

// Fatal logs and exits the process.
func (l *Logger) Fatal(msg string, keysAndValues ...interface{}) {
	l.sugar.Fatalw(msg, keysAndValues...)
}

// With returns a child logger that always carries the given fields.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{config: l.config, sugar: l.sugar.With(keysAndValues...)}
}

// Enabled reports whether messages at level would be written.
func (l *Logger) Enabled(level string) bool {
	return l.config.ShouldLog(level)
}

func (l *Logger) Sync() error {
	return l.sugar.Sync()
}
