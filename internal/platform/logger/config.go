package logger

import (
	"os"
	"strings"

	"go.uber.org/zap/zapcore"
)

type LoggerConfig struct {
	Level  string // "debug", "info", "warn", "error"
	Format string // "json", "console"
}

func DefaultConfig() *LoggerConfig {
	return &LoggerConfig{
		Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		Format: strings.ToLower(getEnv("LOG_FORMAT", "json")),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func (c *LoggerConfig) ZapLevel() zapcore.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func (c *LoggerConfig) ShouldLog(level string) bool {
	l, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return false
	}
	return l >= c.ZapLevel()
}
