package config

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger builds the program logger: console output split between stdout and
// stderr at the configured level, plus an optional log file that always
// records debug output.
func (c *Config) Logger() (*zap.Logger, error) {
	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	consoleEncoder := zapcore.NewConsoleEncoder(ec)

	highPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapcore.ErrorLevel
	})

	var consoleLP, consoleHP zapcore.Core
	level := c.LogLevel
	if c.Quiet {
		level = "none"
	}
	switch level {
	case "normal", "debug":
		minLevel := zapcore.InfoLevel
		if level == "debug" {
			minLevel = zapcore.DebugLevel
		}
		consoleLP = zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stdout),
			zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
				return minLevel <= lvl && lvl < zapcore.ErrorLevel
			}))
		consoleHP = zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stderr), highPriority)
	default:
		consoleLP = zapcore.NewNopCore()
		consoleHP = zapcore.NewNopCore()
	}

	fileCore := zapcore.NewNopCore()
	if c.LogFile != "" {
		f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("unable to access log file (%s): %w", c.LogFile, err)
		}
		fileCore = zapcore.NewCore(zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
			zapcore.Lock(f), zap.NewAtomicLevelAt(zap.DebugLevel))
	}

	return zap.New(zapcore.NewTee(consoleHP, consoleLP, fileCore), zap.AddCaller()).Named("indexo"), nil
}
