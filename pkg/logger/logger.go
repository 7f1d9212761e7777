// Package logger builds the two append-only log streams the bot
// writes: an operational log for normal events and a separate error
// log. Both are rotating files; nothing ever reads them back.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxSizeMB  = 10
	maxBackups = 5
	maxAgeDays = 90
)

// Config points the logger at its two output files.
type Config struct {
	OpsFile   string
	ErrorFile string
	// Console mirrors everything to stderr for interactive runs.
	Console bool
}

// New returns a logger writing info and above to the ops file and
// error and above to the error file.
func New(cfg Config) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	enc := zapcore.NewJSONEncoder(encCfg)

	cores := []zapcore.Core{
		zapcore.NewCore(enc, rotating(cfg.OpsFile), zapcore.InfoLevel),
		zapcore.NewCore(enc, rotating(cfg.ErrorFile), zapcore.ErrorLevel),
	}

	if cfg.Console {
		consoleEnc := zapcore.NewConsoleEncoder(encCfg)
		cores = append(cores, zapcore.NewCore(consoleEnc, zapcore.Lock(os.Stderr), zapcore.InfoLevel))
	}

	return zap.New(zapcore.NewTee(cores...))
}

func rotating(path string) zapcore.WriteSyncer {
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
	})
}
