package utils

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"github.com/habitflow/habitflow/config"
)

// InitLogger builds the application logger: JSON output to stdout, plus a
// lumberjack rolling file when a log path is configured. The logger is
// returned to the caller; nothing is stored in package state.
func InitLogger(cfg config.AppConfig) (*zap.SugaredLogger, error) {
	lc := cfg.Log

	level, err := zapcore.ParseLevel(lc.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")

	sinks := []zapcore.WriteSyncer{zapcore.AddSync(os.Stdout)}
	if lc.Path != "" {
		if dir := filepath.Dir(lc.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
		sinks = append(sinks, zapcore.AddSync(&lumberjack.Logger{
			Filename:   lc.Path,
			MaxSize:    lc.MaxSizeMB,
			MaxBackups: lc.MaxBackups,
			MaxAge:     lc.MaxAgeDays,
			Compress:   lc.Compress,
		}))
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.NewMultiWriteSyncer(sinks...),
		level,
	)
	return zap.New(core, zap.AddCaller()).Sugar(), nil
}
