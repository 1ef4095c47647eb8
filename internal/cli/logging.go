package cli

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLogger builds a console logger writing to the given zap sink ("stderr" or a file path).
func newLogger(level, sink string) (*zap.Logger, error) {
	lvl := zapcore.WarnLevel
	if s := strings.TrimSpace(level); s != "" {
		parsed, err := zapcore.ParseLevel(s)
		if err != nil {
			return nil, err
		}
		lvl = parsed
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Development = false
	cfg.DisableStacktrace = true
	cfg.DisableCaller = true
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{sink}
	cfg.ErrorOutputPaths = []string{sink}
	return cfg.Build()
}
