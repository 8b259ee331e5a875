// Package logging builds the zap logger the runtime's host.Logger
// adapter wraps, grounded on the teacher's pkg/consensus/logger.go
// constructor (zap.NewDevelopmentConfig, DisableCaller/Stacktrace,
// console encoding) and pkg/config/logger.go's Encoding/Level-validated
// shape, generalized from a single fixed "console"-encoded dev logger
// to one respecting config.Logger's Encoding/Level fields.
package logging

import (
	"fmt"

	"github.com/apica-run/apica-core/pkg/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a *zap.Logger from cfg, writing to stderr. The per-app
// log file (logs/<date>/<app>.log, §6.1's INF/SUC/WRN/ERR prefixes) is
// not a zap core: host.ZapLogger writes it directly — this
// constructor only supplies the base operational logger used for the
// runtime's own startup/shutdown/load_app diagnostics.
func New(cfg config.Logger) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(levelOrDefault(cfg.Level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	zc := zap.NewDevelopmentConfig()
	zc.DisableCaller = true
	zc.DisableStacktrace = true
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Encoding = encodingOrDefault(cfg.Encoding)

	log, err := zc.Build()
	if err != nil {
		return nil, err
	}
	return log, nil
}

func levelOrDefault(level string) string {
	if level == "" {
		return "info"
	}
	return level
}

func encodingOrDefault(encoding string) string {
	if encoding == "" {
		return "console"
	}
	return encoding
}
