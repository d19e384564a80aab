// Package logging builds the zap logger the rest of this module uses,
// honoring the infrastructure config's log_level instead of always reaching
// for zap.NewProduction the way the teacher's single-tenant
// pkg/utils.NewProductionLogger did. The log_profiles setting is not read.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Profile names for structured-logging enrichments. Nothing in this module
// applies them; New takes only a level.
const (
	ProfileTenant = "tenant"
	ProfileSync   = "sync"
	ProfileHTTP   = "http"
)

// New builds a zap logger at the given level. Unknown levels fall back to
// info rather than failing startup over a config typo in a non-critical
// field.
func New(level string) (*zap.Logger, error) {
	var zl zapcore.Level
	if err := zl.UnmarshalText([]byte(level)); err != nil {
		zl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zl)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: build zap logger: %w", err)
	}
	return logger, nil
}

// ForTenant returns a child logger tagged with the tenant's codename, the
// pattern every per-tenant component (runtime, scheduler, sync) uses so log
// lines can be filtered to one tenant.
func ForTenant(base *zap.Logger, codename string) *zap.Logger {
	return base.With(zap.String("tenant", codename))
}
