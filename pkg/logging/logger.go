// Package logging builds logr loggers backed by zap and adapts them to the
// statedef.Logger interface.
package logging

import (
	"fmt"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	statedef "github.com/goliatone/go-statedef"
)

// New returns a zap-backed logr.Logger configured with the given level
// string.
func New(level string) (logr.Logger, error) {
	cfg := zap.NewProductionConfig()
	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		cfg = zap.NewDevelopmentConfig()
		zapLevel = zapcore.DebugLevel
	case "info", "":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return logr.Logger{}, fmt.Errorf("unknown log level %q (expected debug, info, warn, or error)", level)
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	zl, err := cfg.Build()
	if err != nil {
		return logr.Logger{}, fmt.Errorf("build zap logger: %w", err)
	}
	return zapr.NewLogger(zl), nil
}

// StoreLogger reports store events through logger. Defines and reverts log
// at V(1), evaluations at V(2); failures log as errors.
func StoreLogger(logger logr.Logger) statedef.Logger {
	return storeLogger{log: logger.WithName("statedef")}
}

type storeLogger struct {
	log logr.Logger
}

func (l storeLogger) LogDefine(event statedef.DefineEvent) {
	if event.Err != nil {
		l.log.Error(event.Err, "define rejected", "names", event.Names, "generation", event.Generation)
		return
	}
	l.log.V(1).Info("define", "layer", event.LayerID, "generation", event.Generation, "names", event.Names)
}

func (l storeLogger) LogRevert(event statedef.RevertEvent) {
	if !event.Reverted {
		l.log.V(1).Info("revert skipped, no previous layer", "generation", event.Generation)
		return
	}
	l.log.V(1).Info("revert", "layer", event.LayerID, "generation", event.Generation, "removed", event.Removed)
}

func (l storeLogger) LogEvaluation(event statedef.EvaluationEvent) {
	kv := []any{"name", event.Name, "duration", event.Duration}
	if event.Engine != "" {
		kv = append(kv, "engine", event.Engine, "expr", event.Expr)
	}
	if event.Err != nil {
		l.log.Error(event.Err, "derivation failed", kv...)
		return
	}
	l.log.V(2).Info("derived", kv...)
}
