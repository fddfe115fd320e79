package statedef

import "time"

// DefineEvent describes a Define call.
type DefineEvent struct {
	LayerID    string
	Generation int
	Names      []string
	Err        error
}

// RevertEvent describes a Revert call. Reverted is false when there was no
// history to restore.
type RevertEvent struct {
	LayerID    string
	Generation int
	Removed    []string
	Reverted   bool
}

// EvaluationEvent describes a derivation run on a memo miss.
type EvaluationEvent struct {
	Name     string
	Engine   string
	Expr     string
	Duration time.Duration
	Err      error
}

// Logger records store events.
type Logger interface {
	LogDefine(DefineEvent)
	LogRevert(RevertEvent)
	LogEvaluation(EvaluationEvent)
}

// LoggerFuncs adapts plain functions to Logger. Nil fields are skipped.
type LoggerFuncs struct {
	Define     func(DefineEvent)
	Revert     func(RevertEvent)
	Evaluation func(EvaluationEvent)
}

// LogDefine implements Logger.
func (f LoggerFuncs) LogDefine(event DefineEvent) {
	if f.Define != nil {
		f.Define(event)
	}
}

// LogRevert implements Logger.
func (f LoggerFuncs) LogRevert(event RevertEvent) {
	if f.Revert != nil {
		f.Revert(event)
	}
}

// LogEvaluation implements Logger.
func (f LoggerFuncs) LogEvaluation(event EvaluationEvent) {
	if f.Evaluation != nil {
		f.Evaluation(event)
	}
}

type noopLogger struct{}

func (noopLogger) LogDefine(DefineEvent)         {}
func (noopLogger) LogRevert(RevertEvent)         {}
func (noopLogger) LogEvaluation(EvaluationEvent) {}

// WithLogger attaches a logger to the store.
func WithLogger(logger Logger) Option {
	return func(cfg *storeConfig) {
		if logger == nil {
			cfg.logger = noopLogger{}
			return
		}
		cfg.logger = logger
	}
}
