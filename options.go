package statedef

import "time"

// Option configures a Store.
type Option func(*storeConfig)

type storeConfig struct {
	logger       Logger
	evaluators   map[string]Evaluator
	engine       string
	programCache ProgramCache
	functions    *FunctionRegistry
	now          func() time.Time
}

// DefaultProgramCacheSize bounds the LRU program cache a store creates when
// none is configured.
const DefaultProgramCacheSize = 128

func applyOptions(opts []Option) storeConfig {
	cfg := storeConfig{
		logger:     noopLogger{},
		evaluators: map[string]Evaluator{},
		engine:     EngineExpr,
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.programCache == nil {
		cfg.programCache = NewLRUProgramCache(DefaultProgramCacheSize)
	}
	return cfg
}

// WithEvaluator registers evaluator for engine, replacing the built-in one.
func WithEvaluator(engine string, evaluator Evaluator) Option {
	return func(cfg *storeConfig) {
		if engine == "" || evaluator == nil {
			return
		}
		cfg.evaluators[engine] = evaluator
	}
}

// WithEngine sets the engine used by expressions that do not name one.
func WithEngine(engine string) Option {
	return func(cfg *storeConfig) {
		if engine != "" {
			cfg.engine = engine
		}
	}
}

// WithProgramCache shares a compiled program cache with the store.
func WithProgramCache(cache ProgramCache) Option {
	return func(cfg *storeConfig) {
		cfg.programCache = cache
	}
}

// WithFunctionRegistry exposes the registry's functions to expressions. The
// registry is cloned.
func WithFunctionRegistry(registry *FunctionRegistry) Option {
	return func(cfg *storeConfig) {
		if registry == nil {
			return
		}
		cfg.functions = registry.Clone()
	}
}

// WithCustomFunction registers fn under name for expressions.
func WithCustomFunction(name string, fn Function) Option {
	return func(cfg *storeConfig) {
		if cfg.functions == nil {
			cfg.functions = NewFunctionRegistry()
		}
		_ = cfg.functions.Register(name, fn)
	}
}

// WithClock overrides the time source bound to `now` in expressions.
func WithClock(now func() time.Time) Option {
	return func(cfg *storeConfig) {
		if now != nil {
			cfg.now = now
		}
	}
}
