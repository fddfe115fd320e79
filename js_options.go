package statedef

import "time"

// JSEvaluatorOption configures the goja evaluator. Options are accepted in
// every build so callers need no build tag of their own.
type JSEvaluatorOption func(*jsOptions)

type jsOptions struct {
	cache        ProgramCache
	registry     *FunctionRegistry
	timeout      time.Duration
	maxCallStack int
}

// JSWithProgramCache wires a ProgramCache into the JS evaluator.
func JSWithProgramCache(cache ProgramCache) JSEvaluatorOption {
	return func(o *jsOptions) {
		o.cache = cache
	}
}

// JSWithFunctionRegistry exposes the registry's functions as globals.
func JSWithFunctionRegistry(registry *FunctionRegistry) JSEvaluatorOption {
	return func(o *jsOptions) {
		if registry == nil {
			return
		}
		o.registry = registry.Clone()
	}
}

// JSWithTimeout interrupts a script that runs longer than d.
func JSWithTimeout(d time.Duration) JSEvaluatorOption {
	return func(o *jsOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// JSWithMaxCallStack caps script recursion depth.
func JSWithMaxCallStack(size int) JSEvaluatorOption {
	return func(o *jsOptions) {
		if size > 0 {
			o.maxCallStack = size
		}
	}
}

func collectJSOptions(opts []JSEvaluatorOption) jsOptions {
	var o jsOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
