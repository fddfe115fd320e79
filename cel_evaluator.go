package statedef

import (
	"fmt"
	"sort"
	"strings"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// celMaxArity bounds the overloads declared for registry functions; CEL has
// no variadic functions.
const celMaxArity = 4

// CELEvaluatorOption configures the CEL evaluator.
type CELEvaluatorOption func(*celEvaluator)

// CELWithProgramCache wires a ProgramCache into the CEL evaluator.
func CELWithProgramCache(cache ProgramCache) CELEvaluatorOption {
	return func(e *celEvaluator) {
		e.cache = cache
	}
}

// CELWithFunctionRegistry wires a FunctionRegistry into the CEL evaluator.
func CELWithFunctionRegistry(registry *FunctionRegistry) CELEvaluatorOption {
	return func(e *celEvaluator) {
		if registry == nil {
			return
		}
		e.registry = registry.Clone()
	}
}

type celEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// NewCELEvaluator constructs an Evaluator backed by cel-go.
func NewCELEvaluator(opts ...CELEvaluatorOption) Evaluator {
	e := &celEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *celEvaluator) Evaluate(ctx EvalContext, expression string) (any, error) {
	if expression == "" {
		return nil, wrapEvaluatorError(EngineCEL, fmt.Errorf("expression must not be empty"))
	}
	ctx = ctx.withDefaults()
	names := ctx.names()
	program, err := e.loadOrCompile(expression, names)
	if err != nil {
		return nil, err
	}
	return e.run(ctx, program, names)
}

// Compile defers program construction to evaluation time because the
// declared variables depend on the properties visible then.
func (e *celEvaluator) Compile(expression string) (CompiledRule, error) {
	if expression == "" {
		return nil, wrapEvaluatorError(EngineCEL, fmt.Errorf("expression must not be empty"))
	}
	return &celCompiledRule{evaluator: e, expression: expression}, nil
}

// loadOrCompile keys programs by source and declared names, so a later
// Define that adds properties compiles a fresh environment.
func (e *celEvaluator) loadOrCompile(expression string, names []string) (celgo.Program, error) {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	key := programKey(EngineCEL, expression+"\x00"+strings.Join(sorted, ","))
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			if program, ok := cached.(celgo.Program); ok {
				return program, nil
			}
		}
	}

	env, err := e.buildEnv(sorted)
	if err != nil {
		return nil, wrapEvaluatorError(EngineCEL, err)
	}
	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, wrapEvaluatorError(EngineCEL, issues.Err())
	}
	program, err := env.Program(ast)
	if err != nil {
		return nil, wrapEvaluatorError(EngineCEL, err)
	}
	if e.cache != nil {
		e.cache.Set(key, program)
	}
	return program, nil
}

func (e *celEvaluator) buildEnv(names []string) (*celgo.Env, error) {
	opts := []celgo.EnvOption{
		celgo.Variable("now", celgo.TimestampType),
		celgo.Variable("args", celgo.DynType),
	}
	for _, name := range names {
		if name == "now" || name == "args" {
			continue
		}
		opts = append(opts, celgo.Variable(name, celgo.DynType))
	}
	if e.registry != nil {
		for _, name := range e.registry.Names() {
			opts = append(opts, celgo.Function(name, e.overloads(name)...))
		}
	}
	return celgo.NewEnv(opts...)
}

// overloads declares name for zero to celMaxArity dynamic arguments.
func (e *celEvaluator) overloads(name string) []celgo.FunctionOpt {
	out := make([]celgo.FunctionOpt, 0, celMaxArity+1)
	for arity := 0; arity <= celMaxArity; arity++ {
		args := make([]*celgo.Type, arity)
		for i := range args {
			args[i] = celgo.DynType
		}
		out = append(out, celgo.Overload(
			fmt.Sprintf("%s_dyn_%d", name, arity),
			args,
			celgo.DynType,
			celgo.FunctionBinding(e.binding(name)),
		))
	}
	return out
}

func (e *celEvaluator) binding(name string) func(...ref.Val) ref.Val {
	return func(values ...ref.Val) ref.Val {
		args := make([]any, 0, len(values))
		for _, val := range values {
			args = append(args, val.Value())
		}
		result, err := e.registry.Call(name, args...)
		if err != nil {
			return types.WrapErr(err)
		}
		if result == nil {
			return types.NullValue
		}
		return types.DefaultTypeAdapter.NativeToValue(result)
	}
}

// activation binds every property lazily so only referenced names are
// evaluated.
func (e *celEvaluator) activation(ctx EvalContext, names []string) (celgo.Activation, error) {
	bindings := map[string]any{
		"now":  ctx.timestamp(),
		"args": ctx.Args,
	}
	for _, name := range names {
		if name == "now" || name == "args" {
			continue
		}
		name := name
		bindings[name] = func() ref.Val {
			value, err := ctx.value(name)
			if err != nil {
				return types.WrapErr(err)
			}
			if value == nil {
				return types.NullValue
			}
			return types.DefaultTypeAdapter.NativeToValue(value)
		}
	}
	return celgo.NewActivation(bindings)
}

func (e *celEvaluator) run(ctx EvalContext, program celgo.Program, names []string) (any, error) {
	activation, err := e.activation(ctx, names)
	if err != nil {
		return nil, wrapEvaluatorError(EngineCEL, err)
	}
	out, _, err := program.Eval(activation)
	if err != nil {
		return nil, wrapEvaluatorError(EngineCEL, err)
	}
	return out.Value(), nil
}

type celCompiledRule struct {
	evaluator  *celEvaluator
	expression string
}

func (r *celCompiledRule) Evaluate(ctx EvalContext) (any, error) {
	if r.evaluator == nil {
		return nil, wrapEvaluatorError(EngineCEL, fmt.Errorf("compiled rule missing evaluator"))
	}
	return r.evaluator.Evaluate(ctx, r.expression)
}
