package statedef

import (
	"errors"
	"fmt"
	"time"
)

const (
	// EngineExpr evaluates expressions with github.com/expr-lang/expr.
	EngineExpr = "expr"
	// EngineCEL evaluates expressions with github.com/google/cel-go.
	EngineCEL = "cel"
	// EngineJS evaluates expressions with github.com/dop251/goja. Requires the
	// js_eval build tag.
	EngineJS = "js"
)

var (
	// ErrUnknownEngine indicates an expression names an engine the store does
	// not know.
	ErrUnknownEngine = errors.New("statedef: unknown expression engine")
	// ErrEngineUnavailable indicates the engine was not compiled in.
	ErrEngineUnavailable = errors.New("statedef: expression engine unavailable")
)

// Properties is the read view expressions evaluate against. *Store
// implements it.
type Properties interface {
	Value(name string) (any, error)
	Names() []string
}

// EvalContext carries the inputs of one expression evaluation.
type EvalContext struct {
	Properties Properties
	Now        *time.Time
	Args       map[string]any
}

func (ctx EvalContext) withDefaults() EvalContext {
	if ctx.Now == nil {
		now := time.Now()
		ctx.Now = &now
	}
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	return ctx
}

func (ctx EvalContext) timestamp() time.Time {
	return *ctx.withDefaults().Now
}

func (ctx EvalContext) names() []string {
	if ctx.Properties == nil {
		return nil
	}
	return ctx.Properties.Names()
}

func (ctx EvalContext) value(name string) (any, error) {
	if ctx.Properties == nil {
		return nil, fmt.Errorf("%w: %q", ErrUndefined, name)
	}
	return ctx.Properties.Value(name)
}

// Evaluator executes expressions against a set of properties.
type Evaluator interface {
	Evaluate(ctx EvalContext, expr string) (any, error)
	Compile(expr string) (CompiledRule, error)
}

// CompiledRule is a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx EvalContext) (any, error)
}

// Expression is a derivation written in one of the expression engines.
// Identifiers resolve to the store's properties.
type Expression struct {
	Engine string
	Source string
	Args   map[string]any
}

// Expr builds an expression derivation for the expr engine.
func Expr(source string) *Expression {
	return &Expression{Engine: EngineExpr, Source: source}
}

// CEL builds an expression derivation for the CEL engine.
func CEL(source string) *Expression {
	return &Expression{Engine: EngineCEL, Source: source}
}

// JS builds an expression derivation for the goja engine.
func JS(source string) *Expression {
	return &Expression{Engine: EngineJS, Source: source}
}

func (s *Store) evaluateExpression(name string, expr *Expression) (any, error) {
	engine := expr.Engine
	if engine == "" {
		engine = s.cfg.engine
	}
	if expr.Source == "" {
		return nil, wrapDerivationError(name, engine, "", fmt.Errorf("expression must not be empty"))
	}
	evaluator, err := s.evaluatorFor(engine)
	if err != nil {
		return nil, wrapDerivationError(name, engine, expr.Source, err)
	}
	now := s.cfg.now()
	ctx := EvalContext{Properties: s, Now: &now, Args: expr.Args}
	value, err := evaluator.Evaluate(ctx, expr.Source)
	if err != nil {
		return nil, wrapDerivationError(name, engine, expr.Source, err)
	}
	return value, nil
}

func (s *Store) evaluatorFor(engine string) (Evaluator, error) {
	if evaluator, ok := s.cfg.evaluators[engine]; ok {
		return evaluator, nil
	}
	var evaluator Evaluator
	switch engine {
	case EngineExpr:
		evaluator = NewExprEvaluator(ExprWithProgramCache(s.cfg.programCache), ExprWithFunctionRegistry(s.cfg.functions))
	case EngineCEL:
		evaluator = NewCELEvaluator(CELWithProgramCache(s.cfg.programCache), CELWithFunctionRegistry(s.cfg.functions))
	case EngineJS:
		evaluator = NewJSEvaluator(JSWithProgramCache(s.cfg.programCache), JSWithFunctionRegistry(s.cfg.functions))
		if evaluator == nil {
			return nil, fmt.Errorf("%w: %s (build with -tags js_eval)", ErrEngineUnavailable, engine)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, engine)
	}
	s.cfg.evaluators[engine] = evaluator
	return evaluator, nil
}
