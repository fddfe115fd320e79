package statedef

import (
	"fmt"
	"sort"
	"strings"
	"time"

	exprlang "github.com/expr-lang/expr"
	exprast "github.com/expr-lang/expr/ast"
	exprparser "github.com/expr-lang/expr/parser"
	exprvm "github.com/expr-lang/expr/vm"
)

// ExprEvaluatorOption configures an expr evaluator instance.
type ExprEvaluatorOption func(*exprEvaluator)

// ExprWithProgramCache wires a ProgramCache into the expr evaluator.
func ExprWithProgramCache(cache ProgramCache) ExprEvaluatorOption {
	return func(e *exprEvaluator) {
		e.cache = cache
	}
}

// ExprWithFunctionRegistry wires a FunctionRegistry into the expr evaluator.
func ExprWithFunctionRegistry(registry *FunctionRegistry) ExprEvaluatorOption {
	return func(e *exprEvaluator) {
		if registry == nil {
			return
		}
		e.registry = registry.Clone()
	}
}

// exprEvaluator executes expressions using github.com/expr-lang/expr.
type exprEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// exprProgram pairs a compiled program with the identifiers it references,
// so only those properties are resolved before a run.
type exprProgram struct {
	program     *exprvm.Program
	identifiers []string
}

// NewExprEvaluator constructs an Evaluator backed by expr-lang/expr.
func NewExprEvaluator(opts ...ExprEvaluatorOption) Evaluator {
	e := &exprEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Evaluate compiles expression (or reuses the cached program) and runs it.
func (e *exprEvaluator) Evaluate(ctx EvalContext, expression string) (any, error) {
	if expression == "" {
		return nil, wrapEvaluatorError(EngineExpr, fmt.Errorf("expression must not be empty"))
	}
	ctx = ctx.withDefaults()
	program, err := e.loadOrCompile(expression, ctx.names())
	if err != nil {
		return nil, err
	}
	return e.run(ctx, program)
}

// Compile checks the expression parses. Programs are built at evaluation
// time because property names are declared in the compile environment.
func (e *exprEvaluator) Compile(expression string) (CompiledRule, error) {
	if expression == "" {
		return nil, wrapEvaluatorError(EngineExpr, fmt.Errorf("expression must not be empty"))
	}
	if _, err := exprparser.Parse(expression); err != nil {
		return nil, wrapEvaluatorError(EngineExpr, err)
	}
	return &exprCompiledRule{evaluator: e, expression: expression}, nil
}

// loadOrCompile keys programs by source and visible property names. Names
// are declared so they shadow builtins such as count or now.
func (e *exprEvaluator) loadOrCompile(expression string, names []string) (*exprProgram, error) {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	key := programKey(EngineExpr, expression+"\x00"+strings.Join(sorted, ","))
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			if program, ok := cached.(*exprProgram); ok {
				return program, nil
			}
		}
	}
	tree, err := exprparser.Parse(expression)
	if err != nil {
		return nil, wrapEvaluatorError(EngineExpr, err)
	}
	env := map[string]any{
		"now":  time.Time{},
		"args": map[string]any{},
	}
	for _, name := range sorted {
		if e.registry.Has(name) {
			continue
		}
		env[name] = nil
	}
	options := []exprlang.Option{
		exprlang.Env(env),
		exprlang.AllowUndefinedVariables(),
	}
	for _, name := range e.registryNames() {
		options = append(options, exprlang.Function(name, e.registryFunction(name)))
	}
	compiled, err := exprlang.Compile(expression, options...)
	if err != nil {
		return nil, wrapEvaluatorError(EngineExpr, err)
	}
	program := &exprProgram{
		program:     compiled,
		identifiers: collectIdentifiers(tree),
	}
	if e.cache != nil {
		e.cache.Set(key, program)
	}
	return program, nil
}

func (e *exprEvaluator) run(ctx EvalContext, program *exprProgram) (any, error) {
	env, err := e.environment(ctx, program.identifiers)
	if err != nil {
		return nil, err
	}
	result, err := exprlang.Run(program.program, env)
	if err != nil {
		return nil, wrapEvaluatorError(EngineExpr, err)
	}
	return result, nil
}

type exprCompiledRule struct {
	evaluator  *exprEvaluator
	expression string
}

func (r *exprCompiledRule) Evaluate(ctx EvalContext) (any, error) {
	if r.evaluator == nil {
		return nil, wrapEvaluatorError(EngineExpr, fmt.Errorf("compiled rule missing evaluator"))
	}
	return r.evaluator.Evaluate(ctx, r.expression)
}

// environment resolves the referenced identifiers that name properties.
// Identifiers the store does not define stay unset and read as nil.
func (e *exprEvaluator) environment(ctx EvalContext, identifiers []string) (map[string]any, error) {
	env := map[string]any{
		"now":  ctx.timestamp(),
		"args": ctx.Args,
	}
	defined := map[string]struct{}{}
	for _, name := range ctx.names() {
		defined[name] = struct{}{}
	}
	for _, ident := range identifiers {
		if _, ok := defined[ident]; !ok || e.registry.Has(ident) {
			continue
		}
		value, err := ctx.value(ident)
		if err != nil {
			return nil, err
		}
		env[ident] = value
	}
	if e.registry != nil {
		env["call"] = func(name string, arguments ...any) (any, error) {
			return e.registry.Call(name, arguments...)
		}
	}
	return env, nil
}

func (e *exprEvaluator) registryNames() []string {
	if e == nil || e.registry == nil {
		return nil
	}
	return e.registry.Names()
}

func (e *exprEvaluator) registryFunction(name string) func(...any) (any, error) {
	return func(arguments ...any) (any, error) {
		return e.registry.Call(name, arguments...)
	}
}

type identifierCollector struct {
	seen  map[string]struct{}
	names []string
}

func (c *identifierCollector) Visit(node *exprast.Node) {
	ident, ok := (*node).(*exprast.IdentifierNode)
	if !ok {
		return
	}
	if _, dup := c.seen[ident.Value]; dup {
		return
	}
	c.seen[ident.Value] = struct{}{}
	c.names = append(c.names, ident.Value)
}

func collectIdentifiers(tree *exprparser.Tree) []string {
	collector := &identifierCollector{seen: map[string]struct{}{}}
	exprast.Walk(&tree.Node, collector)
	return collector.names
}
