//go:build js_eval

package statedef

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestJSGetterErrorsSurface(t *testing.T) {
	s := MustNew(Definitions{
		"broken": Expr("nope +"),
		"v":      JS("broken + 1"),
	})
	_, err := s.Value("v")
	var derivErr *DerivationError
	if !errors.As(err, &derivErr) || derivErr.Name != "v" || derivErr.Engine != EngineJS {
		t.Fatalf("expected js derivation error for v, got %v", err)
	}
}

func TestJSCompiledRule(t *testing.T) {
	rule, err := NewJSEvaluator().Compile("a * b")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	s := MustNew(Definitions{"a": 6, "b": 7})
	got, err := rule.Evaluate(EvalContext{Properties: s})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if normalizeNumber(got) != float64(42) {
		t.Fatalf("expected 42, got %#v", got)
	}
}

func TestJSCallBuiltin(t *testing.T) {
	s := MustNew(Definitions{
		"name": "ada",
		"v":    JS(`call("shout", name)`),
	}, WithCustomFunction("shout", shout))
	assertValue(t, s, "v", "ADA")
}

func TestJSTimeoutInterruptsScript(t *testing.T) {
	s := MustNew(Definitions{"spin": JS("(function(){ while (true) {} })()")},
		WithEvaluator(EngineJS, NewJSEvaluator(JSWithTimeout(50*time.Millisecond))))
	_, err := s.Value("spin")
	if err == nil || !strings.Contains(err.Error(), "timed out") {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestJSMaxCallStack(t *testing.T) {
	s := MustNew(Definitions{"deep": JS("(function f(n){ return f(n + 1) })(0)")},
		WithEvaluator(EngineJS, NewJSEvaluator(JSWithMaxCallStack(64))))
	if _, err := s.Value("deep"); err == nil {
		t.Fatalf("expected stack overflow error")
	}
}
