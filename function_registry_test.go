package statedef

import (
	"reflect"
	"strings"
	"testing"
)

func TestFunctionRegistryRegister(t *testing.T) {
	registry := NewFunctionRegistry()
	if err := registry.Register("shout", shout); err != nil {
		t.Fatalf("register: %v", err)
	}
	cases := []struct {
		name    string
		fn      Function
		wantErr string
	}{
		{name: "shout", fn: shout, wantErr: "already registered"},
		{name: "", fn: shout, wantErr: "must not be empty"},
		{name: "call", fn: shout, wantErr: "built-in"},
		{name: "now", fn: shout, wantErr: "built-in"},
		{name: "nilfn", fn: nil, wantErr: "is nil"},
	}
	for _, tc := range cases {
		err := registry.Register(tc.name, tc.fn)
		if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
			t.Fatalf("register %q: expected %q, got %v", tc.name, tc.wantErr, err)
		}
	}
	if !registry.Has("shout") || registry.Has("Shout") {
		t.Fatalf("names should be case-sensitive")
	}
}

func TestFunctionRegistryCallAndClone(t *testing.T) {
	registry := NewFunctionRegistry()
	_ = registry.Register("shout", shout)
	clone := registry.Clone()
	_ = registry.Register("later", func(...any) (any, error) { return nil, nil })

	got, err := clone.Call("shout", "hi")
	if err != nil || got != "HI" {
		t.Fatalf("call: %v %v", got, err)
	}
	if clone.Has("later") {
		t.Fatalf("clone should not see later registrations")
	}
	if !reflect.DeepEqual(registry.Names(), []string{"later", "shout"}) {
		t.Fatalf("unexpected names %v", registry.Names())
	}
	if _, err := clone.Call("missing"); err == nil {
		t.Fatalf("expected error for missing function")
	}

	var nilRegistry *FunctionRegistry
	if nilRegistry.Has("x") || nilRegistry.Names() != nil || nilRegistry.Clone() != nil {
		t.Fatalf("nil registry should be empty")
	}
	if _, err := nilRegistry.Call("x"); err == nil {
		t.Fatalf("expected error from nil registry")
	}
}

func TestCustomFunctionAcrossEngines(t *testing.T) {
	for _, engine := range engines {
		engine := engine
		t.Run(engine, func(t *testing.T) {
			skipUnavailable(t, engine)
			s := MustNew(Definitions{
				"name": "ada",
				"loud": &Expression{Engine: engine, Source: "shout(name)"},
			}, WithCustomFunction("shout", shout))
			assertValue(t, s, "loud", "ADA")
		})
	}
}
