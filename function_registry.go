package statedef

import (
	"fmt"
	"sort"
	"sync"
)

// Function is a Go helper that expression derivations can call by name,
// either directly (expr, js, cel) or through call("name", ...).
type Function func(args ...any) (any, error)

// builtinNames are identifiers every engine binds itself; a helper under one
// of them would never be reachable.
var builtinNames = map[string]struct{}{
	"call": {},
	"now":  {},
	"args": {},
}

// FunctionRegistry holds the helpers visible to a store's expressions. It may
// be shared by several stores. Names match expression identifiers exactly.
type FunctionRegistry struct {
	mu        sync.RWMutex
	functions map[string]Function
}

// NewFunctionRegistry returns a registry with no helpers.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{
		functions: make(map[string]Function),
	}
}

// Register adds fn as the helper name. A name can be registered once.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	if err := checkFunction(name, fn); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.functions == nil {
		r.functions = make(map[string]Function)
	}
	if _, exists := r.functions[name]; exists {
		return fmt.Errorf("statedef: function %q already registered", name)
	}
	r.functions[name] = fn
	return nil
}

// Clone copies the name table so a store can add helpers without touching
// the caller's registry.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := &FunctionRegistry{
		functions: make(map[string]Function, len(r.functions)),
	}
	for name, fn := range r.functions {
		clone.functions[name] = fn
	}
	return clone
}

// Has reports whether expressions can call name.
func (r *FunctionRegistry) Has(name string) bool {
	if r == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.functions[name]
	return ok
}

// Call runs the helper name with args as passed by the engine.
func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	if r == nil {
		return nil, fmt.Errorf("statedef: function registry is nil")
	}
	r.mu.RLock()
	fn := r.functions[name]
	r.mu.RUnlock()
	if fn == nil {
		return nil, fmt.Errorf("statedef: function %q not registered", name)
	}
	return fn(args...)
}

// Names lists the helpers in name order; expr and cel declare them at
// compile time.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func checkFunction(name string, fn Function) error {
	switch {
	case fn == nil:
		return fmt.Errorf("statedef: function %q is nil", name)
	case name == "":
		return fmt.Errorf("statedef: function name must not be empty")
	}
	if _, builtin := builtinNames[name]; builtin {
		return fmt.Errorf("statedef: function name %q is a built-in", name)
	}
	return nil
}
