package statedef

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrReservedName indicates Define received a name used for the store's
	// own bookkeeping.
	ErrReservedName = errors.New("statedef: reserved property name")
	// ErrEmptyName indicates Define received an empty property name.
	ErrEmptyName = errors.New("statedef: property name must not be empty")
	// ErrUndefined indicates a read for a name with no accessor.
	ErrUndefined = errors.New("statedef: property is undefined")
	// ErrCycle indicates a derivation read its own name while being computed.
	ErrCycle = errors.New("statedef: derivation cycle")
)

// reservedNames are the bookkeeping keys of the layer chain head, the
// previous-layer snapshot and the memo cache, with and without the leading
// underscore.
var reservedNames = map[string]struct{}{
	"_table":    {},
	"_oldTable": {},
	"_values":   {},
	"table":     {},
	"oldTable":  {},
	"values":    {},
}

// IsReservedName reports whether name can never be defined.
func IsReservedName(name string) bool {
	_, ok := reservedNames[name]
	return ok
}

// ReservedNameError lists every rejected name of a Define call.
type ReservedNameError struct {
	Names []string
}

func (e *ReservedNameError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%v: %s", ErrReservedName, strings.Join(e.Names, ", "))
}

func (e *ReservedNameError) Unwrap() error {
	return ErrReservedName
}

// DerivationError captures which property and expression failed to compute.
type DerivationError struct {
	Name   string
	Engine string
	Expr   string
	Err    error
}

func (e *DerivationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Engine == "" {
		return fmt.Sprintf("statedef: derive %q: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("statedef: derive %q with %s evaluator %s: %v", e.Name, e.Engine, describeExpression(e.Expr), e.Err)
}

func (e *DerivationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

func wrapEvaluatorError(engine string, err error) error {
	if err == nil {
		return nil
	}
	var derivErr *DerivationError
	if errors.As(err, &derivErr) {
		return err
	}
	if strings.HasPrefix(err.Error(), "statedef:") {
		return err
	}
	return fmt.Errorf("statedef: %s evaluator: %w", engine, err)
}

// wrapDerivationError fills missing metadata on an existing DerivationError
// for the same property, or wraps err in a new one.
func wrapDerivationError(name, engine, expr string, err error) error {
	if err == nil {
		return nil
	}
	var derivErr *DerivationError
	if errors.As(err, &derivErr) && (derivErr.Name == "" || derivErr.Name == name) {
		if derivErr.Name == "" {
			derivErr.Name = name
		}
		if derivErr.Engine == "" {
			derivErr.Engine = engine
		}
		if derivErr.Expr == "" {
			derivErr.Expr = expr
		}
		return err
	}
	return &DerivationError{
		Name:   name,
		Engine: engine,
		Expr:   expr,
		Err:    err,
	}
}
