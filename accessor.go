package statedef

import "fmt"

type accessorKind int

const (
	// accessorLiteral re-resolves the name against the live layer chain on
	// every read.
	accessorLiteral accessorKind = iota
	// accessorDerived is bound to the derivation defined alongside it.
	accessorDerived
)

// accessor is the per-name read installed by Define.
type accessor struct {
	kind   accessorKind
	derive derivation
	expr   *Expression
}

func newAccessor(name string, def any) accessor {
	derive, ok := asDerivation(name, def)
	if !ok {
		return accessor{kind: accessorLiteral}
	}
	expr, _ := def.(*Expression)
	return accessor{kind: accessorDerived, derive: derive, expr: expr}
}

// readInfo reports whether a read ran a derivation and which one.
type readInfo struct {
	derived bool
	expr    *Expression
}

func (a accessor) read(s *Store, name string) (any, readInfo, error) {
	if a.kind == accessorDerived {
		value, err := a.derive(s)
		return value, readInfo{derived: true, expr: a.expr}, err
	}
	def, ok := s.current.lookup(name)
	if !ok {
		return nil, readInfo{}, fmt.Errorf("%w: %q", ErrUndefined, name)
	}
	return def, readInfo{}, nil
}

func cloneAccessors(src map[string]accessor) map[string]accessor {
	out := make(map[string]accessor, len(src))
	for name, acc := range src {
		out[name] = acc
	}
	return out
}
