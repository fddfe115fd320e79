package statedef

// Definitions maps property names to definitions. A definition is either a
// literal value or a derivation (Derivation, func(*Store) any, or
// *Expression).
type Definitions map[string]any

// Derivation computes a property from its sibling properties. The store is
// passed so the derivation can read other names through Get or Value.
type Derivation func(*Store) any

// derivation is the callable form every derivation kind is normalised to.
type derivation func(*Store) (any, error)

// asDerivation reports whether def is a derivation and returns its callable
// form. Anything else is a literal.
func asDerivation(name string, def any) (derivation, bool) {
	switch typed := def.(type) {
	case Derivation:
		if typed == nil {
			return nil, false
		}
		return func(s *Store) (any, error) { return typed(s), nil }, true
	case func(*Store) any:
		if typed == nil {
			return nil, false
		}
		return func(s *Store) (any, error) { return typed(s), nil }, true
	case *Expression:
		if typed == nil {
			return nil, false
		}
		return func(s *Store) (any, error) { return s.evaluateExpression(name, typed) }, true
	default:
		return nil, false
	}
}

// DefinitionKind describes how a property produces its value.
type DefinitionKind string

const (
	// KindLiteral marks a plain value.
	KindLiteral DefinitionKind = "literal"
	// KindDerived marks a derivation evaluated on read.
	KindDerived DefinitionKind = "derived"
)

func kindOf(def any) DefinitionKind {
	if _, ok := asDerivation("", def); ok {
		return KindDerived
	}
	return KindLiteral
}
