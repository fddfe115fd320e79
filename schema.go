package statedef

import "fmt"

// FieldDescriptor describes one property without evaluating it.
type FieldDescriptor struct {
	Name       string         `json:"name"`
	Kind       DefinitionKind `json:"kind"`
	Type       string         `json:"type"`
	Generation int            `json:"generation"`
}

// Describe lists every property in name order, taking kind and type from the
// layer that currently defines it. Derivations are not run.
func (s *Store) Describe() []FieldDescriptor {
	names := s.Names()
	out := make([]FieldDescriptor, 0, len(names))
	for _, name := range names {
		descriptor := FieldDescriptor{Name: name, Kind: KindLiteral}
		for _, l := range s.current.chain() {
			def, ok := l.entries[name]
			if !ok {
				continue
			}
			descriptor.Generation = l.depth
			descriptor.Kind = kindOf(def)
			descriptor.Type = typeName(def)
			break
		}
		out = append(out, descriptor)
	}
	return out
}

func typeName(def any) string {
	switch typed := def.(type) {
	case nil:
		return "nil"
	case *Expression:
		if typed.Engine == "" {
			return "expression"
		}
		return typed.Engine + " expression"
	case Derivation, func(*Store) any:
		return "derivation"
	default:
		return fmt.Sprintf("%T", typed)
	}
}
