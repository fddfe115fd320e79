package statedef

import (
	"encoding/json"
	"fmt"
)

// Trace captures how a property resolves across the layer chain.
type Trace struct {
	Name    string       `json:"name" yaml:"name"`
	Kind    string       `json:"kind,omitempty" yaml:"kind,omitempty"`
	Cached  bool         `json:"cached" yaml:"cached"`
	Value   any          `json:"value,omitempty" yaml:"value,omitempty"`
	Layers  []Provenance `json:"layers" yaml:"layers"`
	Defined bool         `json:"defined" yaml:"defined"`
}

// Provenance details one layer's contribution to a traced name.
type Provenance struct {
	LayerID    string `json:"layer_id" yaml:"layer_id"`
	Generation int    `json:"generation" yaml:"generation"`
	Found      bool   `json:"found" yaml:"found"`
	Kind       string `json:"kind,omitempty" yaml:"kind,omitempty"`
	Expr       string `json:"expr,omitempty" yaml:"expr,omitempty"`
}

// Explain reports, from the current layer down to the root, which layers own
// name. Value is only filled when the memo cache already holds it; Explain
// never runs a derivation.
func (s *Store) Explain(name string) (Trace, error) {
	if name == "" {
		return Trace{}, ErrEmptyName
	}
	trace := Trace{Name: name, Defined: s.Has(name)}
	if acc, ok := s.accessors[name]; ok {
		trace.Kind = string(KindLiteral)
		if acc.kind == accessorDerived {
			trace.Kind = string(KindDerived)
		}
	}
	if value, ok := s.values[name]; ok {
		trace.Cached = true
		trace.Value = value
	}
	for _, l := range s.current.chain() {
		entry := Provenance{LayerID: l.id, Generation: l.depth}
		if def, ok := l.entries[name]; ok {
			entry.Found = true
			entry.Kind = string(kindOf(def))
			if expr, ok := def.(*Expression); ok && expr != nil {
				entry.Expr = expr.Source
			}
		}
		trace.Layers = append(trace.Layers, entry)
	}
	if !trace.Defined {
		return trace, fmt.Errorf("%w: %q", ErrUndefined, name)
	}
	return trace, nil
}

// ToJSON serialises the trace.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON deserialises a payload produced by ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}
