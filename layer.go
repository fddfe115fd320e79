package statedef

import "github.com/google/uuid"

// layer is one generation of definitions. Lookups for names it does not own
// fall through to base. A layer is only written while it is being created.
type layer struct {
	id      string
	depth   int
	entries map[string]any
	base    *layer
}

func newLayer(base *layer) *layer {
	depth := 0
	if base != nil {
		depth = base.depth + 1
	}
	return &layer{
		id:      uuid.NewString(),
		depth:   depth,
		entries: map[string]any{},
		base:    base,
	}
}

// lookup walks the chain starting at l.
func (l *layer) lookup(name string) (any, bool) {
	for cur := l; cur != nil; cur = cur.base {
		if def, ok := cur.entries[name]; ok {
			return def, true
		}
	}
	return nil, false
}

func (l *layer) owns(name string) bool {
	if l == nil {
		return false
	}
	_, ok := l.entries[name]
	return ok
}

func (l *layer) has(name string) bool {
	_, ok := l.lookup(name)
	return ok
}

// chain returns the layers from l down to the root.
func (l *layer) chain() []*layer {
	var out []*layer
	for cur := l; cur != nil; cur = cur.base {
		out = append(out, cur)
	}
	return out
}
