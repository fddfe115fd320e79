package statedef

import (
	"fmt"
	"sort"
	"time"
)

// Store is a layered property store. Each Define stacks a new layer of
// definitions over the current one; Revert discards the newest layer. Reads
// go through per-name accessors and are memoized until the next Define or
// Revert.
//
// A Store is meant for a single owner and is not safe for concurrent use.
type Store struct {
	current  *layer
	previous *layer

	accessors         map[string]accessor
	previousAccessors map[string]accessor

	values   map[string]any
	inflight map[string]bool

	cfg storeConfig
}

// New builds a store. A non-nil initial behaves exactly like a first call to
// Define.
func New(initial Definitions, opts ...Option) (*Store, error) {
	s := &Store{
		current:   newLayer(nil),
		accessors: map[string]accessor{},
		values:    map[string]any{},
		inflight:  map[string]bool{},
		cfg:       applyOptions(opts),
	}
	if initial != nil {
		if err := s.Define(initial); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// MustNew is New that panics on error.
func MustNew(initial Definitions, opts ...Option) *Store {
	s, err := New(initial, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// Define layers defs over the current definitions. Every name is validated
// before anything changes: one reserved or empty name rejects the whole call.
func (s *Store) Define(defs Definitions) error {
	names := sortedKeys(defs)
	if err := validateNames(names); err != nil {
		s.cfg.logger.LogDefine(DefineEvent{
			LayerID:    s.current.id,
			Generation: s.current.depth,
			Names:      names,
			Err:        err,
		})
		return err
	}

	next := newLayer(s.current)
	for name, def := range defs {
		next.entries[name] = def
	}

	s.previous = s.current
	s.previousAccessors = cloneAccessors(s.accessors)
	s.current = next

	for name, def := range defs {
		s.accessors[name] = newAccessor(name, def)
	}
	s.values = map[string]any{}
	s.inflight = map[string]bool{}

	s.cfg.logger.LogDefine(DefineEvent{
		LayerID:    next.id,
		Generation: next.depth,
		Names:      names,
	})
	return nil
}

// Revert discards the newest layer and restores the previous one. Names
// introduced only by the discarded layer lose their accessor; the rest get
// back the binding they had before. Without history Revert does nothing.
func (s *Store) Revert() {
	if s.previous == nil {
		s.cfg.logger.LogRevert(RevertEvent{
			LayerID:    s.current.id,
			Generation: s.current.depth,
		})
		return
	}

	var removed []string
	for name := range s.accessors {
		if s.current.owns(name) && !s.previous.has(name) {
			delete(s.accessors, name)
			removed = append(removed, name)
			continue
		}
		if prev, ok := s.previousAccessors[name]; ok {
			s.accessors[name] = prev
		}
	}
	sort.Strings(removed)

	s.current = s.previous
	s.previous = nil
	s.previousAccessors = nil
	s.values = map[string]any{}
	s.inflight = map[string]bool{}

	s.cfg.logger.LogRevert(RevertEvent{
		LayerID:    s.current.id,
		Generation: s.current.depth,
		Removed:    removed,
		Reverted:   true,
	})
}

// Get returns the value of name, or nil when it is undefined or its
// derivation failed.
func (s *Store) Get(name string) any {
	value, _, err := s.resolve(name)
	if err != nil {
		return nil
	}
	return value
}

// Lookup returns the value of name and whether it could be read.
func (s *Store) Lookup(name string) (any, bool) {
	value, ok, err := s.resolve(name)
	if err != nil || !ok {
		return nil, false
	}
	return value, true
}

// Value returns the value of name. Undefined names fail with ErrUndefined and
// failed derivations with a *DerivationError.
func (s *Store) Value(name string) (any, error) {
	value, ok, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUndefined, name)
	}
	return value, nil
}

// Has reports whether name has an accessor.
func (s *Store) Has(name string) bool {
	_, ok := s.accessors[name]
	return ok
}

// Names returns every property with an accessor, sorted.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.accessors))
	for name := range s.accessors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of properties with an accessor.
func (s *Store) Len() int {
	return len(s.accessors)
}

// CanRevert reports whether Revert would restore a layer.
func (s *Store) CanRevert() bool {
	return s.previous != nil
}

// Generation returns how many layers sit above the empty root layer.
func (s *Store) Generation() int {
	return s.current.depth
}

// resolve is the accessor read: memo hit, else compute and memoize. ok is
// false when name has no accessor. A read that runs into a property already
// being computed marks every in-flight property as cyclic; those results are
// reported as ErrCycle and never memoized.
func (s *Store) resolve(name string) (any, bool, error) {
	acc, ok := s.accessors[name]
	if !ok {
		return nil, false, nil
	}
	if value, cached := s.values[name]; cached {
		return value, true, nil
	}
	if _, busy := s.inflight[name]; busy {
		for pending := range s.inflight {
			s.inflight[pending] = true
		}
		return nil, true, &DerivationError{Name: name, Err: ErrCycle}
	}

	cache := s.values
	start := time.Now()
	value, info, cyclic, err := s.readTracked(acc, name)

	if info.derived {
		event := EvaluationEvent{
			Name:     name,
			Duration: time.Since(start),
			Err:      err,
		}
		if info.expr != nil {
			event.Engine = info.expr.Engine
			event.Expr = info.expr.Source
		}
		if err == nil && cyclic {
			err = &DerivationError{Name: name, Engine: event.Engine, Expr: event.Expr, Err: ErrCycle}
			event.Err = err
		}
		s.cfg.logger.LogEvaluation(event)
	}
	if err != nil {
		return nil, true, err
	}
	cache[name] = value
	return value, true, nil
}

// readTracked runs the accessor with name marked in flight. The mark is
// cleared even when the derivation panics.
func (s *Store) readTracked(acc accessor, name string) (value any, info readInfo, cyclic bool, err error) {
	inflight := s.inflight
	inflight[name] = false
	defer func() {
		cyclic = inflight[name]
		delete(inflight, name)
	}()
	value, info, err = acc.read(s, name)
	return value, info, cyclic, err
}

func validateNames(names []string) error {
	var reserved []string
	for _, name := range names {
		if name == "" {
			return ErrEmptyName
		}
		if IsReservedName(name) {
			reserved = append(reserved, name)
		}
	}
	if len(reserved) > 0 {
		return &ReservedNameError{Names: reserved}
	}
	return nil
}

func sortedKeys(defs Definitions) []string {
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
