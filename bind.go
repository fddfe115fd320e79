package statedef

import (
	"fmt"

	"github.com/goliatone/go-statedef/internal/hydrate"
)

// Snapshot evaluates every property and returns the values by name. The
// first failing derivation aborts the snapshot.
func (s *Store) Snapshot() (map[string]any, error) {
	out := make(map[string]any, len(s.accessors))
	for _, name := range s.Names() {
		value, err := s.Value(name)
		if err != nil {
			return nil, err
		}
		out[name] = value
	}
	return out, nil
}

// BindOption configures Bind.
type BindOption func(*bindConfig)

type bindConfig struct {
	strict bool
}

// BindStrict rejects properties that have no matching field in the target.
func BindStrict() BindOption {
	return func(cfg *bindConfig) {
		cfg.strict = true
	}
}

// Bind decodes a snapshot of s into T using T's JSON tags. When T (or *T)
// has a Validate() error method it runs after decoding.
func Bind[T any](s *Store, opts ...BindOption) (T, error) {
	var zero T
	if s == nil {
		return zero, fmt.Errorf("statedef: bind on nil store")
	}
	cfg := bindConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	snapshot, err := s.Snapshot()
	if err != nil {
		return zero, err
	}

	decoderOpts := []hydrate.DecoderOption[T]{
		hydrate.WithPostHook[T](func(_ hydrate.Context, value *T) error {
			return validateValue(value)
		}),
	}
	if cfg.strict {
		decoderOpts = append(decoderOpts, hydrate.WithDisallowUnknownFields[T]())
	}
	ctx := hydrate.Context{LayerID: s.current.id, Generation: s.current.depth}
	return hydrate.NewDecoder(decoderOpts...).Decode(ctx, snapshot)
}

func validateValue[T any](value *T) error {
	if value == nil {
		return nil
	}
	if v, ok := any(*value).(interface{ Validate() error }); ok {
		return v.Validate()
	}
	if v, ok := any(value).(interface{ Validate() error }); ok {
		return v.Validate()
	}
	return nil
}
