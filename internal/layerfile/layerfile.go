// Package layerfile reads store layers from YAML documents.
//
// A document is a mapping of property names to definitions. A value written
// as a single-key mapping on $expr, $cel or $js becomes an expression
// derivation for that engine, and $eval leaves the engine to the store's
// default. Every other value is a literal:
//
//	foo: bar
//	fiz: 222
//	double: {$expr: "fiz * 2"}
package layerfile

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	statedef "github.com/goliatone/go-statedef"
)

var engineKeys = map[string]string{
	"$expr": statedef.EngineExpr,
	"$cel":  statedef.EngineCEL,
	"$js":   statedef.EngineJS,
	"$eval": "",
}

// ErrNotMapping indicates a document whose root is not a mapping.
var ErrNotMapping = errors.New("layerfile: document root must be a mapping")

// Parse decodes one layer from data. An empty document is an empty layer.
func Parse(data []byte) (statedef.Definitions, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("layerfile: %w", err)
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return statedef.Definitions{}, nil
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w (line %d)", ErrNotMapping, doc.Line)
	}

	defs := make(statedef.Definitions, len(doc.Content)/2)
	for i := 0; i+1 < len(doc.Content); i += 2 {
		keyNode, valueNode := doc.Content[i], doc.Content[i+1]
		name := keyNode.Value
		if _, dup := defs[name]; dup {
			return nil, fmt.Errorf("layerfile: duplicate property %q (line %d)", name, keyNode.Line)
		}
		def, err := decodeDefinition(valueNode)
		if err != nil {
			return nil, fmt.Errorf("layerfile: property %q (line %d): %w", name, valueNode.Line, err)
		}
		defs[name] = def
	}
	return defs, nil
}

// ParseFile reads and decodes the layer stored at path.
func ParseFile(path string) (statedef.Definitions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("layerfile: read %s: %w", path, err)
	}
	defs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return defs, nil
}

func decodeDefinition(node *yaml.Node) (any, error) {
	if node.Kind == yaml.MappingNode && len(node.Content) == 2 {
		if engine, ok := engineKeys[node.Content[0].Value]; ok {
			source := strings.TrimSpace(node.Content[1].Value)
			if node.Content[1].Kind != yaml.ScalarNode || source == "" {
				return nil, fmt.Errorf("%s needs a non-empty expression", node.Content[0].Value)
			}
			return &statedef.Expression{Engine: engine, Source: source}, nil
		}
	}
	var value any
	if err := node.Decode(&value); err != nil {
		return nil, err
	}
	return value, nil
}
