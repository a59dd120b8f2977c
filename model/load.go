package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v4"
)

// Format identifies the serialization of a model file.
type Format string

const (
	// FormatYAML is YAML output.
	FormatYAML Format = "yaml"
	// FormatJSON is JSON output.
	FormatJSON Format = "json"
)

// FormatFromPath guesses the format from a file extension, defaulting to YAML.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Load reads and parses the model file at path.
func Load(path string) (*Dict, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is supplied by the caller on purpose
	if err != nil {
		return nil, fmt.Errorf("model: reading %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("model: %s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes YAML or JSON into a Dict, keeping source key order.
// An empty input yields an empty Dict.
func Parse(data []byte) (*Dict, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing model: %w", err)
	}
	if root.Kind == 0 || (root.Kind == yaml.DocumentNode && len(root.Content) == 0) {
		return NewDict(), nil
	}
	v, err := fromNode(&root)
	if err != nil {
		return nil, err
	}
	d, ok := AsDict(v)
	if !ok {
		return nil, fmt.Errorf("parsing model: top level must be a mapping, got %T", v)
	}
	return d, nil
}

func fromNode(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return fromNode(n.Content[0])
	case yaml.AliasNode:
		return fromNode(n.Alias)
	case yaml.MappingNode:
		d := NewDict()
		for i := 0; i+1 < len(n.Content); i += 2 {
			keyNode, valNode := n.Content[i], n.Content[i+1]
			if keyNode.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping keys must be scalars", keyNode.Line)
			}
			v, err := fromNode(valNode)
			if err != nil {
				return nil, err
			}
			d.Set(keyNode.Value, v)
		}
		return d, nil
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := fromNode(c)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("line %d: unsupported YAML node kind %v", n.Line, n.Kind)
	}
}

// Marshal encodes d in the requested format, preserving key order.
func Marshal(d *Dict, format Format) ([]byte, error) {
	if format == FormatJSON {
		data, err := json.MarshalIndent(d, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("model: marshaling JSON: %w", err)
		}
		return data, nil
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(toNode(d)); err != nil {
		return nil, fmt.Errorf("model: marshaling YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("model: marshaling YAML: %w", err)
	}
	return buf.Bytes(), nil
}

// MarshalYAML lets yaml encoders write a Dict in key order, including when
// it is nested in another value.
func (d *Dict) MarshalYAML() (any, error) {
	return toNode(d), nil
}

func toNode(v any) *yaml.Node {
	switch t := v.(type) {
	case *Dict:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		t.Range(func(key string, value any) bool {
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
				toNode(value))
			return true
		})
		return n
	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range t {
			n.Content = append(n.Content, toNode(item))
		}
		return n
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	default:
		var n yaml.Node
		if err := n.Encode(t); err != nil {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: fmt.Sprint(t)}
		}
		return &n
	}
}
