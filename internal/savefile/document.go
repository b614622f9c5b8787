package savefile

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// The document inside a container is YAML. It is handled as a yaml.Node
// tree rather than unmarshaled into Go types: save dialects carry custom
// tags this codec has no schema for, and the node representation keeps an
// unrecognized tag and its raw structure verbatim so they survive a
// parse/serialize round trip without loss.

// ParseDocument parses document bytes into a node tree.
func ParseDocument(data []byte) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &doc, nil
}

// MarshalDocument serializes a node tree back to document bytes. Marshaling
// is deterministic: the same tree always yields the same bytes.
func MarshalDocument(doc *yaml.Node) ([]byte, error) {
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		doc = doc.Content[0]
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return data, nil
}

// CloneDocument deep-copies a node tree so edits never touch the original.
func CloneDocument(doc *yaml.Node) *yaml.Node {
	if doc == nil {
		return nil
	}
	clone := *doc
	if len(doc.Content) > 0 {
		clone.Content = make([]*yaml.Node, len(doc.Content))
		for i, child := range doc.Content {
			clone.Content[i] = CloneDocument(child)
		}
	}
	if doc.Alias != nil {
		clone.Alias = CloneDocument(doc.Alias)
	}
	return &clone
}
