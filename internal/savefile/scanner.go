package savefile

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ItemLocation classifies the container an item serial lives in, derived
// from its document path alone. Purely descriptive.
type ItemLocation string

const (
	LocationInventory ItemLocation = "inventory"
	LocationBank      ItemLocation = "bank"
	LocationLostLoot  ItemLocation = "lost_loot"
	LocationEquipped  ItemLocation = "equipped"
	LocationVehicle   ItemLocation = "vehicle"
	LocationUnknown   ItemLocation = "unknown"
)

// classifyLocation matches well-known container names anywhere in the path.
func classifyLocation(path string) ItemLocation {
	p := strings.ToLower(path)
	switch {
	case strings.Contains(p, "bank"):
		return LocationBank
	case strings.Contains(p, "lost_loot") || strings.Contains(p, "lostloot"):
		return LocationLostLoot
	case strings.Contains(p, "equip"):
		return LocationEquipped
	case strings.Contains(p, "vehicle"):
		return LocationVehicle
	case strings.Contains(p, "inventory") || strings.Contains(p, "backpack") || strings.Contains(p, "items"):
		return LocationInventory
	}
	return LocationUnknown
}

// FindSerials walks the document and decodes every item serial scalar,
// keyed by its path: dot-separated map keys with [i] suffixes for sequence
// positions. Items whose payload could not be decoded at all (confidence
// none) are omitted.
func FindSerials(doc *yaml.Node) map[string]DecodedItem {
	items := make(map[string]DecodedItem)
	for path, node := range serialNodes(doc) {
		item := decodeItem(node.Value)
		if item.Confidence == ConfidenceNone {
			continue
		}
		item.Location = classifyLocation(path)
		items[path] = item
	}
	return items
}

// ApplyEdits re-encodes each edited item and writes the new serial at its
// exact path in a structural copy of the document. The original tree is
// never modified. Paths absent from the document are caller errors.
// Items whose re-encode fell back to the original serial are reported in
// warnings rather than failing the whole edit.
func ApplyEdits(doc *yaml.Node, edits map[string]DecodedItem) (*yaml.Node, []string, error) {
	clone := CloneDocument(doc)
	if len(edits) == 0 {
		return clone, nil, nil
	}

	nodes := serialNodes(clone)
	var warnings []string
	for path, item := range edits {
		node, ok := nodes[path]
		if !ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrPathNotFound, path)
		}
		serial, fellBack := encodeItem(item)
		if fellBack {
			warnings = append(warnings, fmt.Sprintf("%s: edit could not be applied, original serial preserved", path))
		}
		node.Value = serial
	}
	return clone, warnings, nil
}

// serialNodes indexes every serial-bearing scalar node by path.
func serialNodes(doc *yaml.Node) map[string]*yaml.Node {
	nodes := make(map[string]*yaml.Node)
	collectSerialNodes(doc, "", nodes)
	return nodes
}

func collectSerialNodes(node *yaml.Node, path string, nodes map[string]*yaml.Node) {
	if node == nil {
		return
	}
	switch node.Kind {
	case yaml.DocumentNode:
		for _, child := range node.Content {
			collectSerialNodes(child, path, nodes)
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, value := node.Content[i], node.Content[i+1]
			collectSerialNodes(value, joinPath(path, key.Value), nodes)
		}
	case yaml.SequenceNode:
		for i, child := range node.Content {
			collectSerialNodes(child, fmt.Sprintf("%s[%d]", path, i), nodes)
		}
	case yaml.ScalarNode:
		if strings.HasPrefix(node.Value, SerialPrefix) {
			nodes[path] = node
		}
	}
}

func joinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}
