package record

import (
	"gopkg.in/yaml.v3"
)

// MarshalYAML emits the row in block style with its original key order and
// number text. Scalars are re-quoted by the encoder only where needed.
func (r Row) MarshalYAML() (interface{}, error) {
	data, err := r.MarshalJSON()
	if err != nil {
		return nil, err
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, nil
	}

	node := doc.Content[0]
	blockStyle(node)
	return node, nil
}

func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}
