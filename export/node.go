package export

import (
	"bytes"
	"encoding/json"

	"github.com/c360studio/semprov/vocabulary/linkedart"
)

// Node is a JSON-LD node. ID, Type and Label are emitted as "id", "type" and
// "_label"; everything else goes in Properties.
type Node struct {
	ID         string
	Type       string
	Label      string
	Properties map[string]any
}

func newNode(id, class, label string) *Node {
	return &Node{ID: id, Type: class, Label: label, Properties: make(map[string]any)}
}

// MarshalJSON flattens the node into one object. Keys come out sorted, so
// equal nodes serialize to equal bytes.
func (n *Node) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(n.Properties)+3)
	for k, v := range n.Properties {
		m[k] = v
	}
	if n.ID != "" {
		m[linkedart.PropID] = n.ID
	}
	if n.Type != "" {
		m[linkedart.PropType] = n.Type
	}
	if n.Label != "" {
		m[linkedart.PropLabel] = n.Label
	}
	return marshal(m)
}

// marshal is json.Marshal without HTML escaping, so URIs and labels holding
// '&', '<' or '>' stay byte-identical to the minted strings.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// set stores v under key unless v is empty.
func (n *Node) set(key string, v any) {
	switch x := v.(type) {
	case nil:
		return
	case *Node:
		if x == nil {
			return
		}
	case string:
		if x == "" {
			return
		}
	case []*Node:
		if len(x) == 0 {
			return
		}
	}
	n.Properties[key] = v
}

// add appends v to the list under key.
func (n *Node) add(key string, v ...*Node) {
	if len(v) == 0 {
		return
	}
	list, _ := n.Properties[key].([]*Node)
	n.Properties[key] = append(list, v...)
}
