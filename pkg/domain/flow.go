package domain

import (
	"encoding/json"
	"fmt"
)

// Flow is the aggregate root: it owns every node and connection.
type Flow struct {
	ID          string       `json:"id" yaml:"id"`
	Name        string       `json:"name" yaml:"name"`
	Active      bool         `json:"active" yaml:"active"`
	Nodes       []Node       `json:"nodes" yaml:"nodes"`
	Connections []Connection `json:"connections" yaml:"connections"`
}

// NewFlow creates an empty flow.
func NewFlow(id, name string) *Flow {
	return &Flow{
		ID:          id,
		Name:        name,
		Nodes:       []Node{},
		Connections: []Connection{},
	}
}

// DecodeFlow parses the persisted JSON layout of a flow.
func DecodeFlow(data []byte) (*Flow, error) {
	var f Flow
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode flow: %w", err)
	}
	if f.Nodes == nil {
		f.Nodes = []Node{}
	}
	if f.Connections == nil {
		f.Connections = []Connection{}
	}
	for i := range f.Nodes {
		if f.Nodes[i].Config == nil {
			f.Nodes[i].Config = map[string]any{}
		}
	}
	return &f, nil
}

// NodeIndex returns the position of the node in Nodes, or -1.
func (f *Flow) NodeIndex(id string) int {
	for i := range f.Nodes {
		if f.Nodes[i].ID == id {
			return i
		}
	}
	return -1
}

// Node returns a pointer to the node with the given id, or nil.
// The pointer aliases the flow; callers outside the editor must treat it as read-only.
func (f *Flow) Node(id string) *Node {
	if i := f.NodeIndex(id); i >= 0 {
		return &f.Nodes[i]
	}
	return nil
}

// HasNode reports whether a node with the id exists.
func (f *Flow) HasNode(id string) bool {
	return f.NodeIndex(id) >= 0
}

// Outgoing returns the connections leaving the node, in flow order.
func (f *Flow) Outgoing(id string) []Connection {
	var out []Connection
	for _, c := range f.Connections {
		if c.Source == id {
			out = append(out, c)
		}
	}
	return out
}

// Incoming returns the connections entering the node, in flow order.
func (f *Flow) Incoming(id string) []Connection {
	var in []Connection
	for _, c := range f.Connections {
		if c.Target == id {
			in = append(in, c)
		}
	}
	return in
}

// NodesOfType returns copies of every node of type t, in flow order.
func (f *Flow) NodesOfType(t NodeType) []Node {
	var nodes []Node
	for _, n := range f.Nodes {
		if n.Type == t {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// Clone returns a deep copy of the flow. Config values are copied recursively
// for the JSON-like shapes (maps and slices); other values are shared.
func (f *Flow) Clone() *Flow {
	if f == nil {
		return nil
	}
	out := &Flow{
		ID:          f.ID,
		Name:        f.Name,
		Active:      f.Active,
		Nodes:       make([]Node, len(f.Nodes)),
		Connections: make([]Connection, len(f.Connections)),
	}
	for i, n := range f.Nodes {
		out.Nodes[i] = n.Clone()
	}
	copy(out.Connections, f.Connections)
	return out
}

// Clone returns a deep copy of the node.
func (n Node) Clone() Node {
	n.Config = CloneConfig(n.Config)
	return n
}

// CloneConfig deep-copies a config map.
func CloneConfig(cfg map[string]any) map[string]any {
	out := make(map[string]any, len(cfg))
	for k, v := range cfg {
		out[k] = CloneValue(v)
	}
	return out
}

// CloneValue deep-copies maps and slices of JSON-like values.
func CloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return CloneConfig(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = CloneValue(e)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}

// Equal reports structural equality. A nil config equals an empty one.
func (f *Flow) Equal(other *Flow) bool {
	if f == nil || other == nil {
		return f == other
	}
	if f.ID != other.ID || f.Name != other.Name || f.Active != other.Active {
		return false
	}
	if len(f.Nodes) != len(other.Nodes) || len(f.Connections) != len(other.Connections) {
		return false
	}
	for i := range f.Nodes {
		if !nodesEqual(f.Nodes[i], other.Nodes[i]) {
			return false
		}
	}
	for i := range f.Connections {
		if f.Connections[i] != other.Connections[i] {
			return false
		}
	}
	return true
}

func nodesEqual(a, b Node) bool {
	if a.ID != b.ID || a.Name != b.Name || a.Type != b.Type ||
		a.AppID != b.AppID || a.TriggerID != b.TriggerID || a.ActionID != b.ActionID ||
		a.Status != b.Status || a.Position != b.Position {
		return false
	}
	return configEqual(a.Config, b.Config)
}
