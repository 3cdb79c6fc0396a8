package dsl

import "github.com/techwithparamesh/agentflow/pkg/domain"

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node    domain.Node
	builder *Builder
}

// Name sets the display name. Expressions may refer to the node by it.
func (n *NodeBuilder) Name(name string) *NodeBuilder {
	n.node.Name = name
	return n
}

// On selects the trigger event of a trigger node.
func (n *NodeBuilder) On(triggerID string) *NodeBuilder {
	n.node.TriggerID = triggerID
	return n
}

// Config stores one config value.
func (n *NodeBuilder) Config(key string, value any) *NodeBuilder {
	n.node.Config[key] = value
	return n
}

// ConfigMap merges a whole config map into the node.
func (n *NodeBuilder) ConfigMap(cfg map[string]any) *NodeBuilder {
	for k, v := range cfg {
		n.node.Config[k] = v
	}
	return n
}

// At places the node on the canvas.
func (n *NodeBuilder) At(x, y float64) *NodeBuilder {
	n.node.Position = domain.Position{X: x, Y: y}
	return n
}

// Then adds a connection from the default output to the target node.
func (n *NodeBuilder) Then(target string) *NodeBuilder {
	return n.ThenVia(domain.HandleBottom, target)
}

// ThenVia adds a connection from the named output to the target node.
func (n *NodeBuilder) ThenVia(handle domain.Handle, target string) *NodeBuilder {
	n.builder.edges = append(n.builder.edges, domain.Connection{
		Source:       n.node.ID,
		SourceHandle: handle,
		Target:       target,
	})
	return n
}

// Build returns a copy of the underlying domain.Node.
func (n *NodeBuilder) Build() domain.Node {
	return n.node.Clone()
}
