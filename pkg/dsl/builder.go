package dsl

import (
	"fmt"

	"github.com/techwithparamesh/agentflow/pkg/domain"
	"github.com/techwithparamesh/agentflow/pkg/graph"
)

// Builder manages the flow construction.
type Builder struct {
	id, name string
	order    []string
	nodes    map[string]*NodeBuilder
	edges    []domain.Connection
}

// New creates a new flow builder.
func New(id, name string) *Builder {
	return &Builder{
		id:    id,
		name:  name,
		nodes: make(map[string]*NodeBuilder),
	}
}

// Logic creates a node of the given type, typically a condition, router,
// delay or loop. If the node already exists, it returns the existing builder.
func (b *Builder) Logic(id string, t domain.NodeType) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		return nb
	}
	nb := &NodeBuilder{
		node: domain.Node{
			ID:     id,
			Type:   t,
			Config: map[string]any{},
		},
		builder: b,
	}
	b.nodes[id] = nb
	b.order = append(b.order, id)
	return nb
}

// Trigger adds a trigger node of the given app.
func (b *Builder) Trigger(id, appID string) *NodeBuilder {
	nb := b.Logic(id, domain.NodeTypeTrigger)
	nb.node.AppID = appID
	return nb
}

// Action adds an action node running actionID of the given app.
func (b *Builder) Action(id, appID, actionID string) *NodeBuilder {
	nb := b.Logic(id, domain.NodeTypeAction)
	nb.node.AppID = appID
	nb.node.ActionID = actionID
	return nb
}

// Build assembles the flow. Nodes are added in declaration order, then
// connections, with the same checks the editor applies.
func (b *Builder) Build() (*domain.Flow, error) {
	flow := domain.NewFlow(b.id, b.name)
	for _, id := range b.order {
		if err := graph.AddNode(flow, b.nodes[id].Build()); err != nil {
			return nil, fmt.Errorf("failed to add node %q: %w", id, err)
		}
	}
	for _, c := range b.edges {
		if err := graph.AddConnection(flow, c); err != nil {
			return nil, fmt.Errorf("failed to connect %s: %w", c.Key(), err)
		}
	}
	return flow, nil
}
