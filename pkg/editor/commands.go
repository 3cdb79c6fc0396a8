package editor

import (
	"fmt"
	"slices"

	"github.com/techwithparamesh/agentflow/pkg/domain"
	"github.com/techwithparamesh/agentflow/pkg/graph"
)

// Command is a change to a flow. Do applies it and returns a new command that
// reverts it. Do never modifies its receiver, so one value may be applied any
// number of times and the inverses it handed out stay valid.
type Command interface {
	Name() string
	Do(flow *domain.Flow) (Command, error)
}

// AddNode inserts a node.
type AddNode struct {
	Node domain.Node
}

func (c *AddNode) Name() string { return "add_node" }

func (c *AddNode) Do(flow *domain.Flow) (Command, error) {
	if err := graph.AddNode(flow, c.Node.Clone()); err != nil {
		return nil, err
	}
	return &RemoveNode{NodeID: c.Node.ID}, nil
}

// RemoveNode deletes a node together with every connection touching it.
type RemoveNode struct {
	NodeID string
}

func (c *RemoveNode) Name() string { return "remove_node" }

func (c *RemoveNode) Do(flow *domain.Flow) (Command, error) {
	r, err := graph.RemoveNode(flow, c.NodeID)
	if err != nil {
		return nil, err
	}
	r.Node = r.Node.Clone()
	r.Connections = slices.Clone(r.Connections)
	return &restoreNode{removed: r}, nil
}

// restoreNode puts back what a RemoveNode took out, at the same positions.
type restoreNode struct {
	removed graph.Removed
}

func (c *restoreNode) Name() string { return "restore_node" }

func (c *restoreNode) Do(flow *domain.Flow) (Command, error) {
	r := c.removed
	r.Node = r.Node.Clone()
	if err := graph.Restore(flow, r); err != nil {
		return nil, err
	}
	return &RemoveNode{NodeID: r.Node.ID}, nil
}

// AddConnection links two nodes.
type AddConnection struct {
	Connection domain.Connection
}

func (c *AddConnection) Name() string { return "add_connection" }

func (c *AddConnection) Do(flow *domain.Flow) (Command, error) {
	if err := graph.AddConnection(flow, c.Connection); err != nil {
		return nil, err
	}
	return &RemoveConnection{Connection: c.Connection}, nil
}

// RemoveConnection unlinks two nodes.
type RemoveConnection struct {
	Connection domain.Connection
}

func (c *RemoveConnection) Name() string { return "remove_connection" }

func (c *RemoveConnection) Do(flow *domain.Flow) (Command, error) {
	i, err := graph.RemoveConnection(flow, c.Connection)
	if err != nil {
		return nil, err
	}
	return &insertConnection{index: i, conn: c.Connection}, nil
}

// insertConnection puts a removed connection back at its old index.
type insertConnection struct {
	index int
	conn  domain.Connection
}

func (c *insertConnection) Name() string { return "insert_connection" }

func (c *insertConnection) Do(flow *domain.Flow) (Command, error) {
	graph.InsertConnection(flow, c.index, c.conn)
	return &RemoveConnection{Connection: c.conn}, nil
}

// UpdateConfig sets one config key, or deletes it when Delete is true.
type UpdateConfig struct {
	NodeID string
	Key    string
	Value  any
	Delete bool
}

func (c *UpdateConfig) Name() string { return "update_config" }

func (c *UpdateConfig) Do(flow *domain.Flow) (Command, error) {
	n := flow.Node(c.NodeID)
	if n == nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrNodeNotFound, c.NodeID)
	}
	if c.Key == "" {
		return nil, fmt.Errorf("config key is empty for node %q", c.NodeID)
	}
	if n.Config == nil {
		n.Config = map[string]any{}
	}
	prev, existed := n.Config[c.Key]
	inverse := &UpdateConfig{NodeID: c.NodeID, Key: c.Key, Value: domain.CloneValue(prev), Delete: !existed}

	if c.Delete {
		delete(n.Config, c.Key)
	} else {
		n.Config[c.Key] = domain.CloneValue(c.Value)
	}
	return inverse, nil
}

// SetSelector changes which app, trigger and action govern a node's config.
type SetSelector struct {
	NodeID    string
	AppID     string
	TriggerID string
	ActionID  string
}

func (c *SetSelector) Name() string { return "set_selector" }

func (c *SetSelector) Do(flow *domain.Flow) (Command, error) {
	n := flow.Node(c.NodeID)
	if n == nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrNodeNotFound, c.NodeID)
	}
	inverse := &SetSelector{NodeID: c.NodeID, AppID: n.AppID, TriggerID: n.TriggerID, ActionID: n.ActionID}
	n.AppID, n.TriggerID, n.ActionID = c.AppID, c.TriggerID, c.ActionID
	return inverse, nil
}

// MoveNode changes a node's canvas position.
type MoveNode struct {
	NodeID string
	To     domain.Position
}

func (c *MoveNode) Name() string { return "move_node" }

func (c *MoveNode) Do(flow *domain.Flow) (Command, error) {
	n := flow.Node(c.NodeID)
	if n == nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrNodeNotFound, c.NodeID)
	}
	inverse := &MoveNode{NodeID: c.NodeID, To: n.Position}
	n.Position = c.To
	return inverse, nil
}

// RenameNode changes a node's display name.
type RenameNode struct {
	NodeID  string
	NewName string
}

func (c *RenameNode) Name() string { return "rename_node" }

func (c *RenameNode) Do(flow *domain.Flow) (Command, error) {
	n := flow.Node(c.NodeID)
	if n == nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrNodeNotFound, c.NodeID)
	}
	inverse := &RenameNode{NodeID: c.NodeID, NewName: n.Name}
	n.Name = c.NewName
	return inverse, nil
}

// SetActive switches a flow on or off.
type SetActive struct {
	Active bool
}

func (c *SetActive) Name() string { return "set_active" }

func (c *SetActive) Do(flow *domain.Flow) (Command, error) {
	inverse := &SetActive{Active: flow.Active}
	flow.Active = c.Active
	return inverse, nil
}

// Compound groups commands into one step. Its inverse runs the inverses of
// the steps in reverse order.
type Compound struct {
	Label    string
	Commands []Command
}

func (c *Compound) Name() string {
	if c.Label != "" {
		return c.Label
	}
	return "compound"
}

func (c *Compound) Do(flow *domain.Flow) (Command, error) {
	inverses := make([]Command, len(c.Commands))
	for i, cmd := range c.Commands {
		inv, err := cmd.Do(flow)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, cmd.Name(), err)
		}
		inverses[len(c.Commands)-1-i] = inv
	}
	return &Compound{Label: c.Label, Commands: inverses}, nil
}
