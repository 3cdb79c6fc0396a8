package domain

import (
	"reflect"
)

// FlowDiff represents the changes between two flow snapshots.
// It is designed to be serialized to JSON for partial updates on a client.
type FlowDiff struct {
	// FlowID is always present to identify the target.
	FlowID string `json:"flow_id"`

	AddedNodes   []string `json:"added_nodes,omitempty"`
	RemovedNodes []string `json:"removed_nodes,omitempty"`

	// ChangedNodes lists nodes present in both snapshots whose content differs.
	ChangedNodes []string `json:"changed_nodes,omitempty"`

	AddedConnections   []Connection `json:"added_connections,omitempty"`
	RemovedConnections []Connection `json:"removed_connections,omitempty"`

	// Name and Active are set only when they changed.
	Name   *string `json:"name,omitempty"`
	Active *bool   `json:"active,omitempty"`
}

// Diff calculates the difference between oldFlow and newFlow.
// If oldFlow is nil, it returns a diff representing the entire newFlow (initial load).
// It returns nil when nothing changed.
func Diff(oldFlow, newFlow *Flow) *FlowDiff {
	if newFlow == nil {
		return nil
	}
	if oldFlow == nil {
		oldFlow = &Flow{ID: newFlow.ID}
	}

	diff := &FlowDiff{FlowID: newFlow.ID}

	if oldFlow.Name != newFlow.Name {
		diff.Name = &newFlow.Name
	}
	if oldFlow.Active != newFlow.Active {
		diff.Active = &newFlow.Active
	}

	oldNodes := make(map[string]Node, len(oldFlow.Nodes))
	for _, n := range oldFlow.Nodes {
		oldNodes[n.ID] = n
	}
	seen := make(map[string]bool, len(newFlow.Nodes))
	for _, n := range newFlow.Nodes {
		seen[n.ID] = true
		prev, exists := oldNodes[n.ID]
		switch {
		case !exists:
			diff.AddedNodes = append(diff.AddedNodes, n.ID)
		case !nodesEqual(prev, n):
			diff.ChangedNodes = append(diff.ChangedNodes, n.ID)
		}
	}
	for _, n := range oldFlow.Nodes {
		if !seen[n.ID] {
			diff.RemovedNodes = append(diff.RemovedNodes, n.ID)
		}
	}

	diff.AddedConnections = connectionsMissing(newFlow.Connections, oldFlow.Connections)
	diff.RemovedConnections = connectionsMissing(oldFlow.Connections, newFlow.Connections)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// connectionsMissing returns the connections of a that are absent from b.
func connectionsMissing(a, b []Connection) []Connection {
	keys := make(map[string]bool, len(b))
	for _, c := range b {
		keys[c.Key()] = true
	}
	var out []Connection
	for _, c := range a {
		if !keys[c.Key()] {
			out = append(out, c)
		}
	}
	return out
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *FlowDiff) IsEmpty() bool {
	return d.Name == nil &&
		d.Active == nil &&
		len(d.AddedNodes) == 0 &&
		len(d.RemovedNodes) == 0 &&
		len(d.ChangedNodes) == 0 &&
		len(d.AddedConnections) == 0 &&
		len(d.RemovedConnections) == 0
}

// configEqual compares two config maps, treating nil and empty as equal.
func configEqual(a, b map[string]any) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}
