package domain

import "fmt"

// Connection is a directed edge from a source handle to a target node.
type Connection struct {
	Source       string `json:"source" yaml:"source"`
	SourceHandle Handle `json:"sourceHandle" yaml:"sourceHandle"`
	Target       string `json:"target" yaml:"target"`
}

// Key identifies the connection. Two connections with equal keys are duplicates.
func (c Connection) Key() string {
	return fmt.Sprintf("%s:%s->%s", c.Source, c.SourceHandle, c.Target)
}

// References reports whether the connection touches the given node.
func (c Connection) References(nodeID string) bool {
	return c.Source == nodeID || c.Target == nodeID
}
