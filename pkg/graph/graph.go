package graph

import (
	"fmt"
	"iter"
	"slices"

	"github.com/techwithparamesh/agentflow/pkg/domain"
)

// AddNode appends node to the flow. A nil config is replaced by an empty map.
func AddNode(flow *domain.Flow, node domain.Node) error {
	if node.ID == "" {
		return fmt.Errorf("%w: empty id", domain.ErrInvalidNode)
	}
	if !node.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q for node %q", domain.ErrInvalidNode, node.Type, node.ID)
	}
	if flow.HasNode(node.ID) {
		return fmt.Errorf("%w: %q", domain.ErrDuplicateNode, node.ID)
	}
	if node.Config == nil {
		node.Config = map[string]any{}
	}
	if node.Status == "" {
		node.Status = domain.StatusIncomplete
	}
	flow.Nodes = append(flow.Nodes, node)
	return nil
}

// IndexedConnection remembers where a connection sat in the flow.
type IndexedConnection struct {
	Index      int
	Connection domain.Connection
}

// Removed captures what RemoveNode took out of a flow.
type Removed struct {
	Node        domain.Node
	Index       int
	Connections []IndexedConnection
}

// RemoveNode deletes the node and every connection referencing it.
func RemoveNode(flow *domain.Flow, id string) (Removed, error) {
	idx := flow.NodeIndex(id)
	if idx < 0 {
		return Removed{}, fmt.Errorf("%w: %q", domain.ErrNodeNotFound, id)
	}

	removed := Removed{Node: flow.Nodes[idx], Index: idx}
	kept := make([]domain.Connection, 0, len(flow.Connections))
	for i, c := range flow.Connections {
		if c.References(id) {
			removed.Connections = append(removed.Connections, IndexedConnection{Index: i, Connection: c})
			continue
		}
		kept = append(kept, c)
	}

	flow.Nodes = slices.Delete(slices.Clone(flow.Nodes), idx, idx+1)
	flow.Connections = kept
	return removed, nil
}

// Restore reverses a RemoveNode, putting the node and its connections back at
// their original positions.
func Restore(flow *domain.Flow, r Removed) error {
	if flow.HasNode(r.Node.ID) {
		return fmt.Errorf("%w: %q", domain.ErrDuplicateNode, r.Node.ID)
	}
	idx := min(max(r.Index, 0), len(flow.Nodes))
	flow.Nodes = slices.Insert(slices.Clone(flow.Nodes), idx, r.Node)

	conns := slices.Clone(flow.Connections)
	for _, ic := range r.Connections {
		at := min(max(ic.Index, 0), len(conns))
		conns = slices.Insert(conns, at, ic.Connection)
	}
	flow.Connections = conns
	return nil
}

// CheckConnection reports why conn cannot be added to flow, or nil.
func CheckConnection(flow *domain.Flow, conn domain.Connection) error {
	src := flow.Node(conn.Source)
	if src == nil {
		return fmt.Errorf("%w: source %q does not exist", domain.ErrInvalidConnection, conn.Source)
	}
	dst := flow.Node(conn.Target)
	if dst == nil {
		return fmt.Errorf("%w: target %q does not exist", domain.ErrInvalidConnection, conn.Target)
	}
	if dst.Type == domain.NodeTypeTrigger {
		return fmt.Errorf("%w: cannot connect into trigger %q", domain.ErrInvalidConnection, conn.Target)
	}
	if conn.Source == conn.Target {
		return fmt.Errorf("%w: node %q cannot connect to itself", domain.ErrInvalidConnection, conn.Source)
	}
	if !conn.SourceHandle.Valid() {
		return fmt.Errorf("%w: unknown handle %q", domain.ErrInvalidConnection, conn.SourceHandle)
	}
	if src.Type == domain.NodeTypeErrorHandler && conn.SourceHandle == domain.HandleBottom {
		return fmt.Errorf("%w: error handler %q has no bottom output", domain.ErrInvalidConnection, conn.Source)
	}
	for _, c := range flow.Connections {
		if c.Key() == conn.Key() {
			return fmt.Errorf("%w: %s already exists", domain.ErrInvalidConnection, conn.Key())
		}
	}
	for id := range ReachableFrom(flow, conn.Target) {
		if id == conn.Source {
			return fmt.Errorf("%w: %s would create a cycle", domain.ErrInvalidConnection, conn.Key())
		}
	}
	return nil
}

// AddConnection appends conn after CheckConnection accepts it.
func AddConnection(flow *domain.Flow, conn domain.Connection) error {
	if err := CheckConnection(flow, conn); err != nil {
		return err
	}
	flow.Connections = append(flow.Connections, conn)
	return nil
}

// RemoveConnection deletes conn and returns the index it occupied.
func RemoveConnection(flow *domain.Flow, conn domain.Connection) (int, error) {
	for i, c := range flow.Connections {
		if c.Key() == conn.Key() {
			flow.Connections = slices.Delete(slices.Clone(flow.Connections), i, i+1)
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s not found", domain.ErrInvalidConnection, conn.Key())
}

// InsertConnection puts conn back at index without re-checking invariants.
// It is the inverse of RemoveConnection.
func InsertConnection(flow *domain.Flow, index int, conn domain.Connection) {
	at := min(max(index, 0), len(flow.Connections))
	flow.Connections = slices.Insert(slices.Clone(flow.Connections), at, conn)
}

// ReachableFrom yields, breadth first, every node downstream of id. The start
// node itself is not yielded. Each range over the sequence walks the flow again.
func ReachableFrom(flow *domain.Flow, id string) iter.Seq[string] {
	return bfs(flow, id, func(c domain.Connection) (string, string) { return c.Source, c.Target })
}

// Upstream yields every node that can reach id, nearest first.
func Upstream(flow *domain.Flow, id string) iter.Seq[string] {
	return bfs(flow, id, func(c domain.Connection) (string, string) { return c.Target, c.Source })
}

func bfs(flow *domain.Flow, start string, edge func(domain.Connection) (from, to string)) iter.Seq[string] {
	return func(yield func(string) bool) {
		adj := make(map[string][]string, len(flow.Nodes))
		for _, c := range flow.Connections {
			from, to := edge(c)
			adj[from] = append(adj[from], to)
		}
		visited := map[string]bool{start: true}
		queue := []string{start}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, next := range adj[cur] {
				if visited[next] {
					continue
				}
				visited[next] = true
				if !yield(next) {
					return
				}
				queue = append(queue, next)
			}
		}
	}
}

// ReachableFromAny returns the set of nodes downstream of any of the roots.
func ReachableFromAny(flow *domain.Flow, roots ...string) map[string]bool {
	seen := make(map[string]bool)
	for _, r := range roots {
		for id := range ReachableFrom(flow, r) {
			seen[id] = true
		}
	}
	return seen
}
