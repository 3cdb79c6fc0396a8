package graph

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techwithparamesh/agentflow/pkg/domain"
)

func conn(src, handle, dst string) domain.Connection {
	return domain.Connection{Source: src, SourceHandle: domain.Handle(handle), Target: dst}
}

// chain builds trigger -> a -> b plus a disconnected action c.
func chain(t *testing.T) *domain.Flow {
	t.Helper()
	f := domain.NewFlow("f1", "Chain")
	require.NoError(t, AddNode(f, domain.Node{ID: "trigger", Type: domain.NodeTypeTrigger}))
	require.NoError(t, AddNode(f, domain.Node{ID: "a", Type: domain.NodeTypeAction}))
	require.NoError(t, AddNode(f, domain.Node{ID: "b", Type: domain.NodeTypeAction}))
	require.NoError(t, AddNode(f, domain.Node{ID: "c", Type: domain.NodeTypeAction}))
	require.NoError(t, AddConnection(f, conn("trigger", "bottom", "a")))
	require.NoError(t, AddConnection(f, conn("a", "bottom", "b")))
	return f
}

func TestAddNode(t *testing.T) {
	f := domain.NewFlow("f", "")
	require.NoError(t, AddNode(f, domain.Node{ID: "n", Type: domain.NodeTypeDelay}))
	assert.NotNil(t, f.Nodes[0].Config)
	assert.Equal(t, domain.StatusIncomplete, f.Nodes[0].Status)

	assert.ErrorIs(t, AddNode(f, domain.Node{ID: "n", Type: domain.NodeTypeDelay}), domain.ErrDuplicateNode)
	assert.ErrorIs(t, AddNode(f, domain.Node{Type: domain.NodeTypeDelay}), domain.ErrInvalidNode)
	assert.ErrorIs(t, AddNode(f, domain.Node{ID: "x", Type: "spaceship"}), domain.ErrInvalidNode)
	assert.Len(t, f.Nodes, 1)
}

func TestAddConnection_Rejections(t *testing.T) {
	tests := []struct {
		name string
		conn domain.Connection
	}{
		{"missing source", conn("ghost", "bottom", "a")},
		{"missing target", conn("a", "bottom", "ghost")},
		{"into trigger", conn("a", "bottom", "trigger")},
		{"self loop", conn("a", "bottom", "a")},
		{"bad handle", conn("a", "sideways", "c")},
		{"negative index handle", conn("a", "-1", "c")},
		{"duplicate", conn("trigger", "bottom", "a")},
		{"cycle", conn("b", "bottom", "a")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := chain(t)
			before := f.Clone()
			err := AddConnection(f, tt.conn)
			assert.ErrorIs(t, err, domain.ErrInvalidConnection)
			assert.True(t, before.Equal(f), "rejected connection must not mutate the flow")
		})
	}
}

func TestAddConnection_ErrorHandlerBottom(t *testing.T) {
	f := chain(t)
	require.NoError(t, AddNode(f, domain.Node{ID: "oops", Type: domain.NodeTypeErrorHandler}))
	assert.ErrorIs(t, AddConnection(f, conn("oops", "bottom", "c")), domain.ErrInvalidConnection)
	assert.NoError(t, AddConnection(f, conn("oops", "0", "c")))
}

func TestRemoveNode_CascadesAndRestores(t *testing.T) {
	f := chain(t)
	before := f.Clone()

	removed, err := RemoveNode(f, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, removed.Index)
	assert.Len(t, removed.Connections, 2)
	assert.False(t, f.HasNode("a"))
	assert.Empty(t, f.Connections)

	require.NoError(t, Restore(f, removed))
	assert.True(t, before.Equal(f))

	_, err = RemoveNode(f, "ghost")
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)
}

func TestRemoveNode_DoesNotAliasPreviousSlices(t *testing.T) {
	f := chain(t)
	snapshot := f.Nodes
	_, err := RemoveNode(f, "trigger")
	require.NoError(t, err)
	assert.Equal(t, "trigger", snapshot[0].ID)
}

func TestRemoveConnection(t *testing.T) {
	f := chain(t)
	idx, err := RemoveConnection(f, conn("a", "bottom", "b"))
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.Len(t, f.Connections, 1)

	_, err = RemoveConnection(f, conn("a", "bottom", "b"))
	assert.ErrorIs(t, err, domain.ErrInvalidConnection)

	InsertConnection(f, idx, conn("a", "bottom", "b"))
	assert.Equal(t, chain(t).Connections, f.Connections)
}

func TestReachableFrom(t *testing.T) {
	f := chain(t)

	got := slices.Collect(ReachableFrom(f, "trigger"))
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, got, slices.Collect(ReachableFrom(f, "trigger")), "sequence is restartable")

	assert.Empty(t, slices.Collect(ReachableFrom(f, "c")))
	assert.Empty(t, slices.Collect(ReachableFrom(f, "ghost")))

	for id := range ReachableFrom(f, "trigger") {
		assert.Equal(t, "a", id)
		break
	}

	assert.Equal(t, []string{"a", "trigger"}, slices.Collect(Upstream(f, "b")))

	reach := ReachableFromAny(f, "trigger", "c")
	assert.True(t, reach["b"])
	assert.False(t, reach["c"])
}

func TestReachableFrom_Branches(t *testing.T) {
	f := domain.NewFlow("f", "")
	require.NoError(t, AddNode(f, domain.Node{ID: "t", Type: domain.NodeTypeTrigger}))
	require.NoError(t, AddNode(f, domain.Node{ID: "if", Type: domain.NodeTypeCondition}))
	require.NoError(t, AddNode(f, domain.Node{ID: "yes", Type: domain.NodeTypeAction}))
	require.NoError(t, AddNode(f, domain.Node{ID: "no", Type: domain.NodeTypeAction}))
	require.NoError(t, AddNode(f, domain.Node{ID: "join", Type: domain.NodeTypeAction}))
	require.NoError(t, AddConnection(f, conn("t", "bottom", "if")))
	require.NoError(t, AddConnection(f, conn("if", "true", "yes")))
	require.NoError(t, AddConnection(f, conn("if", "false", "no")))
	require.NoError(t, AddConnection(f, conn("yes", "bottom", "join")))
	require.NoError(t, AddConnection(f, conn("no", "bottom", "join")))

	assert.Equal(t, []string{"if", "yes", "no", "join"}, slices.Collect(ReachableFrom(f, "t")))
	assert.ErrorIs(t, AddConnection(f, conn("join", "bottom", "if")), domain.ErrInvalidConnection)
}
