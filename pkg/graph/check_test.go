package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techwithparamesh/agentflow/pkg/domain"
)

func TestCheck_ValidFlow(t *testing.T) {
	assert.NoError(t, Check(chain(t)))
	assert.NoError(t, Check(domain.NewFlow("empty", "")))
	assert.Empty(t, Inspect(nil))
}

func TestInspect_DecodedFlow(t *testing.T) {
	f := &domain.Flow{
		ID: "broken",
		Nodes: []domain.Node{
			{ID: "t", Type: domain.NodeTypeTrigger},
			{ID: "t", Type: "bogus"},
		},
		Connections: []domain.Connection{
			conn("t", "bottom", "ghost"),
			conn("t", "zz", "t"),
		},
	}

	problems := Inspect(f)
	require.Len(t, problems, 3)
	assert.ErrorIs(t, problems[0].Err, domain.ErrInvalidNode)
	assert.Nil(t, problems[0].Connection)
	assert.ErrorIs(t, problems[1].Err, domain.ErrInvalidConnection)
	assert.Equal(t, "ghost", problems[1].Connection.Target)
	assert.ErrorIs(t, problems[2].Err, domain.ErrInvalidConnection)

	err := Check(f)
	assert.ErrorIs(t, err, domain.ErrInvalidNode)
	assert.ErrorIs(t, err, domain.ErrInvalidConnection)
	assert.Len(t, f.Nodes, 2, "input is not modified")
}

func TestInspect_DuplicatesAndCycles(t *testing.T) {
	f := &domain.Flow{
		ID: "loops",
		Nodes: []domain.Node{
			{ID: "a", Type: domain.NodeTypeAction},
			{ID: "b", Type: domain.NodeTypeAction},
			{ID: "a", Type: domain.NodeTypeAction},
		},
		Connections: []domain.Connection{
			conn("a", "bottom", "b"),
			conn("b", "bottom", "a"),
			conn("a", "bottom", "b"),
		},
	}
	err := Check(f)
	assert.ErrorIs(t, err, domain.ErrDuplicateNode)
	assert.ErrorContains(t, err, "would create a cycle")
	assert.ErrorContains(t, err, "already exists")
	assert.Len(t, Inspect(f), 3)
}
