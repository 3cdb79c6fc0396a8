package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlow_CloneIsDeep(t *testing.T) {
	f := sampleFlow()
	f.Nodes[1].Config["headers"] = map[string]any{"x": "1"}
	f.Nodes[1].Config["tags"] = []any{"a"}

	c := f.Clone()
	require.True(t, f.Equal(c))

	c.Nodes[1].Config["headers"].(map[string]any)["x"] = "2"
	c.Nodes[1].Config["tags"].([]any)[0] = "b"
	c.Connections[0].Target = "t"

	assert.Equal(t, "1", f.Nodes[1].Config["headers"].(map[string]any)["x"])
	assert.Equal(t, "a", f.Nodes[1].Config["tags"].([]any)[0])
	assert.Equal(t, "a", f.Connections[0].Target)
	assert.False(t, f.Equal(c))
}

func TestFlow_EqualTreatsNilConfigAsEmpty(t *testing.T) {
	a := sampleFlow()
	b := sampleFlow()
	a.Nodes[1].Config = nil
	assert.True(t, a.Equal(b))
}

func TestFlow_Accessors(t *testing.T) {
	f := sampleFlow()

	assert.Equal(t, 1, f.NodeIndex("a"))
	assert.Equal(t, -1, f.NodeIndex("ghost"))
	assert.Nil(t, f.Node("ghost"))
	assert.Len(t, f.Outgoing("t"), 1)
	assert.Len(t, f.Incoming("a"), 1)
	assert.Empty(t, f.Incoming("t"))
	assert.Len(t, f.NodesOfType(NodeTypeTrigger), 1)
}

func TestDecodeFlow(t *testing.T) {
	f, err := DecodeFlow([]byte(`{"id":"f","name":"n","nodes":[{"id":"t","type":"trigger"}]}`))
	require.NoError(t, err)
	assert.NotNil(t, f.Nodes[0].Config)
	assert.NotNil(t, f.Connections)

	_, err = DecodeFlow([]byte(`{`))
	assert.Error(t, err)
}

func TestHandle_Valid(t *testing.T) {
	for _, h := range []Handle{HandleTop, HandleBottom, HandleTrue, HandleFalse, "0", "3"} {
		assert.True(t, h.Valid(), string(h))
	}
	for _, h := range []Handle{"", "left", "-1"} {
		assert.False(t, h.Valid(), string(h))
	}
}

func TestNodeType_Valid(t *testing.T) {
	assert.True(t, NodeTypeErrorHandler.Valid())
	assert.False(t, NodeType("webhook").Valid())
}
