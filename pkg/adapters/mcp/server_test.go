package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techwithparamesh/agentflow"
	"github.com/techwithparamesh/agentflow/pkg/domain"
	"github.com/techwithparamesh/agentflow/pkg/validation"
)

const flowJSON = `{
	"id": "wf",
	"nodes": [
		{"id": "hook", "type": "trigger", "appId": "webhook", "triggerId": "incoming",
		 "config": {"triggerType": "webhook", "path": "/orders"}},
		{"id": "call", "type": "action", "appId": "http", "actionId": "call", "config": {}}
	],
	"connections": [{"source": "hook", "sourceHandle": "bottom", "target": "call"}]
}`

func newTestServer(t *testing.T) (*Server, *agentflow.Workspace) {
	t.Helper()
	ws, err := agentflow.New()
	require.NoError(t, err)
	return NewServer(ws, "test", nil), ws
}

func call(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{Arguments: args},
	}
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected TextContent")
	return tc.Text
}

func TestValidateWorkflow_Inline(t *testing.T) {
	s, _ := newTestServer(t)

	res, err := s.handleValidate(context.Background(), call(map[string]any{"flow": flowJSON}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var out validation.WorkflowValidationResult
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &out))
	assert.Equal(t, validation.StageConfigure, out.Stage)
	assert.True(t, out.IsValid)
	assert.NotEmpty(t, out.Warnings, "the http call has no url yet")
}

func TestValidateWorkflow_Stored(t *testing.T) {
	s, ws := newTestServer(t)
	flow, err := domain.DecodeFlow([]byte(flowJSON))
	require.NoError(t, err)
	_, err = ws.Put(context.Background(), flow)
	require.NoError(t, err)

	res, err := s.handleValidate(context.Background(), call(map[string]any{"flow_id": "wf"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)

	res, err = s.handleValidate(context.Background(), call(map[string]any{"flow_id": "missing"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestValidateWorkflow_MissingFlow(t *testing.T) {
	s, _ := newTestServer(t)

	res, err := s.handleValidate(context.Background(), call(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = s.handleValidate(context.Background(), call(map[string]any{"flow": "{broken"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestNodePanel(t *testing.T) {
	s, _ := newTestServer(t)

	res, err := s.handlePanel(context.Background(), call(map[string]any{"flow": flowJSON, "node_id": "call"}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var view validation.NodeView
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &view))
	assert.Equal(t, domain.StatusIncomplete, view.Status)
	assert.Contains(t, view.ActiveFields, "url")

	res, err = s.handlePanel(context.Background(), call(map[string]any{"flow": flowJSON}))
	require.NoError(t, err)
	assert.True(t, res.IsError, "node_id is required")

	res, err = s.handlePanel(context.Background(), call(map[string]any{"flow": flowJSON, "node_id": "ghost"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestResolveExpression(t *testing.T) {
	s, _ := newTestServer(t)

	res, err := s.handleResolve(context.Background(), call(map[string]any{
		"template": "{{ $node[\"Fetch\"].json.total }}",
		"context":  `{"nodes": {"Fetch": {"json": {"total": 12}}}}`,
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, text(t, res))
	assert.JSONEq(t, `{"value":12,"resolved":true,"unresolved":[]}`, text(t, res))

	res, err = s.handleResolve(context.Background(), call(map[string]any{"template": "{{ $json. }}"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = s.handleResolve(context.Background(), call(map[string]any{"template": "x", "context": "nope"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestSearchApps(t *testing.T) {
	s, _ := newTestServer(t)

	res, err := s.handleSearchApps(context.Background(), call(map[string]any{"query": "gmail"}))
	require.NoError(t, err)

	var apps []appSummary
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &apps))
	require.Len(t, apps, 1)
	assert.Equal(t, appSummary{ID: "gmail", Name: "Gmail", Category: "Email"}, apps[0])
}
