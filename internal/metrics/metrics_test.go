package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techwithparamesh/agentflow/pkg/domain"
	"github.com/techwithparamesh/agentflow/pkg/editor"
	"github.com/techwithparamesh/agentflow/pkg/validation"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	return rec.Body.String()
}

func TestEditorHooks(t *testing.T) {
	m := New()
	mgr, err := editor.New(domain.NewFlow("f", ""), editor.WithHooks(m.EditorHooks()))
	require.NoError(t, err)

	require.NoError(t, mgr.Apply(&editor.AddNode{Node: domain.Node{ID: "n", Type: domain.NodeTypeDelay}}))
	mgr.Undo()
	mgr.Redo()

	body := scrape(t, m)
	assert.Contains(t, body, `agentflow_editor_commands_total{command="add_node",op="apply"} 1`)
	assert.Contains(t, body, `agentflow_editor_commands_total{command="add_node",op="undo"} 1`)
	assert.Contains(t, body, `agentflow_editor_commands_total{command="add_node",op="redo"} 1`)
}

func TestValidationObserver(t *testing.T) {
	m := New()
	validation.ValidateWorkflow(domain.NewFlow("f", ""), validation.WithObserver(m.ValidationObserver()))

	body := scrape(t, m)
	assert.Contains(t, body, `agentflow_workflow_validations_total{stage="setup"} 1`)
	assert.Contains(t, body, "agentflow_workflow_validation_duration_seconds_count 1")
}
