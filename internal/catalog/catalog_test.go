package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techwithparamesh/agentflow/pkg/schema"
)

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	ids := make([]string, 0)
	for _, app := range c.Apps() {
		ids = append(ids, app.ID)
	}
	assert.Equal(t, []string{"gmail", "google-sheets", "http", "openai", "schedule", "slack", "webhook"}, ids)

	op, ok := c.GetOperation("slack", "message", "send")
	require.True(t, ok)
	visible := schema.VisibleFields(op.Fields, map[string]any{})
	assert.Len(t, visible, 3, "target, channelId, text")

	gmail, ok := c.GetApp("gmail")
	require.True(t, ok)
	assert.Equal(t, schema.AuthOAuth2, gmail.Auth)
}

func TestDefault_FieldsAreWellFormed(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	check := func(app string, fields []schema.FieldSchema) {
		for _, f := range fields {
			assert.NotEmpty(t, f.Name, app)
			assert.NotEmpty(t, f.Type, "%s.%s", app, f.Name)
			if f.Default != nil {
				res := schema.ValidateField(f, f.Default, map[string]any{})
				assert.True(t, res.Valid, "%s.%s default: %s", app, f.Name, res.Message)
			}
		}
	}
	for _, app := range c.Apps() {
		for _, tr := range app.Triggers {
			check(app.ID, tr.Fields)
		}
		for _, r := range app.Resources {
			for _, op := range r.Operations {
				check(app.ID, op.Fields)
			}
		}
	}
}

func TestLoad_EmptyPathIsEmbedded(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	_, ok := c.GetApp("webhook")
	assert.True(t, ok)
}
