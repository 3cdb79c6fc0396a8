package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleApps() []AppSchema {
	return []AppSchema{
		{
			ID:       "slack",
			Name:     "Slack",
			Category: "Communication",
			Auth:     AuthOAuth2,
			Triggers: []TriggerSchema{{ID: "new_message", Name: "New Message"}},
			Resources: []Resource{
				{ID: "channel", Operations: []Operation{{ID: "create"}}},
				{ID: "message", Operations: []Operation{{ID: "send"}, {ID: "create"}}},
			},
		},
		{ID: "gmail", Name: "Gmail", Category: "Email"},
	}
}

func TestCatalog_Lookups(t *testing.T) {
	c, err := NewCatalog(sampleApps()...)
	require.NoError(t, err)

	app, ok := c.GetApp("slack")
	require.True(t, ok)
	assert.Equal(t, "Slack", app.Name)

	_, ok = c.GetApp("missing")
	assert.False(t, ok)

	op, ok := c.GetOperation("slack", "message", "send")
	require.True(t, ok)
	assert.Equal(t, "send", op.ID)

	_, ok = c.GetOperation("slack", "channel", "send")
	assert.False(t, ok)

	trig, ok := c.GetTrigger("slack", "new_message")
	require.True(t, ok)
	assert.Equal(t, "New Message", trig.Name)

	res, op, ok := c.FindOperation("slack", "create")
	require.True(t, ok)
	assert.Equal(t, "channel", res.ID, "first resource in order wins")
	assert.Equal(t, "create", op.ID)
}

func TestCatalog_SearchApps(t *testing.T) {
	c, err := NewCatalog(sampleApps()...)
	require.NoError(t, err)

	all := c.SearchApps("")
	require.Len(t, all, 2)
	assert.Equal(t, "gmail", all[0].ID)

	hits := c.SearchApps("EMAIL")
	require.Len(t, hits, 1)
	assert.Equal(t, "gmail", hits[0].ID)

	assert.Empty(t, c.SearchApps("zzz"))
}

func TestCatalog_RegisterRejectsEmptyID(t *testing.T) {
	c, err := NewCatalog()
	require.NoError(t, err)
	assert.Error(t, c.Register(AppSchema{Name: "anonymous"}))
}

func TestParseCatalog(t *testing.T) {
	data := []byte(`
apps:
  - id: http
    name: HTTP Request
    category: Developer
    resources:
      - id: request
        operations:
          - id: call
            fields:
              - name: url
                type: string
                required: true
              - name: timeout
                type: number
                min: 1
                max: 300
                default: 30
              - name: body
                type: json
                displayOptions:
                  show:
                    method: [POST, PUT]
`)
	c, err := ParseCatalog(data, ".yaml")
	require.NoError(t, err)

	op, ok := c.GetOperation("http", "request", "call")
	require.True(t, ok)
	require.Len(t, op.Fields, 3)
	assert.True(t, op.Fields[0].Required)
	require.NotNil(t, op.Fields[1].Max)
	assert.Equal(t, 300.0, *op.Fields[1].Max)
	assert.Equal(t, []any{"POST", "PUT"}, op.Fields[2].DisplayOptions.Show["method"])

	required, optional := SplitRequired(op.Fields)
	assert.Len(t, required, 1)
	assert.Len(t, optional, 2)
}

func TestParseCatalog_JSONAndDuplicates(t *testing.T) {
	c, err := ParseCatalog([]byte(`{"apps":[{"id":"a","name":"A"}]}`), ".JSON")
	require.NoError(t, err)
	_, ok := c.GetApp("a")
	assert.True(t, ok)

	_, err = ParseCatalog([]byte(`{"apps":[{"id":"a"},{"id":"a"}]}`), ".json")
	assert.ErrorContains(t, err, "duplicate")

	_, err = ParseCatalog([]byte("apps: [unclosed"), ".yaml")
	assert.Error(t, err)
}
